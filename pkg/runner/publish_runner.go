package runner

import (
	"context"

	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/publisher"
)

// DefaultPublisherRunner は pkg/publisher を利用した標準実装なのだ。
type DefaultPublisherRunner struct {
	publisher *publisher.ConceptPublisher
}

func NewDefaultPublisherRunner(pub *publisher.ConceptPublisher) *DefaultPublisherRunner {
	return &DefaultPublisherRunner{
		publisher: pub,
	}
}

func (pr *DefaultPublisherRunner) Run(ctx context.Context, resp domain.AnalysisResponse, outputDir string, index int) (publisher.PublishResult, error) {
	opts := publisher.Options{
		OutputDir: outputDir,
		Index:     index,
	}

	return pr.publisher.Publish(ctx, resp, opts)
}

// BuildMarkdown は保存処理を行わず、Markdown 文字列のみを生成して返却します。
func (pr *DefaultPublisherRunner) BuildMarkdown(resp domain.AnalysisResponse) string {
	return publisher.BuildMarkdown(resp)
}
