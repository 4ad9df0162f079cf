package workflow

import (
	"context"

	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/publisher"
)

// Workflow は、コンセプト生成ワークフローの各工程を担う Runner を構築するためのインターフェースを定義します。
type Workflow interface {
	BuildConceptRunner() (ConceptRunner, error)
	BuildPublishRunner() (PublishRunner, error)
}

// ConceptRunner は、商品画像とオプションから加工済みのコンセプトを生成する責務を持ちます。
type ConceptRunner interface {
	Run(ctx context.Context, image domain.UploadedImage, opts domain.GenerationOptions) (domain.AnalysisResponse, error)
	RunSingle(ctx context.Context, image domain.UploadedImage, opts domain.GenerationOptions) (domain.UGCConcept, error)
}

// PublishRunner は、生成されたコンセプトを JSON / Markdown で出力する責務を持ちます。
type PublishRunner interface {
	Run(ctx context.Context, resp domain.AnalysisResponse, outputDir string, index int) (publisher.PublishResult, error)
	BuildMarkdown(resp domain.AnalysisResponse) string
}
