package builder

import (
	"context"
	"fmt"

	"github.com/shouni/go-ugc-kit/internal/config"
	"github.com/shouni/go-ugc-kit/internal/metrics"
	"github.com/shouni/go-ugc-kit/internal/runner"
	"github.com/shouni/go-ugc-kit/pkg/generator"
	"github.com/shouni/go-ugc-kit/pkg/publisher"
	"github.com/shouni/go-ugc-kit/pkg/workflow"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各コマンドに渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config        *config.Config         // Config は .env / TOML / 環境変数 / フラグを重ねた設定です。
	Manager       *workflow.Manager      // Manager は Gemini クライアントと Runner 群を束ねます。
	ConceptRunner workflow.ConceptRunner // ConceptRunner は生成と後処理を担います。
	PublishRunner workflow.PublishRunner // PublishRunner は JSON / Markdown の書き出しを担います。
	Metrics       *metrics.Metrics       // Metrics は Gemini 呼び出しと HTTP リクエストを記録します。
}

// Options は AppContext の差し替え可能な依存なのだ。テストでは偽物を渡すのだ。
type Options struct {
	ContentGenerator generator.ContentGenerator
	Writer           publisher.OutputWriter
}

// BuildAppContext は設定から AppContext を組み立てるのだ。
func BuildAppContext(ctx context.Context, cfg *config.Config, opts Options) (*AppContext, error) {
	m := metrics.New()

	mgr, err := workflow.New(ctx, workflow.ManagerArgs{
		Config:           cfg.Library(),
		ContentGenerator: opts.ContentGenerator,
		Observer:         m,
		Writer:           opts.Writer,
	})
	if err != nil {
		return nil, fmt.Errorf("ワークフローの初期化に失敗したのだ: %w", err)
	}

	cr, err := mgr.BuildConceptRunner()
	if err != nil {
		return nil, fmt.Errorf("ConceptRunner の構築に失敗したのだ: %w", err)
	}
	pr, err := mgr.BuildPublishRunner()
	if err != nil {
		return nil, fmt.Errorf("PublishRunner の構築に失敗したのだ: %w", err)
	}

	return &AppContext{
		Config:        cfg,
		Manager:       mgr,
		ConceptRunner: cr,
		PublishRunner: pr,
		Metrics:       m,
	}, nil
}

// BuildBatchRunner は複数画像を処理する Runner を構築するのだ。
func (a *AppContext) BuildBatchRunner() *runner.BatchRunner {
	concurrency := a.Config.Options.Concurrency
	if concurrency <= 0 {
		concurrency = config.DefaultConcurrency
	}
	return runner.NewBatchRunner(a.ConceptRunner, a.PublishRunner, a.Manager.MaxImageBytes(), concurrency)
}
