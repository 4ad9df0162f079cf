package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-ugc-kit/pkg/director"
	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/generator"
)

// ConceptRunner は、リクエスト構築 → Gemini 呼び出し → 後処理を1本にまとめます。
// 取得したコンセプトへの後処理はここでだけ適用します。
type ConceptRunner struct {
	builder   *generator.RequestBuilder
	generator generator.ConceptGenerator
}

// NewConceptRunner は依存関係を注入して初期化します。
func NewConceptRunner(b *generator.RequestBuilder, g generator.ConceptGenerator) *ConceptRunner {
	return &ConceptRunner{
		builder:   b,
		generator: g,
	}
}

// Run は3つのコンセプトを生成し、オプションに従って加工して返します。
func (r *ConceptRunner) Run(ctx context.Context, image domain.UploadedImage, opts domain.GenerationOptions) (domain.AnalysisResponse, error) {
	slog.InfoContext(ctx, "ConceptRunner: フル生成を開始します",
		"text_overlay_mode", opts.TextOverlayMode,
		"narration_mode", opts.NarrationMode,
		"scene_count", opts.SceneCount,
	)

	req, err := r.builder.BuildFullRequest(image, opts)
	if err != nil {
		return domain.AnalysisResponse{}, fmt.Errorf("リクエストの構築に失敗しました: %w", err)
	}

	raw, err := r.generator.GenerateFull(ctx, req)
	if err != nil {
		return domain.AnalysisResponse{}, err
	}

	return director.ApplyResponse(raw, opts), nil
}

// RunSingle は差し替え用のコンセプトを1つ生成し、同じ後処理を適用して返します。
func (r *ConceptRunner) RunSingle(ctx context.Context, image domain.UploadedImage, opts domain.GenerationOptions) (domain.UGCConcept, error) {
	slog.InfoContext(ctx, "ConceptRunner: 単体生成を開始します", "scene_count", opts.SceneCount)

	req, err := r.builder.BuildSingleRequest(image, opts)
	if err != nil {
		return domain.UGCConcept{}, fmt.Errorf("リクエストの構築に失敗しました: %w", err)
	}

	raw, err := r.generator.GenerateSingle(ctx, req)
	if err != nil {
		return domain.UGCConcept{}, err
	}

	return director.ApplyOptions(raw, opts), nil
}
