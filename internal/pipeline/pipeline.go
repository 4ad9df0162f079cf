package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/go-ugc-kit/internal/builder"
	"github.com/shouni/go-ugc-kit/internal/config"
	"github.com/shouni/go-ugc-kit/internal/runner"
	"github.com/shouni/go-ugc-kit/pkg/asset"
	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/generator"
	"github.com/shouni/go-ugc-kit/pkg/parser"
	"github.com/shouni/go-ugc-kit/pkg/publisher"
)

// ErrMissingInput は必須の入力ファイルが指定されていないときに返すのだ。
var ErrMissingInput = errors.New("missing input")

// ExecuteGenerate は商品画像1枚から3つのコンセプトを生成し、
// w に描画して、出力ディレクトリが指定されていればファイルにも保存するのだ。
func ExecuteGenerate(ctx context.Context, appCtx *builder.AppContext, w io.Writer) (domain.AnalysisResponse, error) {
	o := appCtx.Config.Options
	if o.ImageFile == "" {
		return domain.AnalysisResponse{}, fmt.Errorf("%w: --image を指定してほしいのだ", ErrMissingInput)
	}

	opts, err := appCtx.Config.ResolveGenerationOptions()
	if err != nil {
		return domain.AnalysisResponse{}, err
	}

	img, err := asset.LoadImageFile(o.ImageFile, appCtx.Manager.MaxImageBytes())
	if err != nil {
		return domain.AnalysisResponse{}, err
	}

	// --- Phase 1: Concept Phase ---
	resp, err := appCtx.ConceptRunner.Run(ctx, img, opts)
	if err != nil {
		return domain.AnalysisResponse{}, fmt.Errorf("コンセプト生成に失敗したのだ: %w", err)
	}

	// --- Phase 2: Publish Phase ---
	if err := emit(ctx, appCtx, resp, w); err != nil {
		return resp, err
	}
	return resp, nil
}

// ExecuteRegenerate は保存済みのコンセプトのうち1つだけを作り直すのだ。
// ConceptIndex は 1 始まりで、他のコンセプトには手を触れないのだ。
func ExecuteRegenerate(ctx context.Context, appCtx *builder.AppContext, w io.Writer) (domain.AnalysisResponse, error) {
	o := appCtx.Config.Options
	if o.ImageFile == "" || o.ConceptsFile == "" {
		return domain.AnalysisResponse{}, fmt.Errorf("%w: --image と --concepts の両方が必要なのだ", ErrMissingInput)
	}

	opts, err := appCtx.Config.ResolveGenerationOptions()
	if err != nil {
		return domain.AnalysisResponse{}, err
	}

	current, err := parser.ParseAnalysisFile(ctx, o.ConceptsFile)
	if err != nil {
		return domain.AnalysisResponse{}, err
	}
	index := o.ConceptIndex - 1
	if index < 0 || index >= len(current.Concepts) {
		return domain.AnalysisResponse{}, fmt.Errorf("%w: --concept=%d (1..%d)", domain.ErrConceptIndexOutOfRange, o.ConceptIndex, len(current.Concepts))
	}

	img, err := asset.LoadImageFile(o.ImageFile, appCtx.Manager.MaxImageBytes())
	if err != nil {
		return domain.AnalysisResponse{}, err
	}

	concept, err := appCtx.ConceptRunner.RunSingle(ctx, img, opts)
	if err != nil {
		return domain.AnalysisResponse{}, fmt.Errorf("コンセプトの再生成に失敗したのだ: %w", err)
	}

	updated, err := current.ReplaceConcept(index, concept)
	if err != nil {
		return domain.AnalysisResponse{}, err
	}
	slog.InfoContext(ctx, "コンセプトを差し替えたのだ", "concept", o.ConceptIndex, "title", concept.Title)

	if err := emit(ctx, appCtx, updated, w); err != nil {
		return updated, err
	}
	return updated, nil
}

// ExecuteBatch はディレクトリ内の画像をまとめて処理するのだ。
func ExecuteBatch(ctx context.Context, appCtx *builder.AppContext) ([]runner.BatchResult, error) {
	o := appCtx.Config.Options
	if o.InputDir == "" {
		return nil, fmt.Errorf("%w: --input-dir を指定してほしいのだ", ErrMissingInput)
	}

	opts, err := appCtx.Config.ResolveGenerationOptions()
	if err != nil {
		return nil, err
	}

	paths, err := runner.CollectImages(o.InputDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s に画像が見つからないのだ", ErrMissingInput, o.InputDir)
	}

	outputDir := o.OutputDir
	if outputDir == "" {
		outputDir = config.DefaultOutputDir
	}
	return appCtx.BuildBatchRunner().Run(ctx, paths, opts, outputDir)
}

// ExecuteSchema は Gemini に渡すレスポンス形を JSON Schema として書き出すのだ。
func ExecuteSchema(w io.Writer, kind string) error {
	if kind == "" {
		kind = string(generator.KindFull)
	}
	schema, err := generator.JSONSchema(generator.Kind(kind))
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("スキーマの変換に失敗したのだ: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// emit は標準出力への描画と、必要ならファイル保存を行うのだ。
func emit(ctx context.Context, appCtx *builder.AppContext, resp domain.AnalysisResponse, w io.Writer) error {
	o := appCtx.Config.Options

	if o.Format != "" {
		format, err := publisher.ParseFormat(o.Format)
		if err != nil {
			return err
		}
		if err := publisher.Render(w, resp, format); err != nil {
			return fmt.Errorf("出力の描画に失敗したのだ: %w", err)
		}
	}

	if o.OutputDir == "" {
		return nil
	}
	result, err := appCtx.PublishRunner.Run(ctx, resp, o.OutputDir, o.Index)
	if err != nil {
		return fmt.Errorf("コンセプトの保存に失敗したのだ: %w", err)
	}
	slog.InfoContext(ctx, "コンセプトを保存したのだ", "json", result.JSONPath, "markdown", result.MarkdownPath)
	return nil
}
