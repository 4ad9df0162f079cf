package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/parser"
)

// GeminiGenerator は Gemini を1回呼び出してコンセプトを取得します。リトライは行いません。
type GeminiGenerator struct {
	client      ContentGenerator
	model       string
	temperature *float32
	limiter     *rate.Limiter
	observer    CallObserver
	timeout     time.Duration
}

// Option は GeminiGenerator の設定を変更します。
type Option func(*GeminiGenerator)

// WithModel は使用するモデル名を指定します。
func WithModel(model string) Option {
	return func(g *GeminiGenerator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithTemperature はサンプリング温度を指定します。
func WithTemperature(t float32) Option {
	return func(g *GeminiGenerator) { g.temperature = &t }
}

// WithLimiter は呼び出し前に待機するリミッターを指定します。
func WithLimiter(l *rate.Limiter) Option {
	return func(g *GeminiGenerator) { g.limiter = l }
}

// WithObserver は呼び出し結果の通知先を指定します。
func WithObserver(o CallObserver) Option {
	return func(g *GeminiGenerator) { g.observer = o }
}

// WithTimeout は1回の呼び出しにかける時間の上限を指定します。0 以下なら上限を設けません。
func WithTimeout(d time.Duration) Option {
	return func(g *GeminiGenerator) { g.timeout = d }
}

// NewGeminiGenerator は GeminiGenerator を初期化します。
func NewGeminiGenerator(client ContentGenerator, opts ...Option) *GeminiGenerator {
	g := &GeminiGenerator{
		client: client,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateFull はフル生成リクエストを実行し、3つのコンセプトを返します。
func (g *GeminiGenerator) GenerateFull(ctx context.Context, req Request) (domain.AnalysisResponse, error) {
	raw, err := g.call(ctx, req)
	if err != nil {
		return domain.AnalysisResponse{}, err
	}

	resp, err := parser.ParseAnalysis(raw)
	if err != nil {
		return domain.AnalysisResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(resp.Concepts) != domain.ConceptsPerAnalysis {
		return domain.AnalysisResponse{}, fmt.Errorf("%w: expected %d concepts, got %d", ErrMalformedResponse, domain.ConceptsPerAnalysis, len(resp.Concepts))
	}
	if err := resp.CheckSceneCount(req.SceneCount); err != nil {
		return domain.AnalysisResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return resp, nil
}

// GenerateSingle は単体生成リクエストを実行し、1つのコンセプトを返します。
func (g *GeminiGenerator) GenerateSingle(ctx context.Context, req Request) (domain.UGCConcept, error) {
	raw, err := g.call(ctx, req)
	if err != nil {
		return domain.UGCConcept{}, err
	}

	concept, err := parser.ParseConcept(raw)
	if err != nil {
		return domain.UGCConcept{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := concept.CheckSceneCount(req.SceneCount); err != nil {
		return domain.UGCConcept{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return concept, nil
}

func (g *GeminiGenerator) call(ctx context.Context, req Request) (text string, err error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("リミッター待機中にエラーが発生しました: %w", err)
		}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if g.observer != nil {
			g.observer.ObserveCall(string(req.Kind), time.Since(start), err)
		}
	}()

	slog.InfoContext(ctx, "コンセプト生成リクエストを送信します",
		"kind", req.Kind,
		"model", g.model,
		"scene_count", req.SceneCount,
		"mime_type", req.Image.MimeType,
	)

	resp, err := g.client.GenerateContent(ctx, g.model, req.Contents(), req.Config(g.temperature))
	if err != nil {
		return "", fmt.Errorf("コンセプト生成の呼び出しに失敗しました: %w", err)
	}
	if resp == nil {
		return "", ErrNoResponse
	}

	text = resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoResponse
	}

	slog.InfoContext(ctx, "コンセプト生成が完了しました",
		"kind", req.Kind,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return text, nil
}
