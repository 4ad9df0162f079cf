package workflow

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/shouni/go-ugc-kit/pkg/asset"
	"github.com/shouni/go-ugc-kit/pkg/config"
	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/generator"
	"github.com/shouni/go-ugc-kit/pkg/prompts"
	"github.com/shouni/go-ugc-kit/pkg/publisher"
)

// ManagerArgs は Manager の初期化に必要な依存関係です。
type ManagerArgs struct {
	Config config.Config
	// ContentGenerator が nil の場合は Config.GeminiAPIKey で genai クライアントを作成します。
	ContentGenerator generator.ContentGenerator
	PromptBuilder    prompts.PromptBuilder
	Observer         generator.CallObserver
	Writer           publisher.OutputWriter
}

// Manager は、ワークフローの各工程を担う Runner 群を構築・管理します。
type Manager struct {
	cfg       config.Config
	builder   *generator.RequestBuilder
	generator *generator.GeminiGenerator
	writer    publisher.OutputWriter
}

// New は、設定を基に新しい Manager を初期化します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	client := args.ContentGenerator
	if client == nil {
		c, err := initializeAIClient(ctx, args.Config.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		client = c
	}

	pb, err := initializePromptBuilder(args.PromptBuilder)
	if err != nil {
		return nil, err
	}

	opts := []generator.Option{
		generator.WithModel(args.Config.GeminiModel),
		generator.WithLimiter(newLimiter(args.Config)),
	}
	if args.Config.Temperature > 0 {
		opts = append(opts, generator.WithTemperature(args.Config.Temperature))
	}
	if args.Observer != nil {
		opts = append(opts, generator.WithObserver(args.Observer))
	}
	if args.Config.RequestTimeout > 0 {
		opts = append(opts, generator.WithTimeout(args.Config.RequestTimeout))
	}

	return &Manager{
		cfg:       args.Config,
		builder:   generator.NewRequestBuilder(pb),
		generator: generator.NewGeminiGenerator(client, opts...),
		writer:    args.Writer,
	}, nil
}

// initializeAIClient は genai クライアントを初期化し、Models を返します。
func initializeAIClient(ctx context.Context, apiKey string) (generator.ContentGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY が設定されていません")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return client.Models, nil
}

// initializePromptBuilder は既存のビルダーが渡された場合はそれを返し、nil の場合は新規作成します。
func initializePromptBuilder(pb prompts.PromptBuilder) (prompts.PromptBuilder, error) {
	if pb != nil {
		return pb, nil
	}

	builder, err := prompts.NewConceptPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("ConceptPromptBuilder の新規作成に失敗しました: %w", err)
	}
	return builder, nil
}

func newLimiter(cfg config.Config) *rate.Limiter {
	interval := cfg.RateInterval
	if interval <= 0 {
		interval = config.DefaultRateInterval
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = config.DefaultRateBurst
	}
	return rate.NewLimiter(rate.Every(interval), burst)
}

// Config は Manager が保持する設定を返します。
func (m *Manager) Config() config.Config {
	return m.cfg
}

// DefaultOptions は新しいセッションや CLI 実行で使う生成オプションの既定値を返します。
// 設定が空、または不正な場合は domain の既定値にフォールバックします。
func (m *Manager) DefaultOptions() domain.GenerationOptions {
	if err := m.cfg.Options.Validate(); err != nil {
		return domain.DefaultGenerationOptions()
	}
	return m.cfg.Options
}

// MaxImageBytes は受け付ける商品画像サイズの上限を返します。
func (m *Manager) MaxImageBytes() int64 {
	if m.cfg.MaxImageBytes <= 0 {
		return asset.DefaultMaxImageBytes
	}
	return m.cfg.MaxImageBytes
}
