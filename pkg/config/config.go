package config

import (
	"time"

	"github.com/shouni/go-ugc-kit/pkg/domain"
)

// デフォルト値の定義
const (
	DefaultGeminiModel   = "gemini-3-flash-preview"
	DefaultRateInterval  = 2 * time.Second
	DefaultRateBurst     = 2
	DefaultMaxImageBytes = 20 << 20
)

// Config は Go UGC Kit の各 Runner を動作させるための基本設定です。
type Config struct {
	// --- AI Model Settings ---
	GeminiModel string
	// Temperature が 0 の場合はモデルのデフォルトを使います。
	Temperature float32

	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey string

	// --- Generation Settings ---
	Options       domain.GenerationOptions
	RateInterval  time.Duration
	RateBurst     int
	MaxImageBytes int64

	// --- Timeout ---
	RequestTimeout time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		GeminiModel:   DefaultGeminiModel,
		Options:       domain.DefaultGenerationOptions(),
		RateInterval:  DefaultRateInterval,
		RateBurst:     DefaultRateBurst,
		MaxImageBytes: DefaultMaxImageBytes,
	}
}
