package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/shouni/go-utils/envutil"

	pkgconfig "github.com/shouni/go-ugc-kit/pkg/config"
	"github.com/shouni/go-ugc-kit/pkg/domain"
)

// デフォルト値の定義なのだ
const (
	DefaultModel          = pkgconfig.DefaultGeminiModel
	DefaultAddr           = ":8080"
	DefaultSessionTTL     = 30 * time.Minute
	DefaultRateInterval   = pkgconfig.DefaultRateInterval
	DefaultOutputDir      = "output"
	DefaultConcurrency    = 2
	DefaultRequestTimeout = 3 * time.Minute
	DefaultAllowedOrigin  = "http://localhost:3000"
)

// Config はアプリケーション全体の環境設定を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey string
	GeminiModel  string
	Temperature  float32
	RateInterval time.Duration

	LogLevel  string
	LogFormat string

	Server   ServerConfig
	Defaults domain.GenerationOptions

	Options GenerateOptions
}

// ServerConfig は HTTP サーバーの設定なのだ。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	SessionTTL     time.Duration
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	ImageFile    string // --image
	InputDir     string // --input-dir
	ConceptsFile string // --concepts
	OutputDir    string // --output-dir
	Format       string // --format
	Index        int    // --index
	ConceptIndex int    // --concept
	Concurrency  int    // --concurrency

	TextOverlayMode string // --text-mode
	NarrationMode   string // --narration-mode
	SceneCount      int    // --scenes
}

// fileConfig は --config で渡される TOML ファイルの形なのだ。
type fileConfig struct {
	Gemini struct {
		Model        string  `toml:"model"`
		Temperature  float32 `toml:"temperature"`
		RateInterval string  `toml:"rate_interval"`
	} `toml:"gemini"`
	Generation domain.GenerationOptions `toml:"generation"`
	Server     struct {
		Addr           string   `toml:"addr"`
		AllowedOrigins []string `toml:"allowed_origins"`
		SessionTTL     string   `toml:"session_ttl"`
		MaxUploadBytes int64    `toml:"max_upload_bytes"`
	} `toml:"server"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
}

// Default はすべてデフォルト値の Config を返すのだ。
func Default() *Config {
	return &Config{
		GeminiModel:  DefaultModel,
		RateInterval: DefaultRateInterval,
		LogLevel:     "info",
		LogFormat:    "text",
		Server: ServerConfig{
			Addr:           DefaultAddr,
			AllowedOrigins: []string{DefaultAllowedOrigin},
			SessionTTL:     DefaultSessionTTL,
			MaxUploadBytes: pkgconfig.DefaultMaxImageBytes,
			RequestTimeout: DefaultRequestTimeout,
		},
		Defaults: domain.DefaultGenerationOptions(),
	}
}

// LoadConfig は .env、TOML ファイル、環境変数の順に設定を重ねて返すのだ！
// path が空なら TOML は読まないのだ。
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn(".env の読み込みに失敗したのだ", "error", err)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("生成オプションのデフォルト値が不正なのだ: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイル '%s' の読み込みに失敗したのだ: %w", path, err)
	}

	fc := fileConfig{Generation: c.Defaults}
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("設定ファイル '%s' の解析に失敗したのだ: %w", path, err)
	}

	if fc.Gemini.Model != "" {
		c.GeminiModel = fc.Gemini.Model
	}
	if fc.Gemini.Temperature > 0 {
		c.Temperature = fc.Gemini.Temperature
	}
	if err := setDuration(&c.RateInterval, fc.Gemini.RateInterval); err != nil {
		return fmt.Errorf("gemini.rate_interval: %w", err)
	}
	c.Defaults = fc.Generation
	if fc.Server.Addr != "" {
		c.Server.Addr = fc.Server.Addr
	}
	if len(fc.Server.AllowedOrigins) > 0 {
		c.Server.AllowedOrigins = fc.Server.AllowedOrigins
	}
	if err := setDuration(&c.Server.SessionTTL, fc.Server.SessionTTL); err != nil {
		return fmt.Errorf("server.session_ttl: %w", err)
	}
	if fc.Server.MaxUploadBytes > 0 {
		c.Server.MaxUploadBytes = fc.Server.MaxUploadBytes
	}
	if fc.Log.Level != "" {
		c.LogLevel = fc.Log.Level
	}
	if fc.Log.Format != "" {
		c.LogFormat = fc.Log.Format
	}
	return nil
}

// mergeEnv は環境変数があればそれで上書きするのだ。
func (c *Config) mergeEnv() error {
	c.GeminiAPIKey = envutil.GetEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = envutil.GetEnv("GEMINI_MODEL", c.GeminiModel)
	c.LogLevel = envutil.GetEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envutil.GetEnv("LOG_FORMAT", c.LogFormat)
	c.Server.Addr = envutil.GetEnv("UGC_ADDR", c.Server.Addr)

	if v := envutil.GetEnv("GEMINI_TEMPERATURE", ""); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("GEMINI_TEMPERATURE が不正なのだ: %w", err)
		}
		c.Temperature = float32(f)
	}
	if err := setDuration(&c.RateInterval, envutil.GetEnv("GEMINI_RATE_INTERVAL", "")); err != nil {
		return fmt.Errorf("GEMINI_RATE_INTERVAL: %w", err)
	}
	if err := setDuration(&c.Server.SessionTTL, envutil.GetEnv("UGC_SESSION_TTL", "")); err != nil {
		return fmt.Errorf("UGC_SESSION_TTL: %w", err)
	}
	if v := envutil.GetEnv("UGC_ALLOWED_ORIGINS", ""); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
	return nil
}

func setDuration(dst *time.Duration, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

// Library は pkg 側の Config に変換するのだ。
func (c *Config) Library() pkgconfig.Config {
	lib := pkgconfig.DefaultConfig()
	lib.GeminiAPIKey = c.GeminiAPIKey
	lib.GeminiModel = c.GeminiModel
	lib.Temperature = c.Temperature
	lib.RateInterval = c.RateInterval
	lib.Options = c.Defaults
	lib.MaxImageBytes = c.Server.MaxUploadBytes
	lib.RequestTimeout = c.Server.RequestTimeout
	return lib
}

// ResolveGenerationOptions は CLI フラグをデフォルト値の上に重ねて検証するのだ。
func (c *Config) ResolveGenerationOptions() (domain.GenerationOptions, error) {
	opts := c.Defaults
	if c.Options.TextOverlayMode != "" {
		m, err := domain.ParseGenerationMode(c.Options.TextOverlayMode)
		if err != nil {
			return domain.GenerationOptions{}, err
		}
		opts.TextOverlayMode = m
	}
	if c.Options.NarrationMode != "" {
		m, err := domain.ParseGenerationMode(c.Options.NarrationMode)
		if err != nil {
			return domain.GenerationOptions{}, err
		}
		opts.NarrationMode = m
	}
	if c.Options.SceneCount != 0 {
		opts.SceneCount = c.Options.SceneCount
	}
	if err := opts.Validate(); err != nil {
		return domain.GenerationOptions{}, err
	}
	return opts, nil
}
