package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shouni/go-ugc-kit/internal/config"
	"github.com/shouni/go-ugc-kit/internal/metrics"
	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/studio"
)

const shutdownTimeout = 10 * time.Second

// Server はスタジオ API の HTTP サーバーなのだ。
type Server struct {
	cfg      config.ServerConfig
	defaults domain.GenerationOptions
	runner   studio.Runner
	store    *studio.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger
	engine   *gin.Engine
}

// New はルーティングまで済ませた Server を返すのだ。
func New(cfg config.ServerConfig, defaults domain.GenerationOptions, runner studio.Runner, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		defaults: defaults,
		runner:   runner,
		store:    studio.NewStore(runner, cfg.SessionTTL),
		metrics:  m,
		logger:   logger,
	}
	m.RegisterSessionGauge(s.store.Count)
	s.engine = s.routes()
	return s
}

// Handler は http.Handler としてのルーターを返すのだ。
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger(s.logger))
	router.Use(gin.Recovery())
	router.Use(RequestMetrics(s.metrics))
	router.Use(cors.New(s.corsConfig()))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/generate", s.handleGenerate)
		api.GET("/schema", s.handleSchema)

		sessions := api.Group("/sessions")
		sessions.POST("", s.handleCreateSession)
		sessions.GET("/:id", s.handleGetSession)
		sessions.DELETE("/:id", s.handleDeleteSession)
		sessions.PUT("/:id/options", s.handleSetOptions)
		sessions.POST("/:id/image", s.handleSelectImage)
		sessions.DELETE("/:id/image", s.handleReset)
		sessions.POST("/:id/regenerate", s.handleRegenerateAll)
		sessions.POST("/:id/concepts/:index/regenerate", s.handleRegenerateConcept)
	}
	return router
}

func (s *Server) corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	if len(s.cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = s.cfg.AllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{config.DefaultAllowedOrigin}
		s.logger.Info("許可オリジンが未設定なので既定値を使うのだ", "origin", config.DefaultAllowedOrigin)
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

// Run は ctx がキャンセルされるまで待ち受け、その後グレースフルに停止するのだ。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 15 * time.Second,
		// 生成は数十秒かかるので書き込みはリクエストタイムアウトより長くとるのだ
		WriteTimeout: s.requestTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP サーバーを起動するのだ", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP サーバーの起動に失敗したのだ: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("HTTP サーバーを停止するのだ")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP サーバーの停止に失敗したのだ: %w", err)
	}
	return nil
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.RequestTimeout > 0 {
		return s.cfg.RequestTimeout
	}
	return config.DefaultRequestTimeout
}
