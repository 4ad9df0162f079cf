package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shouni/go-ugc-kit/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// skipLogging はヘルスチェックとメトリクスのパスなのだ。ログが埋もれるので記録しないのだ。
var skipLogging = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// RequestLogger は slog でリクエストを1行ずつ記録する gin ミドルウェアなのだ。
// X-Request-ID が無ければ払い出してレスポンスにも付けるのだ。
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Set("request_id", requestID)

		path := c.Request.URL.Path
		if skipLogging[path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}
		attrs := []any{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"latency", time.Since(start),
			"user_agent", c.Request.UserAgent(),
			"request_id", requestID,
		}

		ctx := c.Request.Context()
		if len(c.Errors) > 0 {
			for _, ginErr := range c.Errors.ByType(gin.ErrorTypeAny) {
				logger.ErrorContext(ctx, "リクエストでエラーが発生したのだ", append(attrs, "error", ginErr.Err)...)
			}
			return
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.ErrorContext(ctx, "サーバーエラーなのだ", attrs...)
		case status >= http.StatusBadRequest:
			logger.WarnContext(ctx, "クライアントエラーなのだ", attrs...)
		default:
			logger.InfoContext(ctx, "リクエスト完了なのだ", attrs...)
		}
	}
}

// RequestMetrics はルート単位でリクエスト数を数えるのだ。
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		m.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
