package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/go-ugc-kit/pkg/asset"
	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/studio"
)

// errorResponse はエラー時の JSON なのだ。セッション操作ではそのときの状態も返すのだ。
type errorResponse struct {
	Error   string           `json:"error"`
	Session *studio.Snapshot `json:"session,omitempty"`
}

// statusFor はエラーを HTTP ステータスに対応付けるのだ。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidOptions),
		errors.Is(err, domain.ErrConceptIndexOutOfRange),
		errors.Is(err, asset.ErrEmptyImage),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, studio.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, studio.ErrBusy),
		errors.Is(err, studio.ErrNoImage),
		errors.Is(err, studio.ErrNoAnalysis):
		return http.StatusConflict
	case errors.Is(err, asset.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, asset.ErrNotImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, studio.ErrGenerationFailed), errors.Is(err, errUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var (
	errBadRequest = errors.New("bad request")
	errUpstream   = errors.New("upstream generation failed")
)

// abortWithError はステータスを決めてレスポンスを返すのだ。5xx はログ用に c.Errors にも積むのだ。
func abortWithError(c *gin.Context, err error, snap *studio.Snapshot) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error(), Session: snap})
}
