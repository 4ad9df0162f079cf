package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shouni/go-ugc-kit/pkg/asset"
	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/generator"
	"github.com/shouni/go-ugc-kit/pkg/studio"
)

const imageFormField = "image"

// optionsRequest はセッション作成・オプション変更のリクエストボディなのだ。
// 省略した項目は現在値（作成時はデフォルト値）のままなのだ。
type optionsRequest struct {
	Options *domain.GenerationOptions `json:"options"`
}

// regenerateConceptResponse は単体再生成の結果なのだ。
// 失敗してもバナーは出さないので、regenerated=false で区別するのだ。
type regenerateConceptResponse struct {
	studio.Snapshot
	Regenerated bool `json:"regenerated"`
}

// bindOptions は base の上にリクエストの options を重ねるのだ。ボディが空なら base のままなのだ。
func bindOptions(c *gin.Context, base domain.GenerationOptions) (domain.GenerationOptions, error) {
	opts := base
	req := optionsRequest{Options: &opts}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, domain.ErrInvalidOptions) {
			return base, err
		}
		return base, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if err := opts.Validate(); err != nil {
		return base, err
	}
	return opts, nil
}

func (s *Server) session(c *gin.Context) (*studio.Session, bool) {
	sess, err := s.store.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err, nil)
		return nil, false
	}
	return sess, true
}

// readUpload は multipart の image フィールドを読み込んで画像か判定するのだ。
func (s *Server) readUpload(c *gin.Context) (domain.UploadedImage, error) {
	fh, err := c.FormFile(imageFormField)
	if err != nil {
		return domain.UploadedImage{}, fmt.Errorf("%w: multipart field %q is required", errBadRequest, imageFormField)
	}
	f, err := fh.Open()
	if err != nil {
		return domain.UploadedImage{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	defer f.Close()
	return asset.ReadImage(f, s.cfg.MaxUploadBytes)
}

func (s *Server) generationContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.requestTimeout())
}

func (s *Server) handleCreateSession(c *gin.Context) {
	opts, err := bindOptions(c, s.defaults)
	if err != nil {
		abortWithError(c, err, nil)
		return
	}
	sess, err := s.store.Create(opts)
	if err != nil {
		abortWithError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	s.store.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSetOptions(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	current := sess.Snapshot()
	opts, err := bindOptions(c, current.Options)
	if err != nil {
		abortWithError(c, err, &current)
		return
	}
	snap, err := sess.SetOptions(opts)
	if err != nil {
		abortWithError(c, err, &snap)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleSelectImage(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	img, err := s.readUpload(c)
	if err != nil {
		// 画像でなければ生成は呼ばず、状態もそのままなのだ
		snap := sess.Snapshot()
		abortWithError(c, err, &snap)
		return
	}

	ctx, cancel := s.generationContext(c)
	defer cancel()
	snap, err := sess.SelectImage(ctx, img)
	if err != nil {
		abortWithError(c, err, &snap)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleReset(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	snap, err := sess.Reset()
	if err != nil {
		abortWithError(c, err, &snap)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleRegenerateAll(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	ctx, cancel := s.generationContext(c)
	defer cancel()
	snap, err := sess.RegenerateAll(ctx)
	if err != nil {
		abortWithError(c, err, &snap)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// handleRegenerateConcept の :index は 0 始まりなのだ。
func (s *Server) handleRegenerateConcept(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: index must be an integer", errBadRequest), nil)
		return
	}

	ctx, cancel := s.generationContext(c)
	defer cancel()
	snap, regenerated, err := sess.RegenerateConcept(ctx, index)
	if err != nil {
		abortWithError(c, err, &snap)
		return
	}
	c.JSON(http.StatusOK, regenerateConceptResponse{Snapshot: snap, Regenerated: regenerated})
}

// handleGenerate はセッションを使わずに1回だけ生成するのだ。
// オプションはフォームの textOverlayMode / narrationMode / sceneCount で渡すのだ。
func (s *Server) handleGenerate(c *gin.Context) {
	opts, err := formOptions(c, s.defaults)
	if err != nil {
		abortWithError(c, err, nil)
		return
	}
	img, err := s.readUpload(c)
	if err != nil {
		abortWithError(c, err, nil)
		return
	}

	ctx, cancel := s.generationContext(c)
	defer cancel()
	resp, err := s.runner.Run(ctx, img, opts)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %w", errUpstream, err), nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func formOptions(c *gin.Context, base domain.GenerationOptions) (domain.GenerationOptions, error) {
	opts := base
	if v, ok := c.GetPostForm("textOverlayMode"); ok {
		m, err := domain.ParseGenerationMode(v)
		if err != nil {
			return base, err
		}
		opts.TextOverlayMode = m
	}
	if v, ok := c.GetPostForm("narrationMode"); ok {
		m, err := domain.ParseGenerationMode(v)
		if err != nil {
			return base, err
		}
		opts.NarrationMode = m
	}
	if v, ok := c.GetPostForm("sceneCount"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return base, fmt.Errorf("%w: sceneCount %q", domain.ErrInvalidOptions, v)
		}
		opts.SceneCount = n
	}
	if err := opts.Validate(); err != nil {
		return base, err
	}
	return opts, nil
}

func (s *Server) handleSchema(c *gin.Context) {
	kind := c.DefaultQuery("kind", string(generator.KindFull))
	schema, err := generator.JSONSchema(generator.Kind(kind))
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %w", errBadRequest, err), nil)
		return
	}
	c.JSON(http.StatusOK, schema)
}
