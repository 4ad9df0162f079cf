package runner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/generator"
	"github.com/shouni/go-ugc-kit/pkg/prompts"
	"github.com/shouni/go-ugc-kit/pkg/publisher"
)

type stubGenerator struct {
	full    domain.AnalysisResponse
	single  domain.UGCConcept
	err     error
	lastReq generator.Request
}

func (s *stubGenerator) GenerateFull(_ context.Context, req generator.Request) (domain.AnalysisResponse, error) {
	s.lastReq = req
	return s.full.Clone(), s.err
}

func (s *stubGenerator) GenerateSingle(_ context.Context, req generator.Request) (domain.UGCConcept, error) {
	s.lastReq = req
	return s.single.Clone(), s.err
}

func scene() domain.Scene {
	return domain.Scene{Title: "S", TextOverlay: "Diskon 50%", Narration: "Buruan", VideoGenPrompt: "orbit shot"}
}

func newRunner(t *testing.T, g generator.ConceptGenerator) *ConceptRunner {
	t.Helper()
	pb, err := prompts.NewConceptPromptBuilder()
	require.NoError(t, err)
	return NewConceptRunner(generator.NewRequestBuilder(pb), g)
}

var img = domain.UploadedImage{Base64: "aGVsbG8=", MimeType: "image/png"}

func TestConceptRunner_Run(t *testing.T) {
	c := domain.UGCConcept{Title: "A", Scenes: []domain.Scene{scene()}}
	stub := &stubGenerator{full: domain.AnalysisResponse{Concepts: []domain.UGCConcept{c, c, c}}}
	r := newRunner(t, stub)

	opts := domain.GenerationOptions{TextOverlayMode: domain.ModeMerged, NarrationMode: domain.ModeNone, SceneCount: 1}
	got, err := r.Run(context.Background(), img, opts)
	require.NoError(t, err)

	assert.Equal(t, generator.KindFull, stub.lastReq.Kind)
	for _, concept := range got.Concepts {
		s := concept.Scenes[0]
		assert.Empty(t, s.Narration)
		assert.Equal(t, "Diskon 50%", s.TextOverlay)
		assert.Equal(t, 1, strings.Count(s.VideoGenPrompt, "Text Overlay to display"))
	}
}

func TestConceptRunner_RunSingle(t *testing.T) {
	stub := &stubGenerator{single: domain.UGCConcept{Title: "Fresh", Scenes: []domain.Scene{scene(), scene()}}}
	r := newRunner(t, stub)

	opts := domain.GenerationOptions{TextOverlayMode: domain.ModeNone, NarrationMode: domain.ModeMerged, SceneCount: 2}
	got, err := r.RunSingle(context.Background(), img, opts)
	require.NoError(t, err)

	assert.Equal(t, generator.KindSingle, stub.lastReq.Kind)
	for _, s := range got.Scenes {
		assert.Empty(t, s.TextOverlay)
		assert.Equal(t, `orbit shot -- Audio/Narration context: "Buruan"`, s.VideoGenPrompt)
	}
}

func TestConceptRunner_Errors(t *testing.T) {
	cause := generator.ErrNoResponse
	r := newRunner(t, &stubGenerator{err: cause})

	_, err := r.Run(context.Background(), img, domain.DefaultGenerationOptions())
	assert.True(t, errors.Is(err, cause))

	_, err = r.RunSingle(context.Background(), img, domain.GenerationOptions{SceneCount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidOptions)
}

func TestDefaultPublisherRunner(t *testing.T) {
	dir := t.TempDir()
	pr := NewDefaultPublisherRunner(publisher.NewConceptPublisher(nil))
	resp := domain.AnalysisResponse{Concepts: []domain.UGCConcept{{Title: "A", Scenes: []domain.Scene{scene()}}}}

	res, err := pr.Run(context.Background(), resp, dir, 0)
	require.NoError(t, err)
	assert.FileExists(t, res.JSONPath)
	assert.FileExists(t, res.MarkdownPath)
	assert.Contains(t, pr.BuildMarkdown(resp), "Concept 1: A")
}
