package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/shouni/go-ugc-kit/internal/builder"
	"github.com/shouni/go-ugc-kit/internal/config"
	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/publisher"
)

var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// scriptedModels は呼ばれた順に用意した応答を返すのだ。
type scriptedModels struct {
	mu      sync.Mutex
	replies []string
	calls   int
}

func (s *scriptedModels) GenerateContent(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.replies[s.calls%len(s.replies)]
	s.calls++
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}}},
	}, nil
}

func concept(title string, scenes int) domain.UGCConcept {
	c := domain.UGCConcept{Title: title, Strategy: "Problem-solution"}
	for i := range scenes {
		c.Scenes = append(c.Scenes, domain.Scene{
			Title:          fmt.Sprintf("%s-%d", title, i+1),
			TextOverlay:    "Diskon 50%!",
			Narration:      "Cobain deh",
			VideoGenPrompt: "slow push in",
		})
	}
	return c
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func newAppContext(t *testing.T, models *scriptedModels) *builder.AppContext {
	t.Helper()
	cfg := config.Default()
	cfg.RateInterval = time.Millisecond
	appCtx, err := builder.BuildAppContext(context.Background(), cfg, builder.Options{ContentGenerator: models})
	require.NoError(t, err)
	return appCtx
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "product.png")
	require.NoError(t, os.WriteFile(path, tinyPNG, 0o644))
	return path
}

func TestExecuteGenerate(t *testing.T) {
	full := domain.AnalysisResponse{Concepts: []domain.UGCConcept{concept("A", 2), concept("B", 2), concept("C", 2)}}
	appCtx := newAppContext(t, &scriptedModels{replies: []string{toJSON(t, full)}})

	out := t.TempDir()
	appCtx.Config.Options = config.GenerateOptions{
		ImageFile:       writeImage(t),
		OutputDir:       out,
		Format:          "json",
		TextOverlayMode: "merged",
		NarrationMode:   "merged",
		SceneCount:      2,
	}

	var buf bytes.Buffer
	resp, err := ExecuteGenerate(context.Background(), appCtx, &buf)
	require.NoError(t, err)

	require.Len(t, resp.Concepts, 3)
	assert.Equal(t, `slow push in -- Text Overlay to display: "Diskon 50%!" -- Audio/Narration context: "Cobain deh"`, resp.Concepts[0].Scenes[0].VideoGenPrompt)
	assert.Equal(t, "Cobain deh", resp.Concepts[0].Scenes[0].Narration, "merged でも元の値は残すのだ")
	assert.Contains(t, buf.String(), `"concepts"`)
	assert.FileExists(t, filepath.Join(out, "concepts.json"))
	assert.FileExists(t, filepath.Join(out, "concepts.md"))
}

func TestExecuteGenerate_MissingImage(t *testing.T) {
	appCtx := newAppContext(t, &scriptedModels{replies: []string{"{}"}})
	_, err := ExecuteGenerate(context.Background(), appCtx, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestExecuteRegenerate(t *testing.T) {
	current := domain.AnalysisResponse{Concepts: []domain.UGCConcept{concept("A", 3), concept("B", 3), concept("C", 3)}}
	data, err := publisher.BuildJSON(current)
	require.NoError(t, err)
	conceptsFile := filepath.Join(t.TempDir(), "concepts.json")
	require.NoError(t, os.WriteFile(conceptsFile, data, 0o644))

	models := &scriptedModels{replies: []string{toJSON(t, concept("Z", 3))}}
	appCtx := newAppContext(t, models)
	appCtx.Config.Options = config.GenerateOptions{
		ImageFile:    writeImage(t),
		ConceptsFile: conceptsFile,
		ConceptIndex: 2,
		Format:       "markdown",
	}

	var buf bytes.Buffer
	updated, err := ExecuteRegenerate(context.Background(), appCtx, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, models.calls)
	assert.Equal(t, "A", updated.Concepts[0].Title)
	assert.Equal(t, "Z", updated.Concepts[1].Title)
	assert.Equal(t, "C", updated.Concepts[2].Title)
	assert.Contains(t, buf.String(), "Z")

	appCtx.Config.Options.ConceptIndex = 4
	_, err = ExecuteRegenerate(context.Background(), appCtx, &buf)
	assert.ErrorIs(t, err, domain.ErrConceptIndexOutOfRange)
	assert.Equal(t, 1, models.calls, "範囲外なら呼び出さないのだ")
}

func TestExecuteBatch(t *testing.T) {
	full := domain.AnalysisResponse{Concepts: []domain.UGCConcept{concept("A", 3), concept("B", 3), concept("C", 3)}}
	appCtx := newAppContext(t, &scriptedModels{replies: []string{toJSON(t, full)}})

	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "one.png"), tinyPNG, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "two.png"), tinyPNG, 0o644))
	out := t.TempDir()
	appCtx.Config.Options = config.GenerateOptions{InputDir: in, OutputDir: out, Concurrency: 2}

	results, err := ExecuteBatch(context.Background(), appCtx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.FileExists(t, filepath.Join(out, "concepts_1.json"))
	assert.FileExists(t, filepath.Join(out, "concepts_2.json"))

	appCtx.Config.Options.InputDir = t.TempDir()
	_, err = ExecuteBatch(context.Background(), appCtx)
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestExecuteSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExecuteSchema(&buf, ""))
	assert.Contains(t, buf.String(), `"concepts"`)

	buf.Reset()
	require.NoError(t, ExecuteSchema(&buf, "single"))
	assert.Contains(t, buf.String(), `"scenes"`)

	assert.Error(t, ExecuteSchema(&buf, "triple"))
}
