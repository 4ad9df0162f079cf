package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-ugc-kit/pkg/domain"
)

func sample() domain.AnalysisResponse {
	return domain.AnalysisResponse{Concepts: []domain.UGCConcept{
		{
			Title:    "Pagi Estetik",
			Strategy: "Visual lembut untuk audiens lifestyle",
			Scenes: []domain.Scene{
				{Title: "Scene 1: The Hook", Description: "Close-up", TextOverlay: "Rahasia glowing", Narration: "Kamu wajib tahu", ImageEditPrompt: "marble table", VideoGenPrompt: "slow dolly in"},
				{Title: "Scene 2: CTA", TextOverlay: "", Narration: "Checkout sekarang", ImageEditPrompt: "hand holding", VideoGenPrompt: "zoom out"},
			},
		},
	}}
}

type memoryWriter struct {
	files map[string]string
}

func (m *memoryWriter) Write(_ context.Context, path string, r io.Reader, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.files == nil {
		m.files = map[string]string{}
	}
	m.files[path] = string(b)
	return nil
}

func TestBuildMarkdown(t *testing.T) {
	md := BuildMarkdown(sample())

	assert.Contains(t, md, "## Concept 1: Pagi Estetik")
	assert.Contains(t, md, "### Scene 1: The Hook")
	assert.Contains(t, md, "```\nRahasia glowing\n```")
	assert.Contains(t, md, "slow dolly in")
	// 空のテキストオーバーレイは出力しないのだ
	assert.Equal(t, 1, strings.Count(md, "**Text Overlay**"))
}

func TestBuildMarkdown_BacktickValue(t *testing.T) {
	resp := domain.AnalysisResponse{Concepts: []domain.UGCConcept{{
		Title:  "Tutorial",
		Scenes: []domain.Scene{{Title: "S1", Narration: "Pakai ```json kode``` ini"}},
	}}}

	md := BuildMarkdown(resp)
	assert.Contains(t, md, "````\nPakai ```json kode``` ini\n````")

	assert.Equal(t, "```", codeFence("biasa"))
	assert.Equal(t, "`````", codeFence("a ```` b ` c"))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(sample())
	assert.Contains(t, out, "Pagi Estetik")
	assert.Contains(t, out, "Video Prompt")
	assert.Empty(t, RenderTable(domain.AnalysisResponse{}))
}

func TestRender(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatMarkdown, FormatTable} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, sample(), f))
			assert.Contains(t, buf.String(), "Pagi Estetik")
		})
	}

	var buf bytes.Buffer
	assert.Error(t, Render(&buf, sample(), "xml"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("MD")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestConceptPublisher_Publish(t *testing.T) {
	w := &memoryWriter{}
	pub := NewConceptPublisher(w)

	res, err := pub.Publish(context.Background(), sample(), Options{OutputDir: "out"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "concepts.json"), res.JSONPath)
	assert.Equal(t, filepath.Join("out", "concepts.md"), res.MarkdownPath)

	var decoded domain.AnalysisResponse
	require.NoError(t, json.Unmarshal([]byte(w.files[res.JSONPath]), &decoded))
	assert.Equal(t, sample(), decoded)
	assert.Contains(t, w.files[res.MarkdownPath], "Pagi Estetik")
}

func TestConceptPublisher_IndexedAndLocal(t *testing.T) {
	dir := t.TempDir()
	pub := NewConceptPublisher(nil)

	res, err := pub.Publish(context.Background(), sample(), Options{OutputDir: dir, Index: 2})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "concepts_2.json"), res.JSONPath)

	data, err := os.ReadFile(res.JSONPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Pagi Estetik")
}
