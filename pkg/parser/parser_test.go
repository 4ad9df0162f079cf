package parser

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-ugc-kit/pkg/domain"
)

const conceptJSON = `{"title":"ASMR Pagi","strategy":"suara renyah","scenes":[{"title":"Scene 1","description":"d","textOverlay":"Dengerin ini","narration":"Shh","imageEditPrompt":"macro","videoGenPrompt":"slow"}]}`

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"素のJSONなのだ", conceptJSON, conceptJSON},
		{"コードフェンス付きなのだ", "```json\n" + conceptJSON + "\n```", conceptJSON},
		{"言語指定なしのフェンスなのだ", "```\n" + conceptJSON + "\n```", conceptJSON},
		{"前後に説明文があるのだ", "Here you go:\n" + conceptJSON + "\nEnjoy!", conceptJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.raw))
		})
	}
}

func TestParseConcept(t *testing.T) {
	c, err := ParseConcept("```json\n" + conceptJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "ASMR Pagi", c.Title)
	require.Len(t, c.Scenes, 1)
	assert.Equal(t, "Dengerin ini", c.Scenes[0].TextOverlay)
}

func TestParseConcept_FenceInsideValue(t *testing.T) {
	want := domain.UGCConcept{
		Title:  "Tutorial",
		Scenes: []domain.Scene{{Title: "Scene 1", Narration: "Pakai ```json kode``` ini"}},
	}
	data, err := json.Marshal(want)
	require.NoError(t, err)

	got, err := ParseConcept(string(data))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// 説明文付きでも値の中のフェンスは壊さないのだ
	got, err = ParseConcept("Here you go:\n" + string(data))
	require.NoError(t, err)
	assert.Equal(t, "Pakai ```json kode``` ini", got.Scenes[0].Narration)
}

func TestParseAnalysis_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json at all", `{"concepts": [`} {
		_, err := ParseAnalysis(raw)
		assert.ErrorIs(t, err, ErrInvalidJSON, "raw=%q", raw)
	}
}

func TestParseAnalysis_TruncatesLongExcerpt(t *testing.T) {
	raw := "{" + strings.Repeat("x", 1000)
	_, err := ParseAnalysis(raw)
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 700)
}

func TestTruncateString_KeepsRunes(t *testing.T) {
	s := strings.Repeat("あ", 100)
	got := truncateString(s, 200)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("あ", 66)+"...", got)
	assert.Equal(t, "abc", truncateString("abc", 200))
}

func TestParseAnalysisFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concepts.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"concepts":[`+conceptJSON+`]}`), 0o644))

	resp, err := ParseAnalysisFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, resp.Concepts, 1)

	_, err = ParseAnalysisFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
