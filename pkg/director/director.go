package director

import (
	"fmt"
	"strings"

	"github.com/shouni/go-ugc-kit/pkg/domain"
)

const (
	// ClauseSeparator は動画プロンプトに追記する句同士の区切りです。
	ClauseSeparator = " -- "

	textOverlayClause = `Text Overlay to display: "%s"`
	narrationClause   = `Audio/Narration context: "%s"`
)

// ApplyOptions は生成モードに従ってコンセプトの全シーンを加工した新しいコンセプトを返します。
// 入力は変更しません。merged モードで同じ出力に再適用すると句が重複するため、
// 取得直後のコンセプトに一度だけ適用してください。
func ApplyOptions(concept domain.UGCConcept, opts domain.GenerationOptions) domain.UGCConcept {
	out := concept.Clone()
	for i := range out.Scenes {
		out.Scenes[i] = applyScene(out.Scenes[i], opts)
	}
	return out
}

// ApplyResponse はレスポンス内のすべてのコンセプトに ApplyOptions を適用します。
func ApplyResponse(resp domain.AnalysisResponse, opts domain.GenerationOptions) domain.AnalysisResponse {
	if resp.Concepts == nil {
		return domain.AnalysisResponse{}
	}
	out := domain.AnalysisResponse{Concepts: make([]domain.UGCConcept, len(resp.Concepts))}
	for i, c := range resp.Concepts {
		out.Concepts[i] = ApplyOptions(c, opts)
	}
	return out
}

func applyScene(scene domain.Scene, opts domain.GenerationOptions) domain.Scene {
	var additions []string

	switch opts.TextOverlayMode {
	case domain.ModeMerged:
		if scene.TextOverlay != "" {
			additions = append(additions, fmt.Sprintf(textOverlayClause, scene.TextOverlay))
		}
	case domain.ModeNone:
		scene.TextOverlay = ""
	}

	switch opts.NarrationMode {
	case domain.ModeMerged:
		if scene.Narration != "" {
			additions = append(additions, fmt.Sprintf(narrationClause, scene.Narration))
		}
	case domain.ModeNone:
		scene.Narration = ""
	}

	if len(additions) > 0 {
		scene.VideoGenPrompt += ClauseSeparator + strings.Join(additions, ClauseSeparator)
	}
	return scene
}
