package domain

import (
	"errors"
	"fmt"
)

// ConceptsPerAnalysis はフル生成で返されるコンセプトの数です。
const ConceptsPerAnalysis = 3

// ErrConceptIndexOutOfRange は置換対象のインデックスが範囲外のときに返されます。
var ErrConceptIndexOutOfRange = errors.New("concept index out of range")

// Scene は動画ストーリーラインの1ビートです。
type Scene struct {
	Title           string `json:"title" jsonschema_description:"Scene label, e.g., 'Scene 1: The Hook'"`
	Description     string `json:"description" jsonschema_description:"Brief visual description of the action in this scene."`
	TextOverlay     string `json:"textOverlay" jsonschema_description:"Short, punchy text to display on screen (TikTok style). In Indonesian."`
	Narration       string `json:"narration" jsonschema_description:"Voiceover script for this specific scene. In Indonesian."`
	ImageEditPrompt string `json:"imageEditPrompt" jsonschema_description:"Prompt for AI Image Editor to create the base frame for THIS specific scene."`
	VideoGenPrompt  string `json:"videoGenPrompt" jsonschema_description:"Prompt for AI Video Generator to animate THIS specific scene (5-7 seconds)."`
}

// UGCConcept は1つのマーケティング切り口を表す完全なコンセプトです。
type UGCConcept struct {
	Title    string  `json:"title" jsonschema_description:"A catchy title for this creative direction"`
	Strategy string  `json:"strategy" jsonschema_description:"Short explanation of why this angle works."`
	Scenes   []Scene `json:"scenes" jsonschema_description:"A sequence of scenes forming the storyline."`
}

// AnalysisResponse は AI モデルから返されるコンセプト群です。
type AnalysisResponse struct {
	Concepts []UGCConcept `json:"concepts" jsonschema_description:"List of UGC creative concepts based on the product"`
}

// Clone はシーンのスライスまで複製したコンセプトを返します。
func (c UGCConcept) Clone() UGCConcept {
	out := c
	if c.Scenes != nil {
		out.Scenes = make([]Scene, len(c.Scenes))
		copy(out.Scenes, c.Scenes)
	}
	return out
}

// Clone はすべてのコンセプトを複製したレスポンスを返します。
func (r AnalysisResponse) Clone() AnalysisResponse {
	if r.Concepts == nil {
		return AnalysisResponse{}
	}
	out := AnalysisResponse{Concepts: make([]UGCConcept, len(r.Concepts))}
	for i, c := range r.Concepts {
		out.Concepts[i] = c.Clone()
	}
	return out
}

// ReplaceConcept は index の位置だけを concept に差し替えた新しいレスポンスを返します。
// 元のレスポンスは変更されません。
func (r AnalysisResponse) ReplaceConcept(index int, concept UGCConcept) (AnalysisResponse, error) {
	if index < 0 || index >= len(r.Concepts) {
		return r, fmt.Errorf("%w: %d (len=%d)", ErrConceptIndexOutOfRange, index, len(r.Concepts))
	}
	out := r.Clone()
	out.Concepts[index] = concept.Clone()
	return out, nil
}

// CheckSceneCount はすべてのコンセプトが want 個のシーンを持つか検証します。
func (r AnalysisResponse) CheckSceneCount(want int) error {
	for i, c := range r.Concepts {
		if err := c.CheckSceneCount(want); err != nil {
			return fmt.Errorf("concept %d: %w", i, err)
		}
	}
	return nil
}

// CheckSceneCount はシーン数が want と一致するか検証します。
func (c UGCConcept) CheckSceneCount(want int) error {
	if len(c.Scenes) != want {
		return fmt.Errorf("expected %d scenes, got %d", want, len(c.Scenes))
	}
	return nil
}
