package generator

import (
	"fmt"

	"github.com/invopop/jsonschema"
	"google.golang.org/genai"

	"github.com/shouni/go-ugc-kit/pkg/domain"
)

var sceneFields = []string{"title", "description", "textOverlay", "narration", "imageEditPrompt", "videoGenPrompt"}

func sceneSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":           str("Scene label, e.g., 'Scene 1: The Hook'"),
			"description":     str("Brief visual description of the action in this scene."),
			"textOverlay":     str("Short, punchy text to display on screen (TikTok style). In Indonesian."),
			"narration":       str("Voiceover script for this specific scene. In Indonesian."),
			"imageEditPrompt": str("Prompt for AI Image Editor to create the base frame for THIS specific scene."),
			"videoGenPrompt":  str("Prompt for AI Video Generator to animate THIS specific scene (5-7 seconds)."),
		},
		Required:         sceneFields,
		PropertyOrdering: sceneFields,
	}
}

// ConceptSchema は sceneCount 個のシーンを持つ単体コンセプトのスキーマです。
func ConceptSchema(sceneCount int) *genai.Schema {
	n := int64(sceneCount)
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type:        genai.TypeString,
				Description: "A catchy title for this creative direction",
			},
			"strategy": {
				Type:        genai.TypeString,
				Description: "Short explanation of why this angle works.",
			},
			"scenes": {
				Type:        genai.TypeArray,
				Description: fmt.Sprintf("A sequence of exactly %d scenes forming the storyline.", sceneCount),
				Items:       sceneSchema(),
				MinItems:    genai.Ptr(n),
				MaxItems:    genai.Ptr(n),
			},
		},
		Required:         []string{"title", "strategy", "scenes"},
		PropertyOrdering: []string{"title", "strategy", "scenes"},
	}
}

// AnalysisSchema は3つのコンセプトを包むフル生成のスキーマです。
func AnalysisSchema(sceneCount int) *genai.Schema {
	n := int64(domain.ConceptsPerAnalysis)
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"concepts": {
				Type:        genai.TypeArray,
				Description: "List of UGC creative concepts based on the product",
				Items:       ConceptSchema(sceneCount),
				MinItems:    genai.Ptr(n),
				MaxItems:    genai.Ptr(n),
			},
		},
		Required: []string{"concepts"},
	}
}

// GenerateSchema は構造体タグから JSON Schema を生成します。
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// JSONSchema は公開用の JSON Schema を kind ごとに返します。
func JSONSchema(kind Kind) (*jsonschema.Schema, error) {
	switch kind {
	case KindFull:
		return GenerateSchema[domain.AnalysisResponse](), nil
	case KindSingle:
		return GenerateSchema[domain.UGCConcept](), nil
	default:
		return nil, fmt.Errorf("unknown schema kind %q (want full or single)", kind)
	}
}
