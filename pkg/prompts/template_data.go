package prompts

import (
	_ "embed"
	"fmt"
)

const (
	// ModeFull は3つのコンセプトをまとめて生成するプロンプトです。
	ModeFull = "full"
	// ModeSingle は差し替え用のコンセプトを1つだけ生成するプロンプトです。
	ModeSingle = "single"
)

// システムインストラクションです。
const (
	FullSystemInstruction   = "You are an expert video strategist. You provide full production details including scripts and on-screen text."
	SingleSystemInstruction = "You are an expert video strategist. Generate a single, high-quality video concept."
)

// TemplateData はプロンプトテンプレートに渡すデータ構造です。
type TemplateData struct {
	SceneCount           int
	StructureInstruction string
}

var (
	//go:embed full.md
	FullPrompt string
	//go:embed single.md
	SinglePrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var allTemplates = map[string]string{
	ModeFull:   FullPrompt,
	ModeSingle: SinglePrompt,
}

// SystemInstruction はモードに対応するシステムインストラクションを返します。
func SystemInstruction(mode string) (string, error) {
	switch mode {
	case ModeFull:
		return FullSystemInstruction, nil
	case ModeSingle:
		return SingleSystemInstruction, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, mode)
	}
}

// StructureInstruction はシーン数に応じたストーリー構成の指示を返します。
func StructureInstruction(sceneCount int) string {
	switch sceneCount {
	case 1:
		return "Struktur: Hanya 1 Scene yang sangat kuat dan mencakup Hook + Product + CTA sekaligus."
	case 2:
		return "Struktur: Scene 1 (Hook/Masalah), Scene 2 (Solusi/CTA)."
	case 3:
		return "Struktur: Scene 1 (Hook), Scene 2 (Body/Benefit), Scene 3 (CTA/Climax)."
	default:
		return fmt.Sprintf("Struktur: Buat alur cerita logis dengan %d scene, dimulai dari Hook yang kuat, penjelasan bertahap, dan diakhiri CTA.", sceneCount)
	}
}

// NewTemplateData はシーン数から TemplateData を組み立てます。
func NewTemplateData(sceneCount int) TemplateData {
	return TemplateData{
		SceneCount:           sceneCount,
		StructureInstruction: StructureInstruction(sceneCount),
	}
}
