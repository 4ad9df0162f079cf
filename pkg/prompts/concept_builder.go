package prompts

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// ErrUnknownKind は full / single 以外の生成種別が指定されたときに返されます。
var ErrUnknownKind = errors.New("unknown prompt kind")

// PromptBuilder は生成種別とシーン数から Gemini に渡すユーザープロンプトを組み立てます。
type PromptBuilder interface {
	Build(kind string, data TemplateData) (string, error)
}

// ConceptPromptBuilder は埋め込みのコンセプト用テンプレートを種別ごとに保持します。
type ConceptPromptBuilder struct {
	byKind map[string]*template.Template
}

// NewConceptPromptBuilder は埋め込みテンプレートをすべて解析します。
// 未定義のキーを参照するテンプレートは実行時にエラーになります。
func NewConceptPromptBuilder() (*ConceptPromptBuilder, error) {
	byKind := make(map[string]*template.Template, len(allTemplates))
	for kind, body := range allTemplates {
		if strings.TrimSpace(body) == "" {
			return nil, fmt.Errorf("%s 用のコンセプトテンプレートが埋め込まれていません", kind)
		}
		tmpl, err := template.New(kind).Option("missingkey=error").Parse(body)
		if err != nil {
			return nil, fmt.Errorf("%s 用のコンセプトテンプレートを解析できません: %w", kind, err)
		}
		byKind[kind] = tmpl
	}
	return &ConceptPromptBuilder{byKind: byKind}, nil
}

// Build は種別に対応するテンプレートにシーン数と構成指示を埋め込みます。
func (b *ConceptPromptBuilder) Build(kind string, data TemplateData) (string, error) {
	tmpl, ok := b.byKind[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if data.SceneCount < 1 {
		return "", fmt.Errorf("シーン数が不正です: %d", data.SceneCount)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("%s 用のコンセプトプロンプトを生成できません: %w", kind, err)
	}
	return strings.TrimSpace(sb.String()), nil
}
