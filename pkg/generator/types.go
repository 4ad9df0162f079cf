package generator

import (
	"errors"

	"google.golang.org/genai"

	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/prompts"
)

const (
	// DefaultModel はコンセプト生成に使う Gemini モデルです。
	DefaultModel = "gemini-3-flash-preview"
	// ResponseMIMEType は構造化出力の MIME タイプです。
	ResponseMIMEType = "application/json"
)

// Kind はリクエストの種類（フル生成 / 単体生成）です。
type Kind string

const (
	KindFull   Kind = prompts.ModeFull
	KindSingle Kind = prompts.ModeSingle
)

var (
	// ErrNoResponse はサービスが空のテキストを返したときに返されます。
	ErrNoResponse = errors.New("no response")
	// ErrMalformedResponse は応答がスキーマに沿った JSON として解釈できないときに返されます。
	ErrMalformedResponse = errors.New("malformed response")
)

// Request は1回の生成呼び出しに必要なすべての材料です。
type Request struct {
	Kind              Kind
	Prompt            string
	SystemInstruction string
	SceneCount        int
	Image             domain.UploadedImage
	imageData         []byte
	Schema            *genai.Schema
}

// Contents は画像とプロンプトを1つのユーザーターンにまとめます。
func (r Request) Contents() []*genai.Content {
	parts := []*genai.Part{
		genai.NewPartFromBytes(r.imageData, r.Image.MimeType),
		genai.NewPartFromText(r.Prompt),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// Config は構造化出力の設定を返します。temperature が nil の場合はモデルのデフォルトを使います。
func (r Request) Config(temperature *float32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(r.SystemInstruction, genai.RoleUser),
		ResponseMIMEType:  ResponseMIMEType,
		ResponseSchema:    r.Schema,
		Temperature:       temperature,
	}
}
