package generator

import (
	"fmt"

	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/prompts"
)

// RequestBuilder は画像とオプションから生成リクエストを組み立てます。
type RequestBuilder struct {
	prompts prompts.PromptBuilder
}

// NewRequestBuilder は RequestBuilder を初期化します。
func NewRequestBuilder(pb prompts.PromptBuilder) *RequestBuilder {
	return &RequestBuilder{prompts: pb}
}

// BuildFullRequest は3コンセプト分のリクエストを組み立てます。
func (b *RequestBuilder) BuildFullRequest(image domain.UploadedImage, opts domain.GenerationOptions) (Request, error) {
	return b.build(KindFull, image, opts)
}

// BuildSingleRequest は差し替え用の単体コンセプトのリクエストを組み立てます。
func (b *RequestBuilder) BuildSingleRequest(image domain.UploadedImage, opts domain.GenerationOptions) (Request, error) {
	return b.build(KindSingle, image, opts)
}

func (b *RequestBuilder) build(kind Kind, image domain.UploadedImage, opts domain.GenerationOptions) (Request, error) {
	if err := opts.Validate(); err != nil {
		return Request{}, err
	}
	if image.MimeType == "" {
		return Request{}, fmt.Errorf("画像の MIME タイプが空です")
	}
	data, err := image.Bytes()
	if err != nil {
		return Request{}, err
	}
	if len(data) == 0 {
		return Request{}, fmt.Errorf("画像データが空です")
	}

	prompt, err := b.prompts.Build(string(kind), prompts.NewTemplateData(opts.SceneCount))
	if err != nil {
		return Request{}, fmt.Errorf("プロンプトの構築に失敗しました: %w", err)
	}
	system, err := prompts.SystemInstruction(string(kind))
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Kind:              kind,
		Prompt:            prompt,
		SystemInstruction: system,
		SceneCount:        opts.SceneCount,
		Image:             image,
		imageData:         data,
	}
	if kind == KindFull {
		req.Schema = AnalysisSchema(opts.SceneCount)
	} else {
		req.Schema = ConceptSchema(opts.SceneCount)
	}
	return req, nil
}
