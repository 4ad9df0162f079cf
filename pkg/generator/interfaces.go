package generator

import (
	"context"
	"time"

	"google.golang.org/genai"

	"github.com/shouni/go-ugc-kit/pkg/domain"
)

// ContentGenerator は Gemini の generateContent 呼び出しを抽象化します。
// *genai.Models がこのインターフェースを満たします。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ConceptGenerator はリクエストを実行してドメイン型を返します。
type ConceptGenerator interface {
	GenerateFull(ctx context.Context, req Request) (domain.AnalysisResponse, error)
	GenerateSingle(ctx context.Context, req Request) (domain.UGCConcept, error)
}

// CallObserver は外部呼び出しの結果を受け取ります。メトリクス収集に使います。
type CallObserver interface {
	ObserveCall(kind string, elapsed time.Duration, err error)
}
