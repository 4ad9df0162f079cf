package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/shouni/go-ugc-kit/pkg/domain"
)

// ErrInvalidJSON は応答テキストから JSON を解析できなかったときに返されます。
var ErrInvalidJSON = errors.New("invalid JSON payload")

// ExtractJSON は AI の応答テキストから JSON 部分を取り出します。
// 応答全体、コードフェンスの中身、最も外側のオブジェクトの順に試し、
// 最初に JSON として妥当だったものを返します。値の中にフェンスが含まれていても壊しません。
func ExtractJSON(raw string) string {
	candidates := jsonCandidates(raw)
	for _, c := range candidates {
		if json.Valid([]byte(c)) {
			return c
		}
	}
	// どれも妥当でなければ、エラー表示用に最も絞り込んだ候補を返す
	return candidates[len(candidates)-1]
}

func jsonCandidates(raw string) []string {
	raw = strings.TrimSpace(raw)
	candidates := []string{raw}

	if matches := jsonBlockRegex.FindStringSubmatch(raw); len(matches) > 1 {
		candidates = append(candidates, matches[1])
	}

	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first != -1 && last > first {
		candidates = append(candidates, raw[first:last+1])
	}
	return candidates
}

// ParseAnalysis は応答テキストを AnalysisResponse に変換します。
func ParseAnalysis(raw string) (domain.AnalysisResponse, error) {
	var resp domain.AnalysisResponse
	if err := decode(raw, &resp); err != nil {
		return domain.AnalysisResponse{}, err
	}
	return resp, nil
}

// ParseConcept は応答テキストを単体の UGCConcept に変換します。
func ParseConcept(raw string) (domain.UGCConcept, error) {
	var concept domain.UGCConcept
	if err := decode(raw, &concept); err != nil {
		return domain.UGCConcept{}, err
	}
	return concept, nil
}

// ParseAnalysisFile は保存済みのコンセプト JSON を読み込みます。
func ParseAnalysisFile(ctx context.Context, path string) (domain.AnalysisResponse, error) {
	slog.InfoContext(ctx, "コンセプトファイルを読み込んでいます", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.AnalysisResponse{}, fmt.Errorf("コンセプトファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	return ParseAnalysis(string(data))
}

func decode(raw string, v any) error {
	rawJSON := ExtractJSON(raw)
	if rawJSON == "" {
		return fmt.Errorf("%w: empty payload", ErrInvalidJSON)
	}
	if err := json.Unmarshal([]byte(rawJSON), v); err != nil {
		return fmt.Errorf("%w: AIからの応答に含まれるJSONの解析に失敗しました (応答抜粋: %q): %v", ErrInvalidJSON, truncateString(raw, 200), err)
	}
	return nil
}

// truncateString は maxLen バイト以内に収まるよう、文字の途中で切らずに切り詰めます。
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
