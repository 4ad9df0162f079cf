package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/go-ugc-kit/pkg/asset"
	"github.com/shouni/go-ugc-kit/pkg/domain"
)

// Format は出力形式です。
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
)

// ParseFormat は文字列から Format を解析します。
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatMarkdown, FormatTable:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("不明な出力形式です: '%s' (json, markdown, table)", s)
	}
}

// OutputWriter はデータを保存先に書き出すためのインターフェースです。
type OutputWriter interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// LocalWriter はローカルファイルシステムへ書き出す OutputWriter です。
type LocalWriter struct{}

// Write は親ディレクトリを作成してからファイルを書き出します。
func (LocalWriter) Write(_ context.Context, path string, r io.Reader, _ string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ディレクトリの作成に失敗しました: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ファイルの作成に失敗しました (%s): %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("ファイルの書き込みに失敗しました (%s): %w", path, err)
	}
	return f.Close()
}

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir string
	// Index が 1 以上のとき、ファイル名に連番を付けます (concepts_2.json 等)。
	Index int
}

// PublishResult はパブリッシュ処理の結果として生成されたファイルの情報を保持します。
type PublishResult struct {
	JSONPath     string
	MarkdownPath string
}

// ConceptPublisher は成果物の永続化とフォーマット変換を担います。
type ConceptPublisher struct {
	writer OutputWriter
}

// NewConceptPublisher は ConceptPublisher を生成します。writer が nil の場合はローカルに書き出します。
func NewConceptPublisher(writer OutputWriter) *ConceptPublisher {
	if writer == nil {
		writer = LocalWriter{}
	}
	return &ConceptPublisher{writer: writer}
}

// Publish は JSON と Markdown を出力ディレクトリに書き出します。
func (p *ConceptPublisher) Publish(ctx context.Context, resp domain.AnalysisResponse, opts Options) (PublishResult, error) {
	var result PublishResult

	jsonPath, err := p.resolve(opts, asset.DefaultConceptsJSON)
	if err != nil {
		return result, err
	}
	mdPath, err := p.resolve(opts, asset.DefaultConceptsMarkdown)
	if err != nil {
		return result, err
	}

	data, err := BuildJSON(resp)
	if err != nil {
		return result, err
	}
	if err := p.writer.Write(ctx, jsonPath, bytes.NewReader(data), "application/json"); err != nil {
		return result, fmt.Errorf("JSONファイルの書き込みに失敗しました: %w", err)
	}
	result.JSONPath = jsonPath

	md := BuildMarkdown(resp)
	if err := p.writer.Write(ctx, mdPath, strings.NewReader(md), "text/markdown; charset=utf-8"); err != nil {
		return result, fmt.Errorf("markdownファイルの書き込みに失敗しました: %w", err)
	}
	result.MarkdownPath = mdPath

	slog.InfoContext(ctx, "コンセプトを書き出しました", "json", jsonPath, "markdown", mdPath)
	return result, nil
}

func (p *ConceptPublisher) resolve(opts Options, fileName string) (string, error) {
	path, err := asset.ResolveOutputPath(opts.OutputDir, fileName)
	if err != nil {
		return "", fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}
	if opts.Index > 0 {
		return asset.GenerateIndexedPath(path, opts.Index)
	}
	return path, nil
}

// BuildJSON はインデント付きの JSON を返します。
func BuildJSON(resp domain.AnalysisResponse) ([]byte, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("JSONへの変換に失敗しました: %w", err)
	}
	return append(data, '\n'), nil
}

// Render は指定形式で w に書き出します。
func Render(w io.Writer, resp domain.AnalysisResponse, format Format) error {
	var out []byte
	switch format {
	case FormatJSON:
		data, err := BuildJSON(resp)
		if err != nil {
			return err
		}
		out = data
	case FormatMarkdown:
		out = []byte(BuildMarkdown(resp))
	case FormatTable:
		out = []byte(RenderTable(resp) + "\n")
	default:
		return fmt.Errorf("不明な出力形式です: '%s'", format)
	}
	_, err := w.Write(out)
	return err
}
