package asset

import (
	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultConceptsJSON は生成されたコンセプトのデフォルト JSON ファイル名です。
	DefaultConceptsJSON = "concepts.json"
	// DefaultConceptsMarkdown は生成されたコンセプトのデフォルト Markdown ファイル名です。
	DefaultConceptsMarkdown = "concepts.md"
)

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolvePath(baseDir, fileName)
}

// GenerateIndexedPath は、指定されたベースパスの拡張子の前に連番を挿入します。
// 例: "out/concepts.json", 2 -> "out/concepts_2.json"
func GenerateIndexedPath(basePath string, index int) (string, error) {
	return urlpath.GenerateIndexedPath(basePath, index)
}
