package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-ugc-kit/pkg/asset"
	"github.com/shouni/go-ugc-kit/pkg/domain"
	"github.com/shouni/go-ugc-kit/pkg/publisher"
	"github.com/shouni/go-ugc-kit/pkg/workflow"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".heic": true,
}

// BatchResult は1枚の画像に対する処理結果なのだ。
type BatchResult struct {
	ImagePath string
	Output    publisher.PublishResult
	Err       error
}

// BatchRunner は複数の商品画像を並列に処理するのだ。
// Gemini への流量制限はジェネレーター側のリミッターで共有されるのだ。
type BatchRunner struct {
	concepts    workflow.ConceptRunner
	publish     workflow.PublishRunner
	maxBytes    int64
	concurrency int
}

// NewBatchRunner は BatchRunner を生成するのだ。
func NewBatchRunner(cr workflow.ConceptRunner, pr workflow.PublishRunner, maxBytes int64, concurrency int) *BatchRunner {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchRunner{
		concepts:    cr,
		publish:     pr,
		maxBytes:    maxBytes,
		concurrency: concurrency,
	}
}

// Run は画像ごとにコンセプトを生成して outputDir に書き出すのだ。
// 1枚が失敗しても残りは続行し、失敗はまとめて返すのだ。
func (br *BatchRunner) Run(ctx context.Context, imagePaths []string, opts domain.GenerationOptions, outputDir string) ([]BatchResult, error) {
	results := make([]BatchResult, len(imagePaths))
	var eg errgroup.Group
	eg.SetLimit(br.concurrency)

	slog.InfoContext(ctx, "バッチ生成を開始するのだ", "count", len(imagePaths), "concurrency", br.concurrency)

	for i, path := range imagePaths {
		eg.Go(func() error {
			results[i] = br.runOne(ctx, path, opts, outputDir, i+1)
			return nil
		})
	}
	_ = eg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.ImagePath, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (br *BatchRunner) runOne(ctx context.Context, path string, opts domain.GenerationOptions, outputDir string, index int) BatchResult {
	result := BatchResult{ImagePath: path}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	img, err := asset.LoadImageFile(path, br.maxBytes)
	if err != nil {
		result.Err = err
		return result
	}

	resp, err := br.concepts.Run(ctx, img, opts)
	if err != nil {
		slog.WarnContext(ctx, "コンセプト生成に失敗したのだ", "image", path, "error", err)
		result.Err = err
		return result
	}

	out, err := br.publish.Run(ctx, resp, outputDir, index)
	if err != nil {
		result.Err = err
		return result
	}
	result.Output = out
	slog.InfoContext(ctx, "コンセプトを保存したのだ", "image", path, "json", out.JSONPath)
	return result
}

// CollectImages はディレクトリ直下の画像ファイルを名前順に返すのだ。
func CollectImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ディレクトリの読み込みに失敗したのだ (%s): %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
