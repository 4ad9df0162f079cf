package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/shouni/go-ugc-kit/internal/config"
	"github.com/shouni/go-ugc-kit/internal/pipeline"
	"github.com/shouni/go-ugc-kit/internal/runner"
)

// newBatchCommand はディレクトリ内の商品画像をまとめて処理するコマンドなのだ。
func newBatchCommand(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "ディレクトリ内の商品画像をまとめて処理するのだ。",
		Long: `--input-dir 直下の画像ごとにコンセプトを生成して、concepts_N.json / concepts_N.md として保存するのだ。
1枚が失敗しても残りは続けるのだよ。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			appCtx, err := state.appContext(ctx)
			if err != nil {
				return err
			}

			results, err := pipeline.ExecuteBatch(ctx, appCtx)
			if len(results) > 0 {
				renderBatchSummary(cmd.OutOrStdout(), results)
			}
			if err != nil {
				return fmt.Errorf("バッチ処理でエラーが発生したのだ: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&state.opts.InputDir, "input-dir", "", "商品画像が入っているディレクトリなのだ。")
	cmd.Flags().StringVarP(&state.opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "結果を保存するディレクトリなのだ。")
	cmd.Flags().IntVar(&state.opts.Concurrency, "concurrency", config.DefaultConcurrency, "同時に処理する画像の数なのだ。")
	addGenerationFlags(cmd, &state.opts)
	return cmd
}

func renderBatchSummary(w io.Writer, results []runner.BatchResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Image", "Result"})
	for i, r := range results {
		status := r.Output.JSONPath
		if r.Err != nil {
			status = "FAILED: " + r.Err.Error()
		}
		tw.AppendRow(table.Row{i + 1, r.ImagePath, status})
	}
	tw.Render()
}
