package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-ugc-kit/internal/pipeline"
)

// newGenerateCommand は商品画像1枚から3つのコンセプトを生成するコマンドなのだ。
func newGenerateCommand(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "商品画像から UGC 動画のコンセプトを3つ生成するのだ。",
		Long: `商品画像を Gemini に渡して、3つの切り口のコンセプトを生成するのだ。
各コンセプトはシーンごとにテキストオーバーレイ・ナレーション・画像編集プロンプト・動画プロンプトを持つのだよ。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state.cfg.Options.Format = resolveFormat(state.cfg.Options.Format, cmd.OutOrStdout())

			appCtx, err := state.appContext(ctx)
			if err != nil {
				return err
			}

			slog.Info("コンセプト生成を開始するのだ！",
				"image", state.cfg.Options.ImageFile,
				"model", state.cfg.GeminiModel,
				"output", state.cfg.Options.OutputDir)

			if _, err := pipeline.ExecuteGenerate(ctx, appCtx, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("生成中にエラーが発生したのだ: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&state.opts.ImageFile, "image", "i", "", "商品画像のパスなのだ。")
	addGenerationFlags(cmd, &state.opts)
	addOutputFlags(cmd, &state.opts)
	return cmd
}
