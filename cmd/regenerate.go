package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-ugc-kit/internal/pipeline"
)

// newRegenerateCommand は保存済みのコンセプトのうち1つだけを作り直すコマンドなのだ。
func newRegenerateCommand(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "保存済みのコンセプトを1つだけ作り直すのだ。",
		Long: `--concepts で渡した JSON のうち --concept 番目 (1 始まり) だけを新しく生成して差し替えるのだ。
他のコンセプトはそのまま残るのだよ。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state.cfg.Options.Format = resolveFormat(state.cfg.Options.Format, cmd.OutOrStdout())

			appCtx, err := state.appContext(ctx)
			if err != nil {
				return err
			}
			if _, err := pipeline.ExecuteRegenerate(ctx, appCtx, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("再生成中にエラーが発生したのだ: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&state.opts.ImageFile, "image", "i", "", "商品画像のパスなのだ。")
	cmd.Flags().StringVar(&state.opts.ConceptsFile, "concepts", "", "generate で保存したコンセプト JSON のパスなのだ。")
	cmd.Flags().IntVar(&state.opts.ConceptIndex, "concept", 1, "作り直すコンセプトの番号 (1-3) なのだ。")
	addGenerationFlags(cmd, &state.opts)
	addOutputFlags(cmd, &state.opts)
	return cmd
}
