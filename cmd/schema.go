package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shouni/go-ugc-kit/internal/pipeline"
)

func newSchemaCommand() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "レスポンスの JSON Schema を出力するのだ。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pipeline.ExecuteSchema(cmd.OutOrStdout(), kind)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "full", "full (3コンセプト) または single (1コンセプト) なのだ。")
	return cmd
}
