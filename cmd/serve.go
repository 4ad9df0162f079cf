package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-ugc-kit/internal/server"
)

// newServeCommand はスタジオ API を HTTP で公開するコマンドなのだ。
func newServeCommand(state *cliState) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "スタジオ API サーバーを起動するのだ。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("addr") {
				state.cfg.Server.Addr = addr
			}

			appCtx, err := state.appContext(ctx)
			if err != nil {
				return err
			}

			srv := server.New(state.cfg.Server, appCtx.Manager.DefaultOptions(), appCtx.ConceptRunner, appCtx.Metrics, slog.Default())
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "待ち受けアドレスなのだ (既定は :8080)。")
	return cmd
}
