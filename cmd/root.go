package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/shouni/go-ugc-kit/internal/builder"
	"github.com/shouni/go-ugc-kit/internal/config"
	"github.com/shouni/go-ugc-kit/pkg/publisher"
)

const appName = "ugc-kit"

// cliState はフラグの受け皿と、読み込んだ設定を保持するのだ。
type cliState struct {
	configPath string
	logLevel   string
	logFormat  string
	model      string

	opts config.GenerateOptions
	cfg  *config.Config

	// buildOptions はテストで偽の Gemini クライアントを差し込むためのものなのだ。
	buildOptions builder.Options
}

// newRootCommand はサブコマンドをすべて登録したルートコマンドを作るのだ。
func newRootCommand(state *cliState) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "商品画像から UGC 動画のコンセプトを生成するのだ。",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// --- 設定・ログ関連 ---
	rootCmd.PersistentFlags().StringVarP(&state.configPath, "config", "c", "", "TOML 設定ファイルのパスなのだ。")
	rootCmd.PersistentFlags().StringVar(&state.logLevel, "log-level", "", "ログレベル (debug, info, warn, error) なのだ。")
	rootCmd.PersistentFlags().StringVar(&state.logFormat, "log-format", "", "ログ形式 (text, json) なのだ。")
	rootCmd.PersistentFlags().StringVar(&state.model, "model", "", "使用する Gemini モデル名なのだ。")

	rootCmd.AddCommand(
		newGenerateCommand(state),
		newRegenerateCommand(state),
		newBatchCommand(state),
		newSchemaCommand(),
		newServeCommand(state),
	)
	return rootCmd
}

// load は .env / TOML / 環境変数を読み、明示されたフラグで上書きするのだ。
func (s *cliState) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = s.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = s.logFormat
	}
	if flags.Changed("model") {
		cfg.GeminiModel = s.model
	}
	cfg.Options = s.opts

	slog.SetDefault(config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat))
	s.cfg = cfg
	return nil
}

// appContext は Gemini クライアントを含む実行環境を組み立てるのだ。
func (s *cliState) appContext(ctx context.Context) (*builder.AppContext, error) {
	return builder.BuildAppContext(ctx, s.cfg, s.buildOptions)
}

// addGenerationFlags は生成オプション用のフラグを登録するのだ。
// 未指定なら設定ファイルや環境変数のデフォルトを使うのだ。
func addGenerationFlags(cmd *cobra.Command, opts *config.GenerateOptions) {
	cmd.Flags().StringVar(&opts.TextOverlayMode, "text-mode", "", "テキストオーバーレイの扱い (none, manual, merged) なのだ。")
	cmd.Flags().StringVar(&opts.NarrationMode, "narration-mode", "", "ナレーションの扱い (none, manual, merged) なのだ。")
	cmd.Flags().IntVarP(&opts.SceneCount, "scenes", "n", 0, "1コンセプトあたりのシーン数 (1-10) なのだ。")
}

// addOutputFlags は描画形式と保存先のフラグを登録するのだ。
func addOutputFlags(cmd *cobra.Command, opts *config.GenerateOptions) {
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "JSON と Markdown を保存するディレクトリなのだ。空なら保存しないのだ。")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "標準出力の形式 (json, markdown, table) なのだ。端末なら table、それ以外は json が既定なのだ。")
	cmd.Flags().IntVar(&opts.Index, "index", 0, "保存ファイル名に付ける連番なのだ (concepts_2.json など)。")
}

// resolveFormat はフラグが空のとき、出力先が端末かどうかで形式を決めるのだ。
func resolveFormat(flag string, w io.Writer) string {
	if flag != "" {
		return flag
	}
	if isTerminal(w) {
		return string(publisher.FormatTable)
	}
	return string(publisher.FormatJSON)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// Ctrl+C で生成中の呼び出しもキャンセルされるのだ。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(&cliState{}).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "エラー:", err)
		}
		stop()
		os.Exit(1)
	}
}
