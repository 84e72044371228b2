// Package main はスマートライティングのサイトサーバーコマンドの実装です
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"smartlighting/internal/config"
	"smartlighting/internal/logging"
	"smartlighting/internal/server"
)

type serverOptions struct {
	configFile  string
	port        int
	templateDir string
	staticDir   string
	embedded    bool
	logLevel    string
}

func newServerCommand() *cobra.Command {
	opts := &serverOptions{}

	cmd := &cobra.Command{
		Use:           "server [OPTIONS]",
		Short:         "テンプレートと静的アセットを配信するHTTPサーバー",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), cmd.Flags(), opts)
		},
	}

	installFlags(cmd.Flags(), opts)

	return cmd
}

// installFlags はコマンドラインオプションを登録する
func installFlags(flags *pflag.FlagSet, opts *serverOptions) {
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML設定ファイル (デフォルト: $CONFIG_FILE)")
	flags.IntVarP(&opts.port, "port", "p", 0, "サーバーのポート (デフォルト: $PORT または 5000)")
	flags.StringVar(&opts.templateDir, "template-dir", "", "テンプレートディレクトリ")
	flags.StringVar(&opts.staticDir, "static-dir", "", "静的アセットディレクトリ")
	flags.BoolVar(&opts.embedded, "embedded", false, "バイナリ埋め込みのサイトを配信する")
	flags.StringVar(&opts.logLevel, "log-level", "", "ログレベル (debug, info, warn, error)")
}

// buildConfig は設定を読み込み、指定されたオプションで上書きする
func buildConfig(flags *pflag.FlagSet, opts *serverOptions) (*config.Config, error) {
	// .env ファイルを読み込む (存在しない場合は無視)
	_ = godotenv.Load()

	path := opts.configFile
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}

	// コマンドラインオプションで設定を上書き
	if flags.Changed("port") {
		cfg.Server.Port = opts.port
	}
	if flags.Changed("template-dir") {
		cfg.Site.TemplateDir = opts.templateDir
	}
	if flags.Changed("static-dir") {
		cfg.Site.StaticDir = opts.staticDir
	}
	if flags.Changed("embedded") {
		cfg.Site.Embedded = opts.embedded
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

func runServer(ctx context.Context, flags *pflag.FlagSet, opts *serverOptions) error {
	cfg, err := buildConfig(flags, opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	server.SetMode(logger)

	srv := server.New(cfg, logger)

	logger.WithField("addr", cfg.ServerAddress()).Info("サイトサーバーを起動します")
	return srv.Start(ctx)
}

func main() {
	cmd := newServerCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "サーバーの起動に失敗しました: %v\n", err)
		os.Exit(1)
	}
}
