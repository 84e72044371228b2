package main

import (
	"context"
	"fmt"
	"os"

	"smartlighting/internal/config"
	"smartlighting/internal/logging"
	"smartlighting/internal/server"
)

func main() {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定の読み込みに失敗しました: %v\n", err)
		os.Exit(1)
	}

	// ロガーを作成
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ロガーの作成に失敗しました: %v\n", err)
		os.Exit(1)
	}
	server.SetMode(logger)

	// サーバーを作成
	srv := server.New(cfg, logger)

	// サーバーを起動
	if err := srv.Start(context.Background()); err != nil {
		logger.WithError(err).Fatal("サーバーの起動に失敗しました")
	}
}
