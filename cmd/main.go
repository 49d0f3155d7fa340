package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"postdraft/configs"
	"postdraft/internal/application"
	"postdraft/internal/infrastructure/gemini"
	"postdraft/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "postdraft",
	Short: "AIでSNS投稿の下書きを生成します",
	Long: `postdraft は、トピックからX (Twitter) やLinkedIn向けの投稿案を3つ生成します。
HTTP API・Discord Bot・端末のいずれからでも利用できます。`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		os.Exit(1)
	}
}

// app は、各コマンドが共有する依存関係です
type app struct {
	config       *configs.Config
	logger       *zap.Logger
	geminiClient *gemini.GeminiAPIClient
	drafter      *application.DraftApplicationService
}

// newApp は、設定を読み込み、ロガーとアプリケーションサービスを組み立てます
func newApp(ctx context.Context) (*app, error) {
	// 設定を読み込み
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	logger, err := observability.NewLogger(config.Log.Level, config.Log.Format)
	if err != nil {
		return nil, err
	}

	// Gemini APIクライアントを作成
	geminiClient, err := gemini.NewGeminiAPIClient(ctx, &config.Gemini, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("Gemini APIクライアントの作成に失敗: %w", err)
	}

	drafter, err := application.NewDraftApplicationService(geminiClient, config.Draft.RequestTimeout, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	return &app{
		config:       config,
		logger:       logger,
		geminiClient: geminiClient,
		drafter:      drafter,
	}, nil
}

// Close は、クライアントを閉じてログを出力しきります
func (a *app) Close() {
	if err := a.geminiClient.Close(); err != nil {
		a.logger.Warn("Gemini APIクライアントのクローズに失敗", zap.Error(err))
	}
	_ = a.logger.Sync()
}
