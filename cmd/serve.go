package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"postdraft/internal/presentation/discord"
	"postdraft/internal/presentation/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "HTTP APIと（設定されていれば）Discord Botを起動します",
	Long: `HTTP APIサーバーを起動します。
DISCORD_BOT_TOKEN が設定されている場合は /draft コマンドを持つDiscord Botも起動します。
SIGINT または SIGTERM を受け取ると安全に停止します。`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// シグナルハンドリング
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	logger := a.logger
	logger.Info("postdraftを起動中...",
		zap.String("model", a.config.Gemini.ModelName),
		zap.String("image_model", a.config.Gemini.ImageModelName),
	)

	if a.config.Discord.Enabled() {
		bot, err := discord.NewDiscordHandler(a.config.Discord.BotToken, a.config.Discord.GuildID, a.drafter, logger)
		if err != nil {
			return err
		}
		if err := bot.Start(); err != nil {
			return err
		}
		defer func() {
			if err := bot.Close(); err != nil {
				logger.Warn("Discord Botの停止に失敗", zap.Error(err))
			}
		}()
	} else {
		logger.Info("DISCORD_BOT_TOKEN が未設定のため、Discord Botは起動しません")
	}

	server := httpapi.NewServer(a.config.HTTPAddr(), a.drafter, logger)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()
	logger.Info("HTTPサーバーを起動しました", zap.String("addr", a.config.HTTPAddr()))

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTPサーバーが停止しました: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("終了シグナルを受信しました。停止中...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTPサーバーの停止に失敗: %w", err)
	}

	logger.Info("正常に停止しました")
	return nil
}
