package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"postdraft/internal/domain"
)

// DiscordMessageLimit は、Discordのメッセージ長制限です
const DiscordMessageLimit = 2000

// Drafter は、下書き生成を行うアプリケーションサービスのインターフェースです
type Drafter interface {
	Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GeneratedResult, error)
}

// DiscordHandler は、DiscordセッションとBotのイベントハンドラをまとめて管理します
type DiscordHandler struct {
	session             *discordgo.Session
	slashCommandHandler *SlashCommandHandler
	logger              *zap.Logger
}

// NewDiscordHandler は新しいDiscordHandlerインスタンスを作成します
func NewDiscordHandler(botToken, guildID string, drafter Drafter, logger *zap.Logger) (*DiscordHandler, error) {
	if botToken == "" {
		return nil, fmt.Errorf("Discord Botトークンが設定されていません")
	}
	if drafter == nil {
		return nil, fmt.Errorf("Drafterが指定されていません")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Discordセッションを作成
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("Discordセッションの作成に失敗: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	return &DiscordHandler{
		session:             session,
		slashCommandHandler: NewSlashCommandHandler(session, drafter, guildID, logger),
		logger:              logger,
	}, nil
}

// Start は、スラッシュコマンドを登録してDiscordに接続します
func (h *DiscordHandler) Start() error {
	if err := h.slashCommandHandler.SetupSlashCommands(); err != nil {
		return err
	}
	h.slashCommandHandler.SetupSlashCommandHandlers()

	if err := h.session.Open(); err != nil {
		return fmt.Errorf("Discordへの接続に失敗: %w", err)
	}

	h.logger.Info("Discordに接続しました。Botが準備完了しました",
		zap.String("command", "/"+DraftCommandName),
	)
	return nil
}

// Close は、Discordセッションを閉じます
func (h *DiscordHandler) Close() error {
	if err := h.session.Close(); err != nil {
		return fmt.Errorf("Discordセッションのクローズに失敗: %w", err)
	}
	return nil
}
