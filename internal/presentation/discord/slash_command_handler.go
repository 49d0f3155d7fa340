package discord

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"postdraft/internal/domain"
	"postdraft/internal/observability"
)

// DraftCommandName は、下書き生成のスラッシュコマンド名です
const DraftCommandName = "draft"

// maxTopicLength は、コマンドで受け付けるトピックの最大文字数です
const maxTopicLength = 1000

// interactionSession は、インタラクションへの応答に必要なセッション操作です
type interactionSession interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// SlashCommandHandler は、Discordのスラッシュコマンドを処理するハンドラーです
type SlashCommandHandler struct {
	session *discordgo.Session
	drafter Drafter
	guildID string
	logger  *zap.Logger
}

// NewSlashCommandHandler は新しいSlashCommandHandlerインスタンスを作成します
func NewSlashCommandHandler(
	session *discordgo.Session,
	drafter Drafter,
	guildID string,
	logger *zap.Logger,
) *SlashCommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlashCommandHandler{
		session: session,
		drafter: drafter,
		guildID: guildID,
		logger:  logger,
	}
}

// draftCommand は、/draft コマンドの定義を返します
func draftCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        DraftCommandName,
		Description: "AIでSNS投稿の下書きを3案生成します",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "topic",
				Description: "投稿のトピック",
				Required:    true,
				MaxLength:   maxTopicLength,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "style",
				Description: "投稿のトーン（既定: Professional）",
				Choices:     styleChoices(),
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "format",
				Description: "投稿の形式（既定: Short Post）",
				Choices:     formatChoices(),
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "platform",
				Description: "投稿先のプラットフォーム（既定: X）",
				Choices:     platformChoices(),
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "search",
				Description: "Google検索で最新情報を取り込みます",
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "image",
				Description: "投稿に添える画像を生成します",
			},
		},
	}
}

func styleChoices() []*discordgo.ApplicationCommandOptionChoice {
	styles := domain.AllPostStyles()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(styles))
	for _, style := range styles {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: style.DisplayName(), Value: string(style)})
	}
	return choices
}

func formatChoices() []*discordgo.ApplicationCommandOptionChoice {
	formats := domain.AllPostFormats()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(formats))
	for _, format := range formats {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: format.DisplayName(), Value: string(format)})
	}
	return choices
}

func platformChoices() []*discordgo.ApplicationCommandOptionChoice {
	platforms := domain.AllPlatforms()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(platforms))
	for _, platform := range platforms {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: platform.DisplayName(), Value: string(platform)})
	}
	return choices
}

// SetupSlashCommands は、スラッシュコマンドを登録します。
// ギルドIDが設定されている場合はそのギルドにだけ登録します
func (h *SlashCommandHandler) SetupSlashCommands() error {
	// BotのユーザーIDを取得
	user, err := h.session.User("@me")
	if err != nil {
		return fmt.Errorf("Botユーザー情報の取得に失敗: %w", err)
	}

	command := draftCommand()
	if _, err := h.session.ApplicationCommandCreate(user.ID, h.guildID, command); err != nil {
		h.logger.Error("スラッシュコマンドの登録に失敗", zap.String("command", command.Name), zap.Error(err))
		return fmt.Errorf("スラッシュコマンド %s の登録に失敗: %w", command.Name, err)
	}

	h.logger.Info("スラッシュコマンドを登録しました",
		zap.String("command", command.Name),
		zap.String("guild_id", h.guildID),
	)
	return nil
}

// SetupSlashCommandHandlers は、スラッシュコマンドのハンドラーを設定します
func (h *SlashCommandHandler) SetupSlashCommandHandlers() {
	h.session.AddHandler(h.handleInteractionCreate)
}

// handleInteractionCreate は、インタラクション作成イベントを処理します
func (h *SlashCommandHandler) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch name := i.ApplicationCommandData().Name; name {
	case DraftCommandName:
		h.handleDraftCommand(context.Background(), s, i.Interaction)
	default:
		h.logger.Warn("未知のスラッシュコマンド", zap.String("command", name))
	}
}

// handleDraftCommand は、/draft コマンドを処理します。
// 生成には時間がかかるため、先に応答を保留してから結果を送ります
func (h *SlashCommandHandler) handleDraftCommand(ctx context.Context, s interactionSession, i *discordgo.Interaction) {
	req := requestFromOptions(i.ApplicationCommandData().Options).Normalized()
	if err := req.Validate(); err != nil {
		h.respondToInteraction(s, i, formatError(err), true)
		return
	}

	logger := h.logger.With(
		zap.String("interaction_id", i.ID),
		zap.String("user", interactionUsername(i)),
		zap.String("guild_id", i.GuildID),
	)

	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		logger.Error("インタラクションの保留に失敗", zap.Error(err))
		return
	}

	result, err := h.drafter.Generate(observability.WithRequestID(ctx, i.ID), req)
	if err != nil {
		logger.Warn("下書きの生成に失敗", zap.Error(err))
		h.editResponse(s, i, &discordgo.WebhookEdit{Content: stringPtr(formatError(err))}, logger)
		return
	}

	h.sendResult(s, i, req, result, logger)
}

// sendResult は、保留中の応答を概要で置き換え、カードごとにフォローアップを送ります
func (h *SlashCommandHandler) sendResult(
	s interactionSession,
	i *discordgo.Interaction,
	req domain.GenerateRequest,
	result *domain.GeneratedResult,
	logger *zap.Logger,
) {
	edit := &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{buildSummaryEmbed(req, result)},
	}
	if file := imageAttachment(result, logger); file != nil {
		edit.Files = []*discordgo.File{file}
	}
	h.editResponse(s, i, edit, logger)

	for _, card := range domain.BuildCards(result, req.Platform) {
		embed, truncated := buildCardEmbed(card, req.Platform)
		params := &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{embed},
		}
		if truncated {
			// 埋め込みに収まらなかった全文はファイルで送る
			params.Files = []*discordgo.File{{
				Name:        fmt.Sprintf("draft-%d.txt", card.Index),
				ContentType: "text/plain",
				Reader:      strings.NewReader(cardTranscript(card)),
			}}
		}

		if _, err := s.FollowupMessageCreate(i, true, params); err != nil {
			logger.Error("フォローアップの送信に失敗", zap.Int("card", card.Index), zap.Error(err))
		}
	}

	logger.Info("下書きを送信しました", zap.Int("cards", len(result.Options)))
}

// imageAttachment は、生成画像を添付ファイルに変換します。画像がない場合は nil を返します
func imageAttachment(result *domain.GeneratedResult, logger *zap.Logger) *discordgo.File {
	if !result.HasImage() {
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageData)
	if err != nil {
		logger.Warn("画像データのデコードに失敗", zap.Error(err))
		return nil
	}

	return &discordgo.File{
		Name:        imageFileName(result.ImageMIMEType),
		ContentType: result.ImageMIMEType,
		Reader:      bytes.NewReader(data),
	}
}

// requestFromOptions は、コマンドのオプションから生成リクエストを組み立てます。
// 省略されたスタイルと形式には既定値を使います
func requestFromOptions(options []*discordgo.ApplicationCommandInteractionDataOption) domain.GenerateRequest {
	req := domain.GenerateRequest{
		Style:  domain.PostStyleProfessional,
		Format: domain.PostFormatSingle,
	}

	for _, option := range options {
		switch option.Name {
		case "topic":
			req.Topic = optionString(option)
		case "style":
			req.Style = domain.PostStyle(optionString(option))
		case "format":
			req.Format = domain.PostFormat(optionString(option))
		case "platform":
			req.Platform = domain.Platform(optionString(option))
		case "search":
			req.UseSearch = optionBool(option)
		case "image":
			req.GenerateImage = optionBool(option)
		}
	}
	return req
}

// optionString は、型が想定と違ってもパニックせずに文字列値を返します
func optionString(option *discordgo.ApplicationCommandInteractionDataOption) string {
	value, _ := option.Value.(string)
	return value
}

func optionBool(option *discordgo.ApplicationCommandInteractionDataOption) bool {
	value, _ := option.Value.(bool)
	return value
}

// interactionUsername は、コマンドを実行したユーザー名を返します
func interactionUsername(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	if i.User != nil {
		return i.User.Username
	}
	return ""
}

// editResponse は、保留中の応答を編集します
func (h *SlashCommandHandler) editResponse(s interactionSession, i *discordgo.Interaction, edit *discordgo.WebhookEdit, logger *zap.Logger) {
	if _, err := s.InteractionResponseEdit(i, edit); err != nil {
		logger.Error("インタラクション応答の編集に失敗", zap.Error(err))
	}
}

// respondToInteraction は、インタラクションに応答します
func (h *SlashCommandHandler) respondToInteraction(s interactionSession, i *discordgo.Interaction, content string, ephemeral bool) {
	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}

	if !ephemeral {
		response.Data.Flags = 0
	}

	if err := s.InteractionRespond(i, response); err != nil {
		h.logger.Error("インタラクションへの応答に失敗", zap.Error(err))
	}
}

func stringPtr(s string) *string {
	return &s
}
