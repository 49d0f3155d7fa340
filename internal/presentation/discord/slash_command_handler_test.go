package discord

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"postdraft/internal/domain"
	"postdraft/internal/observability"
)

// stubDrafter は、テスト用のDrafterです
type stubDrafter struct {
	result   *domain.GeneratedResult
	err      error
	received []domain.GenerateRequest

	requestIDs []string
}

func (s *stubDrafter) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GeneratedResult, error) {
	s.received = append(s.received, req)
	s.requestIDs = append(s.requestIDs, observability.RequestIDFromContext(ctx))
	return s.result, s.err
}

// fakeSession は、送信内容を記録するテスト用のセッションです
type fakeSession struct {
	responses []*discordgo.InteractionResponse
	edits     []*discordgo.WebhookEdit
	followups []*discordgo.WebhookParams
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.followups = append(f.followups, data)
	return &discordgo.Message{}, nil
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func boolOption(name string, value bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionBoolean,
		Value: value,
	}
}

func draftInteraction(options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:      "interaction-1",
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "guild-1",
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    DraftCommandName,
			Options: options,
		},
		Member: &discordgo.Member{User: &discordgo.User{Username: "alice"}},
	}
}

func threeOptions() []domain.DraftOption {
	return []domain.DraftOption{
		{Content: []string{"first"}, Reasoning: "one"},
		{Content: []string{"second"}, Reasoning: "two"},
		{Content: []string{"third"}, Reasoning: "three"},
	}
}

func TestDraftCommand(t *testing.T) {
	command := draftCommand()

	assert.Equal(t, DraftCommandName, command.Name)
	require.Len(t, command.Options, 6)
	assert.Equal(t, "topic", command.Options[0].Name)
	assert.True(t, command.Options[0].Required)
	assert.Equal(t, maxTopicLength, command.Options[0].MaxLength)
	assert.Len(t, command.Options[1].Choices, len(domain.AllPostStyles()))
	assert.Len(t, command.Options[2].Choices, len(domain.AllPostFormats()))
	assert.Len(t, command.Options[3].Choices, len(domain.AllPlatforms()))
	assert.Equal(t, discordgo.ApplicationCommandOptionBoolean, command.Options[4].Type)
	assert.Equal(t, discordgo.ApplicationCommandOptionBoolean, command.Options[5].Type)
}

func TestRequestFromOptions(t *testing.T) {
	req := requestFromOptions([]*discordgo.ApplicationCommandInteractionDataOption{
		stringOption("topic", "Vector databases"),
	})
	assert.Equal(t, "Vector databases", req.Topic)
	assert.Equal(t, domain.PostStyleProfessional, req.Style)
	assert.Equal(t, domain.PostFormatSingle, req.Format)
	assert.Equal(t, domain.PlatformX, req.Normalized().Platform)

	req = requestFromOptions([]*discordgo.ApplicationCommandInteractionDataOption{
		stringOption("topic", "Vector databases"),
		stringOption("style", "meme"),
		stringOption("format", "thread"),
		stringOption("platform", "linkedin"),
		boolOption("search", true),
		boolOption("image", true),
	})
	assert.Equal(t, domain.GenerateRequest{
		Topic:         "Vector databases",
		Style:         domain.PostStyleMeme,
		Format:        domain.PostFormatThread,
		Platform:      domain.PlatformLinkedIn,
		UseSearch:     true,
		GenerateImage: true,
	}, req)

	// 型が違う値は無視する
	req = requestFromOptions([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "search", Type: discordgo.ApplicationCommandOptionString, Value: "yes"},
	})
	assert.False(t, req.UseSearch)
}

func TestHandleDraftCommand_Success(t *testing.T) {
	drafter := &stubDrafter{
		result: &domain.GeneratedResult{
			Options:       threeOptions(),
			Sources:       []domain.GroundingSource{},
			ImageData:     "cG5nLWJ5dGVz",
			ImageMIMEType: "image/png",
		},
	}
	session := &fakeSession{}
	handler := NewSlashCommandHandler(nil, drafter, "", zap.NewNop())

	handler.handleDraftCommand(context.Background(), session, draftInteraction(
		stringOption("topic", "  Vector databases  "),
		boolOption("image", true),
	))

	require.Len(t, drafter.received, 1)
	assert.Equal(t, "Vector databases", drafter.received[0].Topic)
	assert.Equal(t, domain.PlatformX, drafter.received[0].Platform)
	assert.True(t, drafter.received[0].GenerateImage)
	assert.Equal(t, []string{"interaction-1"}, drafter.requestIDs)

	require.Len(t, session.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, session.responses[0].Type)

	require.Len(t, session.edits, 1)
	require.NotNil(t, session.edits[0].Embeds)
	assert.Len(t, *session.edits[0].Embeds, 1)
	require.Len(t, session.edits[0].Files, 1)
	assert.Equal(t, "draft-image.png", session.edits[0].Files[0].Name)
	data, err := io.ReadAll(session.edits[0].Files[0].Reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	require.Len(t, session.followups, 3)
	for i, followup := range session.followups {
		require.Len(t, followup.Embeds, 1)
		assert.Equal(t, fmt.Sprintf("案 %d ・ X (Twitter)", i+1), followup.Embeds[0].Title)
		assert.Empty(t, followup.Files)
	}
}

func TestHandleDraftCommand_TruncatedCardAttachesTranscript(t *testing.T) {
	long := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		long = append(long, fmt.Sprintf("%d %s", i, strings.Repeat("c", 900)))
	}
	drafter := &stubDrafter{
		result: &domain.GeneratedResult{
			Options: []domain.DraftOption{{Content: long, Reasoning: "deep dive"}},
			Sources: []domain.GroundingSource{},
		},
	}
	session := &fakeSession{}
	handler := NewSlashCommandHandler(nil, drafter, "", nil)

	handler.handleDraftCommand(context.Background(), session, draftInteraction(
		stringOption("topic", "Long thread"),
		stringOption("format", "thread"),
	))

	require.Len(t, session.followups, 1)
	require.Len(t, session.followups[0].Files, 1)
	assert.Equal(t, "draft-1.txt", session.followups[0].Files[0].Name)
	data, err := io.ReadAll(session.followups[0].Files[0].Reader)
	require.NoError(t, err)
	assert.Contains(t, string(data), "--- 10/10")
}

func TestHandleDraftCommand_InvalidRequest(t *testing.T) {
	drafter := &stubDrafter{}
	session := &fakeSession{}
	handler := NewSlashCommandHandler(nil, drafter, "", nil)

	handler.handleDraftCommand(context.Background(), session, draftInteraction(
		stringOption("topic", "   "),
	))

	assert.Empty(t, drafter.received)
	require.Len(t, session.responses, 1)
	response := session.responses[0]
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, response.Type)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, response.Data.Flags)
	assert.Contains(t, response.Data.Content, "入力内容に誤りがあります")
	assert.Empty(t, session.edits)
}

func TestHandleDraftCommand_GenerateError(t *testing.T) {
	drafter := &stubDrafter{err: fmt.Errorf("Gemini APIからの応答取得がタイムアウトしました: %w", context.DeadlineExceeded)}
	session := &fakeSession{}
	handler := NewSlashCommandHandler(nil, drafter, "", nil)

	handler.handleDraftCommand(context.Background(), session, draftInteraction(
		stringOption("topic", "Vector databases"),
	))

	require.Len(t, session.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, session.responses[0].Type)
	require.Len(t, session.edits, 1)
	require.NotNil(t, session.edits[0].Content)
	assert.Contains(t, *session.edits[0].Content, "⏰ **タイムアウトしました**")
	assert.Empty(t, session.followups)
}

func TestInteractionUsername(t *testing.T) {
	assert.Equal(t, "alice", interactionUsername(draftInteraction()))
	assert.Equal(t, "bob", interactionUsername(&discordgo.Interaction{User: &discordgo.User{Username: "bob"}}))
	assert.Empty(t, interactionUsername(&discordgo.Interaction{}))
}

func TestNewDiscordHandler(t *testing.T) {
	_, err := NewDiscordHandler("", "", &stubDrafter{}, nil)
	assert.Error(t, err)

	_, err = NewDiscordHandler("token", "", nil, nil)
	assert.Error(t, err)

	handler, err := NewDiscordHandler("token", "guild-1", &stubDrafter{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bot token", handler.session.Token)
	assert.Equal(t, "guild-1", handler.slashCommandHandler.guildID)
}
