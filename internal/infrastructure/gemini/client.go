package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"postdraft/internal/application"
	"postdraft/internal/domain"
	"postdraft/internal/infrastructure/config"
)

// GeminiAPIClient は、Gemini APIとの通信を行うクライアントです
type GeminiAPIClient struct {
	client *genai.Client
	config *config.GeminiConfig
	logger *zap.Logger
}

var _ application.GeminiClient = (*GeminiAPIClient)(nil)

// NewGeminiAPIClient は新しいGeminiAPIClientインスタンスを作成します
func NewGeminiAPIClient(ctx context.Context, geminiConfig *config.GeminiConfig, logger *zap.Logger) (*GeminiAPIClient, error) {
	if geminiConfig == nil {
		geminiConfig = config.DefaultGeminiConfig()
	}
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("Gemini APIキーが設定されていません")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if geminiConfig.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: geminiConfig.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("Gemini APIクライアントの作成に失敗: %w", err)
	}

	return &GeminiAPIClient{
		client: client,
		config: geminiConfig,
		logger: logger,
	}, nil
}

// createGenerateConfig は、応答形式に応じた生成設定を作成します。
// 検索ツールとレスポンススキーマは同時に指定できないため、どちらか一方のみを設定します
func (g *GeminiAPIClient) createGenerateConfig(request application.TextGenerationRequest) *genai.GenerateContentConfig {
	temperature := g.config.Temperature
	topP := g.config.TopP

	generateConfig := &genai.GenerateContentConfig{
		MaxOutputTokens: g.config.MaxTokens,
		Temperature:     &temperature,
		TopP:            &topP,
		SafetySettings:  createSafetySettings(),
	}

	if instruction := strings.TrimSpace(request.Prompt.SystemInstruction); instruction != "" {
		generateConfig.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}

	if request.UsesSearch() {
		generateConfig.Tools = []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		}
	} else {
		generateConfig.ResponseMIMEType = "application/json"
		generateConfig.ResponseSchema = variationsResponseSchema()
	}

	return generateConfig
}

// GenerateText は、プロンプトを受け取ってGemini APIからテキストを生成します
func (g *GeminiAPIClient) GenerateText(ctx context.Context, request application.TextGenerationRequest) (*domain.RawResponse, error) {
	g.logger.Debug("Gemini APIにテキスト生成をリクエスト中",
		zap.String("model", g.config.ModelName),
		zap.String("mode", request.Mode.String()),
		zap.Int("prompt_length", len(request.Prompt.UserPrompt)),
	)

	contents := genai.Text(request.Prompt.UserPrompt)
	generateConfig := g.createGenerateConfig(request)

	resp, err := g.client.Models.GenerateContent(ctx, g.config.ModelName, contents, generateConfig)
	if err != nil {
		return nil, wrapUpstreamError(ctx, err)
	}

	raw, err := g.processResponse(resp)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("Gemini APIから応答を取得",
		zap.Int("text_length", len(raw.Text)),
		zap.Int("sources", len(raw.Sources)),
	)
	return raw, nil
}

// processResponse は、Gemini APIのレスポンスからテキストと引用元を取り出します
func (g *GeminiAPIClient) processResponse(resp *genai.GenerateContentResponse) (*domain.RawResponse, error) {
	candidate, err := firstCandidate(resp)
	if err != nil {
		return nil, err
	}

	// Contentがnilの場合のチェック
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: 応答にContentが含まれていません (FinishReason: %s)", domain.ErrUpstreamFailure, candidate.FinishReason)
	}

	// テキスト部分を抽出
	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			builder.WriteString(part.Text)
		}
	}

	return &domain.RawResponse{
		Text:    builder.String(),
		Sources: extractGroundingSources(candidate.GroundingMetadata),
	}, nil
}

// firstCandidate は、最初の候補を返します。
// 安全フィルターや著作権検出で打ち切られた応答はエラーにします
func firstCandidate(resp *genai.GenerateContentResponse) (*genai.Candidate, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: レスポンスが空です", domain.ErrUpstreamFailure)
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrBlockedBySafety, resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("%w: 有効な応答が得られませんでした", domain.ErrUpstreamFailure)
	}

	candidate := resp.Candidates[0]
	if candidate == nil {
		return nil, fmt.Errorf("%w: 有効な応答が得られませんでした", domain.ErrUpstreamFailure)
	}

	// FinishReasonをチェックして安全フィルターによるブロックを検出
	switch candidate.FinishReason {
	case genai.FinishReasonSafety:
		return nil, fmt.Errorf("%w: %s", domain.ErrBlockedBySafety, formatSafetyRatings(candidate.SafetyRatings))
	case genai.FinishReasonRecitation:
		return nil, fmt.Errorf("%w: 著作権保護された内容を検出しました", domain.ErrBlockedBySafety)
	}

	return candidate, nil
}

// extractGroundingSources は、グラウンディングメタデータからWebの引用元を取り出します
func extractGroundingSources(metadata *genai.GroundingMetadata) []domain.GroundingSource {
	if metadata == nil {
		return nil
	}

	sources := make([]domain.GroundingSource, 0, len(metadata.GroundingChunks))
	for _, chunk := range metadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		sources = append(sources, domain.GroundingSource{
			Title: chunk.Web.Title,
			URI:   chunk.Web.URI,
		})
	}
	return sources
}

// wrapUpstreamError は、SDKのエラーをドメインのエラーで包みます
func wrapUpstreamError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("Gemini APIへのリクエストがタイムアウトしました: %w", ctx.Err())
	}
	return fmt.Errorf("%w: %w", domain.ErrUpstreamFailure, err)
}

// Close は、Gemini APIクライアントを閉じます
func (g *GeminiAPIClient) Close() error {
	// genai.ClientにはCloseメソッドがないため、何もしない
	return nil
}
