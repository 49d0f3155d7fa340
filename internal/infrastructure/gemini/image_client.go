package gemini

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"postdraft/internal/domain"
)

// defaultImageMIMEType は、応答にMIMEタイプがない場合に使う値です
const defaultImageMIMEType = "image/png"

// createImageConfig は、画像生成用の設定を作成します
func (g *GeminiAPIClient) createImageConfig(request domain.ImageGenerationRequest) *genai.GenerateContentConfig {
	aspectRatio := request.AspectRatio
	if aspectRatio == "" {
		aspectRatio = domain.SquareAspectRatio
	}

	return &genai.GenerateContentConfig{
		SafetySettings: createSafetySettings(),
		ImageConfig: &genai.ImageConfig{
			AspectRatio: aspectRatio,
		},
	}
}

// GenerateImage は、プロンプトを受け取ってGemini APIから画像を1枚生成します
func (g *GeminiAPIClient) GenerateImage(ctx context.Context, request domain.ImageGenerationRequest) (*domain.GeneratedImage, error) {
	g.logger.Debug("Gemini APIに画像生成をリクエスト中",
		zap.String("model", g.config.ImageModelName),
		zap.String("aspect_ratio", request.AspectRatio),
	)

	contents := genai.Text(request.Prompt)
	imageConfig := g.createImageConfig(request)

	resp, err := g.client.Models.GenerateContent(ctx, g.config.ImageModelName, contents, imageConfig)
	if err != nil {
		return nil, wrapUpstreamError(ctx, err)
	}

	return processImageResponse(resp)
}

// processImageResponse は、画像生成レスポンスから最初のインライン画像を取り出します
func processImageResponse(resp *genai.GenerateContentResponse) (*domain.GeneratedImage, error) {
	candidate, err := firstCandidate(resp)
	if err != nil {
		return nil, err
	}

	if candidate.Content == nil {
		return nil, fmt.Errorf("%w (FinishReason: %s)", domain.ErrNoImageData, candidate.FinishReason)
	}

	// 画像データを抽出
	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}

		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = defaultImageMIMEType
		}
		return &domain.GeneratedImage{
			Data:     part.InlineData.Data,
			MIMEType: mimeType,
		}, nil
	}

	return nil, domain.ErrNoImageData
}
