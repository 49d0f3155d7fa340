package application

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"postdraft/internal/domain"
)

// maxImagePromptLength は、画像プロンプトの最大文字数です
const maxImagePromptLength = 2000

// ImageGenerationService は、投稿に添える画像の生成を担当するサービスです
type ImageGenerationService struct {
	geminiClient GeminiClient
	logger       *zap.Logger
}

// NewImageGenerationService は新しいImageGenerationServiceインスタンスを作成します
func NewImageGenerationService(geminiClient GeminiClient, logger *zap.Logger) *ImageGenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageGenerationService{
		geminiClient: geminiClient,
		logger:       logger,
	}
}

// GeneratePostImage は、トピックとスタイルから正方形の投稿画像を生成します
func (s *ImageGenerationService) GeneratePostImage(ctx context.Context, topic string, style domain.PostStyle) (*domain.GeneratedImage, error) {
	request := domain.NewPostImageRequest(topic, style)

	if err := s.validatePrompt(request); err != nil {
		return nil, fmt.Errorf("プロンプトの検証に失敗: %w", err)
	}

	image, err := s.geminiClient.GenerateImage(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("画像生成に失敗: %w", err)
	}
	if image == nil || len(image.Data) == 0 {
		return nil, domain.ErrNoImageData
	}

	s.logger.Debug("画像生成完了",
		zap.String("mime_type", image.MIMEType),
		zap.Int("bytes", len(image.Data)),
	)
	return image, nil
}

// validatePrompt は、プロンプトの妥当性を検証します
func (s *ImageGenerationService) validatePrompt(request domain.ImageGenerationRequest) error {
	if request.Prompt == "" {
		return fmt.Errorf("プロンプトが空です")
	}

	if utf8.RuneCountInString(request.Prompt) > maxImagePromptLength {
		return fmt.Errorf("プロンプトが長すぎます (最大%d文字)", maxImagePromptLength)
	}

	return nil
}
