package application

import (
	"context"

	"postdraft/internal/domain"
)

// GeminiClient は、Gemini APIとの通信を行うクライアントのインターフェースです
type GeminiClient interface {
	// GenerateText は、プロンプトを受け取ってGemini APIからテキストを生成します。
	// 区切りテキストモードでは検索グラウンディングの引用元も返します
	GenerateText(ctx context.Context, request TextGenerationRequest) (*domain.RawResponse, error)

	// GenerateImage は、プロンプトから画像を1枚生成します
	GenerateImage(ctx context.Context, request domain.ImageGenerationRequest) (*domain.GeneratedImage, error)
}

// TextGenerationRequest は、テキスト生成呼び出しの入力です
type TextGenerationRequest struct {
	Prompt domain.DraftPrompt
	Mode   domain.ResponseMode
}

// UsesSearch は、検索グラウンディングを有効にする呼び出しかどうかを判定します
func (r TextGenerationRequest) UsesSearch() bool {
	return r.Mode == domain.ResponseModeDelimited
}

// TextGenerationOptions は、テキスト生成時のオプションを定義します
type TextGenerationOptions struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	Model       string  `json:"model,omitempty"`
	ImageModel  string  `json:"image_model,omitempty"`
}

// DefaultTextGenerationOptions は、デフォルトのテキスト生成オプションを返します
func DefaultTextGenerationOptions() TextGenerationOptions {
	return TextGenerationOptions{
		MaxTokens:   8192,
		Temperature: 0.9,
		TopP:        0.95,
		Model:       "gemini-2.5-flash",
		ImageModel:  "gemini-2.5-flash-image",
	}
}
