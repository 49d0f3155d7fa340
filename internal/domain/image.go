package domain

import "encoding/base64"

// GeneratedImage は、生成された画像データを表すドメインオブジェクトです
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// Base64 は、画像データをBase64文字列で返します
func (i GeneratedImage) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// ImageGenerationRequest は、投稿に添える画像の生成要求です
type ImageGenerationRequest struct {
	Prompt      string
	AspectRatio string
}

// SquareAspectRatio は、投稿画像のアスペクト比です
const SquareAspectRatio = "1:1"

// NewPostImageRequest は、トピックとスタイルから投稿画像の生成要求を作成します
func NewPostImageRequest(topic string, style PostStyle) ImageGenerationRequest {
	return ImageGenerationRequest{
		Prompt:      BuildImagePrompt(topic, style),
		AspectRatio: SquareAspectRatio,
	}
}
