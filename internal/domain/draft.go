package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// VariationCount は、1回の生成で要求するバリエーション数です
const VariationCount = 3

// GenerateRequest は、下書き生成の要求を表現する値オブジェクトです
type GenerateRequest struct {
	Topic         string     `json:"topic" validate:"required,max=1000"`
	Style         PostStyle  `json:"style" validate:"required,oneof=professional hype educational contrarian meme"`
	Format        PostFormat `json:"format" validate:"required,oneof=single thread"`
	Platform      Platform   `json:"platform" validate:"required,oneof=x linkedin"`
	UseSearch     bool       `json:"useSearch"`
	GenerateImage bool       `json:"generateImage"`
}

// Normalized は、前後の空白を除去し、省略されたプラットフォームをXで補ったコピーを返します
func (r GenerateRequest) Normalized() GenerateRequest {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Platform == "" {
		r.Platform = PlatformX
	}
	return r
}

// IsThread は、スレッド形式の要求かどうかを判定します
func (r GenerateRequest) IsThread() bool {
	return r.Format == PostFormatThread
}

var requestValidator = validator.New()

// Validate は、リクエストの妥当性を検証します
func (r GenerateRequest) Validate() error {
	err := requestValidator.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(fields, ", "))
}

// DraftOption は、1つの投稿候補を表します。Contentの順序はスレッドの順序です
type DraftOption struct {
	Content   []string `json:"content"`
	Reasoning string   `json:"reasoning"`
}

// IsThread は、複数セグメントからなる候補かどうかを判定します
func (o DraftOption) IsThread() bool {
	return len(o.Content) > 1
}

// GroundingSource は、検索グラウンディングの引用元です
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// GeneratedResult は、1回の生成で得られた結果です
type GeneratedResult struct {
	Options       []DraftOption     `json:"options"`
	Sources       []GroundingSource `json:"sources"`
	ImageData     string            `json:"imageData,omitempty"`
	ImageMIMEType string            `json:"imageMimeType,omitempty"`
}

// HasImage は、画像が添付されているかどうかを判定します
func (r *GeneratedResult) HasImage() bool {
	return r != nil && r.ImageData != ""
}

// RawResponse は、テキスト生成呼び出しの解析前の応答です
type RawResponse struct {
	Text    string
	Sources []GroundingSource
}

// cleanSegments は、各セグメントをトリムし空のものを除外します
func cleanSegments(pieces []string) []string {
	segments := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if t := strings.TrimSpace(p); t != "" {
			segments = append(segments, t)
		}
	}
	return segments
}
