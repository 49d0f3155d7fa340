package domain

import (
	"fmt"
	"strings"
)

// 区切りテキストモードで使用するマーカーです
const (
	MarkerVariationStart = "VARIATION_START"
	MarkerVariationEnd   = "VARIATION_END"
	MarkerContentStart   = "CONTENT_START"
	MarkerContentEnd     = "CONTENT_END"
	MarkerReasoning      = "REASONING:"
	SegmentSeparator     = "<TWEET_SEPARATOR>"
)

// DraftPrompt は、Gemini APIに送信するシステム指示とユーザープロンプトの組です
type DraftPrompt struct {
	SystemInstruction string
	UserPrompt        string
}

// PromptBuilder は、生成リクエストからGeminiに最適なプロンプトを組み立てるビジネスロジックを担当します
type PromptBuilder struct{}

// NewPromptBuilder は新しいPromptBuilderインスタンスを作成します
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// Build は、リクエストのプラットフォーム・スタイル・形式に応じたプロンプトを生成します
func (pb *PromptBuilder) Build(req GenerateRequest) DraftPrompt {
	profile := ProfileFor(req.Platform)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Topic: %q\n", req.Topic))
	builder.WriteString(fmt.Sprintf("Style: %s\n", req.Style.DisplayName()))
	builder.WriteString(fmt.Sprintf("Format: %s\n", req.Format.DisplayName()))
	builder.WriteString(fmt.Sprintf("Platform: %s\n\n", profile.Label))

	builder.WriteString(fmt.Sprintf("Create %d distinct variations of content based on this topic.\n", VariationCount))
	builder.WriteString(profile.FormatInstruction(req.Format))
	builder.WriteString("\n\n")
	builder.WriteString("Explain briefly why you chose this angle for each variation.\n")

	if req.UseSearch {
		builder.WriteString(delimitedFormatInstruction())
	}

	return DraftPrompt{
		SystemInstruction: strings.TrimSpace(profile.SystemInstruction),
		UserPrompt:        builder.String(),
	}
}

// delimitedFormatInstruction は、JSONを使えない検索モード向けの出力形式の指示です
func delimitedFormatInstruction() string {
	var builder strings.Builder
	builder.WriteString("\nSince you cannot return JSON, please format your response strictly as follows:\n\n")
	builder.WriteString(MarkerVariationStart + "\n")
	builder.WriteString(MarkerContentStart + "\n")
	builder.WriteString("[Post content here. If thread, separate tweets with " + SegmentSeparator + "]\n")
	builder.WriteString(MarkerContentEnd + "\n")
	builder.WriteString(MarkerReasoning + " [Brief explanation]\n")
	builder.WriteString(MarkerVariationEnd + "\n\n")
	builder.WriteString(fmt.Sprintf("Repeat for %d variations. Do not add markdown code blocks.\n", VariationCount))
	return builder.String()
}

// BuildImagePrompt は、トピックを抽象的に表現する正方形画像のプロンプトを生成します
func BuildImagePrompt(topic string, style PostStyle) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Create a visually striking, professional social media image representing the topic: %q.\n", topic))
	builder.WriteString(fmt.Sprintf("Style: %s.\n", style.DisplayName()))
	builder.WriteString("Requirements: High quality, abstract or tech-focused, minimal text, eye-catching, suitable for LinkedIn or Twitter.\n")
	builder.WriteString("Aspect Ratio: Square (1:1).")
	return builder.String()
}
