package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"postdraft/internal/domain"
)

// Discordの埋め込みに関する制限
const (
	embedTitleLimit      = 256
	embedFieldNameLimit  = 256
	embedFieldValueLimit = 1024
	embedFieldsLimit     = 25
	embedTotalLimit      = 6000
)

// overLimitMarker は、文字数上限を超えたセグメントに付ける印です
const overLimitMarker = "⚠️ 上限超過"

var platformColors = map[domain.Platform]int{
	domain.PlatformX:        0x1DA1F2,
	domain.PlatformLinkedIn: 0x0A66C2,
}

// buildSummaryEmbed は、リクエスト内容と引用元をまとめた埋め込みを作成します
func buildSummaryEmbed(req domain.GenerateRequest, result *domain.GeneratedResult) *discordgo.MessageEmbed {
	profile := domain.ProfileFor(req.Platform)

	embed := &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       domain.NewTextLimiter(embedTitleLimit).Truncate("📝 " + req.Topic),
		Description: fmt.Sprintf("%d件の投稿候補を生成しました", len(result.Options)),
		Color:       platformColors[req.Platform],
		Fields: []*discordgo.MessageEmbedField{
			{Name: "プラットフォーム", Value: profile.Label, Inline: true},
			{Name: "スタイル", Value: req.Style.DisplayName(), Inline: true},
			{Name: "形式", Value: req.Format.DisplayName(), Inline: true},
		},
	}

	if sources := formatSources(result.Sources); sources != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("🔎 引用元 (%d)", len(result.Sources)),
			Value: sources,
		})
	}
	return embed
}

// formatSources は、引用元をMarkdownのリンク一覧にします。
// フィールドの上限に収まらない行は省略します
func formatSources(sources []domain.GroundingSource) string {
	if len(sources) == 0 {
		return ""
	}

	lines := make([]string, 0, len(sources))
	for _, source := range sources {
		title := strings.TrimSpace(source.Title)
		if title == "" {
			title = source.URI
		}
		title = strings.NewReplacer("[", "(", "]", ")").Replace(title)
		lines = append(lines, fmt.Sprintf("• [%s](%s)", title, source.URI))
	}

	fitted := domain.NewTextLimiter(embedFieldValueLimit).FitLines(lines)
	return strings.Join(fitted, "\n")
}

// buildCardEmbed は、1枚のカードを埋め込みに変換します。
// 本文の一部を省略した場合は truncated が true になります
func buildCardEmbed(card domain.Card, platform domain.Platform) (embed *discordgo.MessageEmbed, truncated bool) {
	title := fmt.Sprintf("案 %d ・ %s", card.Index, card.PlatformLabel)
	if card.IsThread {
		title += fmt.Sprintf("（スレッド %d件）", len(card.Segments))
	}

	reasoningLimiter := domain.NewTextLimiter(embedFieldValueLimit)
	reasoning := reasoningLimiter.Truncate(card.Reasoning)
	if reasoning != card.Reasoning {
		truncated = true
	}

	embed = &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       title,
		Description: "💡 " + reasoning,
		Color:       platformColors[platform],
		Footer:      &discordgo.MessageEmbedFooter{Text: card.Handle},
	}

	for i, segment := range card.Segments {
		field, cut := formatSegmentField(segment, i+1, len(card.Segments))
		if cut {
			truncated = true
		}
		embed.Fields = append(embed.Fields, field)
	}

	if fitEmbed(embed) {
		truncated = true
	}
	return embed, truncated
}

// formatSegmentField は、1セグメントをフィールドに変換します。
// 共有リンクは本文と合わせて上限に収まる場合だけ付けます
func formatSegmentField(segment domain.Segment, index, total int) (*discordgo.MessageEmbedField, bool) {
	name := fmt.Sprintf("%d文字", segment.CharCount)
	if total > 1 {
		name = fmt.Sprintf("%d/%d ・ %s", index, total, name)
	}
	if segment.OverLimit {
		name += " " + overLimitMarker
	}

	limiter := domain.NewTextLimiter(embedFieldValueLimit)
	body := limiter.Truncate(segment.Text)
	truncated := body != segment.Text

	value := body
	if segment.ShareURL != "" {
		withLink := body + "\n" + fmt.Sprintf("[🔗 投稿する](%s)", segment.ShareURL)
		if utf8.RuneCountInString(withLink) <= limiter.MaxLength() {
			value = withLink
		}
	}

	return &discordgo.MessageEmbedField{
		Name:  domain.NewTextLimiter(embedFieldNameLimit).Truncate(name),
		Value: value,
	}, truncated
}

// fitEmbed は、フィールド数と合計文字数が上限に収まるよう末尾のフィールドを削ります。
// 削った場合は残り件数を示すフィールドを追加し、true を返します
func fitEmbed(embed *discordgo.MessageEmbed) bool {
	dropped := 0
	for len(embed.Fields) > 0 && (len(embed.Fields) > embedFieldsLimit || embedLength(embed) > embedTotalLimit) {
		embed.Fields = embed.Fields[:len(embed.Fields)-1]
		dropped++
	}
	if dropped == 0 {
		return false
	}

	note := &discordgo.MessageEmbedField{
		Name:  "…",
		Value: fmt.Sprintf("残り%d件は添付ファイルを参照してください", dropped),
	}
	// 注記の分の余裕を作る
	for len(embed.Fields) > 0 && (len(embed.Fields)+1 > embedFieldsLimit || embedLength(embed)+fieldLength(note) > embedTotalLimit) {
		embed.Fields = embed.Fields[:len(embed.Fields)-1]
		dropped++
		note.Value = fmt.Sprintf("残り%d件は添付ファイルを参照してください", dropped)
	}
	embed.Fields = append(embed.Fields, note)
	return true
}

// embedLength は、Discordが上限判定に使う埋め込みの合計文字数を返します
func embedLength(embed *discordgo.MessageEmbed) int {
	length := utf8.RuneCountInString(embed.Title) + utf8.RuneCountInString(embed.Description)
	if embed.Footer != nil {
		length += utf8.RuneCountInString(embed.Footer.Text)
	}
	for _, field := range embed.Fields {
		length += fieldLength(field)
	}
	return length
}

func fieldLength(field *discordgo.MessageEmbedField) int {
	return utf8.RuneCountInString(field.Name) + utf8.RuneCountInString(field.Value)
}

// cardTranscript は、カードの全文をテキストファイル用に整形します
func cardTranscript(card domain.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "案 %d (%s)\n", card.Index, card.PlatformLabel)
	fmt.Fprintf(&b, "理由: %s\n", card.Reasoning)

	for i, segment := range card.Segments {
		b.WriteString("\n")
		if len(card.Segments) > 1 {
			fmt.Fprintf(&b, "--- %d/%d (%d文字) ---\n", i+1, len(card.Segments), segment.CharCount)
		} else {
			fmt.Fprintf(&b, "--- %d文字 ---\n", segment.CharCount)
		}
		b.WriteString(segment.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// imageFileName は、MIMEタイプに合った添付ファイル名を返します
func imageFileName(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "draft-image.jpg"
	case "image/webp":
		return "draft-image.webp"
	default:
		return "draft-image.png"
	}
}

// isTimeoutError は、エラーがタイムアウトエラーかどうかを判定します
func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// タイムアウト関連のエラーメッセージを検出
	errorMsg := strings.ToLower(err.Error())
	timeoutKeywords := []string{
		"timeout",
		"タイムアウト",
		"deadline exceeded",
		"context deadline",
	}

	for _, keyword := range timeoutKeywords {
		if strings.Contains(errorMsg, keyword) {
			return true
		}
	}
	return false
}

// formatError は、エラーを利用者向けのメッセージにフォーマットします
func formatError(err error) string {
	if err == nil {
		return "❌ **不明なエラーが発生しました**"
	}

	var message string
	switch {
	case isTimeoutError(err):
		message = "⏰ **タイムアウトしました**\n\n処理に時間がかかりすぎました。以下の対処法をお試しください：\n\n" +
			"- トピックを短くしてみる\n" +
			"- 検索や画像生成をオフにする\n" +
			"- しばらく待ってから再度お試しください\n\n" +
			"ご不便をおかけして申し訳ございません。"
	case errors.Is(err, domain.ErrInvalidRequest):
		message = fmt.Sprintf("⚠️ **入力内容に誤りがあります**\n%s", err.Error())
	case errors.Is(err, domain.ErrBlockedBySafety):
		message = "🚫 **安全フィルターにより生成がブロックされました**\n\n" +
			"トピックに不適切な内容が含まれている可能性があります。\n" +
			"より適切な表現で再度お試しください。"
	case errors.Is(err, domain.ErrNoUsableVariations), errors.Is(err, domain.ErrMalformedResponse):
		message = "❌ **有効な投稿候補を生成できませんでした**\nもう一度お試しください。"
	default:
		message = fmt.Sprintf("❌ **エラーが発生しました**\n%s", err.Error())
	}

	return domain.NewTextLimiter(DiscordMessageLimit).Truncate(message)
}
