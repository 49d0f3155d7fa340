package domain

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis は、切り詰めたテキストの末尾に付ける記号です
const Ellipsis = "…"

// TextLimiter は、表示先の文字数制限に合わせてテキストを切り詰めるドメインサービスです
type TextLimiter struct {
	maxLength int // 最大文字数（ルーン数）
}

// NewTextLimiter は新しいTextLimiterインスタンスを作成します
func NewTextLimiter(maxLength int) *TextLimiter {
	if maxLength < 1 {
		maxLength = 1
	}
	return &TextLimiter{maxLength: maxLength}
}

// MaxLength は最大文字数を返します
func (tl *TextLimiter) MaxLength() int {
	return tl.maxLength
}

// Truncate は、テキストを最大文字数に収めます。
// 切り詰めた場合は末尾に省略記号を付け、文の区切りが近くにあればそこで切ります
func (tl *TextLimiter) Truncate(text string) string {
	if utf8.RuneCountInString(text) <= tl.maxLength {
		return text
	}

	// 省略記号の分を確保
	runes := []rune(text)[:tl.maxLength-1]
	cut := string(runes)

	// 完全な文で終わるように調整
	if idx := lastSentenceEnd(cut); idx > 0 && utf8.RuneCountInString(cut[idx:]) < 50 {
		cut = cut[:idx]
	}

	return strings.TrimRight(cut, " \n") + Ellipsis
}

// FitLines は、先頭から順に行を追加し、改行を含めて最大文字数に収まる行だけを返します
func (tl *TextLimiter) FitLines(lines []string) []string {
	var fitted []string
	currentLength := 0

	for _, line := range lines {
		lineLength := utf8.RuneCountInString(line)
		if len(fitted) > 0 {
			lineLength++ // 改行
		}

		if currentLength+lineLength > tl.maxLength {
			break
		}
		fitted = append(fitted, line)
		currentLength += lineLength
	}
	return fitted
}

// lastSentenceEnd は、最後の文末記号の直後のバイト位置を返します
func lastSentenceEnd(text string) int {
	best := -1
	for _, mark := range []string{"。", ". ", "! ", "? ", "\n"} {
		if idx := strings.LastIndex(text, mark); idx >= 0 {
			end := idx + len(strings.TrimRight(mark, " "))
			if end > best {
				best = end
			}
		}
	}
	return best
}
