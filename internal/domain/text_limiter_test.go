package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTextLimiter_Truncate(t *testing.T) {
	limiter := NewTextLimiter(20)

	assert.Equal(t, "短いテキスト", limiter.Truncate("短いテキスト"))

	long := strings.Repeat("長", 30)
	truncated := limiter.Truncate(long)
	assert.Equal(t, 20, utf8.RuneCountInString(truncated))
	assert.True(t, strings.HasSuffix(truncated, Ellipsis))
}

func TestTextLimiter_TruncateAtSentence(t *testing.T) {
	limiter := NewTextLimiter(30)

	text := "First sentence. Second sentence is much longer than the limit."
	assert.Equal(t, "First sentence."+Ellipsis, limiter.Truncate(text))
}

func TestTextLimiter_FitLines(t *testing.T) {
	limiter := NewTextLimiter(10)

	lines := []string{"abcd", "efgh", "ijkl"}
	// "abcd\nefgh" は9文字、3行目を足すと14文字
	assert.Equal(t, []string{"abcd", "efgh"}, limiter.FitLines(lines))
	assert.Empty(t, limiter.FitLines([]string{strings.Repeat("x", 11)}))
}

func TestNewTextLimiter_MinimumLength(t *testing.T) {
	limiter := NewTextLimiter(0)
	assert.Equal(t, 1, limiter.MaxLength())
	assert.Equal(t, Ellipsis, limiter.Truncate("abc"))
}
