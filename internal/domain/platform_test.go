package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFor(t *testing.T) {
	x := ProfileFor(PlatformX)
	assert.Equal(t, "X (Twitter)", x.Label)
	assert.Equal(t, 280, x.CharLimit)
	assert.Equal(t, "@AI_Expert", x.Handle)

	linkedin := ProfileFor(PlatformLinkedIn)
	assert.Equal(t, 3000, linkedin.CharLimit)
	assert.Equal(t, "LinkedIn", linkedin.Label)

	// 未知のプラットフォームはXとして扱う
	assert.Equal(t, x, ProfileFor("unknown"))
}

func TestPlatformProfile_ShareLink(t *testing.T) {
	link := ProfileFor(PlatformX).ShareLink("Hello world & more")
	assert.Equal(t, "https://twitter.com/intent/tweet?text=Hello+world+%26+more", link)

	link = ProfileFor(PlatformLinkedIn).ShareLink("Hi")
	assert.Equal(t, "https://www.linkedin.com/feed/?shareActive=true&text=Hi", link)
}

func TestParsePlatformProfiles_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"YAMLが不正", "x: [unterminated"},
		{"未知のキー", "mastodon:\n  char_limit: 500\n  system_instruction: a\n"},
		{"char_limitが0", "x:\n  char_limit: 0\n  system_instruction: a\nlinkedin:\n  char_limit: 3000\n  system_instruction: b\n"},
		{"system_instructionが空", "x:\n  char_limit: 280\nlinkedin:\n  char_limit: 3000\n  system_instruction: b\n"},
		{"プラットフォームが欠けている", "x:\n  char_limit: 280\n  system_instruction: a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlatformProfiles([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParsePlatformProfiles_Embedded(t *testing.T) {
	parsed, err := ParsePlatformProfiles(platformsYAML)
	require.NoError(t, err)
	assert.Len(t, parsed, len(AllPlatforms()))
}
