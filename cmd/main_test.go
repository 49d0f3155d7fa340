package main

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteURL(t *testing.T) {
	parsed, err := url.Parse(inviteURL("123456"))
	require.NoError(t, err)

	assert.Equal(t, "discord.com", parsed.Host)
	assert.Equal(t, "123456", parsed.Query().Get("client_id"))
	assert.Equal(t, "52224", parsed.Query().Get("permissions"))
	assert.Equal(t, "bot applications.commands", parsed.Query().Get("scope"))
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	assert.True(t, names["serve"])
	assert.True(t, names["generate"])
	assert.True(t, names["invite-url"])
}

func TestGenerateCommand_Flags(t *testing.T) {
	flags := generateCmd.Flags()

	for _, name := range []string{"topic", "style", "format", "platform", "search", "image", "image-out", "output"} {
		assert.NotNil(t, flags.Lookup(name), "フラグ %s が登録されていません", name)
	}
	assert.Equal(t, "professional", flags.Lookup("style").DefValue)
	assert.Equal(t, "x", flags.Lookup("platform").DefValue)
	assert.Equal(t, "draft-image.png", flags.Lookup("image-out").DefValue)
}
