package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// invitePermissions は、/draft の応答に必要な権限の合計です
const invitePermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionEmbedLinks |
	discordgo.PermissionAttachFiles

var inviteCmd = &cobra.Command{
	Use:   "invite-url",
	Short: "Discord Botの招待URLを表示します",
	RunE:  runInvite,
}

func init() {
	rootCmd.AddCommand(inviteCmd)
}

func runInvite(cmd *cobra.Command, _ []string) error {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "警告: .envファイルの読み込みに失敗しました: %v\n", err)
	}

	// Bot Tokenを取得
	botToken := os.Getenv("DISCORD_BOT_TOKEN")
	if botToken == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN が設定されていません")
	}

	// Discordセッションを作成
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return fmt.Errorf("Discordセッションの作成に失敗: %w", err)
	}
	defer session.Close()

	// Botの情報を取得
	user, err := session.User("@me")
	if err != nil {
		return fmt.Errorf("Bot情報の取得に失敗: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "🤖 Bot情報:\n")
	fmt.Fprintf(out, "   名前: %s\n", user.Username)
	fmt.Fprintf(out, "   Client ID: %s\n\n", user.ID)

	fmt.Fprintf(out, "🔗 Bot招待URL:\n")
	fmt.Fprintf(out, "   %s\n\n", inviteURL(user.ID))

	fmt.Fprintf(out, "📋 必要な権限:\n")
	fmt.Fprintf(out, "   - View Channels (%d)\n", discordgo.PermissionViewChannel)
	fmt.Fprintf(out, "   - Send Messages (%d)\n", discordgo.PermissionSendMessages)
	fmt.Fprintf(out, "   - Embed Links (%d)\n", discordgo.PermissionEmbedLinks)
	fmt.Fprintf(out, "   - Attach Files (%d)\n", discordgo.PermissionAttachFiles)
	fmt.Fprintf(out, "   - 合計: %d\n\n", invitePermissions)

	fmt.Fprintf(out, "🎯 使い方:\n")
	fmt.Fprintf(out, "   1. 上記のURLからBotをサーバーに招待\n")
	fmt.Fprintf(out, "   2. postdraft serve で起動\n")
	fmt.Fprintf(out, "   3. チャンネルで /draft topic:<トピック> を実行\n")
	return nil
}

// inviteURL は、Botとスラッシュコマンドのスコープを持つ招待URLを返します
func inviteURL(clientID string) string {
	query := url.Values{}
	query.Set("client_id", clientID)
	query.Set("permissions", fmt.Sprintf("%d", invitePermissions))
	query.Set("scope", "bot applications.commands")
	return "https://discord.com/api/oauth2/authorize?" + query.Encode()
}
