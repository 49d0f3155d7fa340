package config

import "time"

// GeminiConfig は、Gemini API関連の設定を定義します
type GeminiConfig struct {
	APIKey         string
	BaseURL        string // 空の場合はSDKの既定エンドポイント
	ModelName      string
	ImageModelName string // 画像生成用モデル名
	MaxTokens      int32
	Temperature    float32
	TopP           float32
}

// DefaultGeminiConfig は、デフォルトのGemini設定を返します
func DefaultGeminiConfig() *GeminiConfig {
	return &GeminiConfig{
		ModelName:      "gemini-2.5-flash",
		ImageModelName: "gemini-2.5-flash-image",
		MaxTokens:      8192,
		Temperature:    0.9,
		TopP:           0.95,
	}
}

// DraftConfig は、下書き生成に関する設定を定義します
type DraftConfig struct {
	RequestTimeout time.Duration
}

// HTTPConfig は、HTTP APIサーバーの設定を定義します
type HTTPConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// DiscordConfig は、Discord関連の設定を定義します
type DiscordConfig struct {
	BotToken string
	GuildID  string // 設定された場合はギルド限定でコマンドを登録
}

// Enabled は、Discord Botを起動するかどうかを判定します
func (c DiscordConfig) Enabled() bool {
	return c.BotToken != ""
}

// LogConfig は、ログ出力の設定を定義します
type LogConfig struct {
	Level  string
	Format string // console または json
}
