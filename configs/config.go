package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"postdraft/internal/infrastructure/config"
)

// Config は、アプリケーション全体の設定を定義します
type Config struct {
	Gemini  config.GeminiConfig
	Draft   config.DraftConfig
	HTTP    config.HTTPConfig
	Discord config.DiscordConfig
	Log     config.LogConfig
}

// LoadConfig は、環境変数から設定を読み込みます
func LoadConfig() (*Config, error) {
	// .envファイルを読み込み（ファイルが存在しない場合は無視）
	if err := godotenv.Load(); err != nil {
		// .envファイルが存在しない場合は警告のみ出力（エラーにはしない）
		fmt.Fprintf(os.Stderr, "警告: .envファイルの読み込みに失敗しました: %v\n", err)
	}

	defaults := config.DefaultGeminiConfig()
	cfg := &Config{
		Gemini: config.GeminiConfig{
			APIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
			BaseURL:        getEnvOrDefault("GEMINI_BASE_URL", ""),
			ModelName:      getEnvOrDefault("GEMINI_MODEL_NAME", defaults.ModelName),
			ImageModelName: getEnvOrDefault("GEMINI_IMAGE_MODEL_NAME", defaults.ImageModelName),
			MaxTokens:      int32(getEnvAsIntOrDefault("GEMINI_MAX_TOKENS", int(defaults.MaxTokens))),
			Temperature:    float32(getEnvAsFloatOrDefault("GEMINI_TEMPERATURE", float64(defaults.Temperature))),
			TopP:           float32(getEnvAsFloatOrDefault("GEMINI_TOP_P", float64(defaults.TopP))),
		},
		Draft: config.DraftConfig{
			RequestTimeout: getEnvAsDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		},
		HTTP: config.HTTPConfig{
			Host:            getEnvOrDefault("HTTP_HOST", "127.0.0.1"),
			Port:            getEnvAsIntOrDefault("HTTP_PORT", 8080),
			ShutdownTimeout: getEnvAsDurationOrDefault("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Discord: config.DiscordConfig{
			BotToken: getEnvOrDefault("DISCORD_BOT_TOKEN", ""),
			GuildID:  getEnvOrDefault("DISCORD_GUILD_ID", ""),
		},
		Log: config.LogConfig{
			Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "console")),
		},
	}

	// 必須設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate は、設定の妥当性を検証します
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY が設定されていません")
	}

	if c.Gemini.ModelName == "" {
		return fmt.Errorf("GEMINI_MODEL_NAME が設定されていません")
	}

	if c.Gemini.ImageModelName == "" {
		return fmt.Errorf("GEMINI_IMAGE_MODEL_NAME が設定されていません")
	}

	if c.Gemini.MaxTokens <= 0 {
		return fmt.Errorf("GEMINI_MAX_TOKENS は正の整数である必要があります")
	}

	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return fmt.Errorf("GEMINI_TEMPERATURE は0から2の範囲である必要があります")
	}

	if c.Gemini.TopP < 0 || c.Gemini.TopP > 1 {
		return fmt.Errorf("GEMINI_TOP_P は0から1の範囲である必要があります")
	}

	if c.Draft.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT は正の値である必要があります")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT は1から65535の範囲である必要があります")
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT は console または json である必要があります: %s", c.Log.Format)
	}

	return nil
}

// HTTPAddr は、HTTPサーバーの待ち受けアドレスを返します
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// getEnvOrDefault は、環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は、環境変数を整数として取得し、存在しない場合はデフォルト値を返します
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault は、環境変数を浮動小数点数として取得し、存在しない場合はデフォルト値を返します
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault は、環境変数を時間として取得し、存在しない場合はデフォルト値を返します
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
