package domain

import (
	_ "embed"
	"fmt"
	"net/url"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed platforms.yaml
var platformsYAML []byte

// PlatformProfile は、プラットフォームごとの投稿ルールです
type PlatformProfile struct {
	Label             string `yaml:"label"`
	CharLimit         int    `yaml:"char_limit"`
	ShareURL          string `yaml:"share_url"`
	Handle            string `yaml:"handle"`
	SystemInstruction string `yaml:"system_instruction"`
	SingleInstruction string `yaml:"single_instruction"`
	ThreadInstruction string `yaml:"thread_instruction"`
}

// FormatInstruction は、投稿形式に応じた指示文を返します
func (p PlatformProfile) FormatInstruction(format PostFormat) string {
	if format == PostFormatThread {
		return p.ThreadInstruction
	}
	return p.SingleInstruction
}

// ShareLink は、本文を埋め込んだ共有インテントURLを返します
func (p PlatformProfile) ShareLink(text string) string {
	return p.ShareURL + url.QueryEscape(text)
}

var (
	profilesOnce sync.Once
	profiles     map[Platform]PlatformProfile
	profilesErr  error
)

// ParsePlatformProfiles は、YAMLからプラットフォーム定義を読み込みます
func ParsePlatformProfiles(data []byte) (map[Platform]PlatformProfile, error) {
	var raw map[string]PlatformProfile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("プラットフォーム定義の解析に失敗: %w", err)
	}

	result := make(map[Platform]PlatformProfile, len(raw))
	for key, profile := range raw {
		platform := Platform(key)
		if !platform.IsValid() {
			return nil, fmt.Errorf("未知のプラットフォームです: %s", key)
		}
		if profile.CharLimit <= 0 {
			return nil, fmt.Errorf("%s の char_limit は正の整数である必要があります", key)
		}
		if profile.SystemInstruction == "" {
			return nil, fmt.Errorf("%s の system_instruction が設定されていません", key)
		}
		result[platform] = profile
	}

	for _, p := range AllPlatforms() {
		if _, ok := result[p]; !ok {
			return nil, fmt.Errorf("%s のプラットフォーム定義がありません", p)
		}
	}
	return result, nil
}

// ProfileFor は、埋め込みの定義からプラットフォームのルールを返します
func ProfileFor(platform Platform) PlatformProfile {
	profilesOnce.Do(func() {
		profiles, profilesErr = ParsePlatformProfiles(platformsYAML)
	})
	if profilesErr != nil {
		// 埋め込みファイルはビルド時に固定されるため、ここでの失敗はバグです
		panic(profilesErr)
	}
	if profile, ok := profiles[platform]; ok {
		return profile
	}
	return profiles[PlatformX]
}
