package gemini

import (
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// createSafetySettings は、安全フィルター設定を作成します
func createSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		},
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		},
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		},
	}
}

// formatSafetyRatings は、SafetyRatingsの詳細情報をフォーマットします
func formatSafetyRatings(ratings []*genai.SafetyRating) string {
	var details []string
	for _, rating := range ratings {
		if rating != nil {
			category := translateSafetyCategory(rating.Category)
			probability := translateSafetyProbability(rating.Probability)
			details = append(details, fmt.Sprintf("%s: %s", category, probability))
		}
	}

	if len(details) == 0 {
		return "詳細情報なし"
	}

	return strings.Join(details, ", ")
}

// translateSafetyCategory は、SafetyCategoryを日本語に翻訳します
func translateSafetyCategory(category genai.HarmCategory) string {
	switch category {
	case genai.HarmCategoryHarassment:
		return "ハラスメント"
	case genai.HarmCategoryHateSpeech:
		return "ヘイトスピーチ"
	case genai.HarmCategorySexuallyExplicit:
		return "性的表現"
	case genai.HarmCategoryDangerousContent:
		return "危険なコンテンツ"
	default:
		return string(category)
	}
}

// translateSafetyProbability は、SafetyProbabilityを日本語に翻訳します
func translateSafetyProbability(probability genai.HarmProbability) string {
	switch probability {
	case genai.HarmProbabilityNegligible:
		return "無視できるレベル"
	case genai.HarmProbabilityLow:
		return "低レベル"
	case genai.HarmProbabilityMedium:
		return "中レベル"
	case genai.HarmProbabilityHigh:
		return "高レベル"
	default:
		return string(probability)
	}
}
