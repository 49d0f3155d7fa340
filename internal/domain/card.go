package domain

import "unicode/utf8"

// Segment は、カード内の1投稿分の表示情報です
type Segment struct {
	Text      string `json:"text"`
	CharCount int    `json:"charCount"`
	OverLimit bool   `json:"overLimit"`
	ShareURL  string `json:"shareUrl"`
}

// Card は、1つの候補をプラットフォーム向けのプレビューとして表したものです
type Card struct {
	Index         int       `json:"index"`
	PlatformLabel string    `json:"platformLabel"`
	Handle        string    `json:"handle"`
	Reasoning     string    `json:"reasoning"`
	IsThread      bool      `json:"isThread"`
	Segments      []Segment `json:"segments"`
}

// BuildCards は、生成結果の各候補から表示用カードを作成します。
// 文字数はルーン単位で数え、上限を超えたセグメントには印を付けます
func BuildCards(result *GeneratedResult, platform Platform) []Card {
	if result == nil {
		return []Card{}
	}

	profile := ProfileFor(platform)
	cards := make([]Card, 0, len(result.Options))

	for i, option := range result.Options {
		segments := make([]Segment, 0, len(option.Content))
		for _, text := range option.Content {
			count := utf8.RuneCountInString(text)
			segments = append(segments, Segment{
				Text:      text,
				CharCount: count,
				OverLimit: count > profile.CharLimit,
				ShareURL:  profile.ShareLink(text),
			})
		}

		cards = append(cards, Card{
			Index:         i + 1,
			PlatformLabel: profile.Label,
			Handle:        profile.Handle,
			Reasoning:     option.Reasoning,
			IsThread:      option.IsThread(),
			Segments:      segments,
		})
	}
	return cards
}
