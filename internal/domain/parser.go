package domain

import (
	"net/url"
	"strings"
)

// ResponseMode は、テキスト生成呼び出しの応答形式です
type ResponseMode int

const (
	// ResponseModeStructured はスキーマで制約されたJSON応答です（検索なし）
	ResponseModeStructured ResponseMode = iota
	// ResponseModeDelimited はマーカー文法に従う自由テキスト応答です（検索あり）
	ResponseModeDelimited
)

// String はResponseModeの名前を返します
func (m ResponseMode) String() string {
	switch m {
	case ResponseModeStructured:
		return "structured"
	case ResponseModeDelimited:
		return "delimited"
	default:
		return "unknown"
	}
}

// ParsedResponse は、応答を解析して得られた候補と引用元です
type ParsedResponse struct {
	Options []DraftOption
	Sources []GroundingSource
}

// ResponseParser は、テキスト生成の応答を候補のリストに正規化します
type ResponseParser interface {
	// Mode は、このパーサーが前提とする応答形式を返します
	Mode() ResponseMode

	// Parse は、応答テキストとメタデータから候補を取り出します
	Parse(raw RawResponse, req GenerateRequest) (*ParsedResponse, error)
}

// NewResponseParser は、検索グラウンディングの有無に応じたパーサーを返します。
// Gemini APIは検索ツールとレスポンススキーマを同時に使えないため、2つの形式を切り替えます
func NewResponseParser(useSearch bool) ResponseParser {
	if useSearch {
		return NewDelimitedParser()
	}
	return NewStructuredParser()
}

// stripCodeFence は、応答全体を囲むMarkdownのコードブロックを除去します
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// 先頭行（```json など）を除去
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// NormalizeSources は、URIのない引用元を除外し、URIで重複を除去します。順序は保持されます
func NormalizeSources(sources []GroundingSource) []GroundingSource {
	result := make([]GroundingSource, 0, len(sources))
	seen := make(map[string]struct{}, len(sources))

	for _, s := range sources {
		uri := strings.TrimSpace(s.URI)
		if uri == "" {
			continue
		}
		if _, dup := seen[uri]; dup {
			continue
		}
		seen[uri] = struct{}{}

		title := strings.TrimSpace(s.Title)
		if title == "" {
			title = hostOf(uri)
		}
		result = append(result, GroundingSource{Title: title, URI: uri})
	}
	return result
}

func hostOf(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return uri
	}
	return u.Host
}
