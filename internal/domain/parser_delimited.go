package domain

import (
	"regexp"
	"strings"
)

// DefaultSearchReasoning は、REASONING行が欠けている候補に付ける説明です
const DefaultSearchReasoning = "Generated based on search results."

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenVariationStart
	tokenVariationEnd
	tokenContentStart
	tokenContentEnd
	tokenReasoning
)

type token struct {
	kind tokenKind
	text string
}

// markerTokens は、トークナイザーが認識するマーカーです
var markerTokens = []struct {
	marker string
	kind   tokenKind
}{
	{MarkerVariationStart, tokenVariationStart},
	{MarkerVariationEnd, tokenVariationEnd},
	{MarkerContentStart, tokenContentStart},
	{MarkerContentEnd, tokenContentEnd},
	{MarkerReasoning, tokenReasoning},
}

var blankLinePattern = regexp.MustCompile(`\r?\n\s*\n`)

// DelimitedParser は、マーカー文法に従う自由テキスト応答を解析します。
// 壊れたバリエーションは読み飛ばし、エラーにはしません
type DelimitedParser struct{}

// NewDelimitedParser は新しいDelimitedParserインスタンスを作成します
func NewDelimitedParser() *DelimitedParser {
	return &DelimitedParser{}
}

// Mode は、区切りテキストモードを返します
func (p *DelimitedParser) Mode() ResponseMode {
	return ResponseModeDelimited
}

// Parse は、応答テキストをバリエーションごとに解析し、引用元を正規化します
func (p *DelimitedParser) Parse(raw RawResponse, req GenerateRequest) (*ParsedResponse, error) {
	tokens := tokenize(stripCodeFence(raw.Text))
	splitParagraphs := req.Platform == PlatformX && req.IsThread()

	var options []DraftOption
	for _, block := range splitVariations(tokens) {
		option, ok := parseVariation(block, splitParagraphs)
		if !ok {
			continue
		}
		options = append(options, option)
	}

	return &ParsedResponse{
		Options: options,
		Sources: NormalizeSources(raw.Sources),
	}, nil
}

// tokenize は、テキストをマーカーとその間のテキストに分解します
func tokenize(text string) []token {
	var tokens []token
	rest := text

	for len(rest) > 0 {
		idx, kind, size := nextMarker(rest)
		if idx < 0 {
			tokens = append(tokens, token{kind: tokenText, text: rest})
			break
		}
		if idx > 0 {
			tokens = append(tokens, token{kind: tokenText, text: rest[:idx]})
		}
		tokens = append(tokens, token{kind: kind, text: rest[idx : idx+size]})
		rest = rest[idx+size:]
	}
	return tokens
}

// nextMarker は、最も手前にあるマーカーの位置・種類・長さを返します
func nextMarker(text string) (int, tokenKind, int) {
	best, bestKind, bestSize := -1, tokenText, 0
	for _, m := range markerTokens {
		idx := strings.Index(text, m.marker)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best, bestKind, bestSize = idx, m.kind, len(m.marker)
		}
	}
	return best, bestKind, bestSize
}

// splitVariations は、VARIATION_STARTごとにトークン列を分割します。
// 最初のマーカーより前の部分も1つのブロックとして扱います
func splitVariations(tokens []token) [][]token {
	var blocks [][]token
	var current []token

	for _, t := range tokens {
		if t.kind == tokenVariationStart {
			if len(current) > 0 {
				blocks = append(blocks, current)
			}
			current = nil
			continue
		}
		current = append(current, t)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

// parseVariation は、1つのブロックから候補を取り出します。
// CONTENT_STARTとCONTENT_ENDの間は、他のマーカーを含めてそのまま本文になります。
// CONTENT_START/CONTENT_ENDが揃っていない、または本文が空の場合は false を返します
func parseVariation(block []token, splitParagraphs bool) (DraftOption, bool) {
	start := indexOfKind(block, tokenContentStart, 0)
	if start < 0 {
		return DraftOption{}, false
	}

	var content strings.Builder
	end := -1
	for i := start + 1; i < len(block); i++ {
		t := block[i]
		if t.kind == tokenContentEnd {
			end = i
			break
		}
		content.WriteString(t.text)
	}
	if end < 0 {
		return DraftOption{}, false
	}

	segments := splitSegments(content.String(), splitParagraphs)
	if len(segments) == 0 {
		return DraftOption{}, false
	}

	return DraftOption{
		Content:   segments,
		Reasoning: extractReasoning(block, end+1),
	}, true
}

// splitSegments は、本文を区切り文字で分割します。
// スレッドで1セグメントしか得られない場合は空行で再分割します
func splitSegments(content string, splitParagraphs bool) []string {
	segments := cleanSegments(strings.Split(content, SegmentSeparator))
	if splitParagraphs && len(segments) == 1 {
		fallback := cleanSegments(blankLinePattern.Split(content, -1))
		if len(fallback) > 1 {
			return fallback
		}
	}
	return segments
}

// extractReasoning は、REASONING: からVARIATION_ENDまで（なければブロック末尾まで）のテキストを返します
func extractReasoning(block []token, from int) string {
	idx := indexOfKind(block, tokenReasoning, from)
	if idx < 0 {
		return DefaultSearchReasoning
	}

	var reasoning strings.Builder
	for _, t := range block[idx+1:] {
		if t.kind == tokenVariationEnd {
			break
		}
		reasoning.WriteString(t.text)
	}

	text := strings.TrimSpace(reasoning.String())
	if text == "" {
		return DefaultSearchReasoning
	}
	return text
}

func indexOfKind(tokens []token, kind tokenKind, from int) int {
	for i := from; i < len(tokens); i++ {
		if tokens[i].kind == kind {
			return i
		}
	}
	return -1
}
