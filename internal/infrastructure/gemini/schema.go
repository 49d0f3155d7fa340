package gemini

import "google.golang.org/genai"

// variationsResponseSchema は、構造化モードで要求する応答スキーマです。
// domain.VariationsJSONSchema と同じ形を表します
func variationsResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"variations": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"content": {
							Type:        genai.TypeArray,
							Items:       &genai.Schema{Type: genai.TypeString},
							Description: "The post content. If it is a thread, this array contains multiple strings. If single post, one string.",
						},
						"reasoning": {
							Type:        genai.TypeString,
							Description: "Why this variation works for the specific style.",
						},
					},
					Required:         []string{"content", "reasoning"},
					PropertyOrdering: []string{"content", "reasoning"},
				},
			},
		},
	}
}
