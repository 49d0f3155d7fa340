package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// VariationsJSONSchema は、構造化モードの応答が満たすべきJSON Schemaです。
// Gemini側のレスポンススキーマと同じ形を表します
const VariationsJSONSchema = `{
  "type": "object",
  "properties": {
    "variations": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "content": {
            "type": "array",
            "items": { "type": "string" }
          },
          "reasoning": { "type": "string" }
        },
        "required": ["content", "reasoning"]
      }
    }
  }
}`

var (
	variationsSchemaOnce sync.Once
	variationsSchema     *gojsonschema.Schema
	variationsSchemaErr  error
)

func compiledVariationsSchema() (*gojsonschema.Schema, error) {
	variationsSchemaOnce.Do(func() {
		variationsSchema, variationsSchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(VariationsJSONSchema))
	})
	return variationsSchema, variationsSchemaErr
}

type variationsPayload struct {
	Variations []DraftOption `json:"variations"`
}

// StructuredParser は、スキーマで制約されたJSON応答をデータとして解析します
type StructuredParser struct{}

// NewStructuredParser は新しいStructuredParserインスタンスを作成します
func NewStructuredParser() *StructuredParser {
	return &StructuredParser{}
}

// Mode は、構造化モードを返します
func (p *StructuredParser) Mode() ResponseMode {
	return ResponseModeStructured
}

// Parse は、JSON応答を検証してから候補に変換します。JSONが不正な場合は部分的な回復を行いません
func (p *StructuredParser) Parse(raw RawResponse, _ GenerateRequest) (*ParsedResponse, error) {
	text := stripCodeFence(raw.Text)
	if text == "" {
		text = `{"variations": []}`
	}

	schema, err := compiledVariationsSchema()
	if err != nil {
		return nil, fmt.Errorf("JSON Schemaの読み込みに失敗: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(details, "; "))
	}

	var payload variationsPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	options := make([]DraftOption, 0, len(payload.Variations))
	for _, v := range payload.Variations {
		segments := cleanSegments(v.Content)
		if len(segments) == 0 {
			continue
		}
		options = append(options, DraftOption{
			Content:   segments,
			Reasoning: strings.TrimSpace(v.Reasoning),
		})
	}

	return &ParsedResponse{
		Options: options,
		Sources: []GroundingSource{},
	}, nil
}
