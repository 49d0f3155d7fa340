package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"postdraft/internal/application"
	"postdraft/internal/domain"
	"postdraft/internal/infrastructure/config"
)

// fakeUpstream は、generateContentを模倣するテスト用のGemini APIサーバーです
type fakeUpstream struct {
	mu       sync.Mutex
	status   int
	response string
	paths    []string
	bodies   []map[string]any
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.bodies = append(f.bodies, body)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	_, _ = w.Write([]byte(f.response))
}

func newTestClient(t *testing.T, upstream *fakeUpstream) *GeminiAPIClient {
	t.Helper()

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	cfg := config.DefaultGeminiConfig()
	cfg.APIKey = "test-api-key"
	cfg.BaseURL = server.URL + "/"

	client, err := NewGeminiAPIClient(context.Background(), cfg, nil)
	require.NoError(t, err)
	return client
}

func textRequest(mode domain.ResponseMode) application.TextGenerationRequest {
	return application.TextGenerationRequest{
		Prompt: domain.DraftPrompt{
			SystemInstruction: "You are a social media manager.",
			UserPrompt:        "Topic: \"AI\"",
		},
		Mode: mode,
	}
}

func TestNewGeminiAPIClient_RequiresAPIKey(t *testing.T) {
	client, err := NewGeminiAPIClient(context.Background(), &config.GeminiConfig{}, nil)
	assert.Nil(t, client)
	assert.Error(t, err)

	client, err = NewGeminiAPIClient(context.Background(), nil, nil)
	assert.Nil(t, client)
	assert.Error(t, err)
}

func TestGeminiAPIClient_GenerateText_Structured(t *testing.T) {
	upstream := &fakeUpstream{
		response: `{"candidates": [{
			"content": {"role": "model", "parts": [{"text": "{\"variations\": "}, {"text": "[]}"}]},
			"finishReason": "STOP"
		}]}`,
	}
	client := newTestClient(t, upstream)

	raw, err := client.GenerateText(context.Background(), textRequest(domain.ResponseModeStructured))
	require.NoError(t, err)
	assert.Equal(t, `{"variations": []}`, raw.Text)
	assert.Empty(t, raw.Sources)

	require.Len(t, upstream.paths, 1)
	assert.True(t, strings.HasSuffix(upstream.paths[0], "models/gemini-2.5-flash:generateContent"), upstream.paths[0])

	body := upstream.bodies[0]
	assert.NotContains(t, body, "tools")
	generationConfig, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", generationConfig["responseMimeType"])
	assert.Contains(t, generationConfig, "responseSchema")
	assert.Contains(t, body, "systemInstruction")
	assert.Contains(t, body, "safetySettings")
}

func TestGeminiAPIClient_GenerateText_SearchGrounding(t *testing.T) {
	upstream := &fakeUpstream{
		response: `{"candidates": [{
			"content": {"role": "model", "parts": [{"text": "VARIATION_START ..."}]},
			"finishReason": "STOP",
			"groundingMetadata": {"groundingChunks": [
				{"web": {"uri": "https://example.com/news", "title": "Example News"}},
				{"retrievedContext": {"uri": "gs://ignored"}},
				{"web": {"uri": "https://blog.example.org/post", "title": ""}}
			]}
		}]}`,
	}
	client := newTestClient(t, upstream)

	raw, err := client.GenerateText(context.Background(), textRequest(domain.ResponseModeDelimited))
	require.NoError(t, err)
	assert.Equal(t, "VARIATION_START ...", raw.Text)
	assert.Equal(t, []domain.GroundingSource{
		{Title: "Example News", URI: "https://example.com/news"},
		{Title: "", URI: "https://blog.example.org/post"},
	}, raw.Sources)

	body := upstream.bodies[0]
	tools, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)
	assert.Contains(t, tools[0], "googleSearch")

	if generationConfig, ok := body["generationConfig"].(map[string]any); ok {
		assert.NotContains(t, generationConfig, "responseMimeType")
		assert.NotContains(t, generationConfig, "responseSchema")
	}
}

func TestGeminiAPIClient_GenerateText_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		expected error
	}{
		{
			name:     "APIエラー",
			status:   http.StatusBadRequest,
			response: `{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`,
			expected: domain.ErrUpstreamFailure,
		},
		{
			name:     "候補なし",
			response: `{"candidates": []}`,
			expected: domain.ErrUpstreamFailure,
		},
		{
			name:     "プロンプトがブロックされた",
			response: `{"promptFeedback": {"blockReason": "SAFETY"}}`,
			expected: domain.ErrBlockedBySafety,
		},
		{
			name:     "安全フィルター",
			response: `{"candidates": [{"finishReason": "SAFETY", "safetyRatings": [{"category": "HARM_CATEGORY_HARASSMENT", "probability": "HIGH"}]}]}`,
			expected: domain.ErrBlockedBySafety,
		},
		{
			name:     "著作権検出",
			response: `{"candidates": [{"finishReason": "RECITATION"}]}`,
			expected: domain.ErrBlockedBySafety,
		},
		{
			name:     "Contentなし",
			response: `{"candidates": [{"finishReason": "MAX_TOKENS"}]}`,
			expected: domain.ErrUpstreamFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, &fakeUpstream{status: tt.status, response: tt.response})

			raw, err := client.GenerateText(context.Background(), textRequest(domain.ResponseModeStructured))
			assert.Nil(t, raw)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestGeminiAPIClient_GenerateText_UpstreamMessageSurfaced(t *testing.T) {
	client := newTestClient(t, &fakeUpstream{
		status:   http.StatusBadRequest,
		response: `{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`,
	})

	_, err := client.GenerateText(context.Background(), textRequest(domain.ResponseModeStructured))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestGeminiAPIClient_GenerateImage(t *testing.T) {
	data := base64.StdEncoding.EncodeToString([]byte("fake-png"))
	upstream := &fakeUpstream{
		response: `{"candidates": [{
			"content": {"role": "model", "parts": [
				{"text": "Here is your image"},
				{"inlineData": {"mimeType": "image/png", "data": "` + data + `"}}
			]},
			"finishReason": "STOP"
		}]}`,
	}
	client := newTestClient(t, upstream)

	image, err := client.GenerateImage(context.Background(), domain.NewPostImageRequest("AI", domain.PostStyleHype))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-png"), image.Data)
	assert.Equal(t, "image/png", image.MIMEType)

	require.Len(t, upstream.paths, 1)
	assert.True(t, strings.HasSuffix(upstream.paths[0], "models/gemini-2.5-flash-image:generateContent"), upstream.paths[0])

	generationConfig, ok := upstream.bodies[0]["generationConfig"].(map[string]any)
	require.True(t, ok)
	imageConfig, ok := generationConfig["imageConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1:1", imageConfig["aspectRatio"])
}

func TestGeminiAPIClient_GenerateImage_NoInlineData(t *testing.T) {
	client := newTestClient(t, &fakeUpstream{
		response: `{"candidates": [{"content": {"role": "model", "parts": [{"text": "I cannot draw that."}]}, "finishReason": "STOP"}]}`,
	})

	image, err := client.GenerateImage(context.Background(), domain.NewPostImageRequest("AI", domain.PostStyleHype))
	assert.Nil(t, image)
	assert.ErrorIs(t, err, domain.ErrNoImageData)
}

func TestProcessImageResponse_DefaultMIMEType(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				nil,
				{InlineData: &genai.Blob{Data: []byte{}}},
				{InlineData: &genai.Blob{Data: []byte{0x89, 0x50}}},
			}},
		}},
	}

	image, err := processImageResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50}, image.Data)
	assert.Equal(t, defaultImageMIMEType, image.MIMEType)
}

func TestProcessResponse_SkipsThoughtParts(t *testing.T) {
	client := &GeminiAPIClient{config: config.DefaultGeminiConfig()}
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "answer"},
			}},
		}},
	}

	raw, err := client.processResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "answer", raw.Text)
	assert.Nil(t, raw.Sources)
}

func TestFirstCandidate_NilResponse(t *testing.T) {
	_, err := firstCandidate(nil)
	assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
}

func TestCreateGenerateConfig(t *testing.T) {
	client := &GeminiAPIClient{config: config.DefaultGeminiConfig()}

	structured := client.createGenerateConfig(textRequest(domain.ResponseModeStructured))
	assert.Equal(t, "application/json", structured.ResponseMIMEType)
	require.NotNil(t, structured.ResponseSchema)
	assert.Equal(t, genai.TypeObject, structured.ResponseSchema.Type)
	assert.Empty(t, structured.Tools)
	require.NotNil(t, structured.SystemInstruction)
	assert.Len(t, structured.SafetySettings, 4)
	assert.Equal(t, int32(8192), structured.MaxOutputTokens)

	search := client.createGenerateConfig(textRequest(domain.ResponseModeDelimited))
	assert.Empty(t, search.ResponseMIMEType)
	assert.Nil(t, search.ResponseSchema)
	require.Len(t, search.Tools, 1)
	assert.NotNil(t, search.Tools[0].GoogleSearch)
}

func TestVariationsResponseSchema(t *testing.T) {
	schema := variationsResponseSchema()

	variations := schema.Properties["variations"]
	require.NotNil(t, variations)
	assert.Equal(t, genai.TypeArray, variations.Type)

	item := variations.Items
	require.NotNil(t, item)
	assert.ElementsMatch(t, []string{"content", "reasoning"}, item.Required)
	assert.Equal(t, genai.TypeArray, item.Properties["content"].Type)
	assert.Equal(t, genai.TypeString, item.Properties["content"].Items.Type)
	assert.Equal(t, genai.TypeString, item.Properties["reasoning"].Type)
}

func TestFormatSafetyRatings(t *testing.T) {
	assert.Equal(t, "詳細情報なし", formatSafetyRatings(nil))

	ratings := []*genai.SafetyRating{
		{Category: genai.HarmCategoryHarassment, Probability: genai.HarmProbabilityHigh},
		nil,
		{Category: genai.HarmCategoryDangerousContent, Probability: genai.HarmProbabilityLow},
	}
	assert.Equal(t, "ハラスメント: 高レベル, 危険なコンテンツ: 低レベル", formatSafetyRatings(ratings))
}

func TestGeminiAPIClient_Close(t *testing.T) {
	client := &GeminiAPIClient{}
	assert.NoError(t, client.Close())
}
