package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"postdraft/internal/domain"
)

// maxRequestBodyBytes は、下書き生成リクエストの最大サイズです
const maxRequestBodyBytes = 64 << 10

// Drafter は、下書き生成を行うアプリケーションサービスのインターフェースです
type Drafter interface {
	Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GeneratedResult, error)
}

// DraftResponse は、POST /api/drafts の応答です
type DraftResponse struct {
	Result *domain.GeneratedResult `json:"result"`
	Cards  []domain.Card           `json:"cards"`
}

// ErrorResponse は、エラー応答の形式です
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// OptionItem は、選択肢の値と表示名の組です
type OptionItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionsResponse は、GET /api/options の応答です
type OptionsResponse struct {
	Styles    []OptionItem `json:"styles"`
	Formats   []OptionItem `json:"formats"`
	Platforms []OptionItem `json:"platforms"`
}

type handlers struct {
	drafter Drafter
	logger  *zap.Logger
}

// createDraft は、下書きを生成してカードとともに返します
func (h *handlers) createDraft(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateRequest
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "リクエストのJSONが不正です: "+err.Error())
		return
	}

	result, err := h.drafter.Generate(r.Context(), req)
	if err != nil {
		status := statusForError(err)
		h.logger.Warn("下書きの生成に失敗",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Int("status", status),
			zap.Error(err),
		)
		writeError(w, r, status, err.Error())
		return
	}

	platform := req.Platform
	if platform == "" {
		platform = domain.PlatformX
	}

	writeJSON(w, http.StatusOK, DraftResponse{
		Result: result,
		Cards:  domain.BuildCards(result, platform),
	})
}

// listOptions は、スタイル・形式・プラットフォームの選択肢を返します
func (h *handlers) listOptions(w http.ResponseWriter, _ *http.Request) {
	resp := OptionsResponse{}
	for _, s := range domain.AllPostStyles() {
		resp.Styles = append(resp.Styles, OptionItem{Value: string(s), Label: s.DisplayName()})
	}
	for _, f := range domain.AllPostFormats() {
		resp.Formats = append(resp.Formats, OptionItem{Value: string(f), Label: f.DisplayName()})
	}
	for _, p := range domain.AllPlatforms() {
		resp.Platforms = append(resp.Platforms, OptionItem{Value: string(p), Label: p.DisplayName()})
	}
	writeJSON(w, http.StatusOK, resp)
}

// health は、死活監視用のエンドポイントです
func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusForError は、ドメインのエラーをHTTPステータスに対応付けます
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:     message,
		RequestID: GetRequestID(r.Context()),
	})
}
