package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"postdraft/internal/observability"
)

// RequestIDHeader は、リクエストIDを運ぶヘッダー名です
const RequestIDHeader = "X-Request-ID"

// RequestID は、各リクエストに一意のIDを付与するミドルウェアです。
// クライアントが送ったIDがあればそれを引き継ぎます
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(observability.WithRequestID(r.Context(), requestID)))
	})
}

// GetRequestID は、コンテキストからリクエストIDを取り出します
func GetRequestID(ctx context.Context) string {
	return observability.RequestIDFromContext(ctx)
}

// RequestLogger は、リクエストごとにステータスと処理時間をログ出力するミドルウェアを返します
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTPリクエスト",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(started)),
			)
		})
	}
}

// Recovery は、パニックを回復して500を返すミドルウェアを返します
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("ハンドラーでパニックが発生しました",
						zap.String("request_id", GetRequestID(r.Context())),
						zap.Any("panic", rec),
						zap.Stack("stack"),
					)
					writeError(w, r, http.StatusInternalServerError, "内部エラーが発生しました")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
