package observability

import "context"

type requestIDKey struct{}

// WithRequestID は、リクエストIDを持つコンテキストを返します
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext は、コンテキストからリクエストIDを取り出します。
// 設定されていない場合は空文字列を返します
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}
