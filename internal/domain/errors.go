package domain

import "errors"

// ドメイン固有のエラー型を定義
var (
	// ErrInvalidRequest は、生成リクエストが不正な場合のエラーです
	ErrInvalidRequest = errors.New("無効な生成リクエストです")

	// ErrUpstreamFailure は、Gemini APIの呼び出し自体が失敗した場合のエラーです
	ErrUpstreamFailure = errors.New("Gemini APIの呼び出しに失敗しました")

	// ErrBlockedBySafety は、安全フィルターで応答がブロックされた場合のエラーです
	ErrBlockedBySafety = errors.New("安全フィルターによって応答がブロックされました")

	// ErrMalformedResponse は、構造化応答のJSONが解析できない場合のエラーです
	ErrMalformedResponse = errors.New("構造化応答を解析できませんでした")

	// ErrNoUsableVariations は、解析後に有効なバリエーションが1件も残らなかった場合のエラーです
	ErrNoUsableVariations = errors.New("応答から有効なバリエーションを取得できませんでした")

	// ErrNoImageData は、画像生成応答にインライン画像が含まれていない場合のエラーです
	ErrNoImageData = errors.New("応答に画像データが含まれていません")
)
