package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"postdraft/internal/domain"
	"postdraft/internal/observability"
)

// DefaultRequestTimeout は、1回の生成要求に許される既定の時間です
const DefaultRequestTimeout = 60 * time.Second

// DraftApplicationService は、下書き生成要求をトリガーに、一連の処理を制御するアプリケーションサービスです
type DraftApplicationService struct {
	promptBuilder  *domain.PromptBuilder
	geminiClient   GeminiClient
	imageService   *ImageGenerationService
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewDraftApplicationService は新しいDraftApplicationServiceインスタンスを作成します
func NewDraftApplicationService(
	geminiClient GeminiClient,
	requestTimeout time.Duration,
	logger *zap.Logger,
) (*DraftApplicationService, error) {
	if geminiClient == nil {
		return nil, fmt.Errorf("GeminiClientが指定されていません")
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DraftApplicationService{
		promptBuilder:  domain.NewPromptBuilder(),
		geminiClient:   geminiClient,
		imageService:   NewImageGenerationService(geminiClient, logger),
		requestTimeout: requestTimeout,
		logger:         logger,
	}, nil
}

// Generate は、リクエストから3つの投稿候補を生成します。
// 画像が要求された場合はテキスト生成と並行して画像を生成し、その失敗は結果に影響しません
func (s *DraftApplicationService) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GeneratedResult, error) {
	req = req.Normalized()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 呼び出し元のリクエストIDを引き継ぐ
	requestID := observability.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = observability.WithRequestID(ctx, requestID)
	}

	logger := s.logger.With(
		zap.String("request_id", requestID),
		zap.String("platform", string(req.Platform)),
		zap.String("style", string(req.Style)),
		zap.String("format", string(req.Format)),
		zap.Bool("search", req.UseSearch),
		zap.Bool("image", req.GenerateImage),
	)
	logger.Info("下書きの生成を開始")
	started := time.Now()

	// コンテキストにタイムアウトを設定
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	parser := domain.NewResponseParser(req.UseSearch)
	textRequest := TextGenerationRequest{
		Prompt: s.promptBuilder.Build(req),
		Mode:   parser.Mode(),
	}

	var (
		raw   *domain.RawResponse
		image *domain.GeneratedImage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		response, err := s.geminiClient.GenerateText(gctx, textRequest)
		if err != nil {
			return err
		}
		raw = response
		return nil
	})

	if req.GenerateImage {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logger.Warn("画像生成中にパニックが発生したため、画像なしで続行します", zap.Any("panic", r))
				}
			}()

			generated, err := s.imageService.GeneratePostImage(gctx, req.Topic, req.Style)
			if err != nil {
				logger.Warn("画像生成に失敗したため、画像なしで続行します", zap.Error(err))
				return nil
			}
			image = generated
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logger.Error("Gemini APIからの応答取得がタイムアウトしました", zap.Error(err))
			return nil, fmt.Errorf("Gemini APIからの応答取得がタイムアウトしました: %w: %v", context.DeadlineExceeded, err)
		}
		logger.Error("Gemini APIからの応答取得に失敗", zap.Error(err))
		return nil, fmt.Errorf("Gemini APIからの応答取得に失敗: %w", err)
	}

	if raw == nil {
		raw = &domain.RawResponse{}
	}

	parsed, err := parser.Parse(*raw, req)
	if err != nil {
		logger.Error("応答の解析に失敗", zap.String("mode", parser.Mode().String()), zap.Error(err))
		return nil, err
	}
	if len(parsed.Options) == 0 {
		logger.Warn("有効なバリエーションがありません", zap.Int("response_length", len(raw.Text)))
		return nil, domain.ErrNoUsableVariations
	}

	options := parsed.Options
	if len(options) > domain.VariationCount {
		options = options[:domain.VariationCount]
	}

	result := &domain.GeneratedResult{
		Options: options,
		Sources: parsed.Sources,
	}
	if result.Sources == nil {
		result.Sources = []domain.GroundingSource{}
	}
	if image != nil {
		result.ImageData = image.Base64()
		result.ImageMIMEType = image.MIMEType
	}

	logger.Info("下書きの生成が完了",
		zap.Int("options", len(result.Options)),
		zap.Int("sources", len(result.Sources)),
		zap.Bool("has_image", result.HasImage()),
		zap.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}
