package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server は、下書き生成のHTTP JSON APIサーバーです
type Server struct {
	router *chi.Mux
	server *http.Server
	addr   string
	logger *zap.Logger
}

// NewServer は新しいServerインスタンスを作成します
func NewServer(addr string, drafter Drafter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(RequestLogger(logger))
	r.Use(Recovery(logger))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, "リソースが見つかりません")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, "許可されていないメソッドです")
	})

	h := &handlers{drafter: drafter, logger: logger}
	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/options", h.listOptions)
		r.Post("/drafts", h.createDraft)
	})

	return &Server{
		router: r,
		server: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		addr:   addr,
		logger: logger,
	}
}

// Start は、HTTPサーバーを起動します。Shutdownで停止した場合はnilを返します
func (s *Server) Start() error {
	s.logger.Info("HTTPサーバーを起動します", zap.String("addr", s.addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown は、HTTPサーバーを正常に停止します
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTPサーバーを停止します")
	return s.server.Shutdown(ctx)
}

// Handler は、テスト用にルーターを返します
func (s *Server) Handler() http.Handler {
	return s.router
}
