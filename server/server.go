// Package server exposes the vault over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/becomeliminal/memory-vault/core"
	"github.com/becomeliminal/memory-vault/ingest"
	"github.com/becomeliminal/memory-vault/log"
)

// Store persists records and reports how many exist.
type Store interface {
	AddBatch(ctx context.Context, records []core.Record) error
	Count(ctx context.Context) (int, error)
}

// Ingester turns uploads into records.
type Ingester interface {
	Process(ctx context.Context, uploads []core.Upload) []ingest.Outcome
}

// Answerer responds to questions.
type Answerer interface {
	Answer(ctx context.Context, query string, k int) (*core.Answer, error)
}

// Config holds server tunables.
type Config struct {
	Addr string

	// ModelTimeout bounds each request that reaches a model.
	ModelTimeout time.Duration

	// TopK is used when a query does not set k.
	TopK int

	// MaxUploadBytes bounds multipart bodies. Zero uses 64 MiB.
	MaxUploadBytes int64
}

const defaultMaxUploadBytes = 64 << 20

// Server routes requests to the vault components.
type Server struct {
	echo     *echo.Echo
	store    Store
	ingester Ingester
	answerer Answerer
	media    *ingest.MediaDir
	cfg      Config
	upgrader websocket.Upgrader
}

// New creates a Server with its routes registered.
func New(ctx context.Context, cfg Config, store Store, ingester Ingester, answerer Answerer, media *ingest.MediaDir) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = 2 * time.Minute
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		store:    store,
		ingester: ingester,
		answerer: answerer,
		media:    media,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	e.Use(middleware.Recover())
	e.Use(withLogger(log.Component(ctx, "server")))
	e.Use(requestLogger())

	e.GET("/health", s.handleHealth)
	e.GET("/media/:name", s.handleMedia)
	e.GET("/ws", s.handleWebSocket)

	api := e.Group("/api")
	api.POST("/memories", s.handleUpload, middleware.BodyLimit(byteLimit(cfg.MaxUploadBytes)))
	api.POST("/query", s.handleQuery)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	logger := log.Component(ctx, "server")

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.cfg.Addr).Msg("listening")
		errCh <- s.echo.Start(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) modelContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.ModelTimeout)
}
