// Package statusapi exposes a small operational endpoint pair for the poller:
// a liveness check and the current sync counters.
package statusapi

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	"github.com/openregatta/timing-sync/internal/platform/logging"
	"github.com/openregatta/timing-sync/internal/usecase"
)

type StatusSource interface {
	Status() usecase.PollerStatus
}

type Server struct {
	addr   string
	source StatusSource
	logger *logging.Logger
	server *fasthttp.Server
}

func NewServer(addr string, source StatusSource, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Default()
	}

	srv := &Server{
		addr:   addr,
		source: source,
		logger: logger,
	}
	srv.server = &fasthttp.Server{
		Handler:          srv.handle,
		Name:             "timing-sync-status",
		DisableKeepalive: false,
	}

	return srv
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("status endpoint listening", "addr", s.addr)
	if err := s.server.ListenAndServe(s.addr); err != nil {
		return fmt.Errorf("status server listen on %s: %w", s.addr, err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.ShutdownWithContext(ctx)
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	switch string(ctx.Path()) {
	case "/healthz":
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetBodyString("ok")
	case "/status":
		s.handleStatus(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx) {
	body, err := sonic.Marshal(s.source.Status())
	if err != nil {
		s.logger.Error("encode poller status", "error", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(body)
}
