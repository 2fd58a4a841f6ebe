package http

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address string
	app     *fiber.App
	logger  logging.Logger
}

func NewServer(address string, app *fiber.App, l logging.Logger) *Server {
	return &Server{address: address, app: app, logger: l.With("module", "http_server")}
}

// Run listens until ctx is cancelled, then shuts the app down.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(sctx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
	return s.app.Listen(s.address)
}
