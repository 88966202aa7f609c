package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/farouk15160/roku-voice-bridge/internal/bridge"
)

// maxBodyBytes bounds an inbound voice request.
const maxBodyBytes = 64 << 10

// Handler is the request entry point the server hosts.
type Handler interface {
	Handle(body []byte) (interface{}, error)
}

// HealthFunc reports whether the broker connection is usable.
type HealthFunc func() bool

// Server exposes the dispatcher over HTTP.
type Server struct {
	echo    *echo.Echo
	handler Handler
	healthy HealthFunc
	name    string
	log     *zap.Logger
}

// New builds the echo instance and registers routes. healthy may be nil.
func New(name, path string, h Handler, healthy HealthFunc, log *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		handler: h,
		healthy: healthy,
		name:    name,
		log:     log.Named("server"),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", maxBodyBytes>>10)))
	e.Use(s.requestLogger)

	e.POST(path, s.handleVoice)
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Echo exposes the underlying router, mainly for tests.
func (s *Server) Echo() *echo.Echo { return s.echo }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.Info("HTTP server listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleVoice(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			// body limit exceeded mid-stream
			return he
		}
		s.log.Error("Failed to read request body", zap.Error(err))
		err = fmt.Errorf("failed to read request body: %w", err)
		return c.JSON(StatusFor(err), bridge.NewErrorEnvelope(err))
	}

	resp, err := s.handler.Handle(body)
	if err != nil {
		return c.JSON(StatusFor(err), resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c echo.Context) error {
	status, code := "ok", http.StatusOK
	if s.healthy != nil && !s.healthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]string{
		"status":  status,
		"service": s.name,
	})
}

// StatusFor maps a bridge error kind to an HTTP status code.
func StatusFor(err error) int {
	switch bridge.KindOf(err) {
	case bridge.KindUnsupportedShape, bridge.KindUnsupportedDirective,
		bridge.KindUnsupportedIntent, bridge.KindMissingSlot:
		return http.StatusBadRequest
	case bridge.KindBrokerUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
