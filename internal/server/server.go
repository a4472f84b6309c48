// Пакет server — HTTP-сервер ProAssist: маршрутизация chi,
// middleware (логирование, метрики, аутентификация), graceful shutdown.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/UmanetAlexandru/pro-assist/internal/api/handlers"
	"github.com/UmanetAlexandru/pro-assist/internal/api/middleware"
	"github.com/UmanetAlexandru/pro-assist/internal/config"
)

// Server — HTTP-сервер ProAssist.
type Server struct {
	cfg    *config.Config
	srv    *http.Server
	logger *slog.Logger
}

// New создаёт HTTP-сервер с настроенными маршрутами и middleware.
func New(
	cfg *config.Config,
	api *handlers.APIHandler,
	health *handlers.HealthHandler,
	auth *middleware.APIKeyAuth,
	logger *slog.Logger,
) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.MetricsMiddleware())
	r.Use(auth.Middleware())

	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/records/{phone}", func(r chi.Router) {
		r.Get("/", api.GetRecord)
		r.Post("/", api.UpsertRecord)
		r.Get("/photos/{fileName}", api.GetPhoto)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if cfg.TLSCert != "" {
		srv.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	return &Server{
		cfg:    cfg,
		srv:    srv,
		logger: logger.With(slog.String("component", "http_server")),
	}
}

// Run запускает сервер и блокируется до SIGINT/SIGTERM,
// затем выполняет graceful shutdown с таймаутом из конфигурации.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		var err error
		if s.cfg.TLSCert != "" {
			s.logger.Info("HTTPS-сервер запущен",
				slog.String("addr", s.srv.Addr),
				slog.String("cert", s.cfg.TLSCert),
			)
			err = s.srv.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
		} else {
			s.logger.Info("HTTP-сервер запущен", slog.String("addr", s.srv.Addr))
			err = s.srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("ошибка HTTP-сервера: %w", err)
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
