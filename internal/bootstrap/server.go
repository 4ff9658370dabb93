package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

const DefaultShutdownTimeout = 10 * time.Second

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// WithCORS allows browser calls from the given origins only. Credentials are
// allowed, so a wildcard origin is never used.
func WithCORS(h http.Handler, allowedOrigins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	}).Handler(h)
}

// StartHTTPServer serves handler until SIGINT/SIGTERM, then drains in-flight
// requests and runs onShutdown (closing pools and clients).
func StartHTTPServer(handler http.Handler, cfg ServerConfig, onShutdown func()) error {
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return serve(server, quit, cfg.ShutdownTimeout, onShutdown)
}

func serve(server *http.Server, quit <-chan os.Signal, timeout time.Duration, onShutdown func()) error {
	log := zap.L().Named("bootstrap.server")
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server running", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("listen failed", zap.Error(err))
			if onShutdown != nil {
				onShutdown()
			}
			return err
		}
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		log.Error("forced shutdown", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}

	if onShutdown != nil {
		onShutdown()
	}
	return err
}
