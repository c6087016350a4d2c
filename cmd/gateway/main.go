// Command gateway is the single entry point in front of the backend services.
// It forwards /api/* prefixes to their configured upstreams unchanged.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/suivipro/platform/internal/gateway"
	"github.com/suivipro/platform/internal/infrastructure/config"
	"github.com/suivipro/platform/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadGateway(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "gateway"})
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "gateway",
	})

	table, err := gateway.DefaultTable(cfg.AuthServiceURL, cfg.UserServiceURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid route table")
	}
	routes := logger.Component("routes")
	for _, r := range table {
		routes.Info().Str("route", r.Name).Str("prefix", r.Prefix).Str("upstream", r.Upstream.String()).Msg("route registered")
	}

	e, err := gateway.NewServer(gateway.Config{
		Routes:          table,
		UpstreamTimeout: cfg.UpstreamTimeout,
		CORSOrigins:     cfg.CORSOrigins,
		Log:             log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("gateway setup")
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("gateway listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("gateway stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}
