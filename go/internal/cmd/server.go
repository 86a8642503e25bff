package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mcdev12/workshop/go/internal/config"
	"github.com/mcdev12/workshop/go/internal/status"
	"github.com/rs/zerolog/log"
)

// startStatusServer serves the local session state until ctx is cancelled.
// It returns a channel closed once the server has shut down.
func startStatusServer(ctx context.Context, cfg *config.Config, provider status.StateProvider) <-chan struct{} {
	done := make(chan struct{})
	if cfg.Status.Addr == "" {
		close(done)
		return done
	}

	server := status.NewServer(cfg.Status.Addr, cfg.Status.AllowedOrigins, provider)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("status server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("status server failed")
		}
	}()

	go func() {
		defer close(done)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("status server shutdown failed")
		}
	}()
	return done
}
