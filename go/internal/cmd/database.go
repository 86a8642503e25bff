package main

import (
	"context"

	"github.com/mcdev12/workshop/go/internal/config"
	"github.com/mcdev12/workshop/go/internal/identity"
	"github.com/mcdev12/workshop/go/internal/session/reconcile"
	"github.com/rs/zerolog/log"
)

func openIdentityStore(ctx context.Context, cfg *config.Config) (reconcile.IdentityStore, func(), error) {
	store, err := identity.OpenSQLite(ctx, cfg.Identity)
	if err != nil {
		return nil, nil, err
	}

	log.Info().Str("path", cfg.Identity.Path).Msg("identity store opened")
	return store, func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close identity store")
		}
	}, nil
}
