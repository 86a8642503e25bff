package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mcdev12/workshop/go/internal/identity"
	"github.com/mcdev12/workshop/go/internal/render"
	"github.com/mcdev12/workshop/go/internal/session/events"
	"github.com/mcdev12/workshop/go/internal/session/gateway"
	"github.com/mcdev12/workshop/go/internal/session/reconcile"
	"github.com/mcdev12/workshop/go/internal/tui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// relay forwards sends to the transport once it exists; the transport in turn
// needs the controller as its handler.
type relay struct {
	mu        sync.RWMutex
	transport gateway.Transport
}

func (r *relay) set(t gateway.Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transport = t
}

func (r *relay) Send(ctx context.Context, t events.Type, payload any) error {
	r.mu.RLock()
	transport := r.transport
	r.mu.RUnlock()
	if transport == nil {
		return gateway.ErrNotConnected
	}
	return transport.Send(ctx, t, payload)
}

func runSession(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logFile, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctrlCfg, err := cfg.Controller()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database → identity store
	var identities reconcile.IdentityStore
	if noPersist, _ := cmd.Flags().GetBool("no-persist"); noPersist {
		identities = identity.NewMemoryStore()
	} else {
		store, closeStore, err := openIdentityStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		identities = store
	}

	// Surface → controller → transport
	var (
		ui      *tui.App
		surface render.Surface
		opts    []reconcile.Option
	)
	if cfg.Headless {
		surface = render.NewLogSurface(log.Logger)
	} else {
		ui = tui.New(ctrlCfg.Role, cfg.JoinURL)
		surface = ui.Surface()
		opts = append(opts, reconcile.WithReady(ui.Ready()))
	}

	sender := &relay{}
	ctrl := reconcile.NewController(ctrlCfg, surface, sender, identities, opts...)

	transport, err := gateway.NewTransport(cfg.Gateway(), ctrl)
	if err != nil {
		return err
	}
	sender.set(transport)

	log.Info().
		Str("role", string(ctrlCfg.Role)).
		Str("timer_policy", string(ctrlCfg.TimerPolicy)).
		Str("transport", cfg.Transport).
		Bool("headless", cfg.Headless).
		Msg("starting workshop client")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := ctrl.Run(ctx); err != nil {
			log.Error().Err(err).Msg("session controller stopped")
		}
	}()
	go func() {
		defer wg.Done()
		if err := transport.Run(ctx); err != nil {
			log.Error().Err(err).Msg("transport stopped")
			stop()
		}
	}()
	statusDone := startStatusServer(ctx, cfg, ctrl)

	if name, _ := cmd.Flags().GetString("name"); name != "" {
		go autoJoin(ctx, ctrl, name)
	}

	if ui != nil {
		ui.Bind(ctrl)
		if err := ui.Run(ctx); err != nil {
			log.Error().Err(err).Msg("terminal UI failed")
		}
		stop()
	} else {
		<-ctx.Done()
	}

	log.Info().Msg("shutting down")
	wg.Wait()
	<-statusDone
	log.Info().Msg("workshop client shutdown complete")
	return nil
}

// autoJoin joins under name unless an identity is already stored.
func autoJoin(ctx context.Context, ctrl *reconcile.Controller, name string) {
	st, err := ctrl.Status(ctx)
	if err != nil || st.UserID != "" || st.Role != reconcile.RoleParticipant {
		return
	}
	if err := ctrl.Join(ctx, name); err != nil {
		log.Warn().Err(err).Str("name", name).Msg("automatic join failed")
	}
}
