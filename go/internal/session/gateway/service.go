package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/workshop/go/internal/session/events"
	"github.com/rs/zerolog/log"
)

// Kind selects the transport to the coordinator.
type Kind string

const (
	KindWebSocket Kind = "websocket"
	KindNATS      Kind = "nats"
)

var ErrUnknownKind = errors.New("unknown transport")

// Transport is a connection to the coordinator: Run receives, Send publishes.
type Transport interface {
	Run(ctx context.Context) error
	Send(ctx context.Context, t events.Type, payload any) error
}

// Config holds configuration for the coordinator transport
type Config struct {
	Kind   Kind
	Client ClientConfig
	NATS   NATSConfig
}

// DefaultConfig returns default configuration for the coordinator transport
func DefaultConfig() Config {
	return Config{
		Kind:   KindWebSocket,
		Client: DefaultClientConfig(),
		NATS:   DefaultNATSConfig(),
	}
}

// NewTransport creates the transport selected by config.Kind.
func NewTransport(config Config, handler Handler) (Transport, error) {
	switch config.Kind {
	case KindWebSocket, "":
		log.Info().Str("url", config.Client.URL).Msg("using websocket transport")
		return NewWSClient(config.Client, handler), nil

	case KindNATS:
		t, err := NewNATSTransport(config.NATS, handler)
		if err != nil {
			return nil, fmt.Errorf("failed to create NATS transport: %w", err)
		}
		log.Info().
			Str("url", config.NATS.URL).
			Str("session_id", config.NATS.SessionID).
			Msg("using NATS transport")
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, config.Kind)
}
