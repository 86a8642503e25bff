package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/mcdev12/workshop/go/internal/session/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds configuration for the broker transport
type NATSConfig struct {
	URL           string
	StreamName    string
	SubjectPrefix string // e.g., "workshop"
	SessionID     string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns default broker transport configuration
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		StreamName:    "WORKSHOP_STATE",
		SubjectPrefix: "workshop",
		SessionID:     "default",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// StateSubject carries state_update frames; the stream keeps the last one per session.
func (c NATSConfig) StateSubject() string {
	return fmt.Sprintf("%s.%s.state", c.SubjectPrefix, c.SessionID)
}

// ControlSubject carries session_restart and identity_confirmed frames.
func (c NATSConfig) ControlSubject() string {
	return fmt.Sprintf("%s.%s.control", c.SubjectPrefix, c.SessionID)
}

// ActionSubject receives outbound join, vote and host frames.
func (c NATSConfig) ActionSubject() string {
	return fmt.Sprintf("%s.%s.actions", c.SubjectPrefix, c.SessionID)
}

// NATSTransport receives snapshots from a JetStream stream and publishes
// actions on core NATS. An ordered consumer starting at the last message per
// subject hands a late joiner the current snapshot first.
type NATSTransport struct {
	config  NATSConfig
	handler Handler
	nc      *nats.Conn
	js      jetstream.JetStream
}

// NewNATSTransport connects to NATS and prepares JetStream.
func NewNATSTransport(config NATSConfig, handler Handler) (*NATSTransport, error) {
	t := &NATSTransport{config: config, handler: handler}

	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
			handler.HandleConnected()
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	t.nc = nc
	t.js = js
	return t, nil
}

// Run consumes snapshots and control messages until ctx is cancelled.
func (t *NATSTransport) Run(ctx context.Context) error {
	consumer, err := t.js.OrderedConsumer(ctx, t.config.StreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{t.config.StateSubject()},
		DeliverPolicy:  jetstream.DeliverLastPerSubjectPolicy,
	})
	if err != nil {
		return fmt.Errorf("create ordered consumer: %w", err)
	}

	sub, err := t.nc.Subscribe(t.config.ControlSubject(), func(msg *nats.Msg) {
		in, err := events.Decode(msg.Data)
		if err != nil {
			log.Warn().Err(err).Str("subject", msg.Subject).Msg("dropping undecodable control message")
			return
		}
		Dispatch(t.handler, in)
	})
	if err != nil {
		return fmt.Errorf("subscribe control: %w", err)
	}
	defer sub.Unsubscribe()

	// queued ahead of the first snapshot from the consumer
	t.handler.HandleConnected()

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		in, err := decodeStateMessage(msg)
		if err != nil {
			log.Warn().Err(err).Str("subject", msg.Subject()).Msg("dropping undecodable snapshot")
			return
		}
		Dispatch(t.handler, in)
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	log.Info().
		Str("stream", t.config.StreamName).
		Str("state_subject", t.config.StateSubject()).
		Str("control_subject", t.config.ControlSubject()).
		Msg("NATS transport started")

	<-ctx.Done()
	log.Info().Msg("NATS transport shutting down")
	return t.Close()
}

// Send publishes an outbound frame on the session's action subject.
func (t *NATSTransport) Send(ctx context.Context, typ events.Type, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !t.nc.IsConnected() {
		return ErrNotConnected
	}

	frame, err := events.Encode(typ, payload)
	if err != nil {
		return err
	}
	if err := t.nc.Publish(t.config.ActionSubject(), frame); err != nil {
		return fmt.Errorf("publish %s: %w", typ, err)
	}
	return nil
}

// Close drains the connection.
func (t *NATSTransport) Close() error {
	log.Info().Msg("closing NATS transport")
	if t.nc != nil {
		return t.nc.Drain()
	}
	return nil
}

func decodeStateMessage(msg jetstream.Msg) (events.Inbound, error) {
	var streamSeq uint64
	if meta, err := msg.Metadata(); err == nil {
		streamSeq = meta.Sequence.Stream
	}
	return decodeState(msg.Data(), streamSeq)
}

// decodeState decodes a frame from the state stream. Snapshots without their
// own sequence number are numbered by the stream sequence.
func decodeState(data []byte, streamSeq uint64) (events.Inbound, error) {
	in, err := events.Decode(data)
	if err != nil {
		return nil, err
	}
	if update, ok := in.(events.StateUpdate); ok && update.Snapshot.Seq == 0 {
		update.Snapshot.Seq = streamSeq
		return update, nil
	}
	return in, nil
}
