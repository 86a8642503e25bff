package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/workshop/go/internal/session/events"
	"github.com/rs/zerolog/log"
)

// ClientConfig holds configuration for the coordinator WebSocket connection
type ClientConfig struct {
	URL              string
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration
	PingInterval     time.Duration
	HandshakeTimeout time.Duration
	MaxMessageSize   int64
	SendBufferSize   int
	ReconnectWait    time.Duration
	MaxReconnectWait time.Duration
}

// DefaultClientConfig returns default WebSocket client configuration
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:              "ws://localhost:8000/ws",
		WriteTimeout:     10 * time.Second,
		ReadTimeout:      60 * time.Second,
		PingInterval:     30 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		MaxMessageSize:   1 << 20, // snapshots carry every user and team
		SendBufferSize:   16,
		ReconnectWait:    time.Second,
		MaxReconnectWait: 30 * time.Second,
	}
}

// WSClient keeps a WebSocket connection to the coordinator open, decodes pushed
// messages for a Handler and sends outbound messages.
type WSClient struct {
	config  ClientConfig
	dialer  *websocket.Dialer
	handler Handler

	mu      sync.RWMutex
	current *connection
}

// connection is one live socket. send is never closed; writers stop on done.
type connection struct {
	id          string
	conn        *websocket.Conn
	send        chan []byte
	done        chan struct{}
	connectedAt time.Time
}

// NewWSClient creates a client. Call Run to connect.
func NewWSClient(config ClientConfig, handler Handler) *WSClient {
	return &WSClient{
		config:  config,
		handler: handler,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.HandshakeTimeout,
		},
	}
}

// Run connects and keeps reconnecting with exponential backoff until ctx is cancelled.
func (c *WSClient) Run(ctx context.Context) error {
	log.Info().Str("url", c.config.URL).Msg("websocket client started")

	wait := c.config.ReconnectWait
	for {
		conn, _, err := c.dialer.DialContext(ctx, c.config.URL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn().
				Err(err).
				Str("url", c.config.URL).
				Dur("retry_in", wait).
				Msg("failed to connect to coordinator")

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			wait = min(wait*2, c.config.MaxReconnectWait)
			continue
		}

		wait = c.config.ReconnectWait
		c.serve(ctx, conn)

		if ctx.Err() != nil {
			log.Info().Msg("websocket client shutting down")
			return nil
		}
	}
}

// Send encodes and queues an outbound message on the live connection.
func (c *WSClient) Send(ctx context.Context, t events.Type, payload any) error {
	frame, err := events.Encode(t, payload)
	if err != nil {
		return err
	}

	c.mu.RLock()
	cn := c.current
	c.mu.RUnlock()
	if cn == nil {
		return ErrNotConnected
	}

	select {
	case cn.send <- frame:
		return nil
	case <-cn.done:
		return ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connected reports whether a connection is currently up.
func (c *WSClient) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil
}

// serve runs one connection until it drops or ctx is cancelled.
func (c *WSClient) serve(ctx context.Context, conn *websocket.Conn) {
	cn := &connection{
		id:          uuid.New().String(),
		conn:        conn,
		send:        make(chan []byte, c.config.SendBufferSize),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
	}

	c.mu.Lock()
	c.current = cn
	c.mu.Unlock()

	log.Info().
		Str("connection_id", cn.id).
		Str("url", c.config.URL).
		Msg("connected to coordinator")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.writePump(cn)
	}()
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(c.config.WriteTimeout)
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = cn.conn.WriteControl(websocket.CloseMessage, msg, deadline)
			cn.conn.Close()
		case <-cn.done:
		}
	}()

	c.handler.HandleConnected()
	c.readPump(cn)

	c.mu.Lock()
	if c.current == cn {
		c.current = nil
	}
	c.mu.Unlock()
	close(cn.done)
	cn.conn.Close()
	wg.Wait()

	log.Info().
		Str("connection_id", cn.id).
		Dur("uptime", time.Since(cn.connectedAt)).
		Msg("disconnected from coordinator")
}

// writePump sends queued frames and keepalive pings
func (c *WSClient) writePump(cn *connection) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cn.done:
			return

		case frame := <-cn.send:
			cn.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := cn.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", cn.id).
					Msg("failed to write message to WebSocket")
				cn.conn.Close()
				return
			}

		case <-ticker.C:
			cn.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := cn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", cn.id).
					Msg("failed to send ping")
				cn.conn.Close()
				return
			}
		}
	}
}

// readPump decodes frames until the connection fails
func (c *WSClient) readPump(cn *connection) {
	cn.conn.SetReadLimit(c.config.MaxMessageSize)
	cn.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	cn.conn.SetPongHandler(func(string) error {
		cn.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		return nil
	})

	for {
		_, frame, err := cn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().
					Err(err).
					Str("connection_id", cn.id).
					Msg("unexpected WebSocket close")
			}
			return
		}
		cn.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		in, err := events.Decode(frame)
		if err != nil {
			log.Warn().
				Err(err).
				Str("connection_id", cn.id).
				Int("bytes", len(frame)).
				Msg("dropping undecodable frame")
			continue
		}
		Dispatch(c.handler, in)
	}
}
