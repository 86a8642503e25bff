package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcdev12/workshop/go/internal/dbconfig"
	"github.com/mcdev12/workshop/go/internal/session/gateway"
	"github.com/mcdev12/workshop/go/internal/session/reconcile"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingServerURL = errors.New("server url is required for the websocket transport")
	ErrMissingNATSURL   = errors.New("nats url is required for the nats transport")
	ErrMissingSession   = errors.New("session id is required for the nats transport")
)

type Config struct {
	Role        string `yaml:"role"`
	TimerPolicy string `yaml:"timer_policy"`
	Transport   string `yaml:"transport"`
	Headless    bool   `yaml:"headless"`
	JoinURL     string `yaml:"join_url"`

	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`

	WebSocket struct {
		URL              string `yaml:"url"`
		PingIntervalSec  int    `yaml:"ping_interval_sec"`
		ReconnectWaitSec int    `yaml:"reconnect_wait_sec"`
	} `yaml:"websocket"`

	NATS struct {
		URL           string `yaml:"url"`
		Stream        string `yaml:"stream"`
		SubjectPrefix string `yaml:"subject_prefix"`
		SessionID     string `yaml:"session_id"`
	} `yaml:"nats"`

	Identity dbconfig.Config `yaml:"identity"`

	Status struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"status"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{
		Role:      string(reconcile.RoleParticipant),
		Transport: string(gateway.KindWebSocket),
		Identity:  dbconfig.Default(),
	}
	c.Log.Level = "info"
	c.WebSocket.URL = "ws://localhost:8000/ws"
	c.WebSocket.PingIntervalSec = 30
	c.WebSocket.ReconnectWaitSec = 1

	nats := gateway.DefaultNATSConfig()
	c.NATS.URL = nats.URL
	c.NATS.Stream = nats.StreamName
	c.NATS.SubjectPrefix = nats.SubjectPrefix
	c.NATS.SessionID = nats.SessionID
	return c
}

// Load builds the configuration from defaults, the YAML file at path (if
// any) and WORKSHOP_* environment variables, in that order.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	c.Role = getEnv("WORKSHOP_ROLE", c.Role)
	c.TimerPolicy = getEnv("WORKSHOP_TIMER_POLICY", c.TimerPolicy)
	c.Transport = getEnv("WORKSHOP_TRANSPORT", c.Transport)
	c.JoinURL = getEnv("WORKSHOP_JOIN_URL", c.JoinURL)
	c.Headless = getEnvAsBool("WORKSHOP_HEADLESS", c.Headless)
	c.Log.Level = getEnv("WORKSHOP_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("WORKSHOP_LOG_FILE", c.Log.File)
	c.WebSocket.URL = getEnv("WORKSHOP_SERVER_URL", c.WebSocket.URL)
	c.WebSocket.PingIntervalSec = getEnvAsInt("WORKSHOP_PING_INTERVAL_SEC", c.WebSocket.PingIntervalSec)
	c.NATS.URL = getEnv("WORKSHOP_NATS_URL", c.NATS.URL)
	c.NATS.SessionID = getEnv("WORKSHOP_SESSION_ID", c.NATS.SessionID)
	c.Status.Addr = getEnv("WORKSHOP_STATUS_ADDR", c.Status.Addr)
	c.Identity.ApplyEnv()
}

// Validate returns the first problem found.
func (c *Config) Validate() error {
	if _, err := c.Controller(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	switch gateway.Kind(c.Transport) {
	case gateway.KindWebSocket:
		if c.WebSocket.URL == "" {
			return ErrMissingServerURL
		}
	case gateway.KindNATS:
		if c.NATS.URL == "" {
			return ErrMissingNATSURL
		}
		if c.NATS.SessionID == "" {
			return ErrMissingSession
		}
	default:
		return fmt.Errorf("%w: %q", gateway.ErrUnknownKind, c.Transport)
	}
	return nil
}

// Controller returns the session controller settings.
func (c *Config) Controller() (reconcile.Config, error) {
	role, err := reconcile.ParseRole(c.Role)
	if err != nil {
		return reconcile.Config{}, err
	}
	policy, err := reconcile.ParseTimerPolicy(c.TimerPolicy, role)
	if err != nil {
		return reconcile.Config{}, err
	}
	return reconcile.Config{Role: role, TimerPolicy: policy}, nil
}

// Gateway returns the transport settings.
func (c *Config) Gateway() gateway.Config {
	g := gateway.DefaultConfig()
	g.Kind = gateway.Kind(c.Transport)

	g.Client.URL = c.WebSocket.URL
	if c.WebSocket.PingIntervalSec > 0 {
		g.Client.PingInterval = time.Duration(c.WebSocket.PingIntervalSec) * time.Second
	}
	if c.WebSocket.ReconnectWaitSec > 0 {
		g.Client.ReconnectWait = time.Duration(c.WebSocket.ReconnectWaitSec) * time.Second
	}

	g.NATS.URL = c.NATS.URL
	g.NATS.StreamName = c.NATS.Stream
	g.NATS.SubjectPrefix = c.NATS.SubjectPrefix
	g.NATS.SessionID = c.NATS.SessionID
	return g
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
