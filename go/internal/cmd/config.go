package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mcdev12/workshop/go/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const defaultLogFile = "workshop.log"

// loadConfig reads the config file and environment, then applies flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	overrides := []struct {
		flag   string
		target *string
	}{
		{"role", &cfg.Role},
		{"timer-policy", &cfg.TimerPolicy},
		{"transport", &cfg.Transport},
		{"server", &cfg.WebSocket.URL},
		{"session", &cfg.NATS.SessionID},
		{"join-url", &cfg.JoinURL},
		{"status-addr", &cfg.Status.Addr},
		{"db", &cfg.Identity.Path},
	}
	for _, o := range overrides {
		if flags.Lookup(o.flag) != nil && flags.Changed(o.flag) {
			*o.target, _ = flags.GetString(o.flag)
		}
	}
	if flags.Lookup("headless") != nil && flags.Changed("headless") {
		cfg.Headless, _ = flags.GetBool("headless")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupConsoleLogging(cfg *config.Config) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(cfg.LogLevel())
}

// setupLogging points the global logger at the console in headless mode and at
// a file while the terminal UI owns the screen.
func setupLogging(cfg *config.Config) (io.Closer, error) {
	if cfg.Headless && cfg.Log.File == "" {
		setupConsoleLogging(cfg)
		return io.NopCloser(nil), nil
	}

	path := cfg.Log.File
	if path == "" {
		path = defaultLogFile
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(cfg.LogLevel())
	return f, nil
}
