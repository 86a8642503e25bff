package dbconfig

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Config holds settings for the local SQLite database.
type Config struct {
	Path          string `yaml:"path"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Path:          "workshop.db",
		BusyTimeoutMS: 5000,
	}
}

// ApplyEnv overrides fields set in WORKSHOP_DB_* environment variables.
func (c *Config) ApplyEnv() {
	c.Path = getEnv("WORKSHOP_DB_PATH", c.Path)
	if v := os.Getenv("WORKSHOP_DB_BUSY_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.BusyTimeoutMS = ms
		}
	}
}

// DSN returns the modernc.org/sqlite connection string with pragmas applied per connection.
func (c Config) DSN() string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeoutMS))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + c.Path + "?" + q.Encode()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
