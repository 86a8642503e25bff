package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcdev12/workshop/go/internal/dbconfig"
	"github.com/mcdev12/workshop/go/internal/models"
	"github.com/mcdev12/workshop/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteStore persists the identity in a small key/value table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the identity database.
func OpenSQLite(ctx context.Context, cfg dbconfig.Config) (*SQLiteStore, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open identity database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping identity database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create identity schema: %w", err)
	}

	log.Debug().Str("path", cfg.Path).Msg("identity database opened")
	return &SQLiteStore{db: db}, nil
}

// Load returns the stored identity, or a zero identity if none is stored.
func (s *SQLiteStore) Load(ctx context.Context) (models.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM kv WHERE key IN (?, ?)`, KeyUserID, KeyName)
	if err != nil {
		return models.Identity{}, fmt.Errorf("query identity: %w", err)
	}
	defer rows.Close()

	var id models.Identity
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Identity{}, fmt.Errorf("scan identity: %w", err)
		}
		switch key {
		case KeyUserID:
			id.UserID = value
		case KeyName:
			id.Name = value
		}
	}
	if err := rows.Err(); err != nil {
		return models.Identity{}, fmt.Errorf("read identity: %w", err)
	}

	// a half-written identity is as good as none
	if id.UserID == "" {
		return models.Identity{}, nil
	}
	return id, nil
}

// Save stores id, replacing any previous identity.
func (s *SQLiteStore) Save(ctx context.Context, id models.Identity) error {
	if id.UserID == "" {
		return errors.New("identity has no user id")
	}
	err := sqlutil.Run(ctx, s.db, func(tx *sql.Tx) error {
		const upsert = `INSERT INTO kv (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`
		if _, err := tx.ExecContext(ctx, upsert, KeyUserID, id.UserID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, upsert, KeyName, id.Name)
		return err
	})
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// Clear deletes the stored identity.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	err := sqlutil.Run(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key IN (?, ?)`, KeyUserID, KeyName)
		return err
	})
	if err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
