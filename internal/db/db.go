// Package db opens short-lived PostgreSQL connections.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const pingTimeout = 5 * time.Second

// Opener returns a ready connection handle. Callers own the handle and must close it.
type Opener func(ctx context.Context) (*sql.DB, error)

// Open creates a single-connection handle for databaseURL and validates it.
// Handles are not pooled across requests; each caller opens and closes its own.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("database url is empty")
	}

	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return conn, nil
}

// NewOpener binds Open to a fixed connection string.
func NewOpener(databaseURL string) Opener {
	return func(ctx context.Context) (*sql.DB, error) {
		return Open(ctx, databaseURL)
	}
}
