// Package upload accepts files, stores them in the bucket and keeps an audit
// trail of every upload in PostgreSQL.
package upload

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/geoiq/gateway/internal/db"
)

// Record is one row of the uploads audit table.
type Record struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	UploadTime time.Time `json:"uploadTime"`
}

const createUploadsTable = `CREATE TABLE IF NOT EXISTS uploads (
	id          BIGSERIAL PRIMARY KEY,
	filename    VARCHAR(255) NOT NULL,
	upload_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// EnsureSchema creates the uploads table if it does not exist.
func EnsureSchema(ctx context.Context, q execer) error {
	if _, err := q.ExecContext(ctx, createUploadsTable); err != nil {
		return fmt.Errorf("ensure uploads table: %w", err)
	}
	return nil
}

// Repository appends audit rows. Every call uses its own connection.
type Repository struct {
	open db.Opener
}

// NewRepository creates a new Repository that connects through open.
func NewRepository(open db.Opener) *Repository {
	return &Repository{open: open}
}

// Record inserts one audit row for filename and commits it.
func (r *Repository) Record(ctx context.Context, filename string) (*Record, error) {
	conn, err := r.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := EnsureSchema(ctx, tx); err != nil {
		return nil, err
	}

	rec := &Record{}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO uploads (filename) VALUES ($1)
		 RETURNING id, filename, upload_time`,
		filename,
	).Scan(&rec.ID, &rec.Filename, &rec.UploadTime)
	if err != nil {
		return nil, fmt.Errorf("insert upload record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}
