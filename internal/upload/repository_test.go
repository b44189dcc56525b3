package upload

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	repo := NewRepository(func(context.Context) (*sql.DB, error) { return conn, nil })
	return repo, mock
}

var (
	createRe = regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS uploads")
	insertRe = regexp.QuoteMeta("INSERT INTO uploads (filename) VALUES ($1)")
)

func TestRepository_Record(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(createRe).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(insertRe).
		WithArgs("report.pdf").
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "upload_time"}).AddRow(int64(7), "report.pdf", now))
	mock.ExpectCommit()
	mock.ExpectClose()

	rec, err := repo.Record(context.Background(), "report.pdf")
	require.NoError(t, err)

	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, "report.pdf", rec.Filename)
	assert.Equal(t, now, rec.UploadTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Record_ConnectFails(t *testing.T) {
	repo := NewRepository(func(context.Context) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	})

	_, err := repo.Record(context.Background(), "a.txt")

	assert.ErrorContains(t, err, "connect: connection refused")
}

func TestRepository_Record_SchemaFails(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(createRe).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()
	mock.ExpectClose()

	_, err := repo.Record(context.Background(), "a.txt")

	assert.ErrorContains(t, err, "ensure uploads table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Record_InsertFails(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(createRe).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(insertRe).WithArgs("a.txt").WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()
	mock.ExpectClose()

	_, err := repo.Record(context.Background(), "a.txt")

	assert.ErrorContains(t, err, "insert upload record")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Record_CommitFails(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(createRe).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(insertRe).
		WithArgs("a.txt").
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "upload_time"}).AddRow(int64(1), "a.txt", time.Now()))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
	mock.ExpectClose()

	_, err := repo.Record(context.Background(), "a.txt")

	assert.ErrorContains(t, err, "commit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(createRe).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(createRe).WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, conn))
	require.NoError(t, EnsureSchema(ctx, conn))
	assert.NoError(t, mock.ExpectationsWereMet())
}
