package upload

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/geoiq/gateway/internal/storage"
)

var (
	// ErrNoFilePart is returned when the request carries no "file" field.
	ErrNoFilePart = errors.New("no file part in the request")
	// ErrEmptyFilename is returned when the "file" field has no filename.
	ErrEmptyFilename = errors.New("no selected file")
)

// Recorder persists the audit trail of uploads.
type Recorder interface {
	Record(ctx context.Context, filename string) (*Record, error)
}

// Result is the body returned for a successful upload.
type Result struct {
	Status string `json:"status" example:"success"`
	Bucket string `json:"bucket" example:"geoiq-uploads"`
	Key    string `json:"key" example:"survey.geojson"`
}

// Service writes objects and records them. The object write decides the
// outcome; the audit write is advisory.
type Service struct {
	store    storage.Storage
	recorder Recorder
	log      *zap.Logger
}

// NewService creates a new upload Service.
func NewService(store storage.Storage, recorder Recorder, log *zap.Logger) *Service {
	return &Service{store: store, recorder: recorder, log: log}
}

// Upload stores body under filename and appends an audit row.
// Audit failures are logged and never returned.
func (s *Service) Upload(ctx context.Context, filename string, body io.Reader, size int64, contentType string) (*Result, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}

	if err := s.store.Put(ctx, filename, body, size, contentType); err != nil {
		return nil, err
	}

	// The object is already stored; a client disconnect must not abort the audit row.
	rec, err := s.recorder.Record(context.WithoutCancel(ctx), filename)
	if err != nil {
		s.log.Warn("audit insert failed", zap.String("key", filename), zap.Error(err))
	} else {
		s.log.Debug("upload recorded", zap.Int64("id", rec.ID), zap.String("key", filename))
	}

	return &Result{Status: "success", Bucket: s.store.Bucket(), Key: filename}, nil
}

// Fetch returns the full object stored under filename.
func (s *Service) Fetch(ctx context.Context, filename string) (*storage.Object, error) {
	obj, err := s.store.Get(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", filename, err)
	}
	return obj, nil
}

// IsNotFound returns true when the error indicates the object does not exist.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

// IsValidation returns true when the error is caused by missing input.
func (s *Service) IsValidation(err error) bool {
	return errors.Is(err, ErrNoFilePart) || errors.Is(err, ErrEmptyFilename)
}
