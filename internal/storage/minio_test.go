package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geoiq/gateway/internal/config"
)

func TestNormaliseEndpoint(t *testing.T) {
	tests := []struct {
		in            string
		defaultSecure bool
		wantEndpoint  string
		wantSecure    bool
		wantErr       bool
	}{
		{"minio:9000", false, "minio:9000", false, false},
		{"minio:9000", true, "minio:9000", true, false},
		{"http://minio:9000", true, "minio:9000", false, false},
		{"https://minio:9000", false, "minio:9000", true, false},
		{"http://minio:9000/", false, "minio:9000", false, false},
		{"http://minio:9000/foo", false, "", false, true},
		{"http://", false, "", false, true},
		{"", false, "", false, true},
	}

	for _, tt := range tests {
		ep, secure, err := normaliseEndpoint(tt.in, tt.defaultSecure)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.wantEndpoint, ep, "input %q", tt.in)
		assert.Equal(t, tt.wantSecure, secure, "input %q", tt.in)
	}
}

func TestMapMinioError(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	assert.ErrorIs(t, mapMinioError(missing), ErrNotFound)

	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}
	assert.NotErrorIs(t, mapMinioError(denied), ErrNotFound)

	other := errors.New("dial tcp: connection refused")
	assert.Equal(t, other, mapMinioError(other))
}

func TestNewMinioStorage(t *testing.T) {
	s, err := NewMinioStorage(MinioConfig{
		Endpoint:  "http://localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "uploads",
	})
	require.NoError(t, err)
	assert.Equal(t, "uploads", s.Bucket())

	_, err = NewMinioStorage(MinioConfig{Bucket: "uploads"})
	assert.Error(t, err)
}

func TestNew_SelectsDriver(t *testing.T) {
	t.Setenv("AWS_PROFILE", "")
	ctx := context.Background()
	log := zap.NewNop()

	s, err := New(ctx, &config.Config{StorageDriver: "s3", Bucket: "b", Region: "us-east-1"}, log)
	require.NoError(t, err)
	assert.IsType(t, &S3Storage{}, s)

	s, err = New(ctx, &config.Config{StorageDriver: "minio", Bucket: "b", StorageEndpoint: "localhost:9000"}, log)
	require.NoError(t, err)
	assert.IsType(t, &MinioStorage{}, s)

	_, err = New(ctx, &config.Config{StorageDriver: "gcs"}, log)
	assert.Error(t, err)
}
