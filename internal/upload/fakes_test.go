package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/geoiq/gateway/internal/storage"
)

// memStore is an in-memory storage.Storage.
type memStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]storage.Object
	puts    int
	putErr  error
	getErr  error
}

func newMemStore() *memStore {
	return &memStore{bucket: "geoiq-uploads", objects: map[string]storage.Object{}}
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = storage.Object{Key: key, Body: data, ContentType: contentType, Size: int64(len(data))}
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (*storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("get object %q: %w", key, storage.ErrNotFound)
	}
	return &obj, nil
}

func (m *memStore) Bucket() string { return m.bucket }

// memRecorder is an in-memory Recorder.
type memRecorder struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (r *memRecorder) Record(_ context.Context, filename string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.names = append(r.names, filename)
	return &Record{ID: int64(len(r.names)), Filename: filename, UploadTime: time.Now()}, nil
}

// multipartBody builds a single-part form. An empty contentType leaves the
// part without a Content-Type header.
func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return body, w.FormDataContentType()
}
