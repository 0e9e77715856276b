// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"sync"
	"time"

	"socialnet/internal/storage"
)

// BlobStoreStub is an in-memory storage.BlobStore.
type BlobStoreStub struct {
	mu      sync.Mutex
	objects map[string][]byte
	// FailUpload makes every Upload return an error.
	FailUpload bool
}

// NewBlobStoreStub creates an empty in-memory blob store.
func NewBlobStoreStub() *BlobStoreStub {
	return &BlobStoreStub{objects: make(map[string][]byte)}
}

// Upload reads the body and stores it under a generated key.
func (s *BlobStoreStub) Upload(_ context.Context, obj storage.Object) (string, error) {
	if s.FailUpload {
		return "", errors.New("blob store unavailable")
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	key := storage.ObjectKey(obj.Prefix, obj.Filename, time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return key, nil
}

// Delete removes key if present.
func (s *BlobStoreStub) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// URL returns a fake public URL for key.
func (s *BlobStoreStub) URL(key string) string {
	if key == "" {
		return ""
	}
	return "http://blobs.test/" + key
}

// Object returns the stored bytes of key.
func (s *BlobStoreStub) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

// Len returns the number of stored objects.
func (s *BlobStoreStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
