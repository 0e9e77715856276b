// Package storage keeps uploaded files (post attachments, avatars) in an
// S3-compatible object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Object is a file to be written to the store.
type Object struct {
	// Prefix groups objects, e.g. "posts/12" or "avatars/3".
	Prefix      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Metadata    map[string]string
}

// BlobStore is the contract used by services; keys returned by Upload are
// what gets persisted in the database.
type BlobStore interface {
	Upload(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ObjectKey builds <prefix>/<yyyy>/<mm>/<uuid><ext> for filename.
func ObjectKey(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%d/%02d/%s%s",
		strings.Trim(prefix, "/"),
		now.Year(),
		now.Month(),
		uuid.New().String(),
		ext,
	)
}

// ContentType returns declared when set, otherwise guesses from the filename.
func ContentType(declared, filename string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
