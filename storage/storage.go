// Package storage reads and writes the local project database files that the
// one-shot commands back up and restore.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidDB is returned when a database file does not hold valid JSON.
var ErrInvalidDB = errors.New("database file is not valid JSON")

// BlobStorage stores opaque files by relative path.
type BlobStorage interface {
	// Upload stores data from the reader at the specified path.
	Upload(ctx context.Context, path string, reader io.Reader) error

	// Download retrieves data from the specified path.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists checks if data exists at the specified path.
	Exists(ctx context.Context, path string) (bool, error)
}

// ReadDB loads a database file and checks that it is JSON.
func ReadDB(ctx context.Context, store BlobStorage, path string) (json.RawMessage, error) {
	rc, err := store.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDB, path)
	}
	return json.RawMessage(bytes.TrimSpace(data)), nil
}

// WriteDB stores db indented, replacing any existing file.
func WriteDB(ctx context.Context, store BlobStorage, path string, db json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, db, "", "  "); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDB, err)
	}
	buf.WriteByte('\n')
	return store.Upload(ctx, path, &buf)
}
