// Package document defines the remote document store the agent backs up to.
// A document is a multi-file JSON container; each backup set owns one file in it.
package document

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrFileNotFound means the document could not be read or holds no file
	// for the requested set.
	ErrFileNotFound = errors.New("backup file not found")

	// ErrInvalidContent means the set's file exists but is not valid JSON.
	ErrInvalidContent = errors.New("backup file content is not valid JSON")

	// ErrWriteFailed means a create or update was rejected by the server.
	ErrWriteFailed = errors.New("document write failed")

	// ErrConnectionFailed wraps transport-level failures.
	ErrConnectionFailed = errors.New("connection failed")

	ErrInvalidProvider = errors.New("invalid provider type")
)

type ProviderType string

const (
	ProviderGist ProviderType = "gist"
)

func (p ProviderType) IsValid() bool {
	return p == ProviderGist
}

// File is one entry of a document's files map.
type File struct {
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
	RawURL    string `json:"raw_url,omitempty"`
}

// Client performs single-attempt operations against the remote collection.
type Client interface {
	// Fetch returns the parsed JSON content of fileName inside document id.
	Fetch(ctx context.Context, id, fileName string) (json.RawMessage, error)

	// Create stores payload under fileName in a new private document and
	// returns its identifier.
	Create(ctx context.Context, fileName string, payload json.RawMessage) (string, error)

	// Patch replaces the content of fileName inside document id.
	Patch(ctx context.Context, id, fileName string, payload json.RawMessage) error

	// Exists reports whether document id can be retrieved.
	Exists(ctx context.Context, id string) (bool, error)
}

// ClientFactory builds a Client from credentials. Recognised keys are
// "token", "base_url" and "description".
type ClientFactory interface {
	NewClient(provider ProviderType, credentials map[string]string) (Client, error)
}
