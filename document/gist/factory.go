package gist

import (
	"fmt"
	"time"

	"github.com/hairizuanbinnoorazman/project-viewer-sync/document"
)

// Factory builds gist clients sharing one request timeout.
type Factory struct {
	Timeout time.Duration
}

// NewClient implements document.ClientFactory.
func (f Factory) NewClient(provider document.ProviderType, credentials map[string]string) (document.Client, error) {
	if provider != document.ProviderGist {
		return nil, fmt.Errorf("%w: %s", document.ErrInvalidProvider, provider)
	}
	return NewClient(credentials, f.Timeout)
}
