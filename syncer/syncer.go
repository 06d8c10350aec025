package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hairizuanbinnoorazman/project-viewer-sync/document"
)

// Result is the outcome of a successful operation.
type Result struct {
	Message string

	// DB is the restored payload; set by Fetch only.
	DB json.RawMessage

	// GistID is set when Update created a new document.
	GistID string
}

// Syncer runs fetch and update against the document bound in State.
type Syncer struct {
	state   *State
	clients document.ClientFactory
}

// New creates a Syncer. The state is shared with the caller, which applies
// request overrides to it between operations.
func New(state *State, clients document.ClientFactory) *Syncer {
	return &Syncer{
		state:   state,
		clients: clients,
	}
}

func (s *Syncer) client() (document.Client, error) {
	c, err := s.clients.NewClient(document.ProviderGist, s.state.credentials())
	if err != nil {
		return nil, &Error{
			Kind:    KindConfigurationMissing,
			Message: fmt.Sprintf("No <strong>%s</strong> was provided, please check the configuration.", TokenName),
			Err:     err,
		}
	}
	return c, nil
}

// Fetch restores the set's payload from the bound document.
func (s *Syncer) Fetch(ctx context.Context) (*Result, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}

	db, err := c.Fetch(ctx, s.state.GistID, s.state.FileName())
	if err != nil {
		if errors.Is(err, document.ErrConnectionFailed) {
			return nil, connectionError(err)
		}
		return nil, &Error{
			Kind: KindBackupNotFound,
			Message: fmt.Sprintf("No backup found under gist ID [%s] for set [%s]. Make sure that gist with given ID exists under your private gists and that you have an existing backup (call backup -> call import).",
				s.state.GistID, s.state.SetName),
			Err: err,
		}
	}

	return &Result{
		Message: "Retrieved DB from <strong>GitHub</strong> successfully.",
		DB:      db,
	}, nil
}

// Update backs up payload. Without a bound document a new one is created and
// bound; with one, the document must exist and is patched. The existence
// check and the patch are two separate calls and are not atomic.
func (s *Syncer) Update(ctx context.Context, payload json.RawMessage) (*Result, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}

	if s.state.GistID == "" {
		return s.create(ctx, c, payload)
	}

	exists, err := c.Exists(ctx, s.state.GistID)
	if err != nil {
		return nil, connectionError(err)
	}
	if !exists {
		return nil, &Error{
			Kind: KindDocumentNotFound,
			Message: fmt.Sprintf("No gist found with ID [%s] for set [%s]. Specify valid gist ID or specify empty gist ID and we will create a gist for you.",
				s.state.GistID, s.state.SetName),
		}
	}

	if err := c.Patch(ctx, s.state.GistID, s.state.FileName(), payload); err != nil {
		if errors.Is(err, document.ErrConnectionFailed) {
			return nil, connectionError(err)
		}
		return nil, &Error{Kind: KindRemoteWriteFailed, Message: "Failed to update gist.", Err: err}
	}

	return &Result{Message: "Successfully backed up the DB."}, nil
}

func (s *Syncer) create(ctx context.Context, c document.Client, payload json.RawMessage) (*Result, error) {
	id, err := c.Create(ctx, s.state.FileName(), payload)
	if err != nil {
		if errors.Is(err, document.ErrConnectionFailed) {
			return nil, connectionError(err)
		}
		return nil, &Error{Kind: KindRemoteWriteFailed, Message: "Failed to create gist.", Err: err}
	}

	s.state.GistID = id
	return &Result{
		Message: fmt.Sprintf("Successfully created gist ID [%s] and backed up the DB.", id),
		GistID:  id,
	}, nil
}

func connectionError(err error) *Error {
	return &Error{
		Kind:    KindConnectionError,
		Message: fmt.Sprintf("Failed to connect to <strong>GitHub</strong> servers: %v", err),
		Err:     err,
	}
}
