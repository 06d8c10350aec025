// Package dispatcher is the message boundary of the sync agent. It decodes
// inbound messages, applies their configuration overrides to the agent state,
// runs the requested operation and produces at most one outbound message.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/hairizuanbinnoorazman/project-viewer-sync/document"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/logger"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/syncer"
)

// Dispatcher owns the agent state for its lifetime. Handle and Dispatch must
// not be called concurrently.
type Dispatcher struct {
	state  *syncer.State
	syncer *syncer.Syncer
	logger logger.Logger
}

// New creates a dispatcher over state.
func New(state *syncer.State, clients document.ClientFactory, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		state:  state,
		syncer: syncer.New(state, clients),
		logger: log,
	}
}

// State returns the live agent state.
func (d *Dispatcher) State() *syncer.State {
	return d.state
}

// Handle processes one raw inbound message. The boolean is false when the
// message produces no response: empty or undecodable payloads and
// unrecognised actions.
func (d *Dispatcher) Handle(ctx context.Context, raw []byte) (*Response, bool) {
	req, err := decodeRequest(raw)
	if err != nil {
		d.logger.Warn(ctx, "ignoring malformed message", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}
	if req == nil {
		return nil, false
	}
	return d.Dispatch(ctx, req)
}

// Dispatch applies the overrides carried by req and runs its action.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (*Response, bool) {
	d.apply(req)

	log := d.logger.WithFields(map[string]interface{}{
		"request_id": uuid.NewString(),
		"action":     string(req.Action),
		"set_name":   d.state.SetName,
	})

	var (
		res *syncer.Result
		err error
	)
	switch req.Action {
	case ActionFetch:
		res, err = d.fetch(ctx)
	case ActionUpdate:
		res, err = d.update(ctx, req.Value)
	default:
		log.Debug(ctx, "ignoring message without a known action", nil)
		return nil, false
	}

	if err != nil {
		log.Warn(ctx, "sync failed", map[string]interface{}{
			"kind":  syncer.KindOf(err).String(),
			"error": err.Error(),
		})
		return NewFailure(err), true
	}

	log.Info(ctx, "sync succeeded", map[string]interface{}{
		"gist_id": d.state.GistID,
	})
	return NewSuccess(res), true
}

func (d *Dispatcher) apply(req *Request) {
	if req.Token.Set {
		d.state.Token = req.Token.Value
	}
	if req.GistID.Set {
		d.state.GistID = req.GistID.Value
	}
	if req.SetName.Set {
		d.state.SetName = req.SetName.Value
	}
}

func (d *Dispatcher) fetch(ctx context.Context) (*syncer.Result, error) {
	if err := syncer.RequireConfigured(d.state.Token, syncer.TokenName); err != nil {
		return nil, err
	}
	if err := syncer.RequireConfigured(d.state.GistID, syncer.GistIDName); err != nil {
		return nil, err
	}
	return d.syncer.Fetch(ctx)
}

func (d *Dispatcher) update(ctx context.Context, value json.RawMessage) (*syncer.Result, error) {
	if err := syncer.RequireConfigured(d.state.Token, syncer.TokenName); err != nil {
		return nil, err
	}
	return d.syncer.Update(ctx, value)
}

// Serve reads a stream of JSON messages from r and writes one JSON line to w
// per response. Messages are handled strictly in order. It returns nil at end
// of input and the context error when ctx is done.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	dec := json.NewDecoder(r)
	enc := json.NewEncoder(w)

	messages := make(chan json.RawMessage)
	errc := make(chan error, 1)

	go func() {
		defer close(messages)
		for {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				if !errors.Is(err, io.EOF) {
					errc <- fmt.Errorf("dispatcher: failed to read message: %w", err)
				}
				return
			}
			select {
			case messages <- raw:
			case <-ctx.Done():
				return
			}
		}
	}()

	d.logger.Info(ctx, "agent ready", nil)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info(ctx, "agent stopping", nil)
			return ctx.Err()
		case raw, ok := <-messages:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					d.logger.Info(ctx, "input closed", nil)
					return nil
				}
			}
			resp, ok := d.Handle(ctx, raw)
			if !ok {
				continue
			}
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("dispatcher: failed to write response: %w", err)
			}
		}
	}
}
