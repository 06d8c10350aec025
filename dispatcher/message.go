package dispatcher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hairizuanbinnoorazman/project-viewer-sync/syncer"
)

type Action string

const (
	ActionFetch  Action = "fetch"
	ActionUpdate Action = "update"
)

// UnmarshalJSON accepts any JSON value. Non-string actions decode to the
// empty action so the rest of the request is still applied.
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*a = ""
		return nil
	}
	*a = Action(s)
	return nil
}

// Optional is a request field that may be absent. A present JSON null is
// Set with an empty Value.
type Optional struct {
	Value string
	Set   bool
}

// Some returns a present Optional.
func Some(v string) Optional {
	return Optional{Value: v, Set: true}
}

func (o *Optional) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = ""

	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		return json.Unmarshal(data, &o.Value)
	default:
		// Numbers, booleans, objects and arrays keep their literal text.
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		o.Value = buf.String()
		return nil
	}
}

// Request is the object carried by an inbound message.
type Request struct {
	Token   Optional        `json:"token"`
	GistID  Optional        `json:"gistId"`
	SetName Optional        `json:"setName"`
	Action  Action          `json:"action"`
	Value   json.RawMessage `json:"value,omitempty"`
}

// decodeRequest reads the first element of an inbound message array.
func decodeRequest(raw []byte) (*Request, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, fmt.Errorf("message is not an array: %w", err)
	}
	if len(elements) == 0 {
		return nil, nil
	}

	first := bytes.TrimSpace(elements[0])
	if len(first) == 0 || first[0] != '{' {
		return nil, fmt.Errorf("first element is not an object")
	}

	var req Request
	if err := json.Unmarshal(first, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return &req, nil
}

type Type string

const (
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

const iconGitHub = "mark-github"

// Options are presentation hints for the host.
type Options struct {
	Icon        string `json:"icon"`
	Dismissable bool   `json:"dismissable,omitempty"`
}

// Response is the single outbound message for a handled request.
type Response struct {
	Type    Type            `json:"type"`
	Message string          `json:"message"`
	Options Options         `json:"options"`
	DB      json.RawMessage `json:"db,omitempty"`
	GistID  string          `json:"gistId,omitempty"`
}

// NewSuccess converts a sync result.
func NewSuccess(res *syncer.Result) *Response {
	return &Response{
		Type:    TypeSuccess,
		Message: res.Message,
		Options: Options{Icon: iconGitHub},
		DB:      res.DB,
		GistID:  res.GistID,
	}
}

// NewFailure converts a sync error. Connection errors and unclassified
// errors are reported as errors, everything else as warnings.
func NewFailure(err error) *Response {
	resp := &Response{
		Type:    TypeWarning,
		Message: err.Error(),
		Options: Options{Icon: iconGitHub},
	}

	var syncErr *syncer.Error
	if !errors.As(err, &syncErr) {
		resp.Type = TypeError
		return resp
	}
	resp.Message = syncErr.Message

	switch syncErr.Kind {
	case syncer.KindConnectionError:
		resp.Type = TypeError
	case syncer.KindBackupNotFound, syncer.KindDocumentNotFound:
		resp.Options.Dismissable = true
	case syncer.KindConfigurationMissing, syncer.KindRemoteWriteFailed:
	default:
		resp.Type = TypeError
	}
	return resp
}
