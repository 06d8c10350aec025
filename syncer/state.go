// Package syncer holds the agent state and the fetch/update orchestration
// against a remote document.
package syncer

const DefaultSetName = "default"

// State is the agent's configuration. It lives for the lifetime of the agent
// and is updated in place by every inbound request. It is not safe for
// concurrent use; callers serialize requests to one agent.
type State struct {
	EndpointBase string
	Description  string

	Token   string
	GistID  string
	SetName string
}

// NewState returns a state bound to the given endpoint with the default set.
func NewState(endpointBase, description string) *State {
	return &State{
		EndpointBase: endpointBase,
		Description:  description,
		SetName:      DefaultSetName,
	}
}

// FileName is the key of this set's file inside the remote document.
func (s *State) FileName() string {
	return "project-viewer-" + s.SetName + ".json"
}

func (s *State) credentials() map[string]string {
	return map[string]string{
		"token":       s.Token,
		"base_url":    s.EndpointBase,
		"description": s.Description,
	}
}
