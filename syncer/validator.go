package syncer

import "fmt"

// Display names used in configuration warnings.
const (
	TokenName  = "Github Access Token"
	GistIDName = "Gist ID"
)

// RequireConfigured fails with KindConfigurationMissing when value is empty.
func RequireConfigured(value, displayName string) error {
	if value != "" {
		return nil
	}
	return &Error{
		Kind:    KindConfigurationMissing,
		Message: fmt.Sprintf("No <strong>%s</strong> was provided, please check the configuration.", displayName),
	}
}
