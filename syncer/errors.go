package syncer

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation did not succeed.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfigurationMissing
	KindBackupNotFound
	KindDocumentNotFound
	KindRemoteWriteFailed
	KindConnectionError
)

func (k Kind) String() string {
	switch k {
	case KindConfigurationMissing:
		return "configuration_missing"
	case KindBackupNotFound:
		return "backup_not_found"
	case KindDocumentNotFound:
		return "document_not_found"
	case KindRemoteWriteFailed:
		return "remote_write_failed"
	case KindConnectionError:
		return "connection_error"
	default:
		return "unknown"
	}
}

// Error is the terminal failure of a sync operation. Message is meant for
// the user; Err keeps the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var syncErr *Error
	if errors.As(err, &syncErr) {
		return syncErr.Kind
	}
	return KindUnknown
}
