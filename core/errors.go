package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineClosed is returned by engine operations after Close.
	ErrEngineClosed = errors.New("annotation engine is closed")
	// ErrNoStore is returned by flush/load operations when the engine was
	// built without a persistence collaborator.
	ErrNoStore = errors.New("no record store configured")
)

// MalformedRecordError describes a persisted record that cannot be rendered
// because a required field is missing or has the wrong shape. Replay treats
// it as skippable, never fatal.
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed annotation record: field %q: %s", e.Field, e.Reason)
}

// IsMalformedRecord checks if an error is (or wraps) a MalformedRecordError.
func IsMalformedRecord(err error) bool {
	var malformed *MalformedRecordError
	return errors.As(err, &malformed)
}
