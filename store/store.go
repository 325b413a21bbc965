// Package store persists annotation records and returns them for replay.
// The engine consumes the RecordStore interface; FileStore is the bundled
// implementation, keeping one append-only segment file per session.
package store

import (
	"context"
	"fmt"

	"github.com/INLOpen/inklog/core"
)

// SessionKey identifies one (slide, user) annotation history.
type SessionKey struct {
	SlideID int64
	UserID  int64
}

func (k SessionKey) String() string {
	return fmt.Sprintf("slide-%d/user-%d", k.SlideID, k.UserID)
}

// RecordStore is the persistence collaborator contract. Implementations
// must preserve insertion order: LoadAll returns records exactly in the
// order Persist received them, never reordered by timestamp.
type RecordStore interface {
	// Persist appends one durable record to the session's history.
	Persist(ctx context.Context, key SessionKey, rec *core.Record) error
	// LoadAll fetches the full ordered history for a session. Missing
	// sessions yield an empty slice, not an error. Individually malformed
	// records are skipped; a torn tail ends the sequence silently.
	LoadAll(ctx context.Context, key SessionKey) ([]*core.Record, error)
}
