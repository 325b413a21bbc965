// Package annotlog holds the in-session annotation log: the ordered,
// append-only sequence of records produced by drawing actions before they
// are flushed to the record store.
package annotlog

import (
	"expvar"
	"log/slog"

	"github.com/INLOpen/inklog/core"
)

// Options configures a Log.
type Options struct {
	Logger *slog.Logger
	// AppendedCounter, if set, is incremented on every Append.
	AppendedCounter *expvar.Int
}

// Log is an insertion-order-preserving sequence of annotation records.
// It has exactly one logical writer at a time and performs no locking of
// its own; embedding callers serialize access.
type Log struct {
	records []*core.Record
	logger  *slog.Logger
	metrics *expvar.Int
}

// New creates an empty log.
func New(opts Options) *Log {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{
		logger:  logger.With("component", "AnnotationLog"),
		metrics: opts.AppendedCounter,
	}
}

// Append adds a record at the tail.
func (l *Log) Append(r *core.Record) {
	l.records = append(l.records, r)
	if l.metrics != nil {
		l.metrics.Add(1)
	}
}

// Len returns the number of records currently held.
func (l *Log) Len() int {
	return len(l.records)
}

// Records returns a copy of the current sequence in insertion order.
func (l *Log) Records() []*core.Record {
	out := make([]*core.Record, len(l.records))
	copy(out, l.records)
	return out
}

// RemoveMatching deletes every record the predicate accepts, preserving the
// order of the rest. It returns how many were removed. This is the shape
// finalize step's bulk removal of preview fragments.
func (l *Log) RemoveMatching(pred func(*core.Record) bool) int {
	kept := l.records[:0]
	removed := 0
	for _, r := range l.records {
		if pred(r) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(l.records); i++ {
		l.records[i] = nil
	}
	l.records = kept
	return removed
}

// Drain returns and removes all durable records, in order. Transient shape
// fragments stay in the log: they are not persistable and are still needed
// by a finalize that has not happened yet.
func (l *Log) Drain() []*core.Record {
	var drained []*core.Record
	kept := l.records[:0]
	for _, r := range l.records {
		if r.Transient {
			kept = append(kept, r)
			continue
		}
		drained = append(drained, r)
	}
	for i := len(kept); i < len(l.records); i++ {
		l.records[i] = nil
	}
	l.records = kept
	if len(drained) > 0 {
		l.logger.Debug("drained durable records", "count", len(drained), "transient_kept", len(kept))
	}
	return drained
}

// Restore re-inserts previously drained records ahead of everything
// currently in the log, so a failed flush can be retried without
// reordering history.
func (l *Log) Restore(records []*core.Record) {
	if len(records) == 0 {
		return
	}
	l.records = append(records, l.records...)
	l.logger.Warn("restored undrained records after failed flush", "count", len(records))
}

// Reset discards all records. Used on session switch and after a
// successful load.
func (l *Log) Reset() {
	l.records = nil
}
