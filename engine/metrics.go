package engine

import "expvar"

// Metrics aggregates the engine's expvar counters. Counters are created
// unpublished so multiple engines (and tests) can coexist; hosts that want
// them exported publish the struct themselves.
type Metrics struct {
	RecordsAppended *expvar.Int
	RecordsFlushed  *expvar.Int
	FlushErrors     *expvar.Int
	RecordsReplayed *expvar.Int
	RecordsSkipped  *expvar.Int
	ClearsTotal     *expvar.Int
}

// NewMetrics creates a zeroed metrics set.
func NewMetrics() *Metrics {
	return &Metrics{
		RecordsAppended: new(expvar.Int),
		RecordsFlushed:  new(expvar.Int),
		FlushErrors:     new(expvar.Int),
		RecordsReplayed: new(expvar.Int),
		RecordsSkipped:  new(expvar.Int),
		ClearsTotal:     new(expvar.Int),
	}
}
