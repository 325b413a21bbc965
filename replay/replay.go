// Package replay reconstructs surface pixel state from a persisted,
// ordered annotation record sequence. Replaying the same sequence onto
// freshly reset surfaces always yields byte-identical buffers; that
// determinism is the core correctness property of the whole engine.
package replay

import (
	"expvar"
	"log/slog"

	"github.com/INLOpen/inklog/canvas"
	"github.com/INLOpen/inklog/core"
)

// Options configures a Replayer.
type Options struct {
	Logger *slog.Logger
	// ReplayedCounter and SkippedCounter, if set, track rendered vs
	// dropped records across replays.
	ReplayedCounter *expvar.Int
	SkippedCounter  *expvar.Int
}

// Replayer renders record sequences onto a slide/webcam surface pair.
type Replayer struct {
	slide  *canvas.Surface
	webcam *canvas.Surface
	logger *slog.Logger

	metricsReplayed *expvar.Int
	metricsSkipped  *expvar.Int
}

// New creates a Replayer bound to the given surfaces.
func New(slide, webcam *canvas.Surface, opts Options) *Replayer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Replayer{
		slide:           slide,
		webcam:          webcam,
		logger:          logger.With("component", "Replayer"),
		metricsReplayed: opts.ReplayedCounter,
		metricsSkipped:  opts.SkippedCounter,
	}
}

// EffectiveStart returns the index of the first record replay will render:
// the one immediately after the last clear_canvas marker, or 0 when the
// sequence holds none. Records before it stay in the store untouched; they
// are simply never rendered again.
func EffectiveStart(records []*core.Record) int {
	start := 0
	for i, r := range records {
		if r != nil && r.Type == core.RecordClear {
			start = i + 1
		}
	}
	return start
}

// Replay resets both surfaces and renders every record from the effective
// start onward, in insertion order. Malformed records are logged and
// skipped; nothing here is fatal.
func (rp *Replayer) Replay(records []*core.Record) {
	rp.slide.Clear()
	rp.webcam.Clear()

	start := EffectiveStart(records)
	if start > 0 {
		rp.logger.Info("clear marker truncates replay history",
			"total", len(records), "rendered", len(records)-start)
	}

	for idx := start; idx < len(records); idx++ {
		rec := records[idx]
		if rec == nil {
			rp.skip(idx, "nil record", nil)
			continue
		}
		if err := rec.Validate(); err != nil {
			rp.skip(idx, "invalid record", err)
			continue
		}
		rp.render(idx, rec)
	}
}

func (rp *Replayer) render(idx int, rec *core.Record) {
	target := rec.EffectiveTarget()
	color := rec.EffectiveColor()
	brush := rec.EffectiveBrushSize()

	switch rec.Type {
	case core.RecordPen:
		for _, s := range rp.surfacesFor(target) {
			if rec.PrevCoords != nil {
				s.PaintStrokeSegment(*rec.PrevCoords, *rec.Coords, color, brush)
			} else {
				s.PaintStrokeStart(*rec.Coords, color, brush)
			}
		}
		rp.rendered()
	case core.RecordCircle, core.RecordSquare:
		for _, s := range rp.surfacesFor(target) {
			s.PaintShape(*rec.ShapeStart, *rec.ShapeEnd, rec.Type, color, brush)
		}
		rp.rendered()
	case core.RecordErase:
		// Erase coordinates are canonically stored in slide space; the
		// webcam center is rescaled by the dimension ratio, the radius
		// is kept as recorded.
		radius := eraseRadius(rec)
		if target.AppliesToSlide() {
			rp.slide.PaintErase(*rec.Coords, radius)
		}
		if target.AppliesToWebcam() {
			center := core.RescalePoint(*rec.Coords, rp.slide.Dimensions(), rp.webcam.Dimensions())
			rp.webcam.PaintErase(center, radius)
		}
		rp.rendered()
	case core.RecordClear:
		// EffectiveStart already cut everything at or before the last
		// marker, so one here means the input was modified mid-replay.
		rp.skip(idx, "unexpected clear_canvas inside render range", nil)
	}
}

func (rp *Replayer) surfacesFor(target core.Target) []*canvas.Surface {
	var out []*canvas.Surface
	if target.AppliesToSlide() {
		out = append(out, rp.slide)
	}
	if target.AppliesToWebcam() {
		out = append(out, rp.webcam)
	}
	return out
}

// eraseRadius returns the stored erase radius, falling back to the default
// derived from the default brush when the record predates the field.
func eraseRadius(rec *core.Record) int {
	if rec.BrushSize > 0 {
		return rec.BrushSize
	}
	return max(5, 2*core.DefaultBrushSize)
}

func (rp *Replayer) rendered() {
	if rp.metricsReplayed != nil {
		rp.metricsReplayed.Add(1)
	}
}

func (rp *Replayer) skip(idx int, reason string, err error) {
	if rp.metricsSkipped != nil {
		rp.metricsSkipped.Add(1)
	}
	rp.logger.Warn("skipping annotation record during replay",
		"index", idx, "reason", reason, "error", err)
}
