package engine

import (
	"log/slog"

	"github.com/INLOpen/inklog/annotlog"
	"github.com/INLOpen/inklog/canvas"
	"github.com/INLOpen/inklog/core"
)

// shapeTracker is the per-surface state machine for an in-progress shape
// drag. It is either idle (anchor == nil) or anchored. While anchored it
// paints live previews onto the surface's preview buffer and appends
// transient fragments to the log; on release it consolidates them into a
// single durable record, or discards them if the drag never produced an
// end point.
type shapeTracker struct {
	target  core.Target
	surface *canvas.Surface
	logger  *slog.Logger

	anchor *core.Point
}

func newShapeTracker(target core.Target, surface *canvas.Surface, logger *slog.Logger) *shapeTracker {
	return &shapeTracker{
		target:  target,
		surface: surface,
		logger:  logger.With("component", "ShapeTracker", "target", string(target)),
	}
}

// onSample advances the state machine with one mapped pointer sample.
func (st *shapeTracker) onSample(p core.Point, kind core.RecordType, c core.Color, brushSize int, log *annotlog.Log) *core.Record {
	if st.anchor == nil {
		anchor := p
		st.anchor = &anchor
		rec := core.NewShapeAnchor(kind, anchor, c, brushSize, st.target)
		log.Append(rec)
		st.logger.Debug("shape anchored", "kind", kind, "anchor", anchor)
		return rec
	}

	st.surface.ClearPreview()
	st.surface.PaintShapePreview(*st.anchor, p, kind, c, brushSize)
	rec := core.NewShapePreview(kind, *st.anchor, p, c, brushSize, st.target)
	log.Append(rec)
	return rec
}

// onRelease finalizes or abandons the in-progress shape. It scans the log
// backward for the most recent fragment matching (anchor, target, kind)
// that carries an end point, stopping at the anchor-only fragment, then
// replaces all matching fragments with one durable record. It returns that
// record, or nil when the drag was abandoned.
func (st *shapeTracker) onRelease(kind core.RecordType, c core.Color, brushSize int, log *annotlog.Log) *core.Record {
	if st.anchor == nil {
		return nil
	}
	anchor := *st.anchor
	st.anchor = nil
	defer st.surface.ClearPreview()

	var end *core.Point
	records := log.Records()
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if !st.matchesFragment(r, kind, anchor) {
			continue
		}
		if r.ShapeEnd != nil && end == nil {
			end = r.ShapeEnd
		}
		if r.ShapeEnd == nil {
			// The anchor-only fragment marks where this drag began;
			// nothing older can belong to it.
			break
		}
	}

	removed := log.RemoveMatching(func(r *core.Record) bool {
		return st.matchesFragment(r, kind, anchor)
	})

	if end == nil {
		st.logger.Debug("shape abandoned without a drag", "kind", kind, "anchor", anchor, "fragments_removed", removed)
		return nil
	}

	st.surface.PaintShape(anchor, *end, kind, c, brushSize)
	final := core.NewShapeFinal(kind, anchor, *end, c, brushSize, st.target)
	log.Append(final)
	st.logger.Debug("shape finalized", "kind", kind, "anchor", anchor, "end", *end, "fragments_removed", removed)
	return final
}

func (st *shapeTracker) matchesFragment(r *core.Record, kind core.RecordType, anchor core.Point) bool {
	return r.Transient &&
		r.Type == kind &&
		r.Target == st.target &&
		r.ShapeStart != nil &&
		r.ShapeStart.Equal(anchor)
}

// reset abandons any in-progress drag without touching the log. Used on
// session switches where the log is discarded wholesale anyway.
func (st *shapeTracker) reset() {
	st.anchor = nil
	st.surface.ClearPreview()
}
