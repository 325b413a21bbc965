// Package engine exposes the annotation engine: it turns normalized
// pointer samples into immediate paint feedback on the slide and webcam
// surfaces and into an append-only record log that, once flushed, can be
// deterministically replayed.
//
// The engine is single-writer by contract: one caller drives it, typically
// from a frame-processing tick, and no operation blocks internally. Hosts
// embedding it in concurrent code must serialize access themselves.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/INLOpen/inklog/annotlog"
	"github.com/INLOpen/inklog/canvas"
	"github.com/INLOpen/inklog/core"
	"github.com/INLOpen/inklog/replay"
	"github.com/INLOpen/inklog/store"
)

var (
	// ErrNoSession is returned by Flush/LoadSession before a session key
	// has been established.
	ErrNoSession = errors.New("no session selected")
	// ErrUnknownMode is returned by Draw for modes outside pen/circle/square.
	ErrUnknownMode = errors.New("unknown drawing mode")
)

// DefaultSlideDims and DefaultWebcamDims are the surface sizes used when
// the options leave them zero.
var (
	DefaultSlideDims  = core.Dimensions{Width: 1920, Height: 1080}
	DefaultWebcamDims = core.Dimensions{Width: 1280, Height: 720}
)

// Options configures an Engine.
type Options struct {
	SlideDims  core.Dimensions
	WebcamDims core.Dimensions
	// NormDims is the shared normalized input space; defaults to 800x600.
	NormDims core.Dimensions
	// DrawTarget selects which surfaces Draw paints on. Defaults to both.
	DrawTarget core.Target
	// BrushSize is the initial brush width. Defaults to core.DefaultBrushSize.
	BrushSize int
	// Store is the persistence collaborator; nil disables Flush/LoadSession.
	Store          store.RecordStore
	Logger         *slog.Logger
	Metrics        *Metrics
	TracerProvider trace.TracerProvider
}

// SessionState carries the mutable drawing state for the current session.
// It lives on the engine rather than in package globals so every input to
// an operation is explicit.
type SessionState struct {
	ColorIndex int
	BrushSize  int
	SlidePrev  *core.Point
	WebcamPrev *core.Point
}

// Engine is the annotation engine.
type Engine struct {
	opts      Options
	sessionID string
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *Metrics

	slide  *canvas.Surface
	webcam *canvas.Surface

	log      *annotlog.Log
	replayer *replay.Replayer

	state         SessionState
	slideTracker  *shapeTracker
	webcamTracker *shapeTracker

	key    store.SessionKey
	hasKey bool
	closed bool
}

// New creates an engine with freshly cleared surfaces.
func New(opts Options) (*Engine, error) {
	if !opts.SlideDims.Valid() {
		opts.SlideDims = DefaultSlideDims
	}
	if !opts.WebcamDims.Valid() {
		opts.WebcamDims = DefaultWebcamDims
	}
	if !opts.NormDims.Valid() {
		opts.NormDims = core.DefaultNormDims
	}
	if opts.DrawTarget == "" {
		opts.DrawTarget = core.TargetBoth
	}
	if !opts.DrawTarget.Valid() {
		return nil, fmt.Errorf("invalid draw target %q", opts.DrawTarget)
	}
	if opts.BrushSize < 1 {
		opts.BrushSize = core.DefaultBrushSize
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = noop.NewTracerProvider()
	}

	sessionID := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "AnnotationEngine", "session_id", sessionID)

	slide, err := canvas.NewSurface(opts.SlideDims, logger)
	if err != nil {
		return nil, fmt.Errorf("slide surface: %w", err)
	}
	webcam, err := canvas.NewSurface(opts.WebcamDims, logger)
	if err != nil {
		return nil, fmt.Errorf("webcam surface: %w", err)
	}

	e := &Engine{
		opts:      opts,
		sessionID: sessionID,
		logger:    logger,
		tracer:    opts.TracerProvider.Tracer("github.com/INLOpen/inklog/engine"),
		metrics:   opts.Metrics,
		slide:     slide,
		webcam:    webcam,
		log: annotlog.New(annotlog.Options{
			Logger:          logger,
			AppendedCounter: opts.Metrics.RecordsAppended,
		}),
		state: SessionState{BrushSize: opts.BrushSize},
	}
	e.slideTracker = newShapeTracker(core.TargetSlide, slide, logger)
	e.webcamTracker = newShapeTracker(core.TargetWebcam, webcam, logger)
	e.replayer = replay.New(slide, webcam, replay.Options{
		Logger:          logger,
		ReplayedCounter: opts.Metrics.RecordsReplayed,
		SkippedCounter:  opts.Metrics.RecordsSkipped,
	})

	logger.Info("annotation engine initialized",
		"slide", opts.SlideDims.String(),
		"webcam", opts.WebcamDims.String(),
		"norm", opts.NormDims.String(),
		"draw_target", string(opts.DrawTarget))
	return e, nil
}

// Draw feeds one normalized pointer sample in the given mode. It paints
// immediate feedback on every configured surface and appends the matching
// records; the coordinates stored in each record are in that record's
// target surface space. It returns the records appended for this sample.
func (e *Engine) Draw(xNorm, yNorm float64, mode core.RecordType, blackboard bool) ([]*core.Record, error) {
	if e.closed {
		return nil, core.ErrEngineClosed
	}
	if mode != core.RecordPen && !mode.IsShape() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	color := core.PaletteColor(e.state.ColorIndex, blackboard)
	var records []*core.Record

	if e.opts.DrawTarget.AppliesToSlide() {
		p := core.MapToSurface(xNorm, yNorm, e.opts.NormDims, e.opts.SlideDims)
		if rec := e.drawOn(e.slide, e.slideTracker, &e.state.SlidePrev, p, mode, color); rec != nil {
			records = append(records, rec)
		}
	}
	if e.opts.DrawTarget.AppliesToWebcam() {
		p := core.MapToSurface(xNorm, yNorm, e.opts.NormDims, e.opts.WebcamDims)
		if rec := e.drawOn(e.webcam, e.webcamTracker, &e.state.WebcamPrev, p, mode, color); rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (e *Engine) drawOn(surface *canvas.Surface, tracker *shapeTracker, prev **core.Point, p core.Point, mode core.RecordType, color core.Color) *core.Record {
	if mode.IsShape() {
		return tracker.onSample(p, mode, color, e.state.BrushSize, e.log)
	}

	var rec *core.Record
	if *prev != nil {
		surface.PaintStrokeSegment(**prev, p, color, e.state.BrushSize)
		rec = core.NewPenRecord(p, *prev, color, e.state.BrushSize, tracker.target)
	} else {
		surface.PaintStrokeStart(p, color, e.state.BrushSize)
		rec = core.NewPenRecord(p, nil, color, e.state.BrushSize, tracker.target)
	}
	e.log.Append(rec)
	point := p
	*prev = &point
	return rec
}

// Erase wipes a disc on both surfaces around the normalized sample. The
// stored record keeps slide-space coordinates only; replay rescales for
// the webcam surface. The erase radius scales with the current brush.
func (e *Engine) Erase(xNorm, yNorm float64) (*core.Record, error) {
	if e.closed {
		return nil, core.ErrEngineClosed
	}
	radius := max(5, 2*e.state.BrushSize)

	slideP := core.MapToSurface(xNorm, yNorm, e.opts.NormDims, e.opts.SlideDims)
	webcamP := core.MapToSurface(xNorm, yNorm, e.opts.NormDims, e.opts.WebcamDims)
	e.slide.PaintErase(slideP, radius)
	e.webcam.PaintErase(webcamP, radius)

	rec := core.NewEraseRecord(slideP, radius)
	e.log.Append(rec)
	return rec, nil
}

// Clear wipes both surfaces and appends the clear_canvas marker. Records
// already in the in-session log stay there: the marker itself must reach
// the store so replay can truncate at it.
func (e *Engine) Clear() (*core.Record, error) {
	if e.closed {
		return nil, core.ErrEngineClosed
	}
	e.slide.Clear()
	e.webcam.Clear()
	e.slideTracker.anchor = nil
	e.webcamTracker.anchor = nil
	e.state.SlidePrev = nil
	e.state.WebcamPrev = nil
	// Any in-flight drag was just wiped from the screen; its fragments
	// have nothing left to consolidate into.
	e.log.RemoveMatching(func(r *core.Record) bool { return r.Transient })

	rec := core.NewClearRecord()
	e.log.Append(rec)
	e.metrics.ClearsTotal.Add(1)
	e.logger.Info("canvases cleared, truncation marker appended")
	return rec, nil
}

// FinalizePending is called when drawing input ends (finger lifted, mode
// switched). In shape modes it consolidates each surface's drag into a
// single durable record; in every mode it resets pen stroke continuation
// and wipes the previews. It returns the finalized records, if any.
func (e *Engine) FinalizePending(mode core.RecordType, blackboard bool) []*core.Record {
	if e.closed {
		return nil
	}

	var finals []*core.Record
	if mode.IsShape() {
		color := core.PaletteColor(e.state.ColorIndex, blackboard)
		if rec := e.slideTracker.onRelease(mode, color, e.state.BrushSize, e.log); rec != nil {
			finals = append(finals, rec)
		}
		if rec := e.webcamTracker.onRelease(mode, color, e.state.BrushSize, e.log); rec != nil {
			finals = append(finals, rec)
		}
	} else {
		e.slideTracker.reset()
		e.webcamTracker.reset()
	}

	e.state.SlidePrev = nil
	e.state.WebcamPrev = nil
	return finals
}

// ChangeColor cycles to the next palette color and returns the new index.
// The index addresses both palettes; the blackboard flag picks which one
// at paint time.
func (e *Engine) ChangeColor() int {
	e.state.ColorIndex = (e.state.ColorIndex + 1) % len(core.StandardPalette)
	e.logger.Info("color changed", "index", e.state.ColorIndex)
	return e.state.ColorIndex
}

// CurrentColor returns the active pen color for the given palette.
func (e *Engine) CurrentColor(blackboard bool) core.Color {
	return core.PaletteColor(e.state.ColorIndex, blackboard)
}

// ColorName returns the display name of the active pen color.
func (e *Engine) ColorName(blackboard bool) string {
	return core.PaletteColorName(e.state.ColorIndex, blackboard)
}

// SetBrushSize sets the brush width, clamped to >= 1.
func (e *Engine) SetBrushSize(n int) {
	if n < 1 {
		e.logger.Warn("invalid brush size, clamping", "requested", n)
		n = 1
	}
	e.state.BrushSize = n
}

// BrushSize returns the current brush width.
func (e *Engine) BrushSize() int {
	return e.state.BrushSize
}

// Load renders an already-fetched record sequence onto the surfaces and
// resets the in-session log and drawing state.
func (e *Engine) Load(records []*core.Record) {
	e.log.Reset()
	e.state.SlidePrev = nil
	e.state.WebcamPrev = nil
	e.slideTracker.reset()
	e.webcamTracker.reset()
	e.replayer.Replay(records)
}

// SetSession selects the persistence key without loading history. Used for
// brand new sessions.
func (e *Engine) SetSession(key store.SessionKey) {
	e.key = key
	e.hasKey = true
}

// LoadSession fetches the full history for key from the store and replays
// it. It returns the number of records fetched.
func (e *Engine) LoadSession(ctx context.Context, key store.SessionKey) (int, error) {
	if e.closed {
		return 0, core.ErrEngineClosed
	}
	if e.opts.Store == nil {
		return 0, core.ErrNoStore
	}
	ctx, span := e.tracer.Start(ctx, "Engine.LoadSession")
	defer span.End()

	records, err := e.opts.Store.LoadAll(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to load session %s: %w", key, err)
	}
	e.SetSession(key)
	e.Load(records)
	e.logger.Info("session loaded", "session", key.String(), "records", len(records))
	return len(records), nil
}

// Flush drains all durable records from the in-session log and persists
// them in order. On the first failure the unpersisted remainder, failed
// record included, is restored to the log so the caller can retry; records
// persisted before the failure are not re-sent.
func (e *Engine) Flush(ctx context.Context) (int, error) {
	if e.closed {
		return 0, core.ErrEngineClosed
	}
	if e.opts.Store == nil {
		return 0, core.ErrNoStore
	}
	if !e.hasKey {
		return 0, ErrNoSession
	}
	ctx, span := e.tracer.Start(ctx, "Engine.Flush")
	defer span.End()

	drained := e.log.Drain()
	for i, rec := range drained {
		if err := e.opts.Store.Persist(ctx, e.key, rec); err != nil {
			e.log.Restore(drained[i:])
			e.metrics.FlushErrors.Add(1)
			return i, fmt.Errorf("failed to persist record %d/%d for %s: %w", i+1, len(drained), e.key, err)
		}
		e.metrics.RecordsFlushed.Add(1)
	}
	if len(drained) > 0 {
		e.logger.Info("flushed session records", "session", e.key.String(), "count", len(drained))
	}
	return len(drained), nil
}

// PendingRecords returns a copy of the in-session log, previews included.
func (e *Engine) PendingRecords() []*core.Record {
	return e.log.Records()
}

// Surface returns the main buffer owner for a single target.
func (e *Engine) Surface(target core.Target) (*canvas.Surface, error) {
	switch target {
	case core.TargetSlide:
		return e.slide, nil
	case core.TargetWebcam:
		return e.webcam, nil
	}
	return nil, fmt.Errorf("surface lookup needs a single target, got %q", target)
}

// Preview returns a single target's preview pixels: the live feedback of
// an in-progress shape drag, empty otherwise.
func (e *Engine) Preview(target core.Target) (image.Image, error) {
	s, err := e.Surface(target)
	if err != nil {
		return nil, err
	}
	return s.PreviewImage(), nil
}

// Close marks the engine unusable. It does not flush; callers flush first.
func (e *Engine) Close() error {
	e.closed = true
	return nil
}
