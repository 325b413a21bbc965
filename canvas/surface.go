// Package canvas owns the mutable pixel buffers annotations are painted
// onto. Each Surface pairs a main buffer with a preview buffer of identical
// dimensions; the preview only ever holds the live feedback for an
// in-progress shape drag and is wiped on every new sample.
package canvas

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/gogpu/gg"

	"github.com/INLOpen/inklog/core"
)

// background is the erased/empty pixel value. Annotations are composited
// over live frames by the caller, so the background is plain opaque black.
var background = gg.RGBA{R: 0, G: 0, B: 0, A: 1}

// Surface is one target's drawing buffer pair. It is not safe for
// concurrent use; the engine's single-writer contract applies.
type Surface struct {
	dims    core.Dimensions
	main    *gg.Context
	preview *gg.Context
	logger  *slog.Logger
}

// NewSurface creates a surface with both buffers reset to background.
func NewSurface(dims core.Dimensions, logger *slog.Logger) (*Surface, error) {
	if !dims.Valid() {
		return nil, fmt.Errorf("invalid surface dimensions %s", dims)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Surface{
		dims:    dims,
		main:    gg.NewContext(dims.Width, dims.Height),
		preview: gg.NewContext(dims.Width, dims.Height),
		logger:  logger.With("component", "Surface", "dims", dims.String()),
	}
	s.Clear()
	return s, nil
}

// Dimensions returns the fixed pixel size of the surface.
func (s *Surface) Dimensions() core.Dimensions {
	return s.dims
}

// PaintStrokeStart paints the filled disc that begins a pen stroke.
func (s *Surface) PaintStrokeStart(p core.Point, c core.Color, brushSize int) {
	radius := float64(max(1, brushSize/2))
	s.main.SetColor(c.RGBA())
	s.main.DrawCircle(float64(p.X), float64(p.Y), radius)
	s.fill(s.main)
}

// PaintStrokeSegment paints a line of brush thickness between two samples.
func (s *Surface) PaintStrokeSegment(prev, p core.Point, c core.Color, brushSize int) {
	s.main.SetColor(c.RGBA())
	s.main.SetLineWidth(float64(max(1, brushSize)))
	s.main.DrawLine(float64(prev.X), float64(prev.Y), float64(p.X), float64(p.Y))
	s.stroke(s.main)
}

// PaintShape draws a finalized shape outline onto the main buffer.
func (s *Surface) PaintShape(anchor, end core.Point, kind core.RecordType, c core.Color, thickness int) {
	s.paintShape(s.main, anchor, end, kind, c, thickness)
}

// PaintShapePreview draws the live drag feedback onto the preview buffer.
// Callers clear the preview first so only the latest frame is visible.
func (s *Surface) PaintShapePreview(anchor, end core.Point, kind core.RecordType, c core.Color, thickness int) {
	s.paintShape(s.preview, anchor, end, kind, c, thickness)
}

func (s *Surface) paintShape(ctx *gg.Context, anchor, end core.Point, kind core.RecordType, c core.Color, thickness int) {
	ctx.SetColor(c.RGBA())
	ctx.SetLineWidth(float64(max(1, thickness)))

	switch kind {
	case core.RecordCircle:
		radius := math.Floor(math.Hypot(float64(end.X-anchor.X), float64(end.Y-anchor.Y)))
		if radius <= 0 {
			return
		}
		ctx.DrawCircle(float64(anchor.X), float64(anchor.Y), radius)
		s.stroke(ctx)
	case core.RecordSquare:
		x0 := clamp(min(anchor.X, end.X), 0, s.dims.Width-1)
		y0 := clamp(min(anchor.Y, end.Y), 0, s.dims.Height-1)
		x1 := clamp(max(anchor.X, end.X), 0, s.dims.Width-1)
		y1 := clamp(max(anchor.Y, end.Y), 0, s.dims.Height-1)
		if x0 >= x1 || y0 >= y1 {
			return
		}
		ctx.DrawRectangle(float64(x0), float64(y0), float64(x1-x0), float64(y1-y0))
		s.stroke(ctx)
	default:
		s.logger.Warn("unknown shape kind, nothing painted", "kind", kind)
	}
}

// PaintErase paints a background-colored disc, removing annotations under
// it. A non-positive radius is a no-op.
func (s *Surface) PaintErase(p core.Point, radius int) {
	if radius <= 0 {
		return
	}
	s.main.SetColor(background.Color())
	s.main.DrawCircle(float64(p.X), float64(p.Y), float64(radius))
	s.fill(s.main)
}

// Clear resets both buffers to background.
func (s *Surface) Clear() {
	s.main.ClearWithColor(background)
	s.preview.ClearWithColor(background)
}

// ClearPreview wipes only the preview buffer.
func (s *Surface) ClearPreview() {
	s.preview.ClearWithColor(background)
}

// Image returns the current main buffer pixels.
func (s *Surface) Image() image.Image {
	return s.main.Image()
}

// PreviewImage returns the current preview buffer pixels.
func (s *Surface) PreviewImage() image.Image {
	return s.preview.Image()
}

// SavePNG writes the main buffer to path.
func (s *Surface) SavePNG(path string) error {
	return s.main.SavePNG(path)
}

func (s *Surface) fill(ctx *gg.Context) {
	if err := ctx.Fill(); err != nil {
		s.logger.Warn("fill failed, pixels unmodified", "error", err)
	}
}

func (s *Surface) stroke(ctx *gg.Context) {
	if err := ctx.Stroke(); err != nil {
		s.logger.Warn("stroke failed, pixels unmodified", "error", err)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
