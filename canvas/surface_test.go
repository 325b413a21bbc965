package canvas

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INLOpen/inklog/core"
)

var (
	testDims = core.Dimensions{Width: 64, Height: 48}
	red      = core.Color{255, 0, 0}
)

func newTestSurface(t *testing.T) *Surface {
	t.Helper()
	s, err := NewSurface(testDims, nil)
	require.NoError(t, err)
	return s
}

func pixels(img image.Image) []uint8 {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		b := img.Bounds()
		rgba = image.NewRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				rgba.Set(x, y, img.At(x, y))
			}
		}
	}
	return rgba.Pix
}

func TestNewSurfaceRejectsInvalidDimensions(t *testing.T) {
	_, err := NewSurface(core.Dimensions{Width: 0, Height: 10}, nil)
	assert.Error(t, err)
	_, err = NewSurface(core.Dimensions{Width: 10, Height: -1}, nil)
	assert.Error(t, err)
}

func TestPaintStrokeStartChangesPixels(t *testing.T) {
	s := newTestSurface(t)
	before := append([]uint8(nil), pixels(s.Image())...)

	s.PaintStrokeStart(core.Point{X: 32, Y: 24}, red, 6)

	assert.NotEqual(t, before, pixels(s.Image()), "disc should modify the buffer")
}

func TestDegenerateGeometryIsNoOp(t *testing.T) {
	s := newTestSurface(t)
	before := append([]uint8(nil), pixels(s.Image())...)

	t.Run("ZeroRadiusCircle", func(t *testing.T) {
		s.PaintShape(core.Point{X: 10, Y: 10}, core.Point{X: 10, Y: 10}, core.RecordCircle, red, 2)
		assert.Equal(t, before, pixels(s.Image()))
	})

	t.Run("EmptyRectangle", func(t *testing.T) {
		s.PaintShape(core.Point{X: 10, Y: 10}, core.Point{X: 10, Y: 30}, core.RecordSquare, red, 2)
		assert.Equal(t, before, pixels(s.Image()))
	})

	t.Run("ZeroRadiusErase", func(t *testing.T) {
		s.PaintErase(core.Point{X: 10, Y: 10}, 0)
		assert.Equal(t, before, pixels(s.Image()))
	})

	t.Run("UnknownShapeKind", func(t *testing.T) {
		s.PaintShape(core.Point{X: 1, Y: 1}, core.Point{X: 20, Y: 20}, core.RecordPen, red, 2)
		assert.Equal(t, before, pixels(s.Image()))
	})
}

func TestClearResetsBothBuffers(t *testing.T) {
	s := newTestSurface(t)
	empty := append([]uint8(nil), pixels(s.Image())...)

	s.PaintStrokeSegment(core.Point{X: 0, Y: 0}, core.Point{X: 40, Y: 40}, red, 3)
	s.PaintShapePreview(core.Point{X: 5, Y: 5}, core.Point{X: 30, Y: 30}, core.RecordSquare, red, 2)
	require.NotEqual(t, empty, pixels(s.Image()))
	require.NotEqual(t, empty, pixels(s.PreviewImage()))

	s.Clear()
	assert.Equal(t, empty, pixels(s.Image()))
	assert.Equal(t, empty, pixels(s.PreviewImage()))
}

func TestClearPreviewLeavesMainIntact(t *testing.T) {
	s := newTestSurface(t)
	s.PaintStrokeStart(core.Point{X: 20, Y: 20}, red, 8)
	main := append([]uint8(nil), pixels(s.Image())...)

	s.PaintShapePreview(core.Point{X: 5, Y: 5}, core.Point{X: 30, Y: 30}, core.RecordCircle, red, 2)
	s.ClearPreview()

	assert.Equal(t, main, pixels(s.Image()))
}

func TestEraseRemovesInk(t *testing.T) {
	s := newTestSurface(t)
	empty := append([]uint8(nil), pixels(s.Image())...)

	s.PaintStrokeStart(core.Point{X: 32, Y: 24}, red, 4)
	require.NotEqual(t, empty, pixels(s.Image()))

	// A disc comfortably larger than the stroke start wipes it entirely.
	s.PaintErase(core.Point{X: 32, Y: 24}, 20)
	assert.Equal(t, empty, pixels(s.Image()))
}
