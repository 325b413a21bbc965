package replay

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INLOpen/inklog/canvas"
	"github.com/INLOpen/inklog/core"
)

var (
	smallSlide  = core.Dimensions{Width: 192, Height: 108}
	smallWebcam = core.Dimensions{Width: 128, Height: 72}
	red         = core.Color{255, 0, 0}
)

func newTestReplayer(t *testing.T, slideDims, webcamDims core.Dimensions) *Replayer {
	t.Helper()
	slide, err := canvas.NewSurface(slideDims, nil)
	require.NoError(t, err)
	webcam, err := canvas.NewSurface(webcamDims, nil)
	require.NoError(t, err)
	return New(slide, webcam, Options{})
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

func sampleSequence() []*core.Record {
	return []*core.Record{
		core.NewPenRecord(core.Point{X: 20, Y: 20}, nil, red, 5, core.TargetSlide),
		core.NewPenRecord(core.Point{X: 60, Y: 20}, &core.Point{X: 20, Y: 20}, red, 5, core.TargetSlide),
		core.NewShapeFinal(core.RecordCircle, core.Point{X: 90, Y: 50}, core.Point{X: 110, Y: 50}, core.Color{0, 255, 0}, 3, core.TargetBoth),
		core.NewEraseRecord(core.Point{X: 60, Y: 20}, 8),
	}
}

func TestReplayDeterminism(t *testing.T) {
	records := sampleSequence()

	first := newTestReplayer(t, smallSlide, smallWebcam)
	first.Replay(records)
	slideOnce := append([]uint8(nil), pixels(first.slide.Image())...)
	webcamOnce := append([]uint8(nil), pixels(first.webcam.Image())...)

	// Same replayer again: Replay resets before rendering.
	first.Replay(records)
	assert.Equal(t, slideOnce, pixels(first.slide.Image()))
	assert.Equal(t, webcamOnce, pixels(first.webcam.Image()))

	// A completely fresh surface pair must agree byte for byte.
	second := newTestReplayer(t, smallSlide, smallWebcam)
	second.Replay(records)
	assert.Equal(t, slideOnce, pixels(second.slide.Image()))
	assert.Equal(t, webcamOnce, pixels(second.webcam.Image()))
}

func TestClearTruncatesHistory(t *testing.T) {
	prefix := []*core.Record{
		core.NewPenRecord(core.Point{X: 10, Y: 10}, nil, red, 9, core.TargetBoth),
		core.NewShapeFinal(core.RecordSquare, core.Point{X: 5, Y: 5}, core.Point{X: 80, Y: 60}, red, 4, core.TargetSlide),
	}
	suffix := []*core.Record{
		core.NewPenRecord(core.Point{X: 100, Y: 50}, nil, red, 5, core.TargetSlide),
		core.NewShapeFinal(core.RecordCircle, core.Point{X: 50, Y: 50}, core.Point{X: 70, Y: 50}, red, 2, core.TargetWebcam),
	}
	full := append(append(append([]*core.Record{}, prefix...), core.NewClearRecord()), suffix...)

	a := newTestReplayer(t, smallSlide, smallWebcam)
	a.Replay(full)
	b := newTestReplayer(t, smallSlide, smallWebcam)
	b.Replay(suffix)

	assert.Equal(t, pixels(b.slide.Image()), pixels(a.slide.Image()))
	assert.Equal(t, pixels(b.webcam.Image()), pixels(a.webcam.Image()))
}

func TestEffectiveStart(t *testing.T) {
	pen := core.NewPenRecord(core.Point{X: 1, Y: 1}, nil, red, 5, core.TargetSlide)

	assert.Equal(t, 0, EffectiveStart(nil))
	assert.Equal(t, 0, EffectiveStart([]*core.Record{pen, pen}))
	assert.Equal(t, 1, EffectiveStart([]*core.Record{core.NewClearRecord(), pen}))
	assert.Equal(t, 3, EffectiveStart([]*core.Record{pen, core.NewClearRecord(), pen, core.NewClearRecord()}))
}

func TestEraseRescalesOntoWebcam(t *testing.T) {
	slide := core.Dimensions{Width: 1920, Height: 1080}
	webcam := core.Dimensions{Width: 1280, Height: 720}
	rp := newTestReplayer(t, slide, webcam)

	background := rp.webcam.Image().At(0, 0)

	records := []*core.Record{
		// Ink covering the webcam center so the erase has something to
		// remove, plus a second disc that must survive.
		core.NewPenRecord(core.Point{X: 640, Y: 360}, nil, red, 30, core.TargetWebcam),
		core.NewPenRecord(core.Point{X: 560, Y: 360}, nil, red, 30, core.TargetWebcam),
		core.NewEraseRecord(core.Point{X: 960, Y: 540}, 20),
	}
	rp.Replay(records)

	// The erase stored at slide center (960,540) lands on the webcam
	// surface at its center (640,360) with the same 20px radius, wiping
	// the 15px-radius disc there completely.
	assert.Equal(t, background, rp.webcam.Image().At(640, 360))
	assert.Equal(t, background, rp.webcam.Image().At(640+12, 360))
	// The disc at (560,360) is outside the erase and keeps its ink.
	assert.NotEqual(t, background, rp.webcam.Image().At(560, 360))
}

func TestMalformedRecordsAreSkippedNotFatal(t *testing.T) {
	good := sampleSequence()
	corrupted := append([]*core.Record{}, good[:2]...)
	corrupted = append(corrupted,
		nil,
		&core.Record{Type: core.RecordPen},                         // missing coords
		&core.Record{Type: "scribble", Coords: &core.Point{X: 5, Y: 5}},  // unknown type
		&core.Record{Type: core.RecordSquare, ShapeStart: &core.Point{X: 1, Y: 1}}, // missing end
	)
	corrupted = append(corrupted, good[2:]...)

	a := newTestReplayer(t, smallSlide, smallWebcam)
	a.Replay(corrupted)
	b := newTestReplayer(t, smallSlide, smallWebcam)
	b.Replay(good)

	assert.Equal(t, pixels(b.slide.Image()), pixels(a.slide.Image()))
	assert.Equal(t, pixels(b.webcam.Image()), pixels(a.webcam.Image()))
}
