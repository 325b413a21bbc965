package export

import (
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INLOpen/inklog/canvas"
	"github.com/INLOpen/inklog/core"
)

var slideDims = core.Dimensions{Width: 1920, Height: 1080}

func TestPNGRoundTrip(t *testing.T) {
	s, err := canvas.NewSurface(slideDims, nil)
	require.NoError(t, err)
	s.PaintStrokeStart(core.Point{X: 960, Y: 540}, core.StandardPalette[0], 10)

	path := filepath.Join(t.TempDir(), "snapshot.png")
	require.NoError(t, PNG(s.Image(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, slideDims.Width, cfg.Width)
	assert.Equal(t, slideDims.Height, cfg.Height)
}

func TestPDFWritesDocument(t *testing.T) {
	records := []*core.Record{
		core.NewPenRecord(core.Point{X: 100, Y: 100}, nil, core.StandardPalette[0], 5, core.TargetSlide),
		core.NewPenRecord(core.Point{X: 150, Y: 100}, &core.Point{X: 100, Y: 100}, core.StandardPalette[0], 5, core.TargetSlide),
		core.NewShapeFinal(core.RecordSquare, core.Point{X: 10, Y: 10}, core.Point{X: 50, Y: 50}, core.StandardPalette[1], 5, core.TargetSlide),
		core.NewEraseRecord(core.Point{X: 400, Y: 400}, 20),
	}

	path := filepath.Join(t.TempDir(), "session.pdf")
	require.NoError(t, PDF(records, slideDims, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFHonorsClearTruncation(t *testing.T) {
	dir := t.TempDir()
	square := core.NewShapeFinal(core.RecordSquare, core.Point{X: 10, Y: 10}, core.Point{X: 50, Y: 50}, core.StandardPalette[0], 5, core.TargetSlide)

	full := []*core.Record{
		core.NewPenRecord(core.Point{X: 100, Y: 100}, nil, core.StandardPalette[0], 5, core.TargetSlide),
		core.NewClearRecord(),
		square,
	}
	truncated, err := renderSize(filepath.Join(dir, "truncated.pdf"), full)
	require.NoError(t, err)
	squareOnly, err := renderSize(filepath.Join(dir, "square.pdf"), []*core.Record{square})
	require.NoError(t, err)

	// The pre-clear stroke contributes nothing to the page content.
	assert.Equal(t, squareOnly, truncated)
}

func renderSize(path string, records []*core.Record) (int, error) {
	if err := PDF(records, slideDims, path); err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return int(info.Size()), nil
}

func TestPDFSkipsMalformedAndWebcamOnly(t *testing.T) {
	bad := &core.Record{Type: core.RecordPen} // no coords
	webcamOnly := core.NewPenRecord(core.Point{X: 5, Y: 5}, nil, core.StandardPalette[0], 5, core.TargetWebcam)

	path := filepath.Join(t.TempDir(), "sparse.pdf")
	require.NoError(t, PDF([]*core.Record{nil, bad, webcamOnly}, slideDims, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPDFRejectsInvalidDims(t *testing.T) {
	err := PDF(nil, core.Dimensions{}, filepath.Join(t.TempDir(), "x.pdf"))
	assert.Error(t, err)
}
