// Package export turns a session's durable annotation history into
// shareable artifacts: PNG snapshots of a rendered surface and a vector
// PDF re-trace of the record sequence.
package export

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"github.com/jung-kurt/gofpdf"

	"github.com/INLOpen/inklog/core"
	"github.com/INLOpen/inklog/replay"
)

// PNG writes img to path as a PNG file.
func PNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// PDF re-traces the slide-space annotations in records as vector strokes
// on a single landscape A4 page and writes the document to path. Only
// records after the last clear marker are drawn, matching what a replay
// would leave on screen. Erases become page-background discs.
func PDF(records []*core.Record, slideDims core.Dimensions, path string) error {
	if !slideDims.Valid() {
		return fmt.Errorf("invalid slide dimensions %s", slideDims)
	}

	p := gofpdf.New("L", "mm", "A4", "")
	p.AddPage()
	pageW, pageH := p.GetPageSize()
	scale := math.Min(pageW/float64(slideDims.Width), pageH/float64(slideDims.Height))

	for _, rec := range records[replay.EffectiveStart(records):] {
		if rec == nil || rec.Transient || rec.Validate() != nil {
			continue
		}
		if !rec.EffectiveTarget().AppliesToSlide() {
			continue
		}
		drawRecord(p, rec, scale)
	}

	return p.OutputFileAndClose(path)
}

func drawRecord(p *gofpdf.Fpdf, rec *core.Record, scale float64) {
	width := float64(rec.EffectiveBrushSize()) * scale
	c := rec.EffectiveColor()
	p.SetDrawColor(int(c[0]), int(c[1]), int(c[2]))
	p.SetFillColor(int(c[0]), int(c[1]), int(c[2]))
	p.SetLineWidth(width)

	switch rec.Type {
	case core.RecordPen:
		x, y := pt(*rec.Coords, scale)
		if rec.PrevCoords != nil {
			px, py := pt(*rec.PrevCoords, scale)
			p.Line(px, py, x, y)
		} else {
			p.Circle(x, y, math.Max(width/2, 0.2), "F")
		}
	case core.RecordCircle:
		x0, y0 := pt(*rec.ShapeStart, scale)
		x1, y1 := pt(*rec.ShapeEnd, scale)
		r := math.Hypot(x1-x0, y1-y0)
		if r > 0 {
			p.Circle(x0, y0, r, "D")
		}
	case core.RecordSquare:
		x0, y0 := pt(*rec.ShapeStart, scale)
		x1, y1 := pt(*rec.ShapeEnd, scale)
		x, y := math.Min(x0, x1), math.Min(y0, y1)
		w, h := math.Abs(x1-x0), math.Abs(y1-y0)
		if w > 0 && h > 0 {
			p.Rect(x, y, w, h, "D")
		}
	case core.RecordErase:
		x, y := pt(*rec.Coords, scale)
		p.SetFillColor(255, 255, 255)
		p.Circle(x, y, float64(rec.BrushSize)*scale, "F")
	}
}

func pt(p core.Point, scale float64) (float64, float64) {
	return float64(p.X) * scale, float64(p.Y) * scale
}
