package core

import (
	"encoding/json"
	"fmt"
	"image/color"
)

// Point is an integer pixel coordinate in the space of one target surface.
// On the wire it is encoded as a two-element JSON array [x, y].
type Point struct {
	X int
	Y int
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON decodes a [x, y] array. Anything other than a two-element
// numeric array is rejected so the containing record can be skipped.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return &MalformedRecordError{Field: "coords", Reason: fmt.Sprintf("not a coordinate pair: %v", err)}
	}
	if len(raw) != 2 {
		return &MalformedRecordError{Field: "coords", Reason: fmt.Sprintf("expected 2 elements, got %d", len(raw))}
	}
	p.X = int(raw[0])
	p.Y = int(raw[1])
	return nil
}

// Equal reports whether two points have identical coordinates.
func (p Point) Equal(other Point) bool {
	return p.X == other.X && p.Y == other.Y
}

// Color is a 3-component RGB tuple with channel range [0, 255].
// It marshals as [r, g, b].
type Color [3]uint8

// RGBA converts the tuple to an opaque color.Color for rasterization.
func (c Color) RGBA() color.Color {
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: 0xFF}
}

// Dimensions describes the fixed pixel size of a surface or of the shared
// normalized input space.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Valid reports whether both extents are positive.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// Target identifies which surface(s) an annotation applies to.
type Target string

const (
	TargetSlide  Target = "slide"
	TargetWebcam Target = "webcam"
	TargetBoth   Target = "both"
)

// Valid reports whether t is one of the known targets.
func (t Target) Valid() bool {
	switch t {
	case TargetSlide, TargetWebcam, TargetBoth:
		return true
	}
	return false
}

// AppliesToSlide reports whether the target includes the slide surface.
func (t Target) AppliesToSlide() bool {
	return t == TargetSlide || t == TargetBoth
}

// AppliesToWebcam reports whether the target includes the webcam surface.
func (t Target) AppliesToWebcam() bool {
	return t == TargetWebcam || t == TargetBoth
}

// RecordType tags an annotation record variant. The same values double as
// the interactive drawing modes (pen, circle, square).
type RecordType string

const (
	RecordPen    RecordType = "pen"
	RecordCircle RecordType = "circle"
	RecordSquare RecordType = "square"
	RecordErase  RecordType = "erase"
	RecordClear  RecordType = "clear_canvas"
)

// Valid reports whether rt is a known record type.
func (rt RecordType) Valid() bool {
	switch rt {
	case RecordPen, RecordCircle, RecordSquare, RecordErase, RecordClear:
		return true
	}
	return false
}

// IsShape reports whether rt is one of the draggable shape kinds.
func (rt RecordType) IsShape() bool {
	return rt == RecordCircle || rt == RecordSquare
}
