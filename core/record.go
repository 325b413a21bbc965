package core

import (
	"time"
)

// Record is a single annotation event. It is a tagged variant: Type selects
// which of the optional fields are meaningful. The JSON field names are the
// persisted wire shape shared with the record store.
//
// Variants:
//   - pen: Coords required; PrevCoords absent means start-of-stroke.
//   - circle/square: ShapeStart and ShapeEnd required once durable. A record
//     with ShapeStart only, or with Transient set, is an in-session preview
//     fragment and must never reach the store.
//   - erase: Coords required (canonically in slide space); BrushSize carries
//     the erase radius.
//   - clear_canvas: a log truncation marker, no geometry.
type Record struct {
	Type       RecordType `json:"type"`
	Coords     *Point     `json:"coords,omitempty"`
	PrevCoords *Point     `json:"prev_coords,omitempty"`
	ShapeStart *Point     `json:"shape_start,omitempty"`
	ShapeEnd   *Point     `json:"shape_end,omitempty"`
	Color      *Color     `json:"color,omitempty"`
	BrushSize  int        `json:"brush_size,omitempty"`
	Target     Target     `json:"target,omitempty"`
	Timestamp  float64    `json:"timestamp,omitempty"`

	// Transient marks in-session shape anchors and drag previews. They are
	// consolidated or discarded at finalize time and are invisible to Drain.
	Transient bool `json:"-"`
}

// nowTimestamp returns the current wall time in fractional seconds, the
// unit the wire format uses.
func nowTimestamp() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// NewPenRecord creates a pen record for one target surface. A nil prev
// marks the start of a stroke.
func NewPenRecord(p Point, prev *Point, c Color, brushSize int, target Target) *Record {
	return &Record{
		Type:       RecordPen,
		Coords:     &p,
		PrevCoords: prev,
		Color:      &c,
		BrushSize:  brushSize,
		Target:     target,
		Timestamp:  nowTimestamp(),
	}
}

// NewShapeAnchor creates the transient anchor fragment appended when a
// shape drag begins.
func NewShapeAnchor(kind RecordType, anchor Point, c Color, brushSize int, target Target) *Record {
	return &Record{
		Type:       kind,
		ShapeStart: &anchor,
		Color:      &c,
		BrushSize:  brushSize,
		Target:     target,
		Timestamp:  nowTimestamp(),
		Transient:  true,
	}
}

// NewShapePreview creates a transient drag-preview fragment.
func NewShapePreview(kind RecordType, anchor, end Point, c Color, brushSize int, target Target) *Record {
	return &Record{
		Type:       kind,
		ShapeStart: &anchor,
		ShapeEnd:   &end,
		Color:      &c,
		BrushSize:  brushSize,
		Target:     target,
		Timestamp:  nowTimestamp(),
		Transient:  true,
	}
}

// NewShapeFinal creates the single durable record a finished shape drag
// consolidates into.
func NewShapeFinal(kind RecordType, anchor, end Point, c Color, brushSize int, target Target) *Record {
	return &Record{
		Type:       kind,
		ShapeStart: &anchor,
		ShapeEnd:   &end,
		Color:      &c,
		BrushSize:  brushSize,
		Target:     target,
		Timestamp:  nowTimestamp(),
	}
}

// NewEraseRecord creates an erase record. Coordinates are stored in slide
// space regardless of which surfaces the erase touched; BrushSize holds
// the erase radius.
func NewEraseRecord(slidePoint Point, radius int) *Record {
	return &Record{
		Type:      RecordErase,
		Coords:    &slidePoint,
		BrushSize: radius,
		Target:    TargetBoth,
		Timestamp: nowTimestamp(),
	}
}

// NewClearRecord creates the clear_canvas truncation marker.
func NewClearRecord() *Record {
	return &Record{
		Type:      RecordClear,
		Target:    TargetBoth,
		Timestamp: nowTimestamp(),
	}
}

// Validate checks that the fields required by the record's type are
// present. It returns a *MalformedRecordError describing the first problem
// found; callers on the replay path log it and skip the record.
func (r *Record) Validate() error {
	if !r.Type.Valid() {
		return &MalformedRecordError{Field: "type", Reason: string("unknown type " + r.Type)}
	}
	switch r.Type {
	case RecordPen:
		if r.Coords == nil {
			return &MalformedRecordError{Field: "coords", Reason: "pen record has no coordinates"}
		}
	case RecordCircle, RecordSquare:
		if r.ShapeStart == nil || r.ShapeEnd == nil {
			return &MalformedRecordError{Field: "shape_start/shape_end", Reason: "shape record is missing an endpoint"}
		}
	case RecordErase:
		if r.Coords == nil {
			return &MalformedRecordError{Field: "coords", Reason: "erase record has no coordinates"}
		}
	case RecordClear:
		// No geometry required.
	}
	if r.Target != "" && !r.Target.Valid() {
		return &MalformedRecordError{Field: "target", Reason: string("unknown target " + r.Target)}
	}
	return nil
}

// EffectiveTarget returns the record's target, defaulting to slide when
// the field was absent in stored data.
func (r *Record) EffectiveTarget() Target {
	if r.Target == "" {
		return TargetSlide
	}
	return r.Target
}

// EffectiveColor returns the record's color, defaulting to the first
// standard palette entry (red) when missing, mirroring the lenient load
// behavior this format has always had.
func (r *Record) EffectiveColor() Color {
	if r.Color == nil {
		return StandardPalette[0]
	}
	return *r.Color
}

// EffectiveBrushSize returns the record's brush size clamped to >= 1,
// defaulting to DefaultBrushSize when absent.
func (r *Record) EffectiveBrushSize() int {
	if r.BrushSize <= 0 {
		return DefaultBrushSize
	}
	return r.BrushSize
}
