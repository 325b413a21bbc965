package core

import "math"

// DefaultNormDims is the shared virtual coordinate space all pointer input
// arrives in before being mapped to a concrete surface.
var DefaultNormDims = Dimensions{Width: 800, Height: 600}

// MapToSurface converts a sample from the shared normalized space into the
// pixel space of a target surface. The result is rounded and clamped to
// [0, w-1] x [0, h-1]; the mapping never fails.
func MapToSurface(xNorm, yNorm float64, norm, surface Dimensions) Point {
	x := int(math.Round(xNorm * float64(surface.Width) / float64(norm.Width)))
	y := int(math.Round(yNorm * float64(surface.Height) / float64(norm.Height)))
	return Point{
		X: clampInt(x, 0, surface.Width-1),
		Y: clampInt(y, 0, surface.Height-1),
	}
}

// RescalePoint converts a pixel coordinate from one surface's space into
// another's by the ratio of their dimensions. Used at replay time for erase
// records, whose coordinates are canonically stored in slide space.
func RescalePoint(p Point, from, to Dimensions) Point {
	return Point{
		X: clampInt(p.X*to.Width/from.Width, 0, to.Width-1),
		Y: clampInt(p.Y*to.Height/from.Height, 0, to.Height-1),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
