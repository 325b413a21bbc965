package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapToSurface(t *testing.T) {
	norm := Dimensions{Width: 800, Height: 600}
	slide := Dimensions{Width: 1920, Height: 1080}

	tests := []struct {
		name     string
		x, y     float64
		expected Point
	}{
		{"Origin", 0, 0, Point{0, 0}},
		{"Center", 400, 300, Point{960, 540}},
		{"MaxCorner", 800, 600, Point{1919, 1079}},
		{"NegativeXClamped", -5, 10000, Point{0, 1079}},
		{"FarOutOfRange", 99999, -42, Point{1919, 0}},
		{"RoundsHalfUp", 1, 1, Point{2, 2}}, // 1*1920/800 = 2.4 -> 2, 1*1080/600 = 1.8 -> 2
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapToSurface(tt.x, tt.y, norm, slide)
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got.X, 0)
			assert.GreaterOrEqual(t, got.Y, 0)
			assert.Less(t, got.X, slide.Width)
			assert.Less(t, got.Y, slide.Height)
		})
	}
}

func TestRescalePoint(t *testing.T) {
	slide := Dimensions{Width: 1920, Height: 1080}
	webcam := Dimensions{Width: 1280, Height: 720}

	t.Run("CenterMapsToCenter", func(t *testing.T) {
		got := RescalePoint(Point{960, 540}, slide, webcam)
		assert.Equal(t, Point{640, 360}, got)
	})

	t.Run("EdgeStaysInBounds", func(t *testing.T) {
		got := RescalePoint(Point{1919, 1079}, slide, webcam)
		assert.Less(t, got.X, webcam.Width)
		assert.Less(t, got.Y, webcam.Height)
	})
}
