package core

// DefaultBrushSize is the brush width assumed when a record carries none.
const DefaultBrushSize = 5

// StandardPalette holds the cycling pen colors for normal (light) slides.
var StandardPalette = []Color{
	{255, 0, 0},   // Red
	{0, 255, 0},   // Green
	{0, 0, 255},   // Blue
	{255, 255, 0}, // Yellow
}

// BlackboardPalette holds the cycling pen colors used over dark
// blackboard-style slides.
var BlackboardPalette = []Color{
	{255, 255, 255}, // White
	{200, 200, 200}, // Gray
	{255, 255, 150}, // Lt. Cyan
	{255, 150, 255}, // Lt. Magenta
}

// StandardPaletteNames and BlackboardPaletteNames are the display names for
// the palettes, index-aligned with the color slices.
var (
	StandardPaletteNames   = []string{"Red", "Green", "Blue", "Yellow"}
	BlackboardPaletteNames = []string{"White", "Gray", "Lt. Cyan", "Lt. Magenta"}
)

// PaletteColor returns the color at index for the selected palette. The
// index is wrapped, so any non-negative value is safe.
func PaletteColor(index int, blackboard bool) Color {
	palette := StandardPalette
	if blackboard {
		palette = BlackboardPalette
	}
	return palette[index%len(palette)]
}

// PaletteColorName returns the display name matching PaletteColor.
func PaletteColorName(index int, blackboard bool) string {
	names := StandardPaletteNames
	if blackboard {
		names = BlackboardPaletteNames
	}
	return names[index%len(names)]
}
