package layout

import "math"

// Viewport is the target canvas of Normalize. Positions are mapped into
// [Padding, Padding+Width] x [Padding, Padding+Height].
type Viewport struct {
	Width   float64 `json:"width" toml:"width"`
	Height  float64 `json:"height" toml:"height"`
	Padding float64 `json:"padding" toml:"padding"`
}

// DefaultViewport returns the canvas the renderer expects.
func DefaultViewport() Viewport {
	return Viewport{
		Width:   1200,
		Height:  800,
		Padding: 100,
	}
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// BoundsOf returns the bounding box of the given positions. The second
// return value is false for an empty map.
func BoundsOf(positions map[string]Position) (Bounds, bool) {
	if len(positions) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
	for _, p := range positions {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b, true
}

// Normalize rescales raw simulation output so its bounding box maps exactly
// onto the viewport. X and Y are scaled independently. A zero extent on an
// axis uses a denominator of 1. The input map is not modified.
func Normalize(positions map[string]Position, vp Viewport) map[string]Position {
	b, ok := BoundsOf(positions)
	if !ok {
		return map[string]Position{}
	}

	rangeX := b.MaxX - b.MinX
	if rangeX == 0 {
		rangeX = 1
	}
	rangeY := b.MaxY - b.MinY
	if rangeY == 0 {
		rangeY = 1
	}

	out := make(map[string]Position, len(positions))
	for id, p := range positions {
		out[id] = Position{
			X: vp.Padding + (p.X-b.MinX)/rangeX*vp.Width,
			Y: vp.Padding + (p.Y-b.MinY)/rangeY*vp.Height,
		}
	}
	return out
}
