package domain

import "math"

// Emoji represents a sticker placed on the document
type Emoji struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Size int    `json:"size"`
}

// Location is a position in document space, origin at the center
type Location struct {
	X int
	Y int
}

// Offset is a continuous displacement, typically produced by a drag gesture
type Offset struct {
	DX float64
	DY float64
}

// Round converts a continuous value to the nearest integer, ties away from zero.
// Every fractional delta, size or scale result crosses into the model through it.
// Values outside the int range saturate and NaN becomes 0.
func Round(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt:
		return math.MaxInt
	case v <= math.MinInt:
		return math.MinInt
	}
	return int(math.Round(v))
}

// Rounded returns the per-axis rounded integer deltas of the offset
func (o Offset) Rounded() (dx, dy int) {
	return Round(o.DX), Round(o.DY)
}

// IsFinite reports whether both axes are finite numbers
func (o Offset) IsFinite() bool {
	return !math.IsNaN(o.DX) && !math.IsInf(o.DX, 0) && !math.IsNaN(o.DY) && !math.IsInf(o.DY, 0)
}
