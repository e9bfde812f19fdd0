package model

import "math"

// BBox represents a bounding box in corner form: (X0, Y0) is the
// bottom-left corner and (X1, Y1) the top-right corner, in PDF points.
type BBox struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// NewBBox creates a bounding box from corner coordinates.
func NewBBox(x0, y0, x1, y1 float64) BBox {
	return BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 {
	return b.Y1 - b.Y0
}

// CenterY returns the vertical center of the box.
func (b BBox) CenterY() float64 {
	return (b.Y0 + b.Y1) / 2
}

// CenterX returns the horizontal center of the box.
func (b BBox) CenterX() float64 {
	return (b.X0 + b.X1) / 2
}

// Union returns the smallest box covering both b and other.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// Intersects checks if two bounding boxes overlap.
func (b BBox) Intersects(other BBox) bool {
	return !(b.X1 < other.X0 ||
		b.X0 > other.X1 ||
		b.Y1 < other.Y0 ||
		b.Y0 > other.Y1)
}

// GapDistance returns the Euclidean distance between the closest edges
// of two boxes. Overlapping boxes have distance zero.
func (b BBox) GapDistance(other BBox) float64 {
	dx := math.Max(0, math.Max(other.X0-b.X1, b.X0-other.X1))
	dy := math.Max(0, math.Max(other.Y0-b.Y1, b.Y0-other.Y1))
	return math.Sqrt(dx*dx + dy*dy)
}

// IsEmpty returns true if the box has no positive area.
func (b BBox) IsEmpty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// AsSlice returns the box as [x0, y0, x1, y1], the manifest wire form.
func (b BBox) AsSlice() []float64 {
	return []float64{b.X0, b.Y0, b.X1, b.Y1}
}
