// Package geom holds the 2D primitives shared by the layout, viewport and
// picking packages.
package geom

import "math"

// Point is a 2D coordinate. Which space it lives in (logical chip units,
// normalized view units or device pixels) depends on the caller.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Mul scales both coordinates by k.
func (p Point) Mul(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// IsFinite reports whether neither coordinate is NaN or infinite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// BoundingBox is an axis-aligned rectangle. The zero value is a degenerate
// box at the origin; use NewBoundingBox for an empty accumulator.
type BoundingBox struct {
	Min Point
	Max Point
}

// NewBoundingBox returns an empty box that any Expand call will replace.
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// Box returns the box spanning two corners given in any order.
func Box(x0, y0, x1, y1 float64) BoundingBox {
	bb := NewBoundingBox()
	bb.Expand(Pt(x0, y0))
	bb.Expand(Pt(x1, y1))
	return bb
}

// IsEmpty reports whether nothing has been added to the box.
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Expand grows the box to include p.
func (bb *BoundingBox) Expand(p Point) {
	if p.X < bb.Min.X {
		bb.Min.X = p.X
	}
	if p.Y < bb.Min.Y {
		bb.Min.Y = p.Y
	}
	if p.X > bb.Max.X {
		bb.Max.X = p.X
	}
	if p.Y > bb.Max.Y {
		bb.Max.Y = p.Y
	}
}

// ExpandBox grows the box to include other.
func (bb *BoundingBox) ExpandBox(other BoundingBox) {
	if !other.IsEmpty() {
		bb.Expand(other.Min)
		bb.Expand(other.Max)
	}
}

// ExpandCoords grows the box by a flat x,y,x,y,... list. A trailing odd
// value is ignored.
func (bb *BoundingBox) ExpandCoords(coords []float64) {
	for i := 0; i+1 < len(coords); i += 2 {
		bb.Expand(Point{X: coords[i], Y: coords[i+1]})
	}
}

func (bb BoundingBox) Width() float64  { return bb.Max.X - bb.Min.X }
func (bb BoundingBox) Height() float64 { return bb.Max.Y - bb.Min.Y }

func (bb BoundingBox) Center() Point {
	return Point{
		X: (bb.Min.X + bb.Max.X) / 2,
		Y: (bb.Min.Y + bb.Max.Y) / 2,
	}
}

// Contains reports whether p lies inside the box, edges included.
func (bb BoundingBox) Contains(p Point) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X &&
		p.Y >= bb.Min.Y && p.Y <= bb.Max.Y
}
