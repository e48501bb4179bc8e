// Package geom provides the 2D primitives shared by the snap engine and the
// drag state machine. Coordinates are viewport pixels, float64 throughout.
package geom

import "math"

// Point is a position in viewport pixels. It doubles as a translation delta.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size holds element or viewport extents.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the delta from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Clamp constrains p to the rectangle [min, max] per axis.
func Clamp(p, min, max Point) Point {
	if p.X < min.X {
		p.X = min.X
	}
	if p.X > max.X {
		p.X = max.X
	}
	if p.Y < min.Y {
		p.Y = min.Y
	}
	if p.Y > max.Y {
		p.Y = max.Y
	}
	return p
}

// ClampToViewport constrains a control center to the viewport, keeping the
// element's half extents plus the edge padding inside on every side.
func ClampToViewport(p Point, viewport Size, half Size, padding float64) Point {
	min := Point{X: padding + half.Width, Y: padding + half.Height}
	max := Point{
		X: viewport.Width - padding - half.Width,
		Y: viewport.Height - padding - half.Height,
	}
	// Degenerate viewports collapse to the padded minimum.
	if max.X < min.X {
		max.X = min.X
	}
	if max.Y < min.Y {
		max.Y = min.Y
	}
	return Clamp(p, min, max)
}
