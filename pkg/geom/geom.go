// Package geom provides the 2D value types shared by the solver, the label
// heuristic and the rendering sinks.
//
// Two coordinate frames are in play:
//
//   - canvas: device pixels, origin top-left, Y grows downward
//   - world: origin at the canvas center, Y grows upward
//
// Everything in tensionlab's core works in the world frame. [Frame] converts
// between the two for a canvas of a given size.
package geom

import "math"

// Point is a 2D coordinate.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Len returns the Euclidean length of p taken as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return q.Sub(p).Len() }

// Angle returns the bearing from p to q in radians, in (-π, π].
func (p Point) Angle(q Point) float64 { return math.Atan2(q.Y-p.Y, q.X-p.X) }

// Rect is an axis-aligned rectangle given by its min corner and size.
type Rect struct {
	X, Y, W, H float64
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the far edge along Y.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Frame describes a canvas of Width×Height device pixels.
type Frame struct {
	Width, Height float64
}

// ToWorld maps a canvas coordinate to the world frame.
func (f Frame) ToWorld(p Point) Point {
	return Point{X: p.X - f.Width/2, Y: f.Height/2 - p.Y}
}

// ToCanvas maps a world coordinate to the canvas frame.
func (f Frame) ToCanvas(p Point) Point {
	return Point{X: p.X + f.Width/2, Y: f.Height/2 - p.Y}
}

// Bounds returns the canvas rectangle (0, 0, Width, Height).
func (f Frame) Bounds() Rect { return Rect{W: f.Width, H: f.Height} }

// Contains reports whether r lies within the canvas inset by margin on every side.
func (f Frame) Contains(r Rect, margin float64) bool {
	return r.X >= margin && r.Y >= margin &&
		r.MaxX() <= f.Width-margin && r.MaxY() <= f.Height-margin
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
