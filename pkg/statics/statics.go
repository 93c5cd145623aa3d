// Package statics solves the two-cable equilibrium at the load point.
//
// The diagram has a pivot P0, two anchors P1 and P2 and a load point P3. A
// cable runs from each anchor to the load, and an external [Force] acts on the
// load. [Solve] finds the cable tensions that balance that force, the
// reaction force each anchor feels, and the torque of each reaction about the
// pivot.
//
// All positions are world-frame coordinates (Y up). A direction of 0° points
// along +X and 90° along +Y, so a force pointing down the screen has a
// direction of 270°. Mixing in canvas (Y-down) coordinates flips the sign of
// every torque.
package statics

import (
	"math"

	"github.com/matzehuels/tensionlab/pkg/geom"
)

// SingularThreshold is the determinant magnitude below which the two cable
// directions are treated as parallel.
const SingularThreshold = 1e-6

// Force is the external force applied at the load point.
type Force struct {
	Magnitude float64 // newtons, >= 0
	Direction float64 // degrees, not normalized
}

// Components resolves f into Cartesian components.
func (f Force) Components() (fx, fy float64) {
	theta := geom.Radians(f.Direction)
	return f.Magnitude * math.Cos(theta), f.Magnitude * math.Sin(theta)
}

// Result holds everything derived from one equilibrium solve.
//
// Tensions are signed along the unit vector from the load to the anchor: a
// positive tension pulls the load toward that anchor.
type Result struct {
	TensionA, TensionB float64
	ForceAX, ForceAY   float64
	ForceBX, ForceBY   float64
	TorqueA, TorqueB   float64

	// Degenerate is set when the cables are (anti)parallel and the all-zero
	// result was returned.
	Degenerate bool
}

// NetTorque is the sum of both anchor torques about the pivot.
func (r Result) NetTorque() float64 { return r.TorqueA + r.TorqueB }

// ForceA returns the reaction force at anchor A as a vector.
func (r Result) ForceA() geom.Point { return geom.Pt(r.ForceAX, r.ForceAY) }

// ForceB returns the reaction force at anchor B as a vector.
func (r Result) ForceB() geom.Point { return geom.Pt(r.ForceBX, r.ForceBY) }

// Solve computes tensions, anchor reactions and pivot torques.
//
// Solve never fails. When the two cable directions are linearly dependent the
// zero Result (with Degenerate set) is returned. If an anchor coincides with
// the load the cable has no direction and NaN propagates into the result.
func Solve(pivot, anchorA, anchorB, load geom.Point, f Force) Result {
	fx, fy := f.Components()

	ua := unit(anchorA.Sub(load))
	ub := unit(anchorB.Sub(load))

	// tA·uA + tB·uB + F = 0, solved with Cramer's rule.
	det := ua.X*ub.Y - ub.X*ua.Y
	if math.Abs(det) < SingularThreshold {
		return Result{Degenerate: true}
	}

	ta := (-fx*ub.Y + fy*ub.X) / det
	tb := (fx*ua.Y - fy*ua.X) / det

	// Each anchor is pulled back along its cable.
	fa := ua.Scale(-ta)
	fb := ub.Scale(-tb)

	return Result{
		TensionA: ta,
		TensionB: tb,
		ForceAX:  fa.X,
		ForceAY:  fa.Y,
		ForceBX:  fb.X,
		ForceBY:  fb.Y,
		TorqueA:  torque(anchorA.Sub(pivot), fa),
		TorqueB:  torque(anchorB.Sub(pivot), fb),
	}
}

// unit divides v by its length. A zero vector yields NaN components.
func unit(v geom.Point) geom.Point {
	l := v.Len()
	return geom.Pt(v.X/l, v.Y/l)
}

// torque is the 2D cross product r × f.
func torque(r, f geom.Point) float64 {
	return r.X*f.Y - r.Y*f.X
}
