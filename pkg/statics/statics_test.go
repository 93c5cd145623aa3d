package statics

import (
	"math"
	"testing"

	"github.com/matzehuels/tensionlab/pkg/geom"
)

const tol = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) <= tol*math.Max(1, math.Abs(b)) }

func TestSolveSymmetric(t *testing.T) {
	pivot := geom.Pt(0, 10)
	a := geom.Pt(-10, 0)
	b := geom.Pt(10, 0)
	load := geom.Pt(0, -10)

	r := Solve(pivot, a, b, load, Force{Magnitude: 10, Direction: 270})

	if r.Degenerate {
		t.Fatal("Degenerate = true, want false")
	}
	if !approx(r.TensionA, r.TensionB) {
		t.Errorf("TensionA = %v, TensionB = %v, want equal", r.TensionA, r.TensionB)
	}
	if want := 10 / math.Sqrt2; !approx(r.TensionA, want) {
		t.Errorf("TensionA = %v, want %v", r.TensionA, want)
	}
	if !approx(r.TorqueA, -r.TorqueB) {
		t.Errorf("TorqueA = %v, TorqueB = %v, want opposite", r.TorqueA, r.TorqueB)
	}
	if !approx(r.TorqueA, 100) {
		t.Errorf("TorqueA = %v, want 100", r.TorqueA)
	}
	if math.Abs(r.NetTorque()) > tol {
		t.Errorf("NetTorque = %v, want 0", r.NetTorque())
	}
}

func TestSolveBalancesLoad(t *testing.T) {
	tests := []struct {
		name       string
		a, b, load geom.Point
		force      Force
	}{
		{"defaults", geom.Pt(-150, 100), geom.Pt(150, 100), geom.Pt(0, -50), Force{50, 0}},
		{"skewed", geom.Pt(-80, 120), geom.Pt(200, 30), geom.Pt(10, -40), Force{35, 200}},
		{"negative direction", geom.Pt(-30, 60), geom.Pt(90, 90), geom.Pt(0, 0), Force{12, -45}},
		{"unnormalized direction", geom.Pt(-30, 60), geom.Pt(90, 90), geom.Pt(0, 0), Force{12, 315 + 720}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Solve(geom.Pt(0, 150), tt.a, tt.b, tt.load, tt.force)
			fx, fy := tt.force.Components()

			// Anchor reactions are the cable pulls reversed, so their sum
			// must equal the applied force.
			sumX := r.ForceAX + r.ForceBX
			sumY := r.ForceAY + r.ForceBY
			if math.Abs(sumX-fx) > 1e-6 || math.Abs(sumY-fy) > 1e-6 {
				t.Errorf("sum of reactions = (%v, %v), want (%v, %v)", sumX, sumY, fx, fy)
			}
		})
	}
}

func TestSolveDegenerate(t *testing.T) {
	tests := []struct {
		name       string
		a, b, load geom.Point
	}{
		{"colinear opposite", geom.Pt(-10, 0), geom.Pt(10, 0), geom.Pt(0, 0)},
		{"colinear same side", geom.Pt(10, 10), geom.Pt(20, 20), geom.Pt(0, 0)},
		{"vertical", geom.Pt(0, 50), geom.Pt(0, -30), geom.Pt(0, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Solve(geom.Pt(3, 4), tt.a, tt.b, tt.load, Force{Magnitude: 40, Direction: 90})
			want := Result{Degenerate: true}
			if r != want {
				t.Errorf("Solve() = %+v, want all zero", r)
			}
		})
	}
}

func TestSolveCoincidentAnchorPropagatesNaN(t *testing.T) {
	r := Solve(geom.Pt(0, 0), geom.Pt(5, 5), geom.Pt(10, 0), geom.Pt(5, 5), Force{10, 0})
	if !math.IsNaN(r.TensionA) {
		t.Errorf("TensionA = %v, want NaN", r.TensionA)
	}
}

func TestSolveZeroForce(t *testing.T) {
	r := Solve(geom.Pt(0, 150), geom.Pt(-150, 100), geom.Pt(150, 100), geom.Pt(0, -50), Force{})
	if r.TensionA != 0 || r.TensionB != 0 {
		t.Errorf("tensions = (%v, %v), want zero", r.TensionA, r.TensionB)
	}
}

func TestForceComponents(t *testing.T) {
	tests := []struct {
		f      Force
		wx, wy float64
	}{
		{Force{10, 0}, 10, 0},
		{Force{10, 90}, 0, 10},
		{Force{10, 180}, -10, 0},
		{Force{10, 270}, 0, -10},
		{Force{10, -90}, 0, -10},
		{Force{0, 45}, 0, 0},
	}
	for _, tt := range tests {
		fx, fy := tt.f.Components()
		if math.Abs(fx-tt.wx) > 1e-12 || math.Abs(fy-tt.wy) > 1e-12 {
			t.Errorf("%+v.Components() = (%v, %v), want (%v, %v)", tt.f, fx, fy, tt.wx, tt.wy)
		}
	}
}
