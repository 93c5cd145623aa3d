package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) <= eps*math.Max(1, math.Abs(a)) }

func TestFrameRoundTrip(t *testing.T) {
	frames := []Frame{{500, 400}, {1, 1}, {1920, 1080}, {333.3, 17.5}}
	points := []Point{{0, 0}, {250, 50}, {-1e6, 1e6}, {0.1, -0.2}, {499.999, 399.5}}

	for _, f := range frames {
		for _, p := range points {
			got := f.ToCanvas(f.ToWorld(p))
			if !near(got.X, p.X) || !near(got.Y, p.Y) {
				t.Errorf("frame %v: ToCanvas(ToWorld(%v)) = %v", f, p, got)
			}
			back := f.ToWorld(f.ToCanvas(p))
			if !near(back.X, p.X) || !near(back.Y, p.Y) {
				t.Errorf("frame %v: ToWorld(ToCanvas(%v)) = %v", f, p, back)
			}
		}
	}
}

func TestFrameToWorld(t *testing.T) {
	f := Frame{Width: 500, Height: 400}
	tests := []struct {
		name   string
		canvas Point
		want   Point
	}{
		{"center", Pt(250, 200), Pt(0, 0)},
		{"top-left", Pt(0, 0), Pt(-250, 200)},
		{"bottom-right", Pt(500, 400), Pt(250, -200)},
		{"pivot default", Pt(250, 50), Pt(0, 150)},
		{"load default", Pt(250, 250), Pt(0, -50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ToWorld(tt.canvas); got != tt.want {
				t.Errorf("ToWorld(%v) = %v, want %v", tt.canvas, got, tt.want)
			}
		})
	}
}

func TestFrameContains(t *testing.T) {
	f := Frame{Width: 100, Height: 50}
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{"inside", Rect{10, 10, 20, 14}, true},
		{"touching margin", Rect{5, 5, 90, 40}, true},
		{"left of margin", Rect{4, 10, 20, 14}, false},
		{"past right", Rect{80, 10, 20, 14}, false},
		{"past bottom", Rect{10, 35, 20, 14}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Contains(tt.r, 5); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestPointHelpers(t *testing.T) {
	p, q := Pt(1, 1), Pt(4, 5)
	if got := p.Dist(q); got != 5 {
		t.Errorf("Dist = %v, want 5", got)
	}
	if got := Pt(0, 0).Angle(Pt(0, 1)); !near(got, math.Pi/2) {
		t.Errorf("Angle up = %v, want π/2", got)
	}
	if got := Radians(180); !near(got, math.Pi) {
		t.Errorf("Radians(180) = %v", got)
	}
	if got := Degrees(math.Pi / 2); !near(got, 90) {
		t.Errorf("Degrees(π/2) = %v", got)
	}
}
