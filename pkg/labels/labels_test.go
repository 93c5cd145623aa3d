package labels

import (
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/tensionlab/pkg/geom"
)

var canvas = geom.Frame{Width: 500, Height: 400}

func TestSector(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  int
	}{
		{"minus pi", -math.Pi, 0},
		{"zero", 0.01, 4},
		{"just above zero quadrant", math.Pi/4 + 0.01, 5},
		{"up", math.Pi/2 + 0.01, 6},
		{"down", -math.Pi/2 + 0.01, 2},
		{"just below minus pi", -math.Pi - 0.01, 7},
		{"wrapped", 0.01 + 6*math.Pi, 4},
		{"negative wrapped", 0.01 - 10*math.Pi, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sector(tt.angle); got != tt.want {
				t.Errorf("sector(%v) = %d, want %d", tt.angle, got, tt.want)
			}
		})
	}
}

func TestClearance(t *testing.T) {
	tests := []struct {
		i       int
		blocked []int
		want    int
	}{
		{0, nil, 4},
		{0, []int{0}, 0},
		{0, []int{7}, 1},
		{1, []int{6}, 3},
		{3, []int{7, 0}, 3},
		{6, []int{1, 2}, 3},
	}
	for _, tt := range tests {
		if got := clearance(tt.i, tt.blocked); got != tt.want {
			t.Errorf("clearance(%d, %v) = %d, want %d", tt.i, tt.blocked, got, tt.want)
		}
	}
}

func TestPlaceAvoidsLine(t *testing.T) {
	// A single line leaving to the right blocks octants 7 and 0; the first
	// octant furthest from both is upper-left.
	got := Place(Input{
		Point:  geom.Pt(0, 0),
		Others: []geom.Point{geom.Pt(10, 0)},
		Frame:  geom.Frame{Width: 1000, Height: 1000},
	})
	if got.Octant != UpperLeft {
		t.Errorf("Octant = %v, want %v", got.Octant, UpperLeft)
	}
	if got.Align != AlignRight || got.Baseline != BaselineBottom {
		t.Errorf("text anchor = (%s, %s), want (right, bottom)", got.Align, got.Baseline)
	}
	if got.Score != 3 {
		t.Errorf("Score = %d, want 3", got.Score)
	}
	want := geom.Pt(-Radius/math.Sqrt2, Radius/math.Sqrt2)
	if math.Abs(got.Anchor.X-want.X) > 1e-9 || math.Abs(got.Anchor.Y-want.Y) > 1e-9 {
		t.Errorf("Anchor = %v, want %v", got.Anchor, want)
	}
}

func TestPlaceLoadAvoidsForceArrow(t *testing.T) {
	in := Input{
		Point:          geom.Pt(0, 0),
		ForceDirection: 260,
		IsLoad:         true,
		Frame:          canvas,
	}
	if got := Place(in); got.Octant != UpperRight {
		t.Errorf("load Octant = %v, want %v", got.Octant, UpperRight)
	}

	// The arrow is ignored for points other than the load.
	in.IsLoad = false
	if got := Place(in); got.Octant != Right {
		t.Errorf("non-load Octant = %v, want %v", got.Octant, Right)
	}
}

func TestPlaceEdgePenalty(t *testing.T) {
	tests := []struct {
		name  string
		point geom.Point // world frame
		want  Octant
	}{
		// Canvas x = 495: everything right of the point, and the centered
		// "up" label, would cross the right margin.
		{"right edge", geom.Pt(245, 0), UpperLeft},
		// Canvas y = 5: anything above or level with the point crosses the
		// top margin, so the first downward-growing label wins.
		{"top edge", geom.Pt(0, 195), LowerLeft},
		// Canvas (495, 395): only labels up and to the left fit.
		{"bottom-right corner", geom.Pt(245, -195), UpperLeft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Place(Input{Point: tt.point, Frame: canvas})
			if got.Octant != tt.want {
				t.Errorf("Octant = %v, want %v", got.Octant, tt.want)
			}
			box := labelBox(canvas.ToCanvas(got.Anchor), got.Align, got.Baseline)
			if !canvas.Contains(box, EdgeMargin) {
				t.Errorf("chosen label box %+v is out of bounds", box)
			}
		})
	}
}

func TestPlaceEdgePenaltyPrefersInBoundsOnTie(t *testing.T) {
	// A line straight down blocks sectors 5 and 6, leaving upper-right and
	// up tied at the best score. Both cross the right margin, so the
	// in-bounds upper-left option one step behind them must win.
	in := Input{
		Point:  geom.Pt(245, 0),
		Others: []geom.Point{geom.Pt(244, -100)},
		Frame:  canvas,
	}
	got := Place(in)
	box := labelBox(canvas.ToCanvas(got.Anchor), got.Align, got.Baseline)
	if !canvas.Contains(box, EdgeMargin) {
		t.Errorf("Octant %v box %+v is out of bounds", got.Octant, box)
	}
}

func TestPlaceDeterministic(t *testing.T) {
	points := []geom.Point{{0, 150}, {-150, 100}, {150, 100}, {0, -50}}
	first := PlaceAll(points, 3, 0, canvas)
	for i := 0; i < 20; i++ {
		if got := PlaceAll(points, 3, 0, canvas); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: PlaceAll = %+v, want %+v", i, got, first)
		}
	}
}

func TestPlaceAllMarksLoad(t *testing.T) {
	points := []geom.Point{{0, 0}, {0, 0}}
	// Identical geometry except for which index carries the arrow.
	a := PlaceAll(points, 0, 90, geom.Frame{})
	b := PlaceAll(points, 1, 90, geom.Frame{})
	if a[0] != b[1] || a[1] != b[0] {
		t.Errorf("load marker not applied per index: %+v vs %+v", a, b)
	}
}

func TestTextAnchorTable(t *testing.T) {
	for o := Octant(0); o < Octants; o++ {
		ta := textAnchor[o]
		if ta.align == "" || ta.baseline == "" {
			t.Errorf("octant %v has no text anchor", o)
		}
		if o.String() == "unknown" {
			t.Errorf("octant %d has no name", o)
		}
	}
	if got := Octant(9).String(); got != "unknown" {
		t.Errorf("Octant(9).String() = %q, want unknown", got)
	}
}
