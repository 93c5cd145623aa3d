// Package labels picks where each point's annotation goes.
//
// Every point gets one of eight candidate positions on a ring around it. A
// candidate is scored by how far, in octant steps, it sits from the nearest
// line or arrow leaving the point, and is penalized when the label would
// crowd a canvas edge. The heuristic is greedy and looks at one point at a
// time: it keeps labels off lines, not off each other.
//
// Obstruction bearings are measured from the other point toward this one,
// the reverse of the line's direction, because the sector formula shifts
// every angle by π; together they land on the candidate octant facing the
// line.
package labels

import (
	"math"

	"github.com/matzehuels/tensionlab/pkg/geom"
)

// Tuning constants.
const (
	Octants     = 8
	Radius      = 25.0 // distance from the point to a candidate anchor
	Spread      = 0.1  // radians added either side of an obstruction
	LabelWidth  = 20.0 // estimated label box, canvas units
	LabelHeight = 14.0
	EdgeMargin  = 5.0
	EdgePenalty = 2
)

// Octant indexes the candidate ring counter-clockwise from +X in the world frame.
type Octant int

const (
	Right Octant = iota
	UpperRight
	Up
	UpperLeft
	Left
	LowerLeft
	Down
	LowerRight
)

var octantNames = [Octants]string{
	"right", "upper-right", "up", "upper-left", "left", "lower-left", "down", "lower-right",
}

func (o Octant) String() string {
	if o < 0 || o >= Octants {
		return "unknown"
	}
	return octantNames[o]
}

// Angle returns the octant's direction in radians.
func (o Octant) Angle() float64 { return float64(o) * 2 * math.Pi / Octants }

// Align is the horizontal text alignment relative to the anchor.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Baseline is the vertical text baseline relative to the anchor.
type Baseline string

const (
	BaselineTop    Baseline = "top"
	BaselineMiddle Baseline = "middle"
	BaselineBottom Baseline = "bottom"
)

// textAnchor maps each octant to the alignment that grows the label away from the point.
var textAnchor = [Octants]struct {
	align    Align
	baseline Baseline
}{
	Right:      {AlignLeft, BaselineMiddle},
	UpperRight: {AlignLeft, BaselineBottom},
	Up:         {AlignCenter, BaselineBottom},
	UpperLeft:  {AlignRight, BaselineBottom},
	Left:       {AlignRight, BaselineMiddle},
	LowerLeft:  {AlignRight, BaselineTop},
	Down:       {AlignCenter, BaselineTop},
	LowerRight: {AlignLeft, BaselineTop},
}

// Placement is the chosen label position for one point.
type Placement struct {
	Octant   Octant
	Anchor   geom.Point // world frame
	Align    Align
	Baseline Baseline
	Score    int
}

// Input describes one point to label.
type Input struct {
	Point geom.Point
	// Others are the remaining diagram points; a line is assumed to run to each.
	Others []geom.Point
	// ForceDirection is the force arrow direction in degrees. Only used when IsLoad is set.
	ForceDirection float64
	IsLoad         bool
	// Frame bounds the canvas. A zero Frame penalizes every candidate equally.
	Frame geom.Frame
}

// Place chooses a label position for in.Point. Ties go to the lowest octant.
func Place(in Input) Placement {
	blocked := obstructedSectors(in)

	best := Placement{Score: math.MinInt}
	for i := 0; i < Octants; i++ {
		o := Octant(i)
		p := candidate(in.Point, o)
		score := clearance(i, blocked)
		if !in.Frame.Contains(labelBox(in.Frame.ToCanvas(p.Anchor), p.Align, p.Baseline), EdgeMargin) {
			score -= EdgePenalty
		}
		if score > best.Score {
			p.Score = score
			best = p
		}
	}
	return best
}

// candidate builds the unscored placement for octant o around pt.
func candidate(pt geom.Point, o Octant) Placement {
	a := o.Angle()
	ta := textAnchor[o]
	return Placement{
		Octant:   o,
		Anchor:   geom.Pt(pt.X+Radius*math.Cos(a), pt.Y+Radius*math.Sin(a)),
		Align:    ta.align,
		Baseline: ta.baseline,
	}
}

// obstructedSectors collects the sectors occupied by lines to other points
// and, for the load point, the force arrow.
//
// Angles are taken as the bearing of the point seen from the obstruction, so
// that shifting by π in sector() yields the bearing toward the obstruction
// and sector indices line up with candidate octants.
func obstructedSectors(in Input) []int {
	var angles []float64
	for _, o := range in.Others {
		angles = append(angles, o.Angle(in.Point))
	}
	if in.IsLoad {
		angles = append(angles, geom.Radians(in.ForceDirection)+math.Pi)
	}

	seen := make(map[int]bool, 3*len(angles))
	var sectors []int
	for _, a := range angles {
		for _, da := range [...]float64{-Spread, 0, Spread} {
			s := sector(a + da)
			if !seen[s] {
				seen[s] = true
				sectors = append(sectors, s)
			}
		}
	}
	return sectors
}

// sector buckets an angle into one of the eight octant sectors.
func sector(angle float64) int {
	s := int(math.Floor((angle+math.Pi)*Octants/(2*math.Pi))) % Octants
	if s < 0 {
		s += Octants
	}
	return s
}

// clearance is the circular distance from octant i to the nearest blocked sector.
func clearance(i int, blocked []int) int {
	best := Octants / 2
	for _, s := range blocked {
		d := i - s
		if d < 0 {
			d = -d
		}
		d = min(d, Octants-d)
		best = min(best, d)
	}
	return best
}

// labelBox estimates the label rectangle in canvas coordinates for an anchor.
func labelBox(anchor geom.Point, align Align, baseline Baseline) geom.Rect {
	r := geom.Rect{W: LabelWidth, H: LabelHeight}
	switch align {
	case AlignLeft:
		r.X = anchor.X
	case AlignCenter:
		r.X = anchor.X - LabelWidth/2
	case AlignRight:
		r.X = anchor.X - LabelWidth
	}
	switch baseline {
	case BaselineTop:
		r.Y = anchor.Y
	case BaselineMiddle:
		r.Y = anchor.Y - LabelHeight/2
	case BaselineBottom:
		r.Y = anchor.Y - LabelHeight
	}
	return r
}

// PlaceAll labels every point. The point at index load gets the force arrow
// as an extra obstruction.
func PlaceAll(points []geom.Point, load int, forceDirection float64, frame geom.Frame) []Placement {
	out := make([]Placement, len(points))
	for i, p := range points {
		others := make([]geom.Point, 0, len(points)-1)
		others = append(others, points[:i]...)
		others = append(others, points[i+1:]...)
		out[i] = Place(Input{
			Point:          p,
			Others:         others,
			ForceDirection: forceDirection,
			IsLoad:         i == load,
			Frame:          frame,
		})
	}
	return out
}
