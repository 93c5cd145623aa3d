package state

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/tensionlab/pkg/geom"
)

// HitRadius is the pick distance around a point for starting a drag.
const HitRadius = 8.0

// ApplyDrag moves point id to p (world frame).
func ApplyDrag(s State, id PointID, p geom.Point) State {
	if id < 0 || id >= NumPoints {
		return s
	}
	s.Points[id] = p
	return s
}

// ControlKind selects which force field a control edits.
type ControlKind int

const (
	ControlMagnitude ControlKind = iota
	ControlDirection
)

func (k ControlKind) String() string {
	if k == ControlDirection {
		return "direction"
	}
	return "magnitude"
}

// ParseControlKind accepts "magnitude"/"fm" and "direction"/"fd".
func ParseControlKind(s string) (ControlKind, bool) {
	switch strings.ToLower(s) {
	case "magnitude", "fm":
		return ControlMagnitude, true
	case "direction", "fd":
		return ControlDirection, true
	}
	return 0, false
}

// Control is a raw value change from an input widget.
type Control struct {
	Kind ControlKind
	Raw  string
}

// ApplyControl sets the force field named by c. Text that is not a finite
// number counts as zero. A negative magnitude is clamped to zero.
func ApplyControl(s State, c Control) State {
	v := ParseInput(c.Raw)
	switch c.Kind {
	case ControlMagnitude:
		s.Force.Magnitude = math.Max(0, v)
	case ControlDirection:
		s.Force.Direction = v
	}
	return s
}

// ParseInput reads a numeric widget value, yielding 0 for anything unusable.
func ParseInput(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// HitTest returns the first point, in P0..P3 order, strictly closer than
// radius to p.
func HitTest(s State, p geom.Point, radius float64) (PointID, bool) {
	for i, q := range s.Points {
		if q.Dist(p) < radius {
			return PointID(i), true
		}
	}
	return 0, false
}
