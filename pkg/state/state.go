// Package state defines the canonical diagram snapshot and everything that
// reads or writes it.
//
// A [State] is the ten-number record that persists a diagram: the world-frame
// coordinates of the four points and the force magnitude and direction. It is
// encoded into a URL query and a storage blob ([Encode]), decoded back with
// strict validation ([DecodeQuery], [DecodeBlob]) and picked from the
// available sources at startup ([Resolve]).
//
// User input is applied through pure commands ([ApplyDrag], [ApplyControl])
// that return the next state, and [Evaluate] derives everything a renderer
// needs for one tick.
package state

import (
	errs "github.com/matzehuels/tensionlab/pkg/errors"
	"github.com/matzehuels/tensionlab/pkg/geom"
	"github.com/matzehuels/tensionlab/pkg/statics"
)

// PointID names one of the four diagram points.
type PointID int

const (
	Pivot   PointID = iota // P0
	AnchorA                // P1
	AnchorB                // P2
	Load                   // P3
)

// NumPoints is the number of diagram points.
const NumPoints = 4

var pointNames = [NumPoints]string{"pivot", "anchorA", "anchorB", "load"}

func (id PointID) String() string {
	if id < 0 || id >= NumPoints {
		return "unknown"
	}
	return pointNames[id]
}

// Label is the short on-canvas name, P0 through P3.
func (id PointID) Label() string {
	if id < 0 || id >= NumPoints {
		return "P?"
	}
	return "P" + string(rune('0'+id))
}

// ParsePointID accepts "pivot", "anchorA", "anchorB", "load" or "P0".."P3"
// (case-insensitive for the short form).
func ParsePointID(s string) (PointID, bool) {
	for i, n := range pointNames {
		if s == n {
			return PointID(i), true
		}
	}
	if len(s) == 2 && (s[0] == 'P' || s[0] == 'p') && s[1] >= '0' && s[1] < '0'+NumPoints {
		return PointID(s[1] - '0'), true
	}
	return 0, false
}

// State is the persisted diagram snapshot in the world frame.
type State struct {
	Points [NumPoints]geom.Point
	Force  statics.Force
}

// Keys are the ten field names of the persisted form, in canonical order.
var Keys = [10]string{"p0x", "p0y", "p1x", "p1y", "p2x", "p2y", "p3x", "p3y", "fm", "fd"}

// Defaults returns the built-in starting diagram: a pivot above two anchors
// with the load hanging between them and a 50 N force pointing right.
func Defaults() State {
	return State{
		Points: [NumPoints]geom.Point{
			Pivot:   {X: 0, Y: 150},
			AnchorA: {X: -150, Y: 100},
			AnchorB: {X: 150, Y: 100},
			Load:    {X: 0, Y: -50},
		},
		Force: statics.Force{Magnitude: 50, Direction: 0},
	}
}

// Point returns the position of id.
func (s State) Point(id PointID) geom.Point { return s.Points[id] }

// Solve runs the equilibrium solver on s.
func (s State) Solve() statics.Result {
	return statics.Solve(s.Points[Pivot], s.Points[AnchorA], s.Points[AnchorB], s.Points[Load], s.Force)
}

// values flattens s in Keys order.
func (s State) values() [10]float64 {
	var v [10]float64
	for i, p := range s.Points {
		v[2*i] = p.X
		v[2*i+1] = p.Y
	}
	v[8] = s.Force.Magnitude
	v[9] = s.Force.Direction
	return v
}

// fromValues is the inverse of values.
func fromValues(v [10]float64) State {
	var s State
	for i := range s.Points {
		s.Points[i] = geom.Pt(v[2*i], v[2*i+1])
	}
	s.Force = statics.Force{Magnitude: v[8], Direction: v[9]}
	return s
}

// Map returns s as a field-name to value mapping.
func (s State) Map() map[string]float64 {
	v := s.values()
	m := make(map[string]float64, len(Keys))
	for i, k := range Keys {
		m[k] = v[i]
	}
	return m
}

// Validate reports the first non-finite field.
func (s State) Validate() error {
	v := s.values()
	for i, k := range Keys {
		if err := errs.ValidateFinite(k, v[i]); err != nil {
			return err
		}
	}
	return nil
}

// FromMap builds a State from a field-name mapping. All ten keys must be
// present and finite.
func FromMap(m map[string]float64) (State, error) {
	var v [10]float64
	for i, k := range Keys {
		f, ok := m[k]
		if !ok {
			return State{}, errs.New(errs.ErrCodeIncompleteState, "missing %q", k)
		}
		if err := errs.ValidateFinite(k, f); err != nil {
			return State{}, err
		}
		v[i] = f
	}
	return fromValues(v), nil
}
