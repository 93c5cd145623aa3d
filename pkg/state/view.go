package state

import (
	"fmt"
	"math"

	"github.com/matzehuels/tensionlab/pkg/geom"
	"github.com/matzehuels/tensionlab/pkg/labels"
	"github.com/matzehuels/tensionlab/pkg/statics"
)

// View is everything derived from a state for one tick.
type View struct {
	State     State
	Frame     geom.Frame
	Result    statics.Result
	NetTorque float64
	Labels    [NumPoints]labels.Placement
}

// Evaluate solves s and places its labels within frame. It has no side
// effects and is meant to be called once per tick.
func Evaluate(s State, frame geom.Frame) View {
	r := s.Solve()
	v := View{
		State:     s,
		Frame:     frame,
		Result:    r,
		NetTorque: r.NetTorque(),
	}
	placed := labels.PlaceAll(s.Points[:], int(Load), s.Force.Direction, frame)
	copy(v.Labels[:], placed)
	return v
}

// Line is one name/value row of the readout.
type Line struct {
	Name  string
	Value string
}

// Lines formats the readout: point coordinates in the world frame, cable
// tensions, the applied force, anchor reactions and torques.
func (v View) Lines() []Line {
	s, r := v.State, v.Result
	lines := make([]Line, 0, 13)
	for i, p := range s.Points {
		lines = append(lines, Line{PointID(i).Label(), fmt.Sprintf("(%.0f, %.0f)", p.X, p.Y)})
	}
	lines = append(lines,
		Line{"Tension P1-P3", fmt.Sprintf("%.1f N", math.Abs(r.TensionA))},
		Line{"Tension P2-P3", fmt.Sprintf("%.1f N", math.Abs(r.TensionB))},
		Line{"Force at P3", fmt.Sprintf("%.1f N at %s°", s.Force.Magnitude, formatFloat(s.Force.Direction))},
		Line{"Force at P1", fmt.Sprintf("(%.1fi, %.1fj) N", r.ForceAX, r.ForceAY)},
		Line{"Force at P2", fmt.Sprintf("(%.1fi, %.1fj) N", r.ForceBX, r.ForceBY)},
		Line{"Torque P1", fmt.Sprintf("%.1f N⋅m", r.TorqueA)},
		Line{"Torque P2", fmt.Sprintf("%.1f N⋅m", r.TorqueB)},
		Line{"Net torque", fmt.Sprintf("%.1f N⋅m", v.NetTorque)},
	)
	if r.Degenerate {
		lines = append(lines, Line{"Note", "cables are parallel; no unique solution"})
	}
	return lines
}
