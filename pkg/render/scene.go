// Package render draws a diagram view.
//
// [Build] turns a [state.View] into a [Scene]: the primitives of the
// diagram in canvas coordinates (origin top-left, Y down). Sinks consume a
// Scene:
//
//   - [SVG]: a standalone SVG document
//   - [PNG]: a rasterized image drawn with golang.org/x/image
//   - [DOT]: a Graphviz graph with pinned node positions, rendered by [DOTToSVG]
//
// Pixel output is best-effort; the scene itself is what tests pin down.
package render

import (
	"math"

	"github.com/matzehuels/tensionlab/pkg/geom"
	"github.com/matzehuels/tensionlab/pkg/labels"
	"github.com/matzehuels/tensionlab/pkg/state"
)

// Drawing constants.
const (
	PointRadius = state.HitRadius
	ArrowHead   = 10.0
	ArrowSpread = math.Pi / 6
	LineWidth   = 2.0
	FontSize    = 14.0
)

// Segment is a straight line in canvas coordinates.
type Segment struct {
	From, To geom.Point
	Dashed   bool
}

// Marker is a drawn point.
type Marker struct {
	ID       state.PointID
	Center   geom.Point
	Selected bool
}

// Text is a label positioned by its anchor and alignment.
type Text struct {
	Value    string
	Anchor   geom.Point
	Align    labels.Align
	Baseline labels.Baseline
}

// Scene is a diagram ready to draw.
type Scene struct {
	Width, Height float64
	Arms          []Segment // pivot to each anchor, dashed
	Cables        []Segment
	Arrow         []Segment // shaft then the two head strokes
	Markers       []Marker
	Labels        []Text
}

// Option configures Build.
type Option func(*options)

type options struct {
	selected    state.PointID
	hasSelected bool
}

// WithSelected highlights a point, as while it is being dragged.
func WithSelected(id state.PointID) Option {
	return func(o *options) { o.selected, o.hasSelected = id, true }
}

// Build lays out v in canvas coordinates.
func Build(v state.View, opts ...Option) Scene {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	f := v.Frame
	pts := v.State.Points
	c := func(id state.PointID) geom.Point { return f.ToCanvas(pts[id]) }

	sc := Scene{
		Width:  f.Width,
		Height: f.Height,
		Arms: []Segment{
			{From: c(state.Pivot), To: c(state.AnchorA), Dashed: true},
			{From: c(state.Pivot), To: c(state.AnchorB), Dashed: true},
		},
		Cables: []Segment{
			{From: c(state.AnchorA), To: c(state.Load)},
			{From: c(state.Load), To: c(state.AnchorB)},
		},
		Arrow: arrow(pts[state.Load], v.State.Force.Magnitude, v.State.Force.Direction, f),
	}

	for i := range pts {
		id := state.PointID(i)
		sc.Markers = append(sc.Markers, Marker{
			ID:       id,
			Center:   c(id),
			Selected: o.hasSelected && o.selected == id,
		})
		p := v.Labels[i]
		sc.Labels = append(sc.Labels, Text{
			Value:    id.Label(),
			Anchor:   f.ToCanvas(p.Anchor),
			Align:    p.Align,
			Baseline: p.Baseline,
		})
	}
	return sc
}

// arrow draws the force from the load point with length equal to its
// magnitude. The geometry is computed in the world frame and converted.
func arrow(from geom.Point, magnitude, direction float64, f geom.Frame) []Segment {
	theta := geom.Radians(direction)
	end := from.Add(geom.Pt(math.Cos(theta), math.Sin(theta)).Scale(magnitude))
	segs := []Segment{{From: f.ToCanvas(from), To: f.ToCanvas(end)}}
	if magnitude == 0 {
		return segs
	}
	for _, side := range [...]float64{-ArrowSpread, ArrowSpread} {
		a := theta + side
		head := end.Sub(geom.Pt(math.Cos(a), math.Sin(a)).Scale(ArrowHead))
		segs = append(segs, Segment{From: f.ToCanvas(end), To: f.ToCanvas(head)})
	}
	return segs
}
