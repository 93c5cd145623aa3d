package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/tensionlab/pkg/geom"
	"github.com/matzehuels/tensionlab/pkg/labels"
)

// supersample is the oversize factor the image is drawn at before it is
// scaled down to smooth edges.
const supersample = 4

var (
	pngWhite    = color.RGBA{255, 255, 255, 255}
	pngArm      = color.RGBA{102, 102, 102, 255} // #666
	pngCable    = color.RGBA{0, 0, 0, 255}
	pngPoint    = color.RGBA{68, 68, 255, 255} // #4444ff
	pngSelected = color.RGBA{255, 68, 68, 255} // #ff4444
)

// raster holds an image being drawn at supersample scale.
type raster struct {
	img   *image.RGBA
	scale float64
	face  font.Face
}

func newRaster(w, h int) (*raster, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    FontSize * supersample,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, w*supersample, h*supersample))
	draw.Draw(img, img.Bounds(), image.NewUniform(pngWhite), image.Point{}, draw.Src)
	return &raster{img: img, scale: supersample, face: face}, nil
}

// PNG renders the scene and writes it as a PNG image.
func PNG(w io.Writer, sc Scene) error {
	width, height := int(math.Ceil(sc.Width)), int(math.Ceil(sc.Height))
	if width <= 0 || height <= 0 {
		return fmt.Errorf("scene has no area: %vx%v", sc.Width, sc.Height)
	}

	r, err := newRaster(width, height)
	if err != nil {
		return err
	}
	defer r.face.Close()

	for _, s := range sc.Arms {
		r.line(s, pngArm)
	}
	for _, s := range sc.Cables {
		r.line(s, pngCable)
	}
	for _, s := range sc.Arrow {
		r.line(s, pngCable)
	}
	for _, m := range sc.Markers {
		c := pngPoint
		if m.Selected {
			c = pngSelected
		}
		r.disc(m.Center, PointRadius, c)
	}
	for _, t := range sc.Labels {
		r.text(t, pngCable)
	}

	final := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(final, final.Bounds(), r.img, r.img.Bounds(), draw.Over, nil)
	return png.Encode(w, final)
}

// line draws a segment, skipping every other 5-unit run when dashed. Only
// the part of the segment that crosses the image is stepped.
func (r *raster) line(s Segment, c color.Color) {
	if !finite(s.From) || !finite(s.To) {
		return
	}
	x1, y1 := s.From.X*r.scale, s.From.Y*r.scale
	x2, y2 := s.To.X*r.scale, s.To.Y*r.scale
	dx, dy := x2-x1, y2-y1
	dist := math.Hypot(dx, dy)
	half := LineWidth * r.scale / 2
	if math.IsInf(dist, 0) {
		return
	}
	if dist < 1 {
		r.disc(geom.Pt(s.From.X, s.From.Y), LineWidth/2, c)
		return
	}

	t0, t1, ok := clipSegment(x1, y1, x2, y2, r.img.Bounds(), half+1)
	if !ok {
		return
	}

	perpX, perpY := -dy/dist, dx/dist
	dash := 5 * r.scale
	// Steps stay anchored at the segment start so dashes keep their phase.
	for i := math.Floor(t0 * dist); i <= t1*dist; i++ {
		if s.Dashed && int(i/dash)%2 == 1 {
			continue
		}
		t := i / dist
		cx, cy := x1+dx*t, y1+dy*t
		for off := -half; off <= half; off += 0.5 {
			r.img.Set(int(cx+perpX*off), int(cy+perpY*off), c)
		}
	}
}

// clipSegment returns the parameter range [t0, t1] of the segment from
// (x1, y1) to (x2, y2) that lies inside b grown by pad (Liang-Barsky).
func clipSegment(x1, y1, x2, y2 float64, b image.Rectangle, pad float64) (t0, t1 float64, ok bool) {
	minX, minY := float64(b.Min.X)-pad, float64(b.Min.Y)-pad
	maxX, maxY := float64(b.Max.X)+pad, float64(b.Max.Y)+pad
	dx, dy := x2-x1, y2-y1

	t0, t1 = 0, 1
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{x1 - minX, maxX - x1, y1 - minY, maxY - y1}
	for i := range p {
		if p[i] == 0 {
			if q[i] < 0 {
				return 0, 0, false
			}
			continue
		}
		t := q[i] / p[i]
		if p[i] < 0 {
			if t > t1 {
				return 0, 0, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return 0, 0, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return t0, t1, true
}

func finite(p geom.Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// disc fills a circle given in canvas units.
func (r *raster) disc(center geom.Point, radius float64, c color.Color) {
	cx, cy, rad := center.X*r.scale, center.Y*r.scale, radius*r.scale
	if !r.near(cx, cy, rad) {
		return
	}
	for dy := -rad; dy <= rad; dy++ {
		ext := math.Sqrt(math.Max(0, rad*rad-dy*dy))
		for dx := -ext; dx <= ext; dx++ {
			r.img.Set(int(cx+dx), int(cy+dy), c)
		}
	}
}

// near reports whether (x, y) in image pixels lies within pad of the image.
func (r *raster) near(x, y, pad float64) bool {
	b := r.img.Bounds()
	return x >= float64(b.Min.X)-pad && x <= float64(b.Max.X)+pad &&
		y >= float64(b.Min.Y)-pad && y <= float64(b.Max.Y)+pad
}

// text draws a label honoring its alignment and baseline.
func (r *raster) text(t Text, c color.Color) {
	if !r.near(t.Anchor.X*r.scale, t.Anchor.Y*r.scale, float64(r.img.Bounds().Dx())) {
		return
	}
	width := font.MeasureString(r.face, t.Value).Ceil()
	m := r.face.Metrics()
	x := int(t.Anchor.X * r.scale)
	y := int(t.Anchor.Y * r.scale)

	switch t.Align {
	case labels.AlignCenter:
		x -= width / 2
	case labels.AlignRight:
		x -= width
	}
	switch t.Baseline {
	case labels.BaselineTop:
		y += m.Ascent.Ceil()
	case labels.BaselineMiddle:
		y += (m.Ascent.Ceil() - m.Descent.Ceil()) / 2
	case labels.BaselineBottom:
		y -= m.Descent.Ceil()
	}

	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(t.Value)
}
