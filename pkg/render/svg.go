package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/tensionlab/pkg/labels"
)

const (
	colorArm      = "#666"
	colorCable    = "#000"
	colorPoint    = "#4444ff"
	colorSelected = "#ff4444"
	colorText     = "#000"
)

// SVG renders the scene as a standalone SVG document.
func SVG(sc Scene) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		sc.Width, sc.Height, sc.Width, sc.Height)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="white"/>`+"\n")

	buf.WriteString(`  <g id="arms">` + "\n")
	for _, s := range sc.Arms {
		writeLine(&buf, s, colorArm)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g id="cables">` + "\n")
	for _, s := range sc.Cables {
		writeLine(&buf, s, colorCable)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g id="force">` + "\n")
	for _, s := range sc.Arrow {
		writeLine(&buf, s, colorCable)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g id="points">` + "\n")
	for _, m := range sc.Markers {
		fill := colorPoint
		if m.Selected {
			fill = colorSelected
		}
		fmt.Fprintf(&buf, `    <circle id="%s" cx="%.2f" cy="%.2f" r="%.0f" fill="%s"/>`+"\n",
			m.ID.Label(), m.Center.X, m.Center.Y, PointRadius, fill)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g id="labels" font-family="Arial, sans-serif" font-size="14">` + "\n")
	for _, t := range sc.Labels {
		fmt.Fprintf(&buf, `    <text x="%.2f" y="%.2f" text-anchor="%s" dominant-baseline="%s" fill="%s">%s</text>`+"\n",
			t.Anchor.X, t.Anchor.Y, textAnchor(t.Align), dominantBaseline(t.Baseline), colorText, html.EscapeString(t.Value))
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeLine(buf *bytes.Buffer, s Segment, stroke string) {
	dash := ""
	if s.Dashed {
		dash = ` stroke-dasharray="5,5"`
	}
	fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.0f"%s/>`+"\n",
		s.From.X, s.From.Y, s.To.X, s.To.Y, stroke, LineWidth, dash)
}

func textAnchor(a labels.Align) string {
	switch a {
	case labels.AlignLeft:
		return "start"
	case labels.AlignRight:
		return "end"
	default:
		return "middle"
	}
}

func dominantBaseline(b labels.Baseline) string {
	switch b {
	case labels.BaselineTop:
		return "hanging"
	case labels.BaselineBottom:
		return "text-after-edge"
	default:
		return "central"
	}
}
