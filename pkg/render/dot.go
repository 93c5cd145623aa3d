package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// pointsPerInch converts canvas units to Graphviz inches.
const pointsPerInch = 72.0

// DOT converts the scene to a Graphviz graph. Node positions are pinned so
// the neato engine reproduces the diagram geometry instead of laying it out.
func DOT(sc Scene) string {
	var buf bytes.Buffer
	buf.WriteString("graph diagram {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	fmt.Fprintf(&buf, "  bb=\"0,0,%.2f,%.2f\";\n", sc.Width, sc.Height)
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, label=\"\", width=0.22, color=\"#4444ff\", fillcolor=\"#4444ff\"];\n")
	buf.WriteString("  edge [penwidth=2];\n")
	buf.WriteString("\n")

	for i, m := range sc.Markers {
		// Graphviz puts the origin at the bottom-left.
		x, y := m.Center.X/pointsPerInch, (sc.Height-m.Center.Y)/pointsPerInch
		attrs := fmt.Sprintf("pos=\"%.4f,%.4f!\", xlabel=%q", x, y, sc.Labels[i].Value)
		if m.Selected {
			attrs += ", fillcolor=\"#ff4444\", color=\"#ff4444\""
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", m.ID.Label(), attrs)
	}

	buf.WriteString("\n")
	buf.WriteString("  \"P0\" -- \"P1\" [style=dashed, color=\"#666\"];\n")
	buf.WriteString("  \"P0\" -- \"P2\" [style=dashed, color=\"#666\"];\n")
	buf.WriteString("  \"P1\" -- \"P3\";\n")
	buf.WriteString("  \"P3\" -- \"P2\";\n")

	if len(sc.Arrow) > 0 {
		tip := sc.Arrow[0].To
		x, y := tip.X/pointsPerInch, (sc.Height-tip.Y)/pointsPerInch
		fmt.Fprintf(&buf, "  \"F\" [pos=\"%.4f,%.4f!\", shape=point, width=0.01];\n", x, y)
		buf.WriteString("  \"P3\" -- \"F\" [dir=forward, arrowhead=open];\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

// DOTToSVG renders a DOT graph to SVG using the neato engine.
func DOTToSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
