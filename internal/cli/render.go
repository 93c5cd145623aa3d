package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tensionlab/pkg/render"
	"github.com/matzehuels/tensionlab/pkg/state"
)

const (
	engineNative   = "native"   // SVG written directly from the scene
	engineGraphviz = "graphviz" // SVG produced by Graphviz neato from the DOT form
	defaultOutput  = "diagram"  // base name when --output is not given
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple outputs)
	formats  []string // output formats: "svg", "png", "dot"
	engine   string   // SVG engine: "native" or "graphviz"
	selected string   // point to highlight, e.g. "P3"
}

// renderCommand creates the render command for drawing a diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{engine: engineNative}

	cmd := &cobra.Command{
		Use:   "render [query]",
		Short: "Render a diagram to SVG, PNG or DOT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if err := validateEngine(opts.engine); err != nil {
				return err
			}
			v, err := c.evaluate(args)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), v, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().StringVar(&opts.engine, "engine", opts.engine, "SVG engine: native (default), graphviz")
	cmd.Flags().StringVar(&opts.selected, "select", "", "highlight a point (P0-P3)")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"svg": true, "png": true, "dot": true}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'png', or 'dot')", f)
		}
	}
	return nil
}

func validateEngine(e string) error {
	if e != engineNative && e != engineGraphviz {
		return fmt.Errorf("invalid engine: %s (must be 'native' or 'graphviz')", e)
	}
	return nil
}

// basePath strips a known format extension from output, or returns the
// default base name when output is empty.
func basePath(output string) string {
	if output == "" {
		return defaultOutput
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runRender draws v once per requested format.
func runRender(ctx context.Context, v state.View, opts *renderOpts) error {
	var buildOpts []render.Option
	if opts.selected != "" {
		id, ok := state.ParsePointID(opts.selected)
		if !ok {
			return fmt.Errorf("invalid point: %s (must be P0-P3)", opts.selected)
		}
		buildOpts = append(buildOpts, render.WithSelected(id))
	}
	scene := render.Build(v, buildOpts...)

	base := basePath(opts.output)
	for _, format := range opts.formats {
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := renderAndWrite(ctx, scene, format, path, opts); err != nil {
			return err
		}
	}
	return nil
}

func renderAndWrite(ctx context.Context, scene render.Scene, format, path string, opts *renderOpts) error {
	prog := newProgress(loggerFromContext(ctx))

	data, err := renderScene(ctx, scene, format, opts.engine)
	if err != nil {
		return err
	}
	if err := writeOutput(os.Stdout, path, data); err != nil {
		return err
	}
	if path != "-" {
		prog.done("Rendered " + path)
		printFile(path)
	}
	return nil
}

func renderScene(ctx context.Context, scene render.Scene, format, engine string) ([]byte, error) {
	switch format {
	case "svg":
		if engine == engineGraphviz {
			return render.DOTToSVG(ctx, render.DOT(scene))
		}
		return render.SVG(scene), nil
	case "png":
		var buf bytes.Buffer
		if err := render.PNG(&buf, scene); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "dot":
		return []byte(render.DOT(scene)), nil
	}
	return nil, fmt.Errorf("unsupported format: %s", format)
}
