package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tensionlab/pkg/geom"
	"github.com/matzehuels/tensionlab/pkg/state"
)

// frame returns the configured canvas.
func (c *CLI) frame() (geom.Frame, error) {
	cfg, err := c.config()
	if err != nil {
		return geom.Frame{}, err
	}
	return cfg.Canvas.Frame(), nil
}

// evaluate reads the state from args and evaluates it on the configured canvas.
func (c *CLI) evaluate(args []string) (state.View, error) {
	defaults, err := c.defaults()
	if err != nil {
		return state.View{}, err
	}
	s, err := stateFromArgs(args, defaults)
	if err != nil {
		return state.View{}, err
	}
	frame, err := c.frame()
	if err != nil {
		return state.View{}, err
	}
	return state.Evaluate(s, frame), nil
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "solve [query]",
		Short: "Print tensions, reactions and torques for a diagram",
		Long: `Solve the equilibrium at the load point.

The diagram is given as the URL query the web client uses, for example
  tensionlab solve 'p0x=0&p0y=150&p1x=-150&p1y=100&p2x=150&p2y=100&p3x=0&p3y=-50&fm=50&fd=270'
Without an argument the configured defaults are solved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.evaluate(args)
			if err != nil {
				return err
			}
			if asJSON {
				return writeReadoutJSON(cmd.OutOrStdout(), v)
			}
			fmt.Fprintln(cmd.OutOrStdout(), readoutTable(v.Lines()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the readout as JSON")
	return cmd
}

// labelsCommand creates the labels command.
func (c *CLI) labelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "labels [query]",
		Short: "Print the label position chosen for each point",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.evaluate(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), labelsTable(v))
			return nil
		},
	}
}

type readoutJSON struct {
	State   map[string]float64 `json:"state"`
	Readout []state.Line       `json:"readout"`
}

// writeReadoutJSON prints the formatted readout. Values stay strings so
// NaN results never reach the encoder.
func writeReadoutJSON(w io.Writer, v state.View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(readoutJSON{State: v.State.Map(), Readout: v.Lines()})
}

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
		})
}

func readoutTable(lines []state.Line) string {
	t := newTable("Quantity", "Value")
	for _, l := range lines {
		t.Row(l.Name, l.Value)
	}
	return t.Render()
}

func labelsTable(v state.View) string {
	t := newTable("Point", "Octant", "X", "Y", "Align", "Baseline", "Score")
	for i, p := range v.Labels {
		a := v.Frame.ToCanvas(p.Anchor)
		t.Row(
			state.PointID(i).Label(),
			p.Octant.String(),
			fmt.Sprintf("%.1f", a.X),
			fmt.Sprintf("%.1f", a.Y),
			string(p.Align),
			string(p.Baseline),
			fmt.Sprint(p.Score),
		)
	}
	return t.Render()
}
