package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tensionlab/pkg/geom"
	"github.com/matzehuels/tensionlab/pkg/labels"
	"github.com/matzehuels/tensionlab/pkg/session"
	"github.com/matzehuels/tensionlab/pkg/state"
)

// Plot size of the terminal sketch, in cells.
const (
	plotCols = 51
	plotRows = 21
)

var (
	tuiSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tuiPointStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	tuiDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tuiBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

var moveSteps = []float64{1, 5, 25}

// tuiCommand creates the interactive editor command.
func (c *CLI) tuiCommand() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "tui [query]",
		Short: "Edit a diagram interactively in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var raw string
			if len(args) == 1 {
				raw = args[0]
			}
			q, err := parseQueryArg(raw)
			if err != nil {
				return err
			}
			defaults, err := c.defaults()
			if err != nil {
				return err
			}
			frame, err := c.frame()
			if err != nil {
				return err
			}
			store, st, closeStore, err := c.sessionStore(ctx, sessionID)
			if err != nil {
				return err
			}
			defer closeStore()

			loc, err := session.NewURLLocation("/?" + q.Encode())
			if err != nil {
				return err
			}
			sess := session.Open(ctx, session.Options{
				ID:       sessionID,
				Store:    store,
				Location: loc,
				Codec:    st.CodecOrDefault(),
				Defaults: &defaults,
				Logger:   c.Logger,
			})

			m := NewDiagramModel(ctx, sess, frame)
			if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
				return err
			}
			printKeyValue("Query", loc.Query().Encode())
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "tui", "session whose state is loaded and saved")
	return cmd
}

// =============================================================================
// DiagramModel - interactive diagram editor
// =============================================================================

// DiagramModel is the bubbletea model for editing one session.
//
// Arrow keys move the selected point the way a mouse drag does: the state
// changes on every step but is only saved when the move is committed with
// enter, by selecting another point, or on quit.
type DiagramModel struct {
	ctx   context.Context
	sess  *session.Session
	frame geom.Frame

	Selected state.PointID
	step     int // index into moveSteps
	moving   bool

	input   textinput.Model
	editing bool
	control state.ControlKind

	Status string
}

// NewDiagramModel creates the editor for sess.
func NewDiagramModel(ctx context.Context, sess *session.Session, frame geom.Frame) DiagramModel {
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 12
	return DiagramModel{
		ctx:      ctx,
		sess:     sess,
		frame:    frame,
		Selected: state.Load,
		step:     1,
		input:    ti,
		Status:   "loaded from " + sess.Source().String(),
	}
}

func (m DiagramModel) Init() tea.Cmd {
	return nil
}

func (m DiagramModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.editing {
		return m.updateEditing(key)
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.commit()
		return m, tea.Quit
	case "tab":
		m.commit()
		m.Selected = (m.Selected + 1) % state.NumPoints
	case "shift+tab":
		m.commit()
		m.Selected = (m.Selected + state.NumPoints - 1) % state.NumPoints
	case "up", "k":
		m.move(0, 1)
	case "down", "j":
		m.move(0, -1)
	case "left", "h":
		m.move(-1, 0)
	case "right", "l":
		m.move(1, 0)
	case "+", "=":
		m.step = min(m.step+1, len(moveSteps)-1)
	case "-":
		m.step = max(m.step-1, 0)
	case "enter", " ":
		m.commit()
	case "m":
		return m.startEditing(state.ControlMagnitude)
	case "d":
		return m.startEditing(state.ControlDirection)
	case "r":
		m.moving = false
		m.sess.Reset(m.ctx)
		m.Status = "reset to defaults"
	}
	return m, nil
}

// move drags the selected point by one step in the world frame.
func (m *DiagramModel) move(dx, dy float64) {
	d := moveSteps[m.step]
	p := m.sess.State().Point(m.Selected)
	m.sess.Drag(m.Selected, geom.Pt(p.X+dx*d, p.Y+dy*d))
	m.moving = true
	m.Status = "moving " + m.Selected.Label()
}

// commit ends a keyboard drag and saves.
func (m *DiagramModel) commit() {
	if !m.moving {
		return
	}
	m.moving = false
	m.Status = "save: " + m.sess.Save(m.ctx).String()
}

func (m DiagramModel) startEditing(kind state.ControlKind) (tea.Model, tea.Cmd) {
	m.commit()
	f := m.sess.State().Force
	v := f.Magnitude
	if kind == state.ControlDirection {
		v = f.Direction
	}
	m.editing = true
	m.control = kind
	m.input.Prompt = kind.String() + ": "
	m.input.SetValue(fmt.Sprint(v))
	m.input.CursorEnd()
	m.input.Focus()
	return m, textinput.Blink
}

func (m DiagramModel) updateEditing(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		m.Status = "edit cancelled"
		return m, nil
	case "enter":
		m.editing = false
		m.input.Blur()
		out := m.sess.Control(m.ctx, state.Control{Kind: m.control, Raw: m.input.Value()})
		m.Status = m.control.String() + " set, save: " + out.String()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m DiagramModel) View() string {
	v := m.sess.View(m.frame)

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Tensionlab"))
	b.WriteString("  ")
	b.WriteString(tuiDimStyle.Render(fmt.Sprintf("selected %s · step %g", m.Selected.Label(), moveSteps[m.step])))
	b.WriteString("\n\n")

	plot := tuiBoxStyle.Render(m.plot(v))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, plot, "  ", readoutTable(v.Lines())))
	b.WriteString("\n")

	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render(m.Status))
	b.WriteString("\n")
	b.WriteString(tuiDimStyle.Render("tab select  ←↑↓→ move  enter save  +/- step  m magnitude  d direction  r reset  q quit"))
	return b.String()
}

// plot sketches the diagram on a character grid scaled to the canvas.
func (m DiagramModel) plot(v state.View) string {
	grid := make([][]rune, plotRows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", plotCols))
	}
	cell := func(p geom.Point) (int, int, bool) {
		c := m.frame.ToCanvas(p)
		col := int(math.Round(c.X / m.frame.Width * (plotCols - 1)))
		row := int(math.Round(c.Y / m.frame.Height * (plotRows - 1)))
		return col, row, col >= 0 && col < plotCols && row >= 0 && row < plotRows
	}
	line := func(a, b geom.Point, ch rune) {
		const steps = 60
		for i := 0; i <= steps; i++ {
			t := float64(i) / steps
			if col, row, ok := cell(geom.Pt(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t)); ok {
				grid[row][col] = ch
			}
		}
	}

	s := v.State
	line(s.Point(state.Pivot), s.Point(state.AnchorA), ':')
	line(s.Point(state.Pivot), s.Point(state.AnchorB), ':')
	line(s.Point(state.AnchorA), s.Point(state.Load), '.')
	line(s.Point(state.AnchorB), s.Point(state.Load), '.')

	// Force arrow, drawn to scale like the rendered diagram.
	highlight := make(map[[2]int]bool)
	load := s.Point(state.Load)
	theta := geom.Radians(s.Force.Direction)
	tip := load.Add(geom.Pt(math.Cos(theta), math.Sin(theta)).Scale(s.Force.Magnitude))
	line(load, tip, '*')
	if col, row, ok := cell(tip); ok && s.Force.Magnitude > 0 {
		grid[row][col] = arrowGlyph(s.Force.Direction)
		highlight[[2]int{row, col}] = true
	}

	// Point names at their placed label anchors.
	for i, p := range v.Labels {
		col, row, ok := cell(p.Anchor)
		if !ok {
			continue
		}
		text := []rune(state.PointID(i).Label())
		switch p.Align {
		case labels.AlignCenter:
			col -= len(text) / 2
		case labels.AlignRight:
			col -= len(text) - 1
		}
		for j, ch := range text {
			if c := col + j; c >= 0 && c < plotCols {
				grid[row][c] = ch
				highlight[[2]int{row, c}] = true
			}
		}
	}

	var out strings.Builder
	marks := make(map[[2]int]state.PointID, state.NumPoints)
	for i, p := range s.Points {
		if col, row, ok := cell(p); ok {
			marks[[2]int{row, col}] = state.PointID(i)
		}
	}
	for r, cells := range grid {
		for c, ch := range cells {
			id, ok := marks[[2]int{r, c}]
			switch {
			case !ok && highlight[[2]int{r, c}]:
				out.WriteString(tuiPointStyle.Render(string(ch)))
			case !ok:
				out.WriteString(tuiDimStyle.Render(string(ch)))
			case id == m.Selected:
				out.WriteString(tuiSelectedStyle.Render(fmt.Sprint(int(id))))
			default:
				out.WriteString(tuiPointStyle.Render(fmt.Sprint(int(id))))
			}
		}
		if r < len(grid)-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

// arrowGlyph picks the arrow character closest to a direction in degrees.
func arrowGlyph(direction float64) rune {
	glyphs := [...]rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}
	i := int(math.Round(direction/45)) % len(glyphs)
	if i < 0 {
		i += len(glyphs)
	}
	return glyphs[i]
}
