package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kamstrup/intmap"
	"github.com/plus3/blockfall/grid"
	"github.com/plus3/blockfall/session"
	"github.com/plus3/blockfall/shape"
)

var (
	colorDim   = lipgloss.Color("240")
	colorCyan  = lipgloss.Color("36")
	colorWhite = lipgloss.Color("255")
	colorRed   = lipgloss.Color("167")
)

// markerColors cycles through distinct 256-colour codes; marker m uses entry m mod len.
var markerColors = []lipgloss.Color{
	lipgloss.Color("51"),  // cyan
	lipgloss.Color("226"), // yellow
	lipgloss.Color("129"), // purple
	lipgloss.Color("46"),  // green
	lipgloss.Color("196"), // red
	lipgloss.Color("27"),  // blue
	lipgloss.Color("208"), // orange
}

var (
	styleBoard  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	styleEmpty  = lipgloss.NewStyle().Foreground(colorDim)
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleValue  = lipgloss.NewStyle().Foreground(colorWhite)
	styleLabel  = lipgloss.NewStyle().Foreground(colorDim)
	styleAlert  = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	stylePanel  = lipgloss.NewStyle().PaddingLeft(2)
	filledBlock = "██"
	emptyBlock  = " ·"
)

// boardRenderer draws grid snapshots. Styles are cached per marker.
type boardRenderer struct {
	styles *intmap.Map[grid.Marker, lipgloss.Style]
}

func newBoardRenderer() *boardRenderer {
	return &boardRenderer{styles: intmap.New[grid.Marker, lipgloss.Style](16)}
}

func (r *boardRenderer) style(m grid.Marker) lipgloss.Style {
	if s, ok := r.styles.Get(m); ok {
		return s
	}
	idx := int(m) % len(markerColors)
	if idx < 0 {
		idx += len(markerColors)
	}
	s := lipgloss.NewStyle().Foreground(markerColors[idx])
	r.styles.Put(m, s)
	return s
}

// Board renders the snapshot top row first, since row 0 is the floor.
func (r *boardRenderer) Board(snap grid.Snapshot) string {
	b := snap.Bounds()
	lines := make([]string, 0, b.Rows())
	for row := b.RowMax; row >= b.RowMin; row-- {
		var sb strings.Builder
		for col := b.ColMin; col <= b.ColMax; col++ {
			m := snap.At(row, col)
			if m == snap.Background() {
				sb.WriteString(styleEmpty.Render(emptyBlock))
				continue
			}
			sb.WriteString(r.style(m).Render(filledBlock))
		}
		lines = append(lines, sb.String())
	}
	return styleBoard.Render(strings.Join(lines, "\n"))
}

// Status renders the score panel shown beside the board.
func (r *boardRenderer) Status(st session.Status) string {
	next := make([]string, len(st.Next))
	for i, k := range st.Next {
		next[i] = k.String()
	}

	row := func(label string, value any) string {
		return styleLabel.Render(fmt.Sprintf("%-6s", label)) + styleValue.Render(fmt.Sprint(value))
	}

	parts := []string{
		styleTitle.Render("BLOCKFALL"),
		"",
		row("score", st.Score),
		row("lines", st.Lines),
		row("level", st.Level),
		row("next", strings.Join(next, " ")),
	}
	if st.Active != 0 {
		parts = append(parts, row("piece", st.Active))
	}
	if st.GameOver {
		parts = append(parts, "", styleAlert.Render("GAME OVER"), styleLabel.Render("r to restart, q to quit"))
	}
	return stylePanel.Render(strings.Join(parts, "\n"))
}

// Frame joins board and status side by side.
func (r *boardRenderer) Frame(snap grid.Snapshot, st session.Status) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, r.Board(snap), r.Status(st))
}

// kindList formats kinds for log output.
func kindList(kinds []shape.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ",")
}
