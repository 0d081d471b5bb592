package game

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/l1jgo/tickframe/internal/world"
)

// Renderer draws the arena as a character grid.
type Renderer struct {
	cols, rows int
	frame      lipgloss.Style
	hud        lipgloss.Style
	glyphs     map[string]lipgloss.Style
}

func NewRenderer(cols, rows int) *Renderer {
	return &Renderer{
		cols: cols,
		rows: rows,
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
		hud:    lipgloss.NewStyle().Faint(true),
		glyphs: make(map[string]lipgloss.Style),
	}
}

// Resize changes the grid size. Non-positive sizes are ignored.
func (r *Renderer) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	r.cols, r.rows = cols, rows
}

func (r *Renderer) Size() (cols, rows int) { return r.cols, r.rows }

// Draw renders every body at its interpolated position plus a status line.
func (r *Renderer) Draw(w *world.World, blend float64, hud string) string {
	cells := make([][]string, r.rows)
	for i := range cells {
		row := make([]string, r.cols)
		for j := range row {
			row[j] = " "
		}
		cells[i] = row
	}

	w.Each(func(b *world.Body) {
		p := b.Interpolated(blend)
		col := cellIndex(p.X, w.Width, r.cols)
		row := cellIndex(p.Y, w.Height, r.rows)
		cells[row][col] = r.style(b.Color).Render(string(b.Glyph))
	})

	lines := make([]string, r.rows)
	for i, row := range cells {
		lines[i] = strings.Join(row, "")
	}
	board := r.frame.Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, board, r.hud.Render(hud))
}

func (r *Renderer) style(color string) lipgloss.Style {
	if s, ok := r.glyphs[color]; ok {
		return s
	}
	s := lipgloss.NewStyle().Bold(true)
	if color != "" {
		s = s.Foreground(lipgloss.Color(color))
	}
	r.glyphs[color] = s
	return s
}

func cellIndex(v, extent float64, n int) int {
	i := int(v / extent * float64(n))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
