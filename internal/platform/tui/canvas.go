package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/pathforge/internal/geom"
)

// Cell kinds on the rasterized canvas, in drawing priority order.
const (
	cellEmpty = iota
	cellPath
	cellWaypoint
	cellEntry
	cellExit
)

var cellRunes = map[int]rune{
	cellEmpty:    '·',
	cellPath:     '█',
	cellWaypoint: '◆',
	cellEntry:    'S',
	cellExit:     'E',
}

// themeColors maps theme names to the path color used on screen.
var themeColors = map[string]lipgloss.Color{
	"classic": lipgloss.Color("3"),
	"cyber":   lipgloss.Color("14"),
	"forest":  lipgloss.Color("2"),
	"volcano": lipgloss.Color("9"),
	"arctic":  lipgloss.Color("12"),
}

var (
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	markerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Canvas rasterizes a route in canvas coordinates onto a terminal cell
// grid. Terminal cells are roughly twice as tall as wide, which the
// projection accounts for by halving the vertical resolution.
type Canvas struct {
	cols, rows int
	logicalW   float64
	logicalH   float64
	cells      [][]int
}

// NewCanvas creates a raster for the given terminal area and logical
// canvas size. Minimum sizes keep the projection from degenerating.
func NewCanvas(cols, rows int, logicalW, logicalH float64) *Canvas {
	if cols < 20 {
		cols = 20
	}
	if rows < 8 {
		rows = 8
	}
	cells := make([][]int, rows)
	for y := range cells {
		cells[y] = make([]int, cols)
	}
	return &Canvas{cols: cols, rows: rows, logicalW: logicalW, logicalH: logicalH, cells: cells}
}

// Clear resets every cell to empty.
func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = cellEmpty
		}
	}
}

func (c *Canvas) project(w geom.Waypoint) (int, int) {
	x := int(math.Round(w.X / c.logicalW * float64(c.cols-1)))
	y := int(math.Round(w.Y / c.logicalH * float64(c.rows-1)))
	if x < 0 {
		x = 0
	}
	if x >= c.cols {
		x = c.cols - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= c.rows {
		y = c.rows - 1
	}
	return x, y
}

func (c *Canvas) set(x, y, kind int) {
	if c.cells[y][x] < kind {
		c.cells[y][x] = kind
	}
}

// DrawPath rasterizes the route: line segments, waypoint markers, and
// entry/exit markers on top.
func (c *Canvas) DrawPath(p geom.Path) {
	c.Clear()
	if len(p) == 0 {
		return
	}

	for i := 0; i < len(p)-1; i++ {
		x0, y0 := c.project(p[i])
		x1, y1 := c.project(p[i+1])
		c.line(x0, y0, x1, y1)
	}
	for _, w := range p {
		x, y := c.project(w)
		c.set(x, y, cellWaypoint)
	}

	ex, ey := c.project(p[0])
	c.set(ex, ey, cellEntry)
	xx, xy := c.project(p[len(p)-1])
	c.set(xx, xy, cellExit)
}

// line draws a straight cell run using Bresenham's algorithm.
func (c *Canvas) line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		c.set(x0, y0, cellPath)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Render returns the styled canvas framed by a border. Adjacent cells of
// the same kind are grouped into one styled run to keep the output lean.
func (c *Canvas) Render(theme string) string {
	pathColor, ok := themeColors[theme]
	if !ok {
		pathColor = lipgloss.Color("7")
	}
	pathStyle := lipgloss.NewStyle().Foreground(pathColor)

	styleFor := func(kind int) lipgloss.Style {
		switch kind {
		case cellPath, cellWaypoint:
			return pathStyle
		case cellEntry, cellExit:
			return markerStyle
		default:
			return emptyStyle
		}
	}

	var sb strings.Builder
	sb.Grow(c.cols*c.rows*2 + c.rows*4)

	sb.WriteString(borderStyle.Render("┌" + strings.Repeat("─", c.cols) + "┐"))
	sb.WriteByte('\n')
	for y := 0; y < c.rows; y++ {
		sb.WriteString(borderStyle.Render("│"))
		x := 0
		for x < c.cols {
			kind := c.cells[y][x]
			var run strings.Builder
			for x < c.cols && c.cells[y][x] == kind {
				run.WriteRune(cellRunes[kind])
				x++
			}
			sb.WriteString(styleFor(kind).Render(run.String()))
		}
		sb.WriteString(borderStyle.Render("│"))
		sb.WriteByte('\n')
	}
	sb.WriteString(borderStyle.Render("└" + strings.Repeat("─", c.cols) + "┘"))
	return sb.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
