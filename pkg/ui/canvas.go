package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Canvas is a styled cell grid the mind map draws into. Drawing order is
// painter's order: later calls overwrite earlier cells, which is how the
// link-beneath-node z-order invariant is enforced.
type Canvas struct {
	width, height int
	runes         [][]rune
	styles        [][]*lipgloss.Style
}

// NewCanvas returns a blank canvas of the given cell size.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{width: width, height: height}
	c.runes = make([][]rune, height)
	c.styles = make([][]*lipgloss.Style, height)
	for y := 0; y < height; y++ {
		c.runes[y] = make([]rune, width)
		c.styles[y] = make([]*lipgloss.Style, width)
		for x := range c.runes[y] {
			c.runes[y][x] = ' '
		}
	}
	return c
}

// Set places a single rune. Out-of-bounds writes are clipped.
func (c *Canvas) Set(x, y int, r rune, st *lipgloss.Style) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.runes[y][x] = r
	c.styles[y][x] = st
}

// At returns the rune at (x, y), or space when out of bounds.
func (c *Canvas) At(x, y int) rune {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return ' '
	}
	return c.runes[y][x]
}

// Line draws a Bresenham line, picking a box-drawing rune per step
// direction. Terminal rows grow downward, so '╲' is right-and-down.
func (c *Canvas) Line(x0, y0, x1, y1 int, st *lipgloss.Style) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	x, y := x0, y0
	for {
		r := '·'
		switch {
		case dy == 0:
			r = '─'
		case dx == 0:
			r = '│'
		case -dy > 2*dx:
			r = '│'
		case dx > -2*dy:
			r = '─'
		case sx == sy:
			r = '╲'
		default:
			r = '╱'
		}
		c.Set(x, y, r, st)
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// Box draws a bordered box with a cleared interior. double selects the
// double-line border used for the central node.
func (c *Canvas) Box(x, y, w, h int, double bool, st *lipgloss.Style) {
	if w < 2 || h < 2 {
		return
	}
	tl, tr, bl, br, hr, vr := '╭', '╮', '╰', '╯', '─', '│'
	if double {
		tl, tr, bl, br, hr, vr = '╔', '╗', '╚', '╝', '═', '║'
	}

	for ix := x + 1; ix < x+w-1; ix++ {
		c.Set(ix, y, hr, st)
		c.Set(ix, y+h-1, hr, st)
		for iy := y + 1; iy < y+h-1; iy++ {
			c.Set(ix, iy, ' ', st)
		}
	}
	for iy := y + 1; iy < y+h-1; iy++ {
		c.Set(x, iy, vr, st)
		c.Set(x+w-1, iy, vr, st)
	}
	c.Set(x, y, tl, st)
	c.Set(x+w-1, y, tr, st)
	c.Set(x, y+h-1, bl, st)
	c.Set(x+w-1, y+h-1, br, st)
}

// Text writes a string starting at (x, y). Wide runes occupy two cells; the
// continuation cell is blanked so later flushing keeps alignment.
func (c *Canvas) Text(x, y int, s string, st *lipgloss.Style) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		c.Set(x, y, r, st)
		if w == 2 {
			c.Set(x+1, y, 0, st) // continuation marker, skipped on flush
		}
		x += w
	}
}

// String flushes the canvas to a terminal string, merging runs of cells that
// share a style into single Render calls.
func (c *Canvas) String() string {
	var out strings.Builder
	for y := 0; y < c.height; y++ {
		var run strings.Builder
		var runStyle *lipgloss.Style
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runStyle != nil {
				out.WriteString(runStyle.Render(run.String()))
			} else {
				out.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < c.width; x++ {
			r := c.runes[y][x]
			if r == 0 {
				continue // wide-rune continuation
			}
			if c.styles[y][x] != runStyle {
				flush()
				runStyle = c.styles[y][x]
			}
			run.WriteRune(r)
		}
		flush()
		runStyle = nil
		if y < c.height-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
