package viz

import "strings"

// Canvas is a braille-cell drawing surface. Each terminal cell packs a
// 2x4 dot grid, so the drawable area is (Width*2) x (Height*4) dots.
type Canvas struct {
	Width  int
	Height int
	cells  [][]rune
}

// dotBits maps a (row, col) position inside a braille cell to its bit in
// the U+2800 block.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func NewCanvas(width, height int) *Canvas {
	c := &Canvas{Width: width, Height: height}
	c.cells = make([][]rune, height)
	for y := range c.cells {
		c.cells[y] = make([]rune, width)
	}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = 0x2800
		}
	}
}

// Dot lights the dot at (x, y) in dot coordinates. Out-of-range
// coordinates are ignored.
func (c *Canvas) Dot(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.cells[row][col] |= dotBits[y%4][x%2]
}

// Line draws a straight dot line with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		c.Dot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Blob lights a small filled square centered on (x, y), used to make
// bodies stand out from single-dot link lines.
func (c *Canvas) Blob(x, y, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			c.Dot(x+dx, y+dy)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}
