// Package draw renders the arena to a terminal using half-block characters
// and provides the ANSI helpers the frame loop writes with.
package draw

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tomz197/capylabs/internal/physics"
)

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockEmpty     = ' '
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Point is a position in canvas sub-pixels.
type Point struct {
	X, Y float64
}

// Canvas is a top-down view of the arena with 2x vertical resolution.
// World X maps to columns, world Z maps to rows with +Z pointing up, and the
// arena origin sits at the center. A sub-pixel is roughly square on a
// typical terminal font, so both axes share one scale.
type Canvas struct {
	cols, rows int
	pixels     []bool // [y*cols + x], y in sub-pixels
	extent     float64
	scale      float64 // sub-pixels per world unit

	renderBuf       strings.Builder
	intersectionBuf []float64
}

// NewCanvas creates a canvas of cols x rows terminal cells showing world
// coordinates within extent of the origin.
func NewCanvas(cols, rows int, extent float64) *Canvas {
	c := &Canvas{extent: extent}
	c.Resize(cols, rows)
	return c
}

// Resize updates the terminal dimensions, keeping the visible extent.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols != c.cols || rows != c.rows {
		c.cols, c.rows = cols, rows
		c.pixels = make([]bool, cols*rows*2)
	}
	c.scale = math.Min(float64(cols), float64(rows*2)) / (2 * c.extent)
}

// Cols returns the width in terminal cells.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the height in terminal cells.
func (c *Canvas) Rows() int { return c.rows }

// Clear resets all pixels.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// Project converts a world position to sub-pixel coordinates. Y is ignored.
func (c *Canvas) Project(p physics.Vec3) Point {
	return Point{
		X: float64(c.cols)/2 + p.X*c.scale,
		Y: float64(c.rows) - p.Z*c.scale,
	}
}

// ToWorld converts a 1-based terminal cell to the world position at its
// center, on the floor.
func (c *Canvas) ToWorld(col, row int) physics.Vec3 {
	px := float64(col-1) + 0.5
	py := float64(row-1)*2 + 1
	return physics.Vec3{
		X: (px - float64(c.cols)/2) / c.scale,
		Z: (float64(c.rows) - py) / c.scale,
	}
}

// setPixel sets a sub-pixel, ignoring anything off the canvas.
func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.cols && y >= 0 && y < c.rows*2 {
		c.pixels[y*c.cols+x] = true
	}
}

// Pixel reports whether the sub-pixel at (x, y) is set.
func (c *Canvas) Pixel(x, y int) bool {
	if x < 0 || x >= c.cols || y < 0 || y >= c.rows*2 {
		return false
	}
	return c.pixels[y*c.cols+x]
}

// Plot sets the sub-pixel under a world position.
func (c *Canvas) Plot(p physics.Vec3) {
	pt := c.Project(p)
	c.setPixel(int(math.Floor(pt.X)), int(math.Floor(pt.Y)))
}

// Line draws a line between two world positions using Bresenham's algorithm.
func (c *Canvas) Line(a, b physics.Vec3) {
	pa, pb := c.Project(a), c.Project(b)
	x1, y1 := int(math.Floor(pa.X)), int(math.Floor(pa.Y))
	x2, y2 := int(math.Floor(pb.X)), int(math.Floor(pb.Y))

	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.setPixel(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// Polygon fills the polygon spanned by world positions using a scanline fill.
func (c *Canvas) Polygon(points []physics.Vec3) {
	if len(points) < 3 {
		return
	}
	pts := make([]Point, len(points))
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i, p := range points {
		pts[i] = c.Project(p)
		minY = math.Min(minY, pts[i].Y)
		maxY = math.Max(maxY, pts[i].Y)
	}

	for y := int(math.Floor(minY)); y <= int(math.Ceil(maxY)); y++ {
		scanY := float64(y) + 0.5
		xs := c.intersectionBuf[:0]
		for i := range pts {
			p1, p2 := pts[i], pts[(i+1)%len(pts)]
			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				xs = append(xs, p1.X+t*(p2.X-p1.X))
			}
		}
		c.intersectionBuf = xs
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(math.Floor(xs[i])); x <= int(math.Floor(xs[i+1])); x++ {
				c.setPixel(x, y)
			}
		}
	}
	for i := range points {
		c.Line(points[i], points[(i+1)%len(points)])
	}
}

// Disc fills a circle of world radius r around center.
func (c *Canvas) Disc(center physics.Vec3, r float64) {
	pc := c.Project(center)
	rp := r * c.scale
	for y := int(math.Floor(pc.Y - rp)); y <= int(math.Ceil(pc.Y+rp)); y++ {
		for x := int(math.Floor(pc.X - rp)); x <= int(math.Ceil(pc.X+rp)); x++ {
			dx, dy := float64(x)+0.5-pc.X, float64(y)+0.5-pc.Y
			if dx*dx+dy*dy <= rp*rp {
				c.setPixel(x, y)
			}
		}
	}
	c.Plot(center)
}

// Ring draws a dotted circle of world radius r around the origin.
func (c *Canvas) Ring(r float64, dots int) {
	for i := 0; i < dots; i++ {
		c.Plot(physics.Heading(2 * math.Pi * float64(i) / float64(dots)).Scale(r))
	}
}

// Render writes every row of the canvas, blanks included, starting at the
// top-left of the terminal. Writing whole rows avoids clearing the screen
// between frames.
func (c *Canvas) Render(w io.Writer) error {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.cols * c.rows * 3)

	var num [20]byte
	for row := 0; row < c.rows; row++ {
		c.renderBuf.WriteString("\033[")
		c.renderBuf.Write(strconv.AppendInt(num[:0], int64(row+1), 10))
		c.renderBuf.WriteString(";1H")

		top := row * 2 * c.cols
		bottom := top + c.cols
		for col := 0; col < c.cols; col++ {
			switch t, b := c.pixels[top+col], c.pixels[bottom+col]; {
			case t && b:
				c.renderBuf.WriteRune(BlockFull)
			case t:
				c.renderBuf.WriteRune(BlockUpperHalf)
			case b:
				c.renderBuf.WriteRune(BlockLowerHalf)
			default:
				c.renderBuf.WriteByte(BlockEmpty)
			}
		}
	}
	_, err := io.WriteString(w, c.renderBuf.String())
	return err
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
