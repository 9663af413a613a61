// Package contour extracts the outer borders of labelled regions in a mask.
//
// Foreground pixels are 8-connected and background is 4-connected. Only
// regions that touch the background surrounding the image are traced, so
// holes and regions nested inside holes produce no contour. Each border
// starts at the top-most, left-most pixel of its region and runs
// counterclockwise in image coordinates, the vertex order OpenCV's
// findContours produces. Only the points where the chain changes direction
// are kept.
package contour

import (
	"image"
	"slices"
)

// Point is a pixel coordinate.
type Point struct {
	X, Y int
}

// Contour is a closed border polygon. The last point connects back to the first.
type Contour []Point

// Clockwise neighbour offsets in image coordinates (y grows downward).
var offsets = [8]Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

const west = 4

// External returns the simplified outer contours of every region whose
// pixels equal value, ordered by the raster position of their first pixel.
func External(m *image.Gray, value uint8) []Contour {
	g := newGrid(m, value)
	if g.count == 0 {
		return nil
	}
	g.markOuterBackground()

	var contours []Contour
	for y := 1; y <= g.h; y++ {
		for x := 1; x <= g.w; x++ {
			i := g.index(x, y)
			if !g.fg[i] || g.label[i] != 0 {
				continue
			}
			g.nextLabel++
			external := g.fillComponent(x, y, g.nextLabel)
			if !external {
				continue
			}
			simplified := Simplify(g.trace(Point{x, y}))
			slices.Reverse(simplified[1:])
			for k := range simplified {
				simplified[k].X--
				simplified[k].Y--
			}
			contours = append(contours, simplified)
		}
	}
	return contours
}

// Simplify drops points that lie in the middle of a straight run of the
// closed chain, keeping only direction changes.
func Simplify(c Contour) Contour {
	n := len(c)
	if n < 3 {
		out := make(Contour, n)
		copy(out, c)
		return out
	}
	out := make(Contour, 0, n)
	for i := range c {
		prev := c[(i-1+n)%n]
		next := c[(i+1)%n]
		in := Point{c[i].X - prev.X, c[i].Y - prev.Y}
		outDir := Point{next.X - c[i].X, next.Y - c[i].Y}
		if in != outDir {
			out = append(out, c[i])
		}
	}
	if len(out) == 0 {
		out = append(out, c[0])
	}
	return out
}

// grid is the mask binarized against one value with a one-pixel background
// frame, so neighbour lookups never leave the slice.
type grid struct {
	w, h      int
	stride    int
	fg        []bool
	outer     []bool
	label     []int
	count     int
	nextLabel int
}

func newGrid(m *image.Gray, value uint8) *grid {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	g := &grid{w: w, h: h, stride: w + 2}
	size := (w + 2) * (h + 2)
	g.fg = make([]bool, size)
	g.outer = make([]bool, size)
	g.label = make([]int, size)
	for y := 0; y < h; y++ {
		row := m.Pix[m.PixOffset(b.Min.X, b.Min.Y+y):m.PixOffset(b.Max.X, b.Min.Y+y)]
		for x, v := range row {
			if v == value {
				g.fg[g.index(x+1, y+1)] = true
				g.count++
			}
		}
	}
	return g
}

func (g *grid) index(x, y int) int { return y*g.stride + x }

func (g *grid) inFrame(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.w+2 && y < g.h+2
}

// markOuterBackground flood-fills the 4-connected background reachable from
// the frame.
func (g *grid) markOuterBackground() {
	stack := []Point{{0, 0}}
	g.outer[0] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range [4]Point{{1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
			nx, ny := p.X+d.X, p.Y+d.Y
			if !g.inFrame(nx, ny) {
				continue
			}
			i := g.index(nx, ny)
			if g.fg[i] || g.outer[i] {
				continue
			}
			g.outer[i] = true
			stack = append(stack, Point{nx, ny})
		}
	}
}

// fillComponent labels the 8-connected region containing (x, y) and reports
// whether any of its pixels borders the outer background.
func (g *grid) fillComponent(x, y, id int) bool {
	external := false
	stack := []Point{{x, y}}
	g.label[g.index(x, y)] = id
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for k, d := range offsets {
			i := g.index(p.X+d.X, p.Y+d.Y)
			if !g.fg[i] {
				if k%2 == 0 && g.outer[i] {
					external = true
				}
				continue
			}
			if g.label[i] != 0 {
				continue
			}
			g.label[i] = id
			stack = append(stack, Point{p.X + d.X, p.Y + d.Y})
		}
	}
	return external
}

// trace follows the border clockwise from start, which must be the first
// region pixel in raster order so its western neighbour is background.
func (g *grid) trace(start Point) Contour {
	contour := Contour{start}
	first, ok := g.step(start, Point{start.X - 1, start.Y})
	if !ok {
		return contour
	}

	p, back := first.next, first.back
	for {
		if p == start {
			s, _ := g.step(p, back)
			if s.next == first.next {
				return contour
			}
		}
		contour = append(contour, p)
		s, _ := g.step(p, back)
		p, back = s.next, s.back
	}
}

type move struct {
	next Point
	back Point
}

// step searches the neighbours of p clockwise, starting after the background
// pixel back, and returns the first foreground neighbour together with the
// background pixel examined just before it.
func (g *grid) step(p, back Point) (move, bool) {
	start := direction(Point{back.X - p.X, back.Y - p.Y})
	prev := back
	for i := 1; i <= 8; i++ {
		d := offsets[(start+i)%8]
		q := Point{p.X + d.X, p.Y + d.Y}
		if g.fg[g.index(q.X, q.Y)] {
			return move{next: q, back: prev}, true
		}
		prev = q
	}
	return move{}, false
}

func direction(d Point) int {
	for i, o := range offsets {
		if o == d {
			return i
		}
	}
	return west
}
