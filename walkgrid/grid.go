// Package walkgrid provides a grid-backed implementation of the walkability
// oracle contract, used by the sandboxes and as a test surface. Production
// embeddings are expected to supply their own baked navigation index
package walkgrid

import (
	"errors"
	"math"

	"github.com/kkingfung/Laboratory-sub014/vmath"
)

// ErrNotNavigable is returned when no navigable point satisfies a query
var ErrNotNavigable = errors.New("walkgrid: not navigable")

// Grid is a uniform walkable/blocked grid on the XZ plane with its minimum
// corner at the origin
type Grid struct {
	cols, rows int
	cellSize   float64
	walkable   []bool
}

// New creates a fully walkable grid
func New(cols, rows int, cellSize float64) *Grid {
	g := &Grid{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		walkable: make([]bool, cols*rows),
	}
	for i := range g.walkable {
		g.walkable[i] = true
	}
	return g
}

func (g *Grid) Cols() int         { return g.cols }
func (g *Grid) Rows() int         { return g.rows }
func (g *Grid) CellSize() float64 { return g.cellSize }

func (g *Grid) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.cols && row < g.rows
}

func (g *Grid) index(col, row int) int {
	return row*g.cols + col
}

// SetBlocked marks a single cell
func (g *Grid) SetBlocked(col, row int, blocked bool) {
	if g.inBounds(col, row) {
		g.walkable[g.index(col, row)] = !blocked
	}
}

// BlockRect marks all cells in [c0,c1]×[r0,r1] inclusive
func (g *Grid) BlockRect(c0, r0, c1, r1 int) {
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			g.SetBlocked(col, row, true)
		}
	}
}

// IsWalkable reports whether the cell at (col, row) is navigable
func (g *Grid) IsWalkable(col, row int) bool {
	return g.inBounds(col, row) && g.walkable[g.index(col, row)]
}

func (g *Grid) cellOf(p vmath.Vec3F) (int, int) {
	return int(math.Floor(p.X / g.cellSize)), int(math.Floor(p.Z / g.cellSize))
}

func (g *Grid) cellCenter(col, row int) vmath.Vec3F {
	return vmath.Vec3F{
		X: (float64(col) + 0.5) * g.cellSize,
		Z: (float64(row) + 0.5) * g.cellSize,
	}
}

// walkableAt reports navigability of the cell containing p
func (g *Grid) walkableAt(p vmath.Vec3F) bool {
	col, row := g.cellOf(p)
	return g.IsWalkable(col, row)
}

// SampleNavigable returns p when its cell is walkable, otherwise the center
// of the nearest walkable cell within radius
func (g *Grid) SampleNavigable(p vmath.Vec3F, radius float64) (vmath.Vec3F, error) {
	if g.walkableAt(p) {
		return p, nil
	}
	col, row := g.cellOf(p)
	maxRing := int(math.Ceil(radius / g.cellSize))
	for ring := 1; ring <= maxRing; ring++ {
		for dr := -ring; dr <= ring; dr++ {
			for dc := -ring; dc <= ring; dc++ {
				if dr > -ring && dr < ring && dc > -ring && dc < ring {
					continue // interior already visited on a smaller ring
				}
				c, r := col+dc, row+dr
				if !g.IsWalkable(c, r) {
					continue
				}
				candidate := g.cellCenter(c, r)
				if vmath.V3FDistXZ(candidate, p) <= radius {
					return candidate, nil
				}
			}
		}
	}
	return vmath.Vec3F{}, ErrNotNavigable
}

// SegmentObstructed samples the straight segment a-b at half-cell intervals
func (g *Grid) SegmentObstructed(a, b vmath.Vec3F) bool {
	dist := vmath.V3FDistXZ(a, b)
	steps := int(math.Ceil(dist/(g.cellSize*0.5))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := vmath.V3FAdd(a, vmath.V3FScale(vmath.V3FSub(b, a), t))
		if !g.walkableAt(p) {
			return true
		}
	}
	return false
}

// CalculatePath returns the straight segment when unobstructed, otherwise a
// breadth-first cell path with exact endpoints
func (g *Grid) CalculatePath(start, end vmath.Vec3F) ([]vmath.Vec3F, error) {
	if !g.walkableAt(start) || !g.walkableAt(end) {
		return nil, ErrNotNavigable
	}
	if !g.SegmentObstructed(start, end) {
		return []vmath.Vec3F{start, end}, nil
	}

	type cell struct{ col, row int }
	from := cell{}
	from.col, from.row = g.cellOf(start)
	to := cell{}
	to.col, to.row = g.cellOf(end)

	dirs := [8][2]int{
		{0, -1}, {1, -1}, {1, 0}, {1, 1},
		{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
	}
	parents := map[cell]cell{from: from}
	queue := []cell{from}
	found := false

	for len(queue) > 0 && !found {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			found = true
			break
		}
		for _, d := range dirs {
			next := cell{cur.col + d[0], cur.row + d[1]}
			if _, seen := parents[next]; seen || !g.IsWalkable(next.col, next.row) {
				continue
			}
			if d[0] != 0 && d[1] != 0 {
				if !g.IsWalkable(cur.col+d[0], cur.row) || !g.IsWalkable(cur.col, cur.row+d[1]) {
					continue
				}
			}
			parents[next] = cur
			queue = append(queue, next)
		}
	}
	if _, ok := parents[to]; !ok {
		return nil, ErrNotNavigable
	}

	var rev []vmath.Vec3F
	for cur := to; cur != from; cur = parents[cur] {
		rev = append(rev, g.cellCenter(cur.col, cur.row))
	}
	path := make([]vmath.Vec3F, 0, len(rev)+2)
	path = append(path, start)
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	path = append(path, end)
	return path, nil
}
