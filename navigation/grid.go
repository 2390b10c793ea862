package navigation

import (
	"math"

	"github.com/kkingfung/Laboratory-sub014/vmath"
)

// 8-directional adjacency; diagonal steps cost the true diagonal distance
var gridDirs = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

var gridDirCosts = [8]float64{
	1, math.Sqrt2, 1, math.Sqrt2,
	1, math.Sqrt2, 1, math.Sqrt2,
}

type gridCell struct {
	X, Z int
}

type gridNode struct {
	cell gridCell
	g, f float64
}

func (n gridNode) Score() float64 { return n.f }

// GridPlanner runs informed shortest-path searches over an implicit
// 8-connected grid obtained by snapping world positions to a fixed cell size
type GridPlanner struct {
	oracle        WalkabilityOracle
	cellSize      float64
	maxIterations int
	pool          *BufferPool
}

// NewGridPlanner creates a planner over the given oracle
func NewGridPlanner(oracle WalkabilityOracle, cellSize float64, maxIterations int, pool *BufferPool) *GridPlanner {
	return &GridPlanner{
		oracle:        oracle,
		cellSize:      cellSize,
		maxIterations: maxIterations,
		pool:          pool,
	}
}

func (p *GridPlanner) snap(pos vmath.Vec3F) gridCell {
	return gridCell{
		X: int(math.Round(pos.X / p.cellSize)),
		Z: int(math.Round(pos.Z / p.cellSize)),
	}
}

func (p *GridPlanner) cellWorld(c gridCell, y float64) vmath.Vec3F {
	return vmath.Vec3F{
		X: float64(c.X) * p.cellSize,
		Y: y,
		Z: float64(c.Z) * p.cellSize,
	}
}

func (p *GridPlanner) navigable(c gridCell, y float64) bool {
	_, err := p.oracle.SampleNavigable(p.cellWorld(c, y), p.cellSize*0.5)
	return err == nil
}

// heuristic is the octile estimate over cell deltas:
// (dx+dz) + (diagonal-2) * min(dx,dz), scaled to world units.
// Under the unit/√2 cost model it never overestimates true grid cost
func (p *GridPlanner) heuristic(a, b gridCell) float64 {
	dx := float64(a.X - b.X)
	if dx < 0 {
		dx = -dx
	}
	dz := float64(a.Z - b.Z)
	if dz < 0 {
		dz = -dz
	}
	return ((dx + dz) + (math.Sqrt2-2)*math.Min(dx, dz)) * p.cellSize
}

// GridSearch is the explicit resumable state of one in-flight search.
// The scheduler advances it a bounded number of iterations per tick so a
// long search never stalls the surrounding simulation
type GridSearch struct {
	planner     *GridPlanner
	start, goal vmath.Vec3F
	startCell   gridCell
	goalCell    gridCell

	open    *MinHeap[gridNode]
	gScore  map[gridCell]float64
	parents map[gridCell]gridCell
	closed  map[gridCell]bool

	iterations int
	finished   bool
}

// NewSearch validates endpoints and seeds the open set
func (p *GridPlanner) NewSearch(start, goal vmath.Vec3F) (*GridSearch, error) {
	startCell := p.snap(start)
	goalCell := p.snap(goal)
	if !p.navigable(startCell, start.Y) || !p.navigable(goalCell, goal.Y) {
		return nil, ErrInvalidRequest
	}

	s := &GridSearch{
		planner:   p,
		start:     start,
		goal:      goal,
		startCell: startCell,
		goalCell:  goalCell,
		open:      NewMinHeap[gridNode](64),
		gScore:    map[gridCell]float64{startCell: 0},
		parents:   make(map[gridCell]gridCell),
		closed:    make(map[gridCell]bool),
	}
	s.open.Push(gridNode{cell: startCell, g: 0, f: p.heuristic(startCell, goalCell)})
	return s, nil
}

// Advance runs up to steps search iterations, then yields.
// done is false while the search still has work; on completion it returns
// either the simplified path or ErrNoPath/ErrIterationLimit
func (s *GridSearch) Advance(steps int) (path []vmath.Vec3F, done bool, err error) {
	if s.finished {
		return nil, true, ErrNoPath
	}
	p := s.planner

	for i := 0; i < steps; i++ {
		if s.iterations >= p.maxIterations {
			s.finished = true
			return nil, true, ErrIterationLimit
		}
		node, ok := s.open.Pop()
		if !ok {
			s.finished = true
			return nil, true, ErrNoPath
		}
		s.iterations++

		if node.cell == s.goalCell {
			s.finished = true
			return s.reconstruct(), true, nil
		}
		if s.closed[node.cell] {
			continue
		}
		s.closed[node.cell] = true

		for d, dir := range gridDirs {
			next := gridCell{X: node.cell.X + dir[0], Z: node.cell.Z + dir[1]}
			if s.closed[next] {
				continue
			}
			if !p.navigable(next, s.start.Y) {
				continue
			}
			// No corner cutting: both cardinal neighbors of a diagonal step must be open
			if dir[0] != 0 && dir[1] != 0 {
				if !p.navigable(gridCell{X: node.cell.X + dir[0], Z: node.cell.Z}, s.start.Y) ||
					!p.navigable(gridCell{X: node.cell.X, Z: node.cell.Z + dir[1]}, s.start.Y) {
					continue
				}
			}

			g := node.g + gridDirCosts[d]*p.cellSize
			if best, seen := s.gScore[next]; seen && g >= best {
				continue
			}
			s.gScore[next] = g
			s.parents[next] = node.cell
			s.open.Push(gridNode{cell: next, g: g, f: g + p.heuristic(next, s.goalCell)})
		}
	}
	return nil, false, nil
}

// reconstruct walks parent links goal→start, reverses, simplifies by
// line of sight, and forces exact endpoints
func (s *GridSearch) reconstruct() []vmath.Vec3F {
	p := s.planner

	raw := p.pool.AcquireScratch()
	for cell := s.goalCell; ; {
		raw = append(raw, p.cellWorld(cell, s.start.Y))
		if cell == s.startCell {
			break
		}
		parent, ok := s.parents[cell]
		if !ok {
			break
		}
		cell = parent
	}
	// Reverse into start→goal order
	for i, j := 0, len(raw)-1; i < j; i, j = i+1, j-1 {
		raw[i], raw[j] = raw[j], raw[i]
	}

	path := p.simplify(raw, p.pool.AcquirePath())
	p.pool.ReleaseScratch(raw)
	if len(path) == 1 {
		path = append(path, path[0])
	}
	path[0] = s.start
	path[len(path)-1] = s.goal
	return path
}

// simplify keeps only waypoints that cannot be skipped: from each kept point
// it jumps to the furthest waypoint with an unobstructed straight segment
func (p *GridPlanner) simplify(raw []vmath.Vec3F, out []vmath.Vec3F) []vmath.Vec3F {
	if len(raw) == 0 {
		return out
	}
	out = append(out, raw[0])
	i := 0
	for i < len(raw)-1 {
		next := i + 1
		for j := len(raw) - 1; j > next; j-- {
			if !p.oracle.SegmentObstructed(raw[i], raw[j]) {
				next = j
				break
			}
		}
		out = append(out, raw[next])
		i = next
	}
	return out
}
