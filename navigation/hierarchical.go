package navigation

import (
	"math"

	"github.com/kkingfung/Laboratory-sub014/vmath"
)

// regionCoord identifies a coarse grid cell: world position divided by the
// region size, floored. Regions exist only while a search runs
type regionCoord struct {
	X, Z int
}

type regionNode struct {
	coord regionCoord
	depth int
}

// Score orders the frontier by hop depth, which keeps the shared min-heap
// expanding in breadth-first layers
func (n regionNode) Score() float64 { return float64(n.depth) }

// 4-connected region adjacency
var regionDirs = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// HierarchicalPlanner serves long-distance requests with a two-level search:
// a breadth-first route over coarse regions, then oracle detail paths stitched
// region to region. Routes are not guaranteed globally optimal
type HierarchicalPlanner struct {
	oracle        WalkabilityOracle
	regionSize    float64
	maxIterations int
	pool          *BufferPool
}

// NewHierarchicalPlanner creates a planner over the given oracle
func NewHierarchicalPlanner(oracle WalkabilityOracle, regionSize float64, maxIterations int, pool *BufferPool) *HierarchicalPlanner {
	return &HierarchicalPlanner{
		oracle:        oracle,
		regionSize:    regionSize,
		maxIterations: maxIterations,
		pool:          pool,
	}
}

func (p *HierarchicalPlanner) regionOf(pos vmath.Vec3F) regionCoord {
	return regionCoord{
		X: int(math.Floor(pos.X / p.regionSize)),
		Z: int(math.Floor(pos.Z / p.regionSize)),
	}
}

func (p *HierarchicalPlanner) regionCenter(r regionCoord, y float64) vmath.Vec3F {
	return vmath.Vec3F{
		X: (float64(r.X) + 0.5) * p.regionSize,
		Y: y,
		Z: (float64(r.Z) + 0.5) * p.regionSize,
	}
}

// traversable samples the region center within half the region size
func (p *HierarchicalPlanner) traversable(r regionCoord, y float64) bool {
	_, err := p.oracle.SampleNavigable(p.regionCenter(r, y), p.regionSize/2)
	return err == nil
}

// Plan computes a long-distance path from start to dest
func (p *HierarchicalPlanner) Plan(start, dest vmath.Vec3F) ([]vmath.Vec3F, error) {
	route, err := p.regionRoute(p.regionOf(start), p.regionOf(dest), start.Y)
	if err != nil {
		return nil, err
	}
	return p.stitch(route, start, dest)
}

// regionRoute runs the capped level-1 breadth-first search
func (p *HierarchicalPlanner) regionRoute(from, to regionCoord, y float64) ([]regionCoord, error) {
	if from != to && !p.traversable(to, y) {
		return nil, ErrNoPath
	}
	frontier := NewMinHeap[regionNode](32)
	frontier.Push(regionNode{coord: from, depth: 0})
	visited := map[regionCoord]bool{from: true}
	parents := make(map[regionCoord]regionCoord)

	iterations := 0
	for frontier.Len() > 0 {
		if iterations >= p.maxIterations {
			return nil, ErrIterationLimit
		}
		node, _ := frontier.Pop()
		iterations++

		if node.coord == to {
			return p.walkRoute(from, to, parents), nil
		}

		for _, dir := range regionDirs {
			next := regionCoord{X: node.coord.X + dir[0], Z: node.coord.Z + dir[1]}
			if visited[next] {
				continue
			}
			visited[next] = true
			if !p.traversable(next, y) {
				continue
			}
			parents[next] = node.coord
			frontier.Push(regionNode{coord: next, depth: node.depth + 1})
		}
	}
	return nil, ErrNoPath
}

func (p *HierarchicalPlanner) walkRoute(from, to regionCoord, parents map[regionCoord]regionCoord) []regionCoord {
	var route []regionCoord
	for cur := to; ; {
		route = append(route, cur)
		if cur == from {
			break
		}
		cur = parents[cur]
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}

// stitch requests level-2 detail paths region by region: intermediate regions
// target their center, the final region targets the exact destination.
// Shared boundary points between consecutive segments are not duplicated
func (p *HierarchicalPlanner) stitch(route []regionCoord, start, dest vmath.Vec3F) ([]vmath.Vec3F, error) {
	path := p.pool.AcquirePath()
	path = append(path, start)
	cur := start

	for i := 1; i < len(route); i++ {
		target := p.regionCenter(route[i], start.Y)
		if i == len(route)-1 {
			target = dest
		}
		seg, err := p.oracle.CalculatePath(cur, target)
		if err != nil {
			p.pool.ReleasePath(path)
			return nil, err
		}
		for _, pt := range seg {
			if vmath.V3FDist(pt, path[len(path)-1]) < 1e-6 {
				continue
			}
			path = append(path, pt)
		}
		cur = path[len(path)-1]
	}

	if len(route) == 1 {
		// Same region: a single detail path covers it
		seg, err := p.oracle.CalculatePath(start, dest)
		if err != nil {
			p.pool.ReleasePath(path)
			return nil, err
		}
		for _, pt := range seg {
			if vmath.V3FDist(pt, path[len(path)-1]) < 1e-6 {
				continue
			}
			path = append(path, pt)
		}
	}
	return path, nil
}
