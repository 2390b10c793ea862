package navigation

import (
	"errors"
	"math"
	"testing"
)

func newTestGridPlanner(oracle WalkabilityOracle, maxIterations int) *GridPlanner {
	return NewGridPlanner(oracle, 1.0, maxIterations, NewBufferPool())
}

// A 3-unit hop on an open grid simplifies to the direct line with exact endpoints
func TestGridSearchDirectLine(t *testing.T) {
	p := newTestGridPlanner(newFakeOracle(), 500)
	start, goal := v(0.2, 0.1), v(3.1, 0.4)

	s, err := p.NewSearch(start, goal)
	if err != nil {
		t.Fatalf("NewSearch: %v", err)
	}
	path, done, err := s.Advance(500)
	if !done || err != nil {
		t.Fatalf("Advance: done=%v err=%v", done, err)
	}
	if len(path) > 2 {
		t.Errorf("simplified path has %d waypoints, want <= 2: %v", len(path), path)
	}
	if path[0] != start {
		t.Errorf("path[0] = %v, want exact start %v", path[0], start)
	}
	if path[len(path)-1] != goal {
		t.Errorf("path end = %v, want exact goal %v", path[len(path)-1], goal)
	}
}

func TestGridSearchAvoidsObstacle(t *testing.T) {
	oracle := newFakeOracle()
	// Vertical wall at x=3 spanning z in [-4, 4], with openings beyond
	for z := -4; z <= 4; z++ {
		oracle.block(3, z)
	}
	p := newTestGridPlanner(oracle, 2000)

	s, err := p.NewSearch(v(0, 0), v(6, 0))
	if err != nil {
		t.Fatalf("NewSearch: %v", err)
	}
	path, done, err := s.Advance(2000)
	if !done || err != nil {
		t.Fatalf("Advance: done=%v err=%v", done, err)
	}
	for _, wp := range path {
		if !oracle.navigable(wp) {
			t.Errorf("waypoint %v lies in a blocked cell", wp)
		}
	}
	// Every simplified segment must be clear
	for i := 1; i < len(path); i++ {
		if oracle.SegmentObstructed(path[i-1], path[i]) {
			t.Errorf("segment %v -> %v is obstructed", path[i-1], path[i])
		}
	}
}

// Advancing one iteration at a time must reach the same result as one big slice
func TestGridSearchResumable(t *testing.T) {
	oracle := newFakeOracle()
	for z := -3; z <= 3; z++ {
		oracle.block(4, z)
	}

	big, err := newTestGridPlanner(oracle, 2000).NewSearch(v(0, 0), v(8, 0))
	if err != nil {
		t.Fatalf("NewSearch: %v", err)
	}
	bigPath, done, err := big.Advance(2000)
	if !done || err != nil {
		t.Fatalf("single-slice search: done=%v err=%v", done, err)
	}

	small, err := newTestGridPlanner(oracle, 2000).NewSearch(v(0, 0), v(8, 0))
	if err != nil {
		t.Fatalf("NewSearch: %v", err)
	}
	var smallPath []struct{ x, z float64 }
	for i := 0; ; i++ {
		if i > 5000 {
			t.Fatal("sliced search did not terminate")
		}
		path, done, err := small.Advance(1)
		if err != nil {
			t.Fatalf("sliced search failed: %v", err)
		}
		if done {
			for _, p := range path {
				smallPath = append(smallPath, struct{ x, z float64 }{p.X, p.Z})
			}
			break
		}
	}
	if len(smallPath) != len(bigPath) {
		t.Fatalf("sliced search found %d waypoints, single-slice %d", len(smallPath), len(bigPath))
	}
	for i := range bigPath {
		if bigPath[i].X != smallPath[i].x || bigPath[i].Z != smallPath[i].z {
			t.Errorf("waypoint %d differs: %v vs %v", i, bigPath[i], smallPath[i])
		}
	}
}

func TestGridSearchIterationLimit(t *testing.T) {
	p := newTestGridPlanner(newFakeOracle(), 10)
	s, err := p.NewSearch(v(0, 0), v(50, 50))
	if err != nil {
		t.Fatalf("NewSearch: %v", err)
	}
	_, done, err := s.Advance(1000)
	if !done {
		t.Fatal("capped search must terminate")
	}
	if !errors.Is(err, ErrIterationLimit) {
		t.Errorf("err = %v, want ErrIterationLimit", err)
	}
	if !errors.Is(err, ErrNoPath) {
		t.Error("ErrIterationLimit must be treated as ErrNoPath by callers")
	}
}

func TestGridSearchSealedDestination(t *testing.T) {
	oracle := newFakeOracle()
	oracle.blockRing(10, 0)
	p := newTestGridPlanner(oracle, 500)

	s, err := p.NewSearch(v(0, 0), v(10, 0))
	if err != nil {
		t.Fatalf("NewSearch: %v (destination cell itself is navigable)", err)
	}
	_, done, err := s.Advance(10000)
	if !done {
		t.Fatal("search must terminate")
	}
	if !errors.Is(err, ErrNoPath) {
		t.Errorf("err = %v, want ErrNoPath", err)
	}
}

func TestGridSearchInvalidEndpoints(t *testing.T) {
	oracle := newFakeOracle()
	oracle.block(0, 0)
	p := newTestGridPlanner(oracle, 500)

	if _, err := p.NewSearch(v(0, 0), v(5, 0)); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("blocked start: err = %v, want ErrInvalidRequest", err)
	}
	if _, err := p.NewSearch(v(5, 0), v(0, 0)); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("blocked destination: err = %v, want ErrInvalidRequest", err)
	}
}

// The heuristic must never overestimate the true 8-connected cost on an open grid
func TestGridHeuristicAdmissible(t *testing.T) {
	p := newTestGridPlanner(newFakeOracle(), 500)
	for dx := 0; dx <= 12; dx++ {
		for dz := 0; dz <= 12; dz++ {
			a := gridCell{X: 0, Z: 0}
			b := gridCell{X: dx, Z: dz}
			h := p.heuristic(a, b)
			truth := openGridCost(dx, dz)
			if h > truth+1e-9 {
				t.Errorf("heuristic(%v) = %v exceeds true cost %v", b, h, truth)
			}
		}
	}
}

// openGridCost walks the obstacle-free optimum directly: diagonal steps until
// one axis is exhausted, cardinal steps for the remainder
func openGridCost(dx, dz int) float64 {
	if dz < dx {
		dx, dz = dz, dx
	}
	return float64(dx)*math.Sqrt2 + float64(dz-dx)
}
