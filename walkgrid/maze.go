package walkgrid

import (
	"math/rand"
	"time"
)

// MazeConfig controls stochastic maze world generation
type MazeConfig struct {
	Cols, Rows int
	CellSize   float64

	// Braiding opens a fraction of dead ends into loops:
	// 0 keeps the perfect maze, 1 removes every dead end it can
	Braiding float64

	// Seed 0 picks a random seed
	Seed int64
}

// GenerateMaze carves a maze world with a recursive backtracker on the odd
// cell lattice, then braids dead ends into loops per the config
func GenerateMaze(cfg MazeConfig) *Grid {
	cols := ensureOdd(cfg.Cols)
	rows := ensureOdd(cfg.Rows)

	g := New(cols, rows, cfg.CellSize)
	for i := range g.walkable {
		g.walkable[i] = false
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	carve(g, rng)
	if cfg.Braiding > 0 {
		braid(g, rng, cfg.Braiding)
	}
	return g
}

func ensureOdd(n int) int {
	if n < 3 {
		return 3
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}

var lattice = [4][2]int{{0, -2}, {2, 0}, {0, 2}, {-2, 0}}

// carve runs an iterative recursive backtracker over the odd lattice,
// knocking out the wall cell between each visited pair
func carve(g *Grid, rng *rand.Rand) {
	start := [2]int{1, 1}
	g.walkable[g.index(start[0], start[1])] = true
	stack := [][2]int{start}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]

		var next [][2]int
		for _, d := range lattice {
			c, r := cur[0]+d[0], cur[1]+d[1]
			if g.inBounds(c, r) && !g.walkable[g.index(c, r)] {
				next = append(next, [2]int{c, r})
			}
		}
		if len(next) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		chosen := next[rng.Intn(len(next))]
		wallC := (cur[0] + chosen[0]) / 2
		wallR := (cur[1] + chosen[1]) / 2
		g.walkable[g.index(wallC, wallR)] = true
		g.walkable[g.index(chosen[0], chosen[1])] = true
		stack = append(stack, chosen)
	}
}

var cardinal = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// braid opens a random wall next to each dead end with the given probability
func braid(g *Grid, rng *rand.Rand, prob float64) {
	for row := 1; row < g.rows-1; row++ {
		for col := 1; col < g.cols-1; col++ {
			if !g.IsWalkable(col, row) || !deadEnd(g, col, row) {
				continue
			}
			if rng.Float64() > prob {
				continue
			}
			// Break a wall whose far side is also passage
			for _, i := range rng.Perm(4) {
				d := cardinal[i]
				wc, wr := col+d[0], row+d[1]
				fc, fr := col+2*d[0], row+2*d[1]
				if g.inBounds(wc, wr) && !g.IsWalkable(wc, wr) && g.IsWalkable(fc, fr) {
					g.walkable[g.index(wc, wr)] = true
					break
				}
			}
		}
	}
}

func deadEnd(g *Grid, col, row int) bool {
	open := 0
	for _, d := range cardinal {
		if g.IsWalkable(col+d[0], row+d[1]) {
			open++
		}
	}
	return open == 1
}
