package walkgrid

import "testing"

// countDeadEnds scans passage cells with exactly one open neighbor
func countDeadEnds(g *Grid) int {
	n := 0
	for row := 1; row < g.Rows()-1; row++ {
		for col := 1; col < g.Cols()-1; col++ {
			if g.IsWalkable(col, row) && deadEnd(g, col, row) {
				n++
			}
		}
	}
	return n
}

func TestGenerateMazeFullyConnected(t *testing.T) {
	g := GenerateMaze(MazeConfig{Cols: 31, Rows: 31, CellSize: 1, Seed: 42})

	// Flood fill from the carve origin must reach every passage cell
	reached := make(map[[2]int]bool)
	queue := [][2]int{{1, 1}}
	reached[queue[0]] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range cardinal {
			next := [2]int{cur[0] + d[0], cur[1] + d[1]}
			if !reached[next] && g.IsWalkable(next[0], next[1]) {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}

	total := 0
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			if g.IsWalkable(col, row) {
				total++
			}
		}
	}
	if total == 0 {
		t.Fatal("maze has no passage cells")
	}
	if len(reached) != total {
		t.Errorf("flood fill reached %d of %d passage cells", len(reached), total)
	}
}

func TestGenerateMazeBraidingRemovesDeadEnds(t *testing.T) {
	perfect := GenerateMaze(MazeConfig{Cols: 31, Rows: 31, CellSize: 1, Seed: 7})
	braided := GenerateMaze(MazeConfig{Cols: 31, Rows: 31, CellSize: 1, Seed: 7, Braiding: 1})

	if countDeadEnds(perfect) == 0 {
		t.Fatal("perfect maze unexpectedly has no dead ends")
	}
	if countDeadEnds(braided) >= countDeadEnds(perfect) {
		t.Errorf("braiding did not reduce dead ends: %d vs %d",
			countDeadEnds(braided), countDeadEnds(perfect))
	}
}

func TestGenerateMazeOddDimensions(t *testing.T) {
	g := GenerateMaze(MazeConfig{Cols: 30, Rows: 24, CellSize: 1, Seed: 3})
	if g.Cols() != 29 || g.Rows() != 23 {
		t.Errorf("dims = %dx%d, want rounded down to odd 29x23", g.Cols(), g.Rows())
	}
}
