// Terminal sandbox for the path service: a grid world with wandering agents,
// rendered with tcell. Agents re-request paths through the service sweep and
// follow the delivered waypoints; 'f' overlays the flow field of the shared
// rally point.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kkingfung/Laboratory-sub014/config"
	"github.com/kkingfung/Laboratory-sub014/navigation"
	"github.com/kkingfung/Laboratory-sub014/status"
	"github.com/kkingfung/Laboratory-sub014/vmath"
	"github.com/kkingfung/Laboratory-sub014/walkgrid"
)

const (
	worldCols  = 60
	worldRows  = 26
	agentSpeed = 6.0 // world units per second
	tickMs     = 50
)

type simAgent struct {
	pos    vmath.Vec3F
	dest   vmath.Vec3F
	status navigation.AgentStatus

	path []vmath.Vec3F
	leg  int
}

func (a *simAgent) Position() vmath.Vec3F    { return a.pos }
func (a *simAgent) Destination() vmath.Vec3F { return a.dest }
func (a *simAgent) Status() navigation.AgentStatus {
	return a.status
}

func (a *simAgent) OnPathReady(path []vmath.Vec3F, ok bool) {
	if !ok {
		a.status = navigation.StatusFailed
		return
	}
	// Cached buffers are recycled on eviction; followers keep their own copy
	a.path = append(a.path[:0], path...)
	a.leg = 0
	a.status = navigation.StatusFollowing
}

func (a *simAgent) advance(dt float64) {
	if a.status != navigation.StatusFollowing || a.leg >= len(a.path) {
		return
	}
	remaining := agentSpeed * dt
	for remaining > 0 && a.leg < len(a.path) {
		target := a.path[a.leg]
		d := vmath.V3FDist(a.pos, target)
		if d <= remaining {
			a.pos = target
			a.leg++
			remaining -= d
			continue
		}
		dir := vmath.V3FScale(vmath.V3FSub(target, a.pos), 1/d)
		a.pos = vmath.V3FAdd(a.pos, vmath.V3FScale(dir, remaining))
		remaining = 0
	}
	if a.leg >= len(a.path) {
		a.status = navigation.StatusIdle
	}
}

type viz struct {
	screen tcell.Screen
	world  *walkgrid.Grid
	svc    *navigation.PathService
	reg    *status.Registry
	agents []*simAgent
	rng    *rand.Rand

	rally     vmath.Vec3F
	showField bool
	paused    bool
}

func newViz(cfg config.Config, agentCount int, seed int64, maze bool) (*viz, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	var world *walkgrid.Grid
	if maze {
		world = walkgrid.GenerateMaze(walkgrid.MazeConfig{
			Cols: worldCols, Rows: worldRows, CellSize: 1,
			Braiding: 0.4, Seed: seed,
		})
	} else {
		world = walkgrid.New(worldCols, worldRows, 1)
		world.BlockRect(12, 4, 14, 20)
		world.BlockRect(25, 0, 27, 14)
		world.BlockRect(38, 10, 40, 25)
		world.BlockRect(48, 3, 52, 6)
	}

	reg := status.NewRegistry()
	v := &viz{
		screen: screen,
		world:  world,
		svc:    navigation.NewPathService(cfg, world, nil, nil, reg),
		reg:    reg,
		rng:    rand.New(rand.NewSource(seed)),
		rally:  vmath.Vec3F{X: 45, Z: 20},
	}

	for i := 0; i < agentCount; i++ {
		a := &simAgent{pos: v.randomPoint(), status: navigation.StatusIdle}
		a.dest = v.randomPoint()
		v.agents = append(v.agents, a)
		v.svc.RegisterAgent(a)
	}
	return v, nil
}

func (v *viz) randomPoint() vmath.Vec3F {
	for {
		p := vmath.Vec3F{
			X: v.rng.Float64() * float64(v.world.Cols()),
			Z: v.rng.Float64() * float64(v.world.Rows()),
		}
		if _, err := v.world.SampleNavigable(p, 0.5); err == nil {
			return p
		}
	}
}

func (v *viz) update(dt float64) {
	if v.paused {
		return
	}
	v.svc.Tick(dt)
	for _, a := range v.agents {
		a.advance(dt)
		// Arrived agents wander on to a fresh destination
		if a.status == navigation.StatusIdle && vmath.V3FDistXZ(a.pos, a.dest) < 0.5 {
			a.dest = v.randomPoint()
		}
	}
}

func (v *viz) draw() {
	v.screen.Clear()

	wall := tcell.StyleDefault.Background(tcell.ColorDarkSlateGray)
	for row := 0; row < v.world.Rows(); row++ {
		for col := 0; col < v.world.Cols(); col++ {
			if !v.world.IsWalkable(col, row) {
				v.screen.SetContent(col, row+1, ' ', nil, wall)
			}
		}
	}

	if v.showField {
		v.drawField()
	}

	for _, a := range v.agents {
		var style tcell.Style
		switch a.status {
		case navigation.StatusFollowing:
			style = tcell.StyleDefault.Foreground(tcell.ColorGreen)
		case navigation.StatusFailed:
			style = tcell.StyleDefault.Foreground(tcell.ColorRed)
		default:
			style = tcell.StyleDefault.Foreground(tcell.ColorYellow)
		}
		v.screen.SetContent(int(a.pos.X), int(a.pos.Z)+1, '@', nil, style)
	}

	snap := v.reg.SnapshotInts()
	header := fmt.Sprintf(" agents:%d pending:%d cached:%d total:%d  [f]ield [space]pause [q]uit ",
		snap["nav.registered_agents"], snap["nav.pending_requests"],
		snap["nav.cached_paths"], snap["nav.total_paths_calculated"])
	drawText(v.screen, 0, 0, header, tcell.StyleDefault.Bold(true))

	v.screen.Show()
}

// drawField overlays the rally-point flow field as direction glyphs
func (v *viz) drawField() {
	field := v.svc.FlowFieldFor(v.rally, 30)
	dim := tcell.StyleDefault.Foreground(tcell.ColorTeal)
	for row := 0; row < v.world.Rows(); row++ {
		for col := 0; col < v.world.Cols(); col++ {
			if !v.world.IsWalkable(col, row) {
				continue
			}
			p := vmath.Vec3F{X: float64(col) + 0.5, Z: float64(row) + 0.5}
			dir := field.DirectionAt(p)
			if vmath.V3FIsZero(dir) {
				continue
			}
			v.screen.SetContent(col, row+1, arrowFor(dir), nil, dim)
		}
	}
	v.screen.SetContent(int(v.rally.X), int(v.rally.Z)+1, 'X',
		nil, tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true))
}

// arrowFor buckets a direction into one of eight glyphs
func arrowFor(dir vmath.Vec3F) rune {
	angle := math.Atan2(dir.Z, dir.X)
	octant := int(math.Round(angle/(math.Pi/4))+8) % 8
	return []rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}[octant]
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

func (v *viz) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q', 'Q':
				return false
			case 'f', 'F':
				v.showField = !v.showField
			case ' ':
				v.paused = !v.paused
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viz) run() {
	ticker := time.NewTicker(tickMs * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- v.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				return
			}
		case <-ticker.C:
			v.update(tickMs / 1000.0)
			v.draw()
		}
	}
}

func main() {
	configPath := flag.String("config", "", "path to YAML tuning file")
	agentCount := flag.Int("agents", 24, "number of wandering agents")
	seed := flag.Int64("seed", time.Now().UnixNano(), "world random seed")
	maze := flag.Bool("maze", false, "generate a braided maze world")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	v, err := newViz(cfg, *agentCount, *seed, *maze)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer v.screen.Fini()

	v.run()
}
