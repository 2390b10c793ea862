package navigation

import (
	"errors"
	"math"

	"github.com/kkingfung/Laboratory-sub014/config"
	"github.com/kkingfung/Laboratory-sub014/vmath"
)

var errBlocked = errors.New("blocked")

// fakeOracle is a unit-cell walkability surface: cells are centered on
// integer XZ coordinates and blocked individually
type fakeOracle struct {
	blocked map[[2]int]bool
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{blocked: make(map[[2]int]bool)}
}

func (o *fakeOracle) block(x, z int) {
	o.blocked[[2]int{x, z}] = true
}

// blockRing seals the 8 cells around (x, z)
func (o *fakeOracle) blockRing(x, z int) {
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dz == 0 {
				continue
			}
			o.block(x+dx, z+dz)
		}
	}
}

func (o *fakeOracle) navigable(p vmath.Vec3F) bool {
	cell := [2]int{int(math.Round(p.X)), int(math.Round(p.Z))}
	return !o.blocked[cell]
}

func (o *fakeOracle) SampleNavigable(p vmath.Vec3F, radius float64) (vmath.Vec3F, error) {
	if o.navigable(p) {
		return p, nil
	}
	return vmath.Vec3F{}, errBlocked
}

func (o *fakeOracle) SegmentObstructed(a, b vmath.Vec3F) bool {
	dist := vmath.V3FDistXZ(a, b)
	steps := int(math.Ceil(dist*4)) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		if !o.navigable(vmath.V3FAdd(a, vmath.V3FScale(vmath.V3FSub(b, a), t))) {
			return true
		}
	}
	return false
}

func (o *fakeOracle) CalculatePath(start, end vmath.Vec3F) ([]vmath.Vec3F, error) {
	if !o.navigable(start) || !o.navigable(end) {
		return nil, errBlocked
	}
	if o.SegmentObstructed(start, end) {
		return nil, errBlocked
	}
	return []vmath.Vec3F{start, end}, nil
}

// fakeAgent records delivered results
type fakeAgent struct {
	pos    vmath.Vec3F
	dest   vmath.Vec3F
	status AgentStatus

	gotPath []vmath.Vec3F
	gotOK   bool
	calls   int
}

func (a *fakeAgent) Position() vmath.Vec3F    { return a.pos }
func (a *fakeAgent) Destination() vmath.Vec3F { return a.dest }
func (a *fakeAgent) Status() AgentStatus      { return a.status }

func (a *fakeAgent) OnPathReady(path []vmath.Vec3F, ok bool) {
	a.gotPath = path
	a.gotOK = ok
	a.calls++
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.GridMaxIterations = 500
	return cfg
}

func v(x, z float64) vmath.Vec3F {
	return vmath.Vec3F{X: x, Z: z}
}
