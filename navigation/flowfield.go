package navigation

import (
	"math"
	"time"

	"github.com/kkingfung/Laboratory-sub014/parameter"
	"github.com/kkingfung/Laboratory-sub014/vmath"
)

// FlowField is a precomputed grid of movement directions toward one destination,
// shared by every agent heading there. Directions are unit vectors on the XZ
// plane pointing straight at the destination; the field is not obstacle-aware,
// so callers in obstructed terrain must fall back to another planner
type FlowField struct {
	Destination vmath.Vec3F
	Radius      float64
	CreatedAt   time.Time

	// Dim is the cell count per side; the grid covers a Radius × Radius square
	// centered on the destination
	Dim      int
	CellSize float64

	directions []vmath.Vec3F // Dim*Dim, row-major over XZ
}

// GenerateFlowField builds the direction grid for a destination and radius
func GenerateFlowField(dest vmath.Vec3F, radius float64, now time.Time) *FlowField {
	dim := int(math.Ceil(radius / 2))
	if dim < 1 {
		dim = 1
	}
	f := &FlowField{
		Destination: dest,
		Radius:      radius,
		CreatedAt:   now,
		Dim:         dim,
		CellSize:    radius / float64(dim),
		directions:  make([]vmath.Vec3F, dim*dim),
	}

	for iz := 0; iz < dim; iz++ {
		for ix := 0; ix < dim; ix++ {
			cell := f.cellCenter(ix, iz)
			dir := vmath.V3FFlatten(vmath.V3FSub(dest, cell))
			f.directions[iz*dim+ix] = vmath.V3FNormalize(dir)
		}
	}
	return f
}

// originX/originZ are the minimum corner of the covered square
func (f *FlowField) originX() float64 { return f.Destination.X - f.Radius/2 }
func (f *FlowField) originZ() float64 { return f.Destination.Z - f.Radius/2 }

func (f *FlowField) cellCenter(ix, iz int) vmath.Vec3F {
	return vmath.Vec3F{
		X: f.originX() + (float64(ix)+0.5)*f.CellSize,
		Y: f.Destination.Y,
		Z: f.originZ() + (float64(iz)+0.5)*f.CellSize,
	}
}

func (f *FlowField) cellIndex(p vmath.Vec3F) (int, bool) {
	ix := int(math.Floor((p.X - f.originX()) / f.CellSize))
	iz := int(math.Floor((p.Z - f.originZ()) / f.CellSize))
	if ix < 0 || iz < 0 || ix >= f.Dim || iz >= f.Dim {
		return 0, false
	}
	return iz*f.Dim + ix, true
}

// DirectionAt returns the stored direction for the cell containing p
// Positions outside the grid have no data and return the zero vector
func (f *FlowField) DirectionAt(p vmath.Vec3F) vmath.Vec3F {
	idx, ok := f.cellIndex(p)
	if !ok {
		return vmath.Vec3F{}
	}
	return f.directions[idx]
}

// ExtractPath walks the field from a query position, appending into buf.
// Each step moves one cell-size along the looked-up direction. Extraction
// stops when within two cell-sizes of the destination (appending the exact
// destination), when the walk leaves the grid, or after the step cap.
// Hitting the cap is not a failure at field level; the caller decides how
// to interpret a field-derived path
func (f *FlowField) ExtractPath(from vmath.Vec3F, buf []vmath.Vec3F) []vmath.Vec3F {
	buf = append(buf, from)
	cur := from

	for step := 0; step < parameter.NavFlowFieldMaxSteps; step++ {
		if vmath.V3FDistXZ(cur, f.Destination) <= 2*f.CellSize {
			buf = append(buf, f.Destination)
			return buf
		}
		dir := f.DirectionAt(cur)
		if vmath.V3FIsZero(dir) {
			// Outside the grid: no data, stop here
			return buf
		}
		cur = vmath.V3FAdd(cur, vmath.V3FScale(dir, f.CellSize))
		buf = append(buf, cur)
	}
	return buf
}

// Reached reports whether an extracted path ends at the exact destination
func (f *FlowField) Reached(path []vmath.Vec3F) bool {
	return len(path) > 0 && path[len(path)-1] == f.Destination
}
