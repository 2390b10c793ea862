package navigation

import (
	"time"

	"github.com/kkingfung/Laboratory-sub014/vmath"
)

// Mode selects the planning strategy for a request
type Mode uint8

const (
	// ModeHybrid picks a strategy per request from distance and crowd density
	ModeHybrid Mode = iota
	// ModeNavMesh asks the walkability oracle for a direct baked-surface path
	ModeNavMesh
	// ModeGridSearch runs the informed grid search
	ModeGridSearch
	// ModeFlowField extracts a path from a shared destination field
	ModeFlowField
	// ModeHierarchical routes through coarse regions, then fills in detail
	ModeHierarchical
)

func (m Mode) String() string {
	switch m {
	case ModeHybrid:
		return "hybrid"
	case ModeNavMesh:
		return "navmesh"
	case ModeGridSearch:
		return "grid"
	case ModeFlowField:
		return "flowfield"
	case ModeHierarchical:
		return "hierarchical"
	}
	return "unknown"
}

// ModeFromString maps a config string to a Mode, defaulting to ModeHybrid
func ModeFromString(s string) Mode {
	switch s {
	case "navmesh":
		return ModeNavMesh
	case "grid":
		return ModeGridSearch
	case "flowfield":
		return ModeFlowField
	case "hierarchical":
		return ModeHierarchical
	}
	return ModeHybrid
}

// AgentStatus is the requester's lifecycle state as seen by the service
type AgentStatus uint8

const (
	StatusIdle AgentStatus = iota
	StatusComputing
	StatusReady
	StatusFollowing
	StatusBlocked
	StatusNoPath
	StatusFailed
	StatusCancelled
)

// Agent is the capability contract a requester exposes to the service
// The service holds a non-owning reference for the duration of a request;
// agent lifecycle is managed entirely by the caller
type Agent interface {
	Position() vmath.Vec3F
	Destination() vmath.Vec3F
	Status() AgentStatus
	// OnPathReady delivers the result of a request; path is nil when ok is false.
	// A late result for a superseded request may arrive here and can be ignored
	OnPathReady(path []vmath.Vec3F, ok bool)
}

// WalkabilityOracle answers navigability queries against the baked surface
// The oracle is external to this package; planners only consume it
type WalkabilityOracle interface {
	// CalculatePath returns a path along the baked surface, or an error if none exists
	CalculatePath(start, end vmath.Vec3F) ([]vmath.Vec3F, error)
	// SampleNavigable returns the nearest navigable point within radius of p
	SampleNavigable(p vmath.Vec3F, radius float64) (vmath.Vec3F, error)
	// SegmentObstructed reports whether the straight segment a-b is blocked
	SegmentObstructed(a, b vmath.Vec3F) bool
}

// Observer receives planner lifecycle notifications at well-defined points
// All hooks run on the scheduling goroutine and must not retain the arguments
type Observer interface {
	PathComputed(req *PathRequest, path []vmath.Vec3F, ok bool)
	FieldGenerated(field *FlowField)
}

// PathRequest is an immutable planning request
type PathRequest struct {
	ID          string
	Start       vmath.Vec3F
	Destination vmath.Vec3F
	Agent       Agent
	Mode        Mode
	// Priority is carried for requesters but does not reorder dispatch;
	// requests are served FIFO under the per-tick budget
	Priority    int
	SubmittedAt time.Time
}

// CachedPath is a completed result owned by the service's path cache
type CachedPath struct {
	Waypoints []vmath.Vec3F
	CreatedAt time.Time
}
