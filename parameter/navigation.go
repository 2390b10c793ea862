package parameter

// Navigation - Path Service
const (
	// NavMaxRequestsPerTick is the default dispatch budget per tick
	NavMaxRequestsPerTick = 10

	// NavMaxAgentsPerTick is the default re-request sweep budget per tick
	NavMaxAgentsPerTick = 20

	// NavPathCacheLifetimeSec is the default cached path TTL (seconds)
	NavPathCacheLifetimeSec = 5.0

	// NavMaxCachedPaths is the default path cache capacity
	NavMaxCachedPaths = 100

	// NavAgentUpdateIntervalSec is the default delay between agent re-request sweeps (seconds)
	NavAgentUpdateIntervalSec = 0.5

	// NavCacheKeyPrecision quantizes cache key coordinates to 0.1 world units
	NavCacheKeyPrecision = 10.0
)

// Navigation - strategy selection (Hybrid mode)
const (
	// NavShortRangeThreshold routes requests at or under this distance to grid search
	NavShortRangeThreshold = 10.0

	// NavLongRangeThreshold routes requests over this distance to flow field or hierarchical planning
	NavLongRangeThreshold = 50.0

	// NavDensityThreshold is the nearby-agent count above which shared-destination
	// requests use a flow field
	NavDensityThreshold = 5

	// NavDensityRadius bounds the nearby-agent count around a destination
	NavDensityRadius = 10.0
)

// Navigation - Grid Search
const (
	// NavGridCellSize is the default search grid resolution (world units)
	NavGridCellSize = 1.0

	// NavGridMaxIterations caps a single grid search; exceeding it is failure
	NavGridMaxIterations = 2000

	// NavSearchSliceIterations is how many search steps run before a
	// computation yields back to the scheduler
	NavSearchSliceIterations = 50
)

// Navigation - Flow Field
const (
	// NavFlowFieldRadius is the default field coverage radius (world units)
	NavFlowFieldRadius = 30.0

	// NavFlowFieldLifetimeSec is the default field TTL (seconds)
	NavFlowFieldLifetimeSec = 10.0

	// NavFlowFieldMaxSteps caps stepwise path extraction from a field
	NavFlowFieldMaxSteps = 50
)

// Navigation - Hierarchical Planner
const (
	// NavRegionSize is the coarse region edge length (world units)
	NavRegionSize = 25.0

	// NavRegionSearchMaxIterations caps the region-level breadth-first search
	NavRegionSearchMaxIterations = 500
)

// Navigation - Object Pool
const (
	// NavPoolCapacity bounds each buffer free-list
	NavPoolCapacity = 32

	// NavPoolBufferInitialCap is the initial waypoint capacity of a fresh buffer
	NavPoolBufferInitialCap = 64
)
