package navigation

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kkingfung/Laboratory-sub014/config"
	"github.com/kkingfung/Laboratory-sub014/parameter"
	"github.com/kkingfung/Laboratory-sub014/status"
	"github.com/kkingfung/Laboratory-sub014/vmath"
)

// inflightSearch pairs a request with its resumable computation
type inflightSearch struct {
	req    *PathRequest
	search *GridSearch
}

// PathService coordinates path planning for many agents: it serves cached
// results, picks a strategy per request, enforces the per-tick budgets, and
// owns the path and flow-field caches.
//
// All mutation happens inside Tick and the public request methods, which must
// be called from the single scheduling goroutine; the service never blocks
// the surrounding simulation loop
type PathService struct {
	cfg      config.Config
	oracle   WalkabilityOracle
	clock    Clock
	observer Observer

	defaultMode Mode
	grid        *GridPlanner
	hier        *HierarchicalPlanner
	pool        *BufferPool

	pending  []*PathRequest
	inflight map[string]*inflightSearch
	order    []string // request ids in dispatch order

	agents      []Agent
	agentCursor int
	sweepTimer  float64

	paths  *pathCache
	fields *fieldCache

	statAgents  *atomic.Int64
	statCached  *atomic.Int64
	statPending *atomic.Int64
	statTotal   *atomic.Int64
}

// NewPathService constructs a service over the given oracle.
// clock, observer, and registry may be nil: the system clock, a no-op
// observer, and a private registry are used respectively
func NewPathService(cfg config.Config, oracle WalkabilityOracle, clock Clock, observer Observer, registry *status.Registry) *PathService {
	if clock == nil {
		clock = SystemClock{}
	}
	if registry == nil {
		registry = status.NewRegistry()
	}
	pool := NewBufferPool()

	s := &PathService{
		cfg:         cfg,
		oracle:      oracle,
		clock:       clock,
		observer:    observer,
		defaultMode: ModeFromString(cfg.DefaultMode),
		grid:        NewGridPlanner(oracle, cfg.GridCellSize, cfg.GridMaxIterations, pool),
		hier:        NewHierarchicalPlanner(oracle, parameter.NavRegionSize, parameter.NavRegionSearchMaxIterations, pool),
		pool:        pool,
		inflight:    make(map[string]*inflightSearch),
		paths:       newPathCache(cfg.MaxCachedPaths, secondsToDuration(cfg.PathCacheLifetime), pool),
		fields:      newFieldCache(secondsToDuration(cfg.FlowFieldLifetime)),

		statAgents:  registry.Ints.Get("nav.registered_agents"),
		statCached:  registry.Ints.Get("nav.cached_paths"),
		statPending: registry.Ints.Get("nav.pending_requests"),
		statTotal:   registry.Ints.Get("nav.total_paths_calculated"),
	}
	registry.Bools.Get("nav.flow_fields_enabled").Store(cfg.EnableFlowFields)
	return s
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// RequestPath asks for a path from start to destination on behalf of agent.
// A live cached entry resolves synchronously through the agent callback;
// otherwise the request joins the FIFO queue and is dispatched on a later
// tick under the per-tick budget. All failures also arrive via the callback
func (s *PathService) RequestPath(start, dest vmath.Vec3F, agent Agent, mode Mode, priority int) {
	now := s.clock.Now()
	req := &PathRequest{
		ID:          uuid.NewString(),
		Start:       start,
		Destination: dest,
		Agent:       agent,
		Mode:        mode,
		Priority:    priority,
		SubmittedAt: now,
	}

	if entry, ok := s.paths.get(pathCacheKey(start, dest), now); ok {
		s.deliver(req, entry.Waypoints, true)
		return
	}

	if _, err := s.oracle.SampleNavigable(start, s.cfg.GridCellSize); err != nil {
		s.deliver(req, nil, false)
		return
	}
	if _, err := s.oracle.SampleNavigable(dest, s.cfg.GridCellSize); err != nil {
		s.deliver(req, nil, false)
		return
	}

	s.pending = append(s.pending, req)
	s.statPending.Store(int64(len(s.pending)))
}

// FlowFieldFor returns a live flow field for the destination, generating and
// caching a new one when none exists or the cached field expired
func (s *PathService) FlowFieldFor(dest vmath.Vec3F, radius float64) *FlowField {
	now := s.clock.Now()
	if field, ok := s.fields.get(dest, now); ok {
		return field
	}
	field := GenerateFlowField(dest, radius, now)
	s.fields.put(field)
	if s.observer != nil {
		s.observer.FieldGenerated(field)
	}
	return field
}

// RegisterAgent adds an agent to the per-tick re-request sweep
func (s *PathService) RegisterAgent(a Agent) {
	for _, existing := range s.agents {
		if existing == a {
			return
		}
	}
	s.agents = append(s.agents, a)
	s.statAgents.Store(int64(len(s.agents)))
}

// UnregisterAgent removes an agent from the sweep
func (s *PathService) UnregisterAgent(a Agent) {
	for i, existing := range s.agents {
		if existing == a {
			s.agents = append(s.agents[:i], s.agents[i+1:]...)
			break
		}
	}
	if s.agentCursor >= len(s.agents) {
		s.agentCursor = 0
	}
	s.statAgents.Store(int64(len(s.agents)))
}

// Tick advances the service by one simulation update: it dispatches queued
// requests up to the budget, advances in-flight searches by a bounded
// iteration slice, purges expired cache entries, and re-requests paths for
// idle or failed agents
func (s *PathService) Tick(dt float64) {
	s.dispatchPending()
	s.advanceInflight()
	s.purgeCaches()
	s.sweepAgents(dt)
}

func (s *PathService) dispatchPending() {
	n := s.cfg.MaxPathRequestsPerFrame
	if n > len(s.pending) {
		n = len(s.pending)
	}
	for i := 0; i < n; i++ {
		req := s.pending[i]
		s.pending[i] = nil
		s.execute(req, s.resolveMode(req))
	}
	s.pending = s.pending[n:]
	if len(s.pending) == 0 {
		s.pending = nil
	}
	s.statPending.Store(int64(len(s.pending)))
}

func (s *PathService) advanceInflight() {
	if len(s.order) == 0 {
		return
	}
	remaining := s.order[:0]
	for _, id := range s.order {
		run, ok := s.inflight[id]
		if !ok {
			continue
		}
		path, done, err := run.search.Advance(parameter.NavSearchSliceIterations)
		if !done {
			remaining = append(remaining, id)
			continue
		}
		delete(s.inflight, id)
		if err != nil {
			s.fallback(run.req, ModeGridSearch)
			continue
		}
		s.finish(run.req, path, true)
	}
	s.order = remaining
}

func (s *PathService) purgeCaches() {
	now := s.clock.Now()
	s.paths.purgeExpired(now)
	s.fields.purgeExpired(now)
	s.statCached.Store(int64(s.paths.len()))
}

func (s *PathService) sweepAgents(dt float64) {
	s.sweepTimer += dt
	if s.sweepTimer < s.cfg.PathUpdateInterval || len(s.agents) == 0 {
		return
	}
	s.sweepTimer = 0

	budget := s.cfg.MaxAgentsPerFrame
	if budget > len(s.agents) {
		budget = len(s.agents)
	}
	for i := 0; i < budget; i++ {
		agent := s.agents[s.agentCursor]
		s.agentCursor = (s.agentCursor + 1) % len(s.agents)
		switch agent.Status() {
		case StatusIdle, StatusFailed:
			s.RequestPath(agent.Position(), agent.Destination(), agent, ModeHybrid, 0)
		}
	}
}

// resolveMode applies the request's preferred mode, the configured default,
// then the hybrid selection policy, in that order
func (s *PathService) resolveMode(req *PathRequest) Mode {
	mode := req.Mode
	if mode == ModeHybrid {
		mode = s.defaultMode
	}
	if mode == ModeHybrid {
		mode = s.selectHybrid(req)
	}
	return mode
}

// selectHybrid is the per-request strategy policy: short hops use the grid
// search, crowded long-distance destinations share a flow field, other
// long-distance requests go hierarchical, and everything else falls through
// to the oracle's direct path
func (s *PathService) selectHybrid(req *PathRequest) Mode {
	dist := vmath.V3FDist(req.Start, req.Destination)
	switch {
	case dist <= s.cfg.ShortRangeThreshold:
		return ModeGridSearch
	case dist > s.cfg.LongRangeThreshold &&
		s.cfg.EnableFlowFields &&
		s.densityAround(req.Destination) > s.cfg.DensityThresholdForFlowField:
		return ModeFlowField
	case dist > s.cfg.LongRangeThreshold:
		return ModeHierarchical
	default:
		return ModeNavMesh
	}
}

// densityAround counts registered agents within the density radius of dest
func (s *PathService) densityAround(dest vmath.Vec3F) int {
	count := 0
	for _, a := range s.agents {
		if vmath.V3FDist(a.Position(), dest) <= parameter.NavDensityRadius {
			count++
		}
	}
	return count
}

func (s *PathService) execute(req *PathRequest, mode Mode) {
	switch mode {
	case ModeFlowField:
		if !s.cfg.EnableFlowFields {
			s.fallback(req, ModeFlowField)
			return
		}
		field := s.FlowFieldFor(req.Destination, s.cfg.FlowFieldRadius)
		path := field.ExtractPath(req.Start, s.pool.AcquirePath())
		if !field.Reached(path) {
			s.pool.ReleasePath(path)
			s.fallback(req, ModeFlowField)
			return
		}
		// Field paths are per-agent and transient: delivered, never cached
		s.finish(req, path, false)

	case ModeGridSearch:
		search, err := s.grid.NewSearch(req.Start, req.Destination)
		if err != nil {
			s.fallback(req, ModeGridSearch)
			return
		}
		s.inflight[req.ID] = &inflightSearch{req: req, search: search}
		s.order = append(s.order, req.ID)

	case ModeHierarchical:
		path, err := s.hier.Plan(req.Start, req.Destination)
		if err != nil {
			s.fallback(req, ModeHierarchical)
			return
		}
		s.finish(req, path, true)

	default: // ModeNavMesh: direct oracle path
		path, err := s.oracle.CalculatePath(req.Start, req.Destination)
		if err != nil {
			s.deliver(req, nil, false)
			return
		}
		s.finish(req, path, true)
	}
}

// fallback degrades a failed strategy to the next cheaper one; when none is
// left the request resolves as failure through the agent callback
func (s *PathService) fallback(req *PathRequest, failed Mode) {
	switch failed {
	case ModeFlowField:
		s.execute(req, ModeGridSearch)
	case ModeGridSearch, ModeHierarchical:
		s.execute(req, ModeNavMesh)
	default:
		s.deliver(req, nil, false)
	}
}

func (s *PathService) finish(req *PathRequest, path []vmath.Vec3F, cacheIt bool) {
	if cacheIt {
		s.paths.put(pathCacheKey(req.Start, req.Destination), path, s.clock.Now())
		s.statCached.Store(int64(s.paths.len()))
	}
	s.statTotal.Add(1)
	s.deliver(req, path, true)
}

func (s *PathService) deliver(req *PathRequest, path []vmath.Vec3F, ok bool) {
	if req.Agent != nil {
		req.Agent.OnPathReady(path, ok)
	}
	if s.observer != nil {
		s.observer.PathComputed(req, path, ok)
	}
}

// Observability counters

func (s *PathService) RegisteredAgentCount() int { return int(s.statAgents.Load()) }
func (s *PathService) CachedPathCount() int      { return int(s.statCached.Load()) }
func (s *PathService) PendingRequestCount() int  { return int(s.statPending.Load()) }
func (s *PathService) TotalPathsCalculated() int64 {
	return s.statTotal.Load()
}
