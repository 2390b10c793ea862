package navigation

import (
	"testing"
	"time"

	"github.com/kkingfung/Laboratory-sub014/status"
	"github.com/kkingfung/Laboratory-sub014/vmath"
)

func newTestService(oracle WalkabilityOracle) (*PathService, *MockClock) {
	clock := NewMockClock(time.Unix(1000, 0))
	s := NewPathService(testConfig(), oracle, clock, nil, status.NewRegistry())
	return s, clock
}

// Exactly the per-tick budget is dispatched; the rest stays queued
func TestServiceTickBudget(t *testing.T) {
	clock := NewMockClock(time.Unix(1000, 0))
	cfg := testConfig()
	cfg.MaxPathRequestsPerFrame = 5
	s := NewPathService(cfg, newFakeOracle(), clock, nil, nil)

	for i := 0; i < 10; i++ {
		agent := &fakeAgent{dest: v(float64(i+1), 0)}
		s.RequestPath(v(0, 0), v(float64(i+1), 0), agent, ModeGridSearch, 0)
	}
	if got := s.PendingRequestCount(); got != 10 {
		t.Fatalf("pending before tick = %d, want 10", got)
	}

	s.Tick(0.05)
	if got := s.PendingRequestCount(); got != 5 {
		t.Errorf("pending after one tick = %d, want 5", got)
	}

	s.Tick(0.05)
	if got := s.PendingRequestCount(); got != 0 {
		t.Errorf("pending after two ticks = %d, want 0", got)
	}
}

// A repeated request within the cache lifetime resolves synchronously,
// without a new planner dispatch
func TestServiceCacheHitSynchronous(t *testing.T) {
	s, _ := newTestService(newFakeOracle())

	first := &fakeAgent{}
	s.RequestPath(v(0, 0), v(3, 0), first, ModeGridSearch, 0)
	s.Tick(0.05)
	if first.calls != 1 || !first.gotOK {
		t.Fatalf("first request: calls=%d ok=%v", first.calls, first.gotOK)
	}
	total := s.TotalPathsCalculated()

	second := &fakeAgent{}
	s.RequestPath(v(0, 0), v(3, 0), second, ModeGridSearch, 0)
	if second.calls != 1 || !second.gotOK {
		t.Fatalf("cached request must resolve synchronously: calls=%d ok=%v", second.calls, second.gotOK)
	}
	if got := s.PendingRequestCount(); got != 0 {
		t.Errorf("pending = %d after cache hit, want 0", got)
	}
	if s.TotalPathsCalculated() != total {
		t.Error("cache hit must not count as a new calculated path")
	}
}

func TestServiceCacheExpiryForcesRecompute(t *testing.T) {
	s, clock := newTestService(newFakeOracle())

	agent := &fakeAgent{}
	s.RequestPath(v(0, 0), v(3, 0), agent, ModeGridSearch, 0)
	s.Tick(0.05)

	clock.Advance(time.Duration(testConfig().PathCacheLifetime*float64(time.Second)) + time.Second)

	repeat := &fakeAgent{}
	s.RequestPath(v(0, 0), v(3, 0), repeat, ModeGridSearch, 0)
	if repeat.calls != 0 {
		t.Fatal("expired entry must enqueue a fresh request, not resolve synchronously")
	}
	if got := s.PendingRequestCount(); got != 1 {
		t.Errorf("pending = %d, want 1", got)
	}
}

// Sealed destination: grid search fails, the oracle fallback fails, the
// request resolves as overall failure through the callback
func TestServiceSealedDestinationFails(t *testing.T) {
	oracle := newFakeOracle()
	oracle.blockRing(10, 0)
	s, _ := newTestService(oracle)

	agent := &fakeAgent{}
	s.RequestPath(v(0, 0), v(10, 0), agent, ModeGridSearch, 0)
	for i := 0; i < 50 && agent.calls == 0; i++ {
		s.Tick(0.05)
	}
	if agent.calls != 1 {
		t.Fatal("request never resolved")
	}
	if agent.gotOK || agent.gotPath != nil {
		t.Errorf("sealed destination: ok=%v path=%v, want failure", agent.gotOK, agent.gotPath)
	}
}

func TestServiceInvalidDestinationFailsImmediately(t *testing.T) {
	oracle := newFakeOracle()
	oracle.block(10, 0)
	s, _ := newTestService(oracle)

	agent := &fakeAgent{}
	s.RequestPath(v(0, 0), v(10, 0), agent, ModeGridSearch, 0)
	if agent.calls != 1 || agent.gotOK {
		t.Errorf("non-navigable destination: calls=%d ok=%v, want immediate failure", agent.calls, agent.gotOK)
	}
	if got := s.PendingRequestCount(); got != 0 {
		t.Errorf("pending = %d, want 0", got)
	}
}

// The same destination yields the same cached field instance within its lifetime
func TestServiceFlowFieldCached(t *testing.T) {
	s, clock := newTestService(newFakeOracle())
	dest := vmath.Vec3F{X: 10, Z: 10}

	a := s.FlowFieldFor(dest, 10)
	b := s.FlowFieldFor(dest, 10)
	if a != b {
		t.Error("second call within lifetime must return the same field instance")
	}

	clock.Advance(time.Duration(testConfig().FlowFieldLifetime*float64(time.Second)) + time.Second)
	c := s.FlowFieldFor(dest, 10)
	if a == c {
		t.Error("expired field must be regenerated")
	}
}

// A flow-field request whose start lies outside the field degrades to grid search
func TestServiceFlowFieldFallback(t *testing.T) {
	s, _ := newTestService(newFakeOracle())

	agent := &fakeAgent{}
	s.RequestPath(v(45, 0), v(0, 0), agent, ModeFlowField, 0)
	for i := 0; i < 100 && agent.calls == 0; i++ {
		s.Tick(0.05)
	}
	if agent.calls != 1 || !agent.gotOK {
		t.Fatalf("fallback did not resolve: calls=%d ok=%v", agent.calls, agent.gotOK)
	}
	if got := agent.gotPath[len(agent.gotPath)-1]; got != v(0, 0) {
		t.Errorf("fallback path ends at %v, want (0,0)", got)
	}
}

func TestServiceAgentSweep(t *testing.T) {
	clock := NewMockClock(time.Unix(1000, 0))
	cfg := testConfig()
	cfg.MaxAgentsPerFrame = 2
	cfg.PathUpdateInterval = 0.5
	s := NewPathService(cfg, newFakeOracle(), clock, nil, nil)

	agents := make([]*fakeAgent, 5)
	for i := range agents {
		agents[i] = &fakeAgent{pos: v(0, float64(i)), dest: v(3, float64(i)), status: StatusIdle}
		s.RegisterAgent(agents[i])
	}
	if got := s.RegisteredAgentCount(); got != 5 {
		t.Fatalf("registered = %d, want 5", got)
	}

	// Below the sweep interval: nothing is issued
	s.Tick(0.2)
	if got := s.PendingRequestCount(); got != 0 {
		t.Fatalf("pending = %d before interval elapses, want 0", got)
	}

	// Interval reached: exactly the agent budget is served
	s.Tick(0.4)
	if got := s.PendingRequestCount(); got != 2 {
		t.Errorf("pending = %d after sweep, want budget 2", got)
	}

	s.UnregisterAgent(agents[0])
	if got := s.RegisteredAgentCount(); got != 4 {
		t.Errorf("registered = %d after unregister, want 4", got)
	}
}

func TestServiceHybridSelection(t *testing.T) {
	s, _ := newTestService(newFakeOracle())

	short := &PathRequest{Start: v(0, 0), Destination: v(5, 0)}
	if got := s.selectHybrid(short); got != ModeGridSearch {
		t.Errorf("short range selected %v, want grid search", got)
	}

	long := &PathRequest{Start: v(0, 0), Destination: v(100, 0)}
	if got := s.selectHybrid(long); got != ModeHierarchical {
		t.Errorf("sparse long range selected %v, want hierarchical", got)
	}

	mid := &PathRequest{Start: v(0, 0), Destination: v(30, 0)}
	if got := s.selectHybrid(mid); got != ModeNavMesh {
		t.Errorf("mid range selected %v, want direct oracle path", got)
	}

	// Crowd the destination past the density threshold
	for i := 0; i < testConfig().DensityThresholdForFlowField+1; i++ {
		s.RegisterAgent(&fakeAgent{pos: v(100, float64(i)), dest: v(100, 0)})
	}
	if got := s.selectHybrid(long); got != ModeFlowField {
		t.Errorf("crowded long range selected %v, want flow field", got)
	}
}

func TestServiceCountersAdvance(t *testing.T) {
	reg := status.NewRegistry()
	clock := NewMockClock(time.Unix(1000, 0))
	s := NewPathService(testConfig(), newFakeOracle(), clock, nil, reg)

	agent := &fakeAgent{}
	s.RequestPath(v(0, 0), v(3, 0), agent, ModeGridSearch, 0)
	s.Tick(0.05)

	if got := s.TotalPathsCalculated(); got != 1 {
		t.Errorf("total paths = %d, want 1", got)
	}
	if got := s.CachedPathCount(); got != 1 {
		t.Errorf("cached paths = %d, want 1", got)
	}
	snap := reg.SnapshotInts()
	if snap["nav.total_paths_calculated"] != 1 {
		t.Errorf("registry snapshot = %v, want nav.total_paths_calculated 1", snap)
	}
}
