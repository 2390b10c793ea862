package navigation

import (
	"sync"
	"time"
)

// Clock provides the time source for cache lifetimes
// Search timeouts stay iteration-count-based; only TTL decisions read the clock
type Clock interface {
	Now() time.Time
}

// SystemClock is the real monotonic time source
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// MockClock is a controllable time source for testing
type MockClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewMockClock creates a mock clock starting at the given time
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

func (m *MockClock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Advance moves the mock clock forward by d
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
