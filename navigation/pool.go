package navigation

import (
	"github.com/kkingfung/Laboratory-sub014/parameter"
	"github.com/kkingfung/Laboratory-sub014/vmath"
)

// Pool is a bounded free-list of reusable items
// Acquire falls back to fresh allocation when the list is empty, so exhaustion
// is never an error; Release discards the item once the list is full.
// Not safe for concurrent use: all pool traffic stays on the scheduling goroutine
type Pool[T any] struct {
	free  []T
	alloc func() T
	clear func(T) T
}

// NewPool creates a pool holding at most capacity items
func NewPool[T any](capacity int, alloc func() T, clear func(T) T) *Pool[T] {
	return &Pool[T]{
		free:  make([]T, 0, capacity),
		alloc: alloc,
		clear: clear,
	}
}

// Acquire returns a cleared item from the free-list, or a fresh one
func (p *Pool[T]) Acquire() T {
	n := len(p.free)
	if n == 0 {
		return p.alloc()
	}
	item := p.free[n-1]
	var zero T
	p.free[n-1] = zero
	p.free = p.free[:n-1]
	return p.clear(item)
}

// Release returns an item to the free-list if there is spare capacity
func (p *Pool[T]) Release(item T) {
	if len(p.free) == cap(p.free) {
		return
	}
	p.free = append(p.free, p.clear(item))
}

// Size returns the current free-list length
func (p *Pool[T]) Size() int {
	return len(p.free)
}

// BufferPool holds the two waypoint-buffer pools the planners share:
// finalized path buffers and scratch buffers for intermediate results.
// Pooling only avoids allocation churn; it never changes planning results
type BufferPool struct {
	paths   *Pool[[]vmath.Vec3F]
	scratch *Pool[[]vmath.Vec3F]
}

// NewBufferPool creates both pools at the configured bounds
func NewBufferPool() *BufferPool {
	alloc := func() []vmath.Vec3F {
		return make([]vmath.Vec3F, 0, parameter.NavPoolBufferInitialCap)
	}
	clearBuf := func(buf []vmath.Vec3F) []vmath.Vec3F {
		return buf[:0]
	}
	return &BufferPool{
		paths:   NewPool(parameter.NavPoolCapacity, alloc, clearBuf),
		scratch: NewPool(parameter.NavPoolCapacity, alloc, clearBuf),
	}
}

// AcquirePath returns an empty buffer for a finalized path
func (bp *BufferPool) AcquirePath() []vmath.Vec3F {
	return bp.paths.Acquire()
}

// ReleasePath recycles a finalized path buffer
// Callers must not retain the slice past release
func (bp *BufferPool) ReleasePath(buf []vmath.Vec3F) {
	if buf == nil {
		return
	}
	bp.paths.Release(buf)
}

// AcquireScratch returns an empty intermediate buffer
func (bp *BufferPool) AcquireScratch() []vmath.Vec3F {
	return bp.scratch.Acquire()
}

// ReleaseScratch recycles an intermediate buffer
func (bp *BufferPool) ReleaseScratch(buf []vmath.Vec3F) {
	if buf == nil {
		return
	}
	bp.scratch.Release(buf)
}
