// Package generic holds typed wrappers over standard library containers.
package generic

import "sync"

// Pool is a typed sync.Pool. Values handed out by Get have been passed
// through reset, whether they are fresh or recycled.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

// NewPool creates a pool; reset may be nil.
func NewPool[T any](generate func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() any {
		v := generate()
		if reset != nil {
			reset(v)
		}
		return v
	}
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		p.reset(value)
	}
	p.pool.Put(value)
}
