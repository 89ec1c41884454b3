package bt

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a fresh behavior from definition parameters. It is called
// once per node, so stateful behaviors are never shared between nodes.
type Factory[C any] func(params Params) (Behavior[C], error)

// Registry maps the names used in tree definitions to behavior factories.
type Registry[C any] struct {
	mu         sync.RWMutex
	leaves     map[string]Factory[C]
	decorators map[string]Factory[C]
}

func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{
		leaves:     make(map[string]Factory[C]),
		decorators: make(map[string]Factory[C]),
	}
}

func (r *Registry[C]) RegisterLeaf(name string, factory Factory[C]) {
	r.mu.Lock()
	r.leaves[name] = factory
	r.mu.Unlock()
}

func (r *Registry[C]) RegisterDecorator(name string, factory Factory[C]) {
	r.mu.Lock()
	r.decorators[name] = factory
	r.mu.Unlock()
}

func (r *Registry[C]) NewLeaf(name string, params Params) (Behavior[C], error) {
	r.mu.RLock()
	f := r.leaves[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("leaf %q: %w", name, ErrUnknownNode)
	}
	return f(params)
}

func (r *Registry[C]) NewDecorator(name string, params Params) (Behavior[C], error) {
	r.mu.RLock()
	f := r.decorators[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("decorator %q: %w", name, ErrUnknownNode)
	}
	return f(params)
}

// Leaves lists the registered leaf names, sorted.
func (r *Registry[C]) Leaves() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.leaves))
	for name := range r.leaves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Params are the free-form parameters of a definition node. YAML and JSON
// decode numbers differently, so the getters accept every numeric type.
type Params map[string]any

func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return def, fmt.Errorf("param %q=%v is not an integer: %w", key, v, ErrInvalidParam)
		}
		return int(n), nil
	default:
		return def, fmt.Errorf("param %q=%v (%T): %w", key, v, v, ErrInvalidParam)
	}
}

func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return def, fmt.Errorf("param %q=%v (%T): %w", key, v, v, ErrInvalidParam)
	}
}

func (p Params) String(key, def string) (string, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return def, fmt.Errorf("param %q=%v (%T): %w", key, v, v, ErrInvalidParam)
	}
	return s, nil
}

func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return def, fmt.Errorf("param %q=%v (%T): %w", key, v, v, ErrInvalidParam)
	}
	return b, nil
}
