// Package world is an in-process stand-in for a game engine: colliders,
// spatial queries, damage and grid navigation for headless simulation.
package world

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/zeusync/guardai/internal/core/observability/log"
	"github.com/zeusync/guardai/internal/core/systems/physics"
)

var ErrUnknownEntity = errors.New("world: unknown entity")

type Config struct {
	Min      physics.Vec3 `mapstructure:"min"`
	Width    float64      `mapstructure:"width"`
	Depth    float64      `mapstructure:"depth"`
	CellSize float64      `mapstructure:"cell_size"`
}

func DefaultConfig() Config {
	return Config{Min: physics.V3(-50, 0, -50), Width: 100, Depth: 100, CellSize: 1}
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Depth <= 0 {
		return fmt.Errorf("world size %vx%v must be positive", c.Width, c.Depth)
	}
	if c.CellSize <= 0 {
		return fmt.Errorf("world cell size %v must be positive", c.CellSize)
	}
	return nil
}

// EntitySpec describes an entity to spawn.
type EntitySpec struct {
	Name     string
	Layer    physics.Layer
	Position physics.Vec3
	Radius   float64
	Health   int
	// Patrol makes the entity walk the waypoints in a loop at Speed.
	Patrol []physics.Vec3
	Speed  float64
}

// Entity is a snapshot of a spawned entity.
type Entity struct {
	ID       physics.EntityID
	Name     string
	Layer    physics.Layer
	Position physics.Vec3
	Radius   float64
	Health   int
	Alive    bool
}

type entity struct {
	Entity
	patrol []physics.Vec3
	speed  float64
	next   int
}

type obstacle struct {
	layer physics.Layer
	shape Shape
}

// World is safe for concurrent use: queries take a read lock, mutations and
// Step take the write lock.
type World struct {
	mu        sync.RWMutex
	entities  []*entity
	byID      map[physics.EntityID]*entity
	obstacles []obstacle
	agents    []*NavAgent
	grid      *Grid
	nextID    physics.EntityID
	frame     uint64
	logger    log.Log
}

func New(cfg Config, logger log.Log) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &World{
		byID:   make(map[physics.EntityID]*entity),
		grid:   newGrid(cfg.Min, cfg.Width, cfg.Depth, cfg.CellSize),
		logger: logger.Named("world"),
	}, nil
}

func (w *World) Spawn(spec EntitySpec) physics.EntityID {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	e := &entity{
		Entity: Entity{
			ID:       w.nextID,
			Name:     spec.Name,
			Layer:    spec.Layer,
			Position: spec.Position,
			Radius:   spec.Radius,
			Health:   spec.Health,
			Alive:    true,
		},
		patrol: append([]physics.Vec3(nil), spec.Patrol...),
		speed:  spec.Speed,
	}
	w.entities = append(w.entities, e)
	w.byID[e.ID] = e
	w.logger.Debug("entity spawned",
		log.Uint64("id", uint64(e.ID)),
		log.String("name", e.Name),
	)
	return e.ID
}

// AddObstacle registers a static collider and blocks the navigation cells
// it covers.
func (w *World) AddObstacle(layer physics.Layer, shape Shape) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.obstacles = append(w.obstacles, obstacle{layer: layer, shape: shape})
	w.grid.block(shape)
}

// OverlapSphere returns the live entities on mask touching the sphere, in
// spawn order.
func (w *World) OverlapSphere(center physics.Vec3, radius float64, mask physics.Layer) []physics.EntityID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []physics.EntityID
	for _, e := range w.entities {
		if !e.Alive || !e.Layer.Has(mask) {
			continue
		}
		if e.Position.Distance(center) <= radius+e.Radius {
			out = append(out, e.ID)
		}
	}
	return out
}

func (w *World) Position(id physics.EntityID) (physics.Vec3, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.byID[id]
	if !ok {
		return physics.Zero, false
	}
	return e.Position, true
}

// Raycast reports whether an obstacle or entity on mask lies on the segment
// from origin along dir for maxDist.
func (w *World) Raycast(origin, dir physics.Vec3, maxDist float64, mask physics.Layer) bool {
	dir = dir.Normalized()
	if dir.IsZero() {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, o := range w.obstacles {
		if o.layer.Has(mask) && o.shape.Intersect(origin, dir, maxDist) {
			return true
		}
	}
	for _, e := range w.entities {
		if !e.Alive || !e.Layer.Has(mask) {
			continue
		}
		if (Sphere{Center: e.Position, Radius: e.Radius}).Intersect(origin, dir, maxDist) {
			return true
		}
	}
	return false
}

// ApplyDamage lowers the entity's health; at zero it dies and stops being
// reported by queries.
func (w *World) ApplyDamage(id physics.EntityID, amount int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.byID[id]
	if !ok || !e.Alive {
		return
	}
	e.Health -= amount
	if e.Health <= 0 {
		e.Health = 0
		e.Alive = false
		w.logger.Info("entity died", log.Uint64("id", uint64(id)), log.String("name", e.Name))
	}
}

func (w *World) Entity(id physics.EntityID) (Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.byID[id]
	if !ok {
		return Entity{}, false
	}
	return e.Entity, true
}

// Entities returns snapshots in spawn order.
func (w *World) Entities() []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Entity, len(w.entities))
	for i, e := range w.entities {
		out[i] = e.Entity
	}
	return out
}

func (w *World) Frame() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.frame
}

func (w *World) Grid() *Grid { return w.grid }

// Step advances patrols and navigation agents by dt seconds.
func (w *World) Step(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frame++
	for _, e := range w.entities {
		if e.Alive && len(e.patrol) > 0 && e.speed > 0 {
			e.walkPatrol(dt)
		}
	}
	for _, a := range w.agents {
		a.step(dt)
	}
}

func (e *entity) walkPatrol(dt float64) {
	budget := e.speed * dt
	// bounded so that a degenerate patrol cannot spin forever
	for range len(e.patrol) + 1 {
		target := e.patrol[e.next]
		d := e.Position.Distance(target)
		if d > budget {
			e.Position = physics.MoveTowards(e.Position, target, budget)
			return
		}
		e.Position = target
		budget -= d
		e.next = (e.next + 1) % len(e.patrol)
		if budget <= 0 {
			return
		}
	}
}

func pathLength(from physics.Vec3, path []physics.Vec3) float64 {
	total := 0.0
	for _, p := range path {
		total += from.Distance(p)
		from = p
	}
	return total
}

func nearlyEqual(a, b physics.Vec3) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9 && math.Abs(a.Z-b.Z) < 1e-9
}
