package world

import (
	"fmt"
	"math"

	"github.com/zeusync/guardai/internal/core/observability/log"
	"github.com/zeusync/guardai/internal/core/systems/physics"
)

// NavAgent moves an entity along grid paths. A destination set during a
// frame is planned on the next Step; until then the path is pending.
// It also serves as the entity's body: position plus yaw heading.
type NavAgent struct {
	w        *World
	id       physics.EntityID
	speed    float64
	stopping float64

	yaw      float64
	dest     physics.Vec3
	hasDest  bool
	pending  bool
	complete bool
	path     []physics.Vec3
	velocity float64
}

// NewAgent attaches navigation to an existing entity.
func (w *World) NewAgent(id physics.EntityID, speed, stopping, yaw float64) (*NavAgent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.byID[id]; !ok {
		return nil, fmt.Errorf("agent for #%d: %w", id, ErrUnknownEntity)
	}
	a := &NavAgent{w: w, id: id, speed: speed, stopping: stopping, yaw: yaw, complete: true}
	w.agents = append(w.agents, a)
	return a, nil
}

func (a *NavAgent) ID() physics.EntityID { return a.id }

// SetDestination only replans when p differs from the current destination.
func (a *NavAgent) SetDestination(p physics.Vec3) {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	if a.hasDest && nearlyEqual(a.dest, p) {
		return
	}
	a.dest, a.hasDest, a.pending = p, true, true
}

// Stop drops the destination and the current path.
func (a *NavAgent) Stop() {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	a.hasDest, a.pending, a.path, a.velocity = false, false, nil, 0
	a.complete = true
}

// PathComplete reports whether the planned path reaches the destination.
// It is true while the path is pending and false for a partial path toward
// an unreachable destination.
func (a *NavAgent) PathComplete() bool {
	a.w.mu.RLock()
	defer a.w.mu.RUnlock()
	return a.pending || a.complete
}

func (a *NavAgent) PathPending() bool {
	a.w.mu.RLock()
	defer a.w.mu.RUnlock()
	return a.pending
}

// RemainingDistance is the length of the rest of the path, infinite while
// the path is pending.
func (a *NavAgent) RemainingDistance() float64 {
	a.w.mu.RLock()
	defer a.w.mu.RUnlock()
	if a.pending {
		return math.Inf(1)
	}
	return pathLength(a.w.byID[a.id].Position, a.path)
}

func (a *NavAgent) StoppingDistance() float64 { return a.stopping }

// Velocity is the speed achieved during the last Step.
func (a *NavAgent) Velocity() float64 {
	a.w.mu.RLock()
	defer a.w.mu.RUnlock()
	return a.velocity
}

func (a *NavAgent) Position() physics.Vec3 {
	a.w.mu.RLock()
	defer a.w.mu.RUnlock()
	return a.w.byID[a.id].Position
}

func (a *NavAgent) Yaw() float64 {
	a.w.mu.RLock()
	defer a.w.mu.RUnlock()
	return a.yaw
}

func (a *NavAgent) SetYaw(deg float64) {
	a.w.mu.Lock()
	a.yaw = deg
	a.w.mu.Unlock()
}

// step runs under the world write lock.
func (a *NavAgent) step(dt float64) {
	e := a.w.byID[a.id]
	if a.pending {
		a.path, a.complete = a.w.grid.FindPath(e.Position, a.dest)
		a.pending = false
		if !a.complete {
			a.w.logger.Debug("destination unreachable, using partial path",
				log.Uint64("agent", uint64(a.id)),
				log.Int("waypoints", len(a.path)),
			)
		}
	}

	a.velocity = 0
	remaining := pathLength(e.Position, a.path)
	if remaining <= a.stopping || dt <= 0 {
		if remaining <= a.stopping {
			a.path = nil
		}
		return
	}

	budget := math.Min(a.speed*dt, remaining-a.stopping)
	traveled := 0.0
	var heading physics.Vec3
	for budget > 0 && len(a.path) > 0 {
		next := a.path[0]
		d := e.Position.Distance(next)
		if d > 0 {
			heading = next.Sub(e.Position)
		}
		if d > budget {
			e.Position = physics.MoveTowards(e.Position, next, budget)
			traveled += budget
			break
		}
		e.Position = next
		traveled += d
		budget -= d
		a.path = a.path[1:]
	}

	a.velocity = traveled / dt
	if flat := heading.Flat(); !flat.IsZero() {
		a.yaw = physics.Yaw(flat)
	}
	if pathLength(e.Position, a.path) <= a.stopping+1e-9 {
		a.path = nil
	}
}
