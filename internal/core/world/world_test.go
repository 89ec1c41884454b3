package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/guardai/internal/core/observability/log"
	"github.com/zeusync/guardai/internal/core/systems/physics"
)

const (
	layerTarget   physics.Layer = 1 << 0
	layerObstacle physics.Layer = 1 << 1
	layerGuard    physics.Layer = 1 << 2
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := New(Config{Min: physics.V3(-10, 0, -10), Width: 20, Depth: 20, CellSize: 1}, log.NewNop())
	require.NoError(t, err)
	return w
}

func TestOverlapSphereKeepsSpawnOrder(t *testing.T) {
	w := newTestWorld(t)
	far := w.Spawn(EntitySpec{Name: "far", Layer: layerTarget, Position: physics.V3(0, 0, 8), Radius: 0.5, Health: 1})
	near := w.Spawn(EntitySpec{Name: "near", Layer: layerTarget, Position: physics.V3(0, 0, 2), Radius: 0.5, Health: 1})
	w.Spawn(EntitySpec{Name: "guard", Layer: layerGuard, Position: physics.V3(0, 0, 1), Radius: 0.5})
	w.Spawn(EntitySpec{Name: "outside", Layer: layerTarget, Position: physics.V3(0, 0, 12), Radius: 0.5, Health: 1})

	got := w.OverlapSphere(physics.Zero, 10, layerTarget)
	assert.Equal(t, []physics.EntityID{far, near}, got)

	w.ApplyDamage(far, 5)
	assert.Equal(t, []physics.EntityID{near}, w.OverlapSphere(physics.Zero, 10, layerTarget), "dead entities are skipped")

	e, ok := w.Entity(far)
	require.True(t, ok)
	assert.False(t, e.Alive)
	assert.Zero(t, e.Health)
}

func TestApplyDamage(t *testing.T) {
	w := newTestWorld(t)
	id := w.Spawn(EntitySpec{Name: "intruder", Layer: layerTarget, Health: 10})
	w.ApplyDamage(id, 3)
	w.ApplyDamage(physics.EntityID(99), 3)
	e, _ := w.Entity(id)
	assert.Equal(t, 7, e.Health)
	assert.True(t, e.Alive)
}

func TestRaycast(t *testing.T) {
	w := newTestWorld(t)
	w.AddObstacle(layerObstacle, Box{Min: physics.V3(-1, -1, 2), Max: physics.V3(1, 2, 3)})
	w.AddObstacle(layerObstacle, Sphere{Center: physics.V3(5, 0, 5), Radius: 1})

	fwd := physics.Forward
	assert.True(t, w.Raycast(physics.Zero, fwd, 5, layerObstacle), "box ahead")
	assert.False(t, w.Raycast(physics.Zero, fwd, 1.5, layerObstacle), "stops before the box")
	assert.False(t, w.Raycast(physics.Zero, fwd, 5, layerTarget), "mask filters obstacles")
	assert.False(t, w.Raycast(physics.V3(3, 0, 0), fwd, 10, layerObstacle), "passes beside the box")

	diag := physics.V3(1, 0, 1)
	assert.True(t, w.Raycast(physics.Zero, diag, 10, layerObstacle), "sphere on the diagonal")
	assert.False(t, w.Raycast(physics.Zero, diag, 5, layerObstacle), "sphere beyond range")
	assert.False(t, w.Raycast(physics.Zero, physics.Zero, 5, layerObstacle), "degenerate direction")
}

func TestFindPathAroundWall(t *testing.T) {
	w := newTestWorld(t)
	// wall across x in [-5, 5] at z = 0 with a gap east of x = 5
	w.AddObstacle(layerObstacle, Box{Min: physics.V3(-10, 0, -0.4), Max: physics.V3(4.9, 2, 0.4)})

	from, to := physics.V3(0, 0, -5), physics.V3(0, 0, 5)
	path, complete := w.Grid().FindPath(from, to)
	require.True(t, complete)
	require.NotEmpty(t, path)
	assert.Equal(t, to, path[len(path)-1])
	for _, p := range path {
		assert.False(t, w.Grid().Blocked(p), "waypoint %v is blocked", p)
	}
	assert.Greater(t, pathLength(from, path), from.Distance(to), "detour is longer than the straight line")
}

func TestFindPathUnreachableIsPartial(t *testing.T) {
	w := newTestWorld(t)
	w.AddObstacle(layerObstacle, Box{Min: physics.V3(-10, 0, -0.4), Max: physics.V3(10, 2, 0.4)})

	path, complete := w.Grid().FindPath(physics.V3(0, 0, -5), physics.V3(0, 0, 5))
	assert.False(t, complete)
	require.NotEmpty(t, path)
	last := path[len(path)-1]
	assert.Less(t, last.Z, 0.0, "stays on the start side")
	assert.InDelta(t, -1.5, last.Z, 1e-9, "closest reachable row")
}

func TestNavAgentPartialPathIsIncomplete(t *testing.T) {
	w := newTestWorld(t)
	w.AddObstacle(layerObstacle, Box{Min: physics.V3(6, 0, 6), Max: physics.V3(14, 2, 14)})
	id := w.Spawn(EntitySpec{Name: "guard", Layer: layerGuard, Radius: 0.5})
	agent, err := w.NewAgent(id, 4, 0.5, 0)
	require.NoError(t, err)
	assert.True(t, agent.PathComplete(), "no destination yet")

	agent.SetDestination(physics.V3(10, 0, 10))
	assert.True(t, agent.PathComplete(), "unknown while pending")

	w.Step(0.1)
	assert.False(t, agent.PathPending())
	assert.False(t, agent.PathComplete())

	agent.SetDestination(physics.V3(-10, 0, -10))
	w.Step(0.1)
	assert.True(t, agent.PathComplete())

	agent.Stop()
	assert.True(t, agent.PathComplete())
}

func TestNavAgentReachesDestination(t *testing.T) {
	w := newTestWorld(t)
	id := w.Spawn(EntitySpec{Name: "guard", Layer: layerGuard, Radius: 0.5})
	agent, err := w.NewAgent(id, 2, 0.5, 0)
	require.NoError(t, err)

	dest := physics.V3(0, 0, 4)
	agent.SetDestination(dest)
	assert.True(t, agent.PathPending())
	assert.True(t, math.IsInf(agent.RemainingDistance(), 1))

	w.Step(1)
	assert.False(t, agent.PathPending())
	assert.InDelta(t, 2, agent.Velocity(), 1e-9)
	assert.InDelta(t, 0, agent.Yaw(), 1e-9, "faces +Z while walking")

	agent.SetDestination(dest)
	assert.False(t, agent.PathPending(), "same destination does not replan")

	for range 3 {
		w.Step(1)
	}
	assert.LessOrEqual(t, agent.RemainingDistance(), agent.StoppingDistance())
	assert.Zero(t, agent.Velocity())
	assert.InDelta(t, 0.5, agent.Position().Distance(dest), 1e-6, "stops at the stopping distance")

	agent.SetYaw(90)
	assert.Equal(t, 90.0, agent.Yaw())
	agent.Stop()
	assert.Zero(t, agent.RemainingDistance())
}

func TestNewAgentUnknownEntity(t *testing.T) {
	w := newTestWorld(t)
	_, err := w.NewAgent(physics.EntityID(3), 1, 0, 0)
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestPatrolLoops(t *testing.T) {
	w := newTestWorld(t)
	id := w.Spawn(EntitySpec{
		Name:     "intruder",
		Layer:    layerTarget,
		Position: physics.V3(0, 0, 0),
		Patrol:   []physics.Vec3{physics.V3(0, 0, 2), physics.V3(0, 0, 0)},
		Speed:    1,
		Health:   5,
	})
	w.Step(1)
	p, _ := w.Position(id)
	assert.InDelta(t, 1, p.Z, 1e-9)
	w.Step(2)
	p, _ = w.Position(id)
	assert.InDelta(t, 1, p.Z, 1e-9, "reached the first waypoint and came back one unit")
	assert.Equal(t, uint64(2), w.Frame())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	_, err := New(Config{Width: 10, Depth: 10}, nil)
	assert.Error(t, err)
}
