package guard

import (
	"github.com/zeusync/guardai/internal/core/systems/physics"
)

type stubPerception struct {
	order     []physics.EntityID
	positions map[physics.EntityID]physics.Vec3
	hidden    bool
	blocked   bool
}

func newStubPerception() *stubPerception {
	return &stubPerception{positions: make(map[physics.EntityID]physics.Vec3)}
}

func (s *stubPerception) place(id physics.EntityID, p physics.Vec3) {
	if _, ok := s.positions[id]; !ok {
		s.order = append(s.order, id)
	}
	s.positions[id] = p
}

func (s *stubPerception) OverlapSphere(center physics.Vec3, radius float64, _ physics.Layer) []physics.EntityID {
	if s.hidden {
		return nil
	}
	var out []physics.EntityID
	for _, id := range s.order {
		if s.positions[id].Distance(center) <= radius {
			out = append(out, id)
		}
	}
	return out
}

func (s *stubPerception) Position(id physics.EntityID) (physics.Vec3, bool) {
	p, ok := s.positions[id]
	return p, ok
}

func (s *stubPerception) Raycast(physics.Vec3, physics.Vec3, float64, physics.Layer) bool {
	return s.blocked
}

// arrivedNav reports arrival at whatever destination it was given.
type arrivedNav struct {
	dest  physics.Vec3
	calls int
}

func (n *arrivedNav) SetDestination(p physics.Vec3) { n.dest = p; n.calls++ }
func (n *arrivedNav) PathPending() bool             { return false }
func (n *arrivedNav) RemainingDistance() float64    { return 0 }
func (n *arrivedNav) StoppingDistance() float64     { return 0.1 }
func (n *arrivedNav) PathComplete() bool            { return true }
func (n *arrivedNav) Velocity() float64             { return 0 }

type recordingDamager struct {
	hits map[physics.EntityID]int
}

func (d *recordingDamager) ApplyDamage(id physics.EntityID, amount int) {
	if d.hits == nil {
		d.hits = make(map[physics.EntityID]int)
	}
	d.hits[id] += amount
}

type stubBody struct {
	pos physics.Vec3
	yaw float64
}

func (b *stubBody) Position() physics.Vec3 { return b.pos }
func (b *stubBody) Yaw() float64           { return b.yaw }
func (b *stubBody) SetYaw(deg float64)     { b.yaw = deg }

type fixture struct {
	perception *stubPerception
	nav        *arrivedNav
	damage     *recordingDamager
	body       *stubBody
}

func newFixture() *fixture {
	return &fixture{
		perception: newStubPerception(),
		nav:        &arrivedNav{},
		damage:     &recordingDamager{},
		body:       &stubBody{},
	}
}

func (f *fixture) services() Services {
	return Services{Perception: f.perception, Navigator: f.nav, Damager: f.damage, Body: f.body}
}
