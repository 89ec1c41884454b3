package guard

import (
	"math"

	"github.com/zeusync/guardai/internal/core/bt"
	"github.com/zeusync/guardai/internal/core/observability/log"
	"github.com/zeusync/guardai/internal/core/systems/physics"
)

type (
	// Node is the behavior of a guard tree node.
	Node     = bt.Behavior[*Guard]
	children = bt.Children[*Guard]
)

// Detect succeeds when a target is visible in either vision cone. It then
// stores the target's position and resets the follow counter to the
// guard's tenacity. Failure leaves the blackboard untouched.
type Detect struct{}

func (Detect) Update(g *Guard, _ children) bt.Status {
	id, pos, ok := g.detect()
	if !ok {
		g.loseTarget()
		return bt.StatusFailure
	}
	g.noticeTarget(id, pos)
	return bt.StatusSuccess
}

// CheckRange succeeds when the target is closer than the equipped weapon's
// range.
type CheckRange struct{}

func (CheckRange) Update(g *Guard, _ children) bt.Status {
	pos, ok := g.svc.Perception.Position(g.Blackboard.Target)
	if !ok {
		return bt.StatusFailure
	}
	return bt.FromBool(g.svc.Body.Position().Distance(pos) < g.Params.AttackRange())
}

// CheckAttackCooldown succeeds once the cooldown has run out. While it has
// not, every check consumes one unit of it.
type CheckAttackCooldown struct{}

func (CheckAttackCooldown) Update(g *Guard, _ children) bt.Status {
	if g.cooldown <= 0 {
		return bt.StatusSuccess
	}
	g.cooldown--
	return bt.StatusFailure
}

type CheckFollowing struct{}

func (CheckFollowing) Update(g *Guard, _ children) bt.Status {
	return bt.FromBool(g.Blackboard.FollowCounter > 0)
}

type CheckCurious struct{}

func (CheckCurious) Update(g *Guard, _ children) bt.Status {
	return bt.FromBool(g.Blackboard.Curious)
}

type HasMeleeWeapon struct{}

func (HasMeleeWeapon) Update(g *Guard, _ children) bt.Status {
	return bt.FromBool(g.Params.MeleeWeapon)
}

// Attack damages the current target and restarts the cooldown.
type Attack struct{}

func (Attack) Update(g *Guard, _ children) bt.Status {
	target := g.Blackboard.Target
	if target != physics.NoEntity {
		g.svc.Damager.ApplyDamage(target, g.Params.Damage)
		g.metrics.Attack()
		g.logger.Debug("attack",
			log.Uint64("target", uint64(target)),
			log.Int("damage", g.Params.Damage),
		)
		g.publish(EventAttack, AttackEvent{Guard: g.Name, Target: target, Damage: g.Params.Damage, Frame: g.tree.Frame()})
	}
	g.cooldown = g.Params.RateOfFire
	return bt.StatusSuccess
}

// Movement walks toward the point given by Destination. It fails when there
// is no destination or when the agent stopped at the end of a path that
// cannot reach it, runs while travelling and succeeds on arrival.
type Movement struct {
	Destination func(g *Guard) (physics.Vec3, bool)
}

func (m Movement) Update(g *Guard, _ children) bt.Status {
	dest, ok := m.Destination(g)
	if !ok {
		return bt.StatusFailure
	}
	nav := g.svc.Navigator
	nav.SetDestination(dest)
	if nav.PathPending() || nav.Velocity() >= 1e-6 {
		return bt.StatusRunning
	}
	if !nav.PathComplete() {
		return bt.StatusFailure
	}
	if nav.RemainingDistance() <= nav.StoppingDistance() {
		return bt.StatusSuccess
	}
	return bt.StatusRunning
}

// PursueTarget moves toward the last known position of the target.
func PursueTarget() Movement {
	return Movement{Destination: func(g *Guard) (physics.Vec3, bool) {
		return g.Blackboard.LastKnownPosition, g.Blackboard.HasLastKnown
	}}
}

// MoveTo moves toward a fixed point.
func MoveTo(p physics.Vec3) Movement {
	return Movement{Destination: func(*Guard) (physics.Vec3, bool) { return p, true }}
}

// UpdateLastKnownPosition copies the target's live position to the
// blackboard.
type UpdateLastKnownPosition struct{}

func (UpdateLastKnownPosition) Update(g *Guard, _ children) bt.Status {
	pos, ok := g.svc.Perception.Position(g.Blackboard.Target)
	if !ok {
		return bt.StatusFailure
	}
	g.Blackboard.LastKnownPosition = pos
	g.Blackboard.HasLastKnown = true
	return bt.StatusSuccess
}

type DecrementFollowCounter struct{}

func (DecrementFollowCounter) Update(g *Guard, _ children) bt.Status {
	g.Blackboard.FollowCounter--
	return bt.StatusSuccess
}

type SetCurious struct{}

func (SetCurious) Update(g *Guard, _ children) bt.Status {
	g.Blackboard.Curious = true
	return bt.StatusSuccess
}

type ClearCurious struct{}

func (ClearCurious) Update(g *Guard, _ children) bt.Status {
	g.Blackboard.Curious = false
	return bt.StatusSuccess
}

// LookAround sweeps the heading to +limit, then to -limit, relative to the
// heading it had when activated. Each activation starts a new sweep.
type LookAround struct {
	initial float64
	offset  float64
	turned  bool
}

func (l *LookAround) OnEnter(g *Guard) {
	l.initial = g.svc.Body.Yaw()
	l.offset = 0
	l.turned = false
}

func (l *LookAround) Update(g *Guard, _ children) bt.Status {
	limit := g.Params.LookAroundLimit
	step := g.Params.TurnSpeed * g.dt
	done := false
	if !l.turned {
		l.offset = math.Min(l.offset+step, limit)
		l.turned = l.offset >= limit
	} else {
		l.offset = math.Max(l.offset-step, -limit)
		done = l.offset <= -limit
	}
	g.svc.Body.SetYaw(l.initial + l.offset)
	if done {
		return bt.StatusSuccess
	}
	return bt.StatusRunning
}

// Turned reports whether the first sweep has completed.
func (l *LookAround) Turned() bool { return l.turned }
