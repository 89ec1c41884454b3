package guard

import (
	"github.com/zeusync/guardai/internal/core/observability/log"
	"github.com/zeusync/guardai/internal/core/systems/physics"
)

// detect scans the primary cone, then the close cone. Candidates are taken in
// the order the perception service returns them and the first one that is
// inside the cone and not occluded wins.
func (g *Guard) detect() (physics.EntityID, physics.Vec3, bool) {
	origin := g.svc.Body.Position()
	forward := physics.DirFromYaw(g.svc.Body.Yaw())
	if id, pos, ok := g.scanCone(origin, forward, g.Params.ViewRadius, g.Params.HalfAngle()); ok {
		return id, pos, true
	}
	return g.scanCone(origin, forward, g.Params.CloseViewRadius, g.Params.CloseHalfAngle())
}

func (g *Guard) scanCone(origin, forward physics.Vec3, radius, halfAngle float64) (physics.EntityID, physics.Vec3, bool) {
	if radius <= 0 || halfAngle <= 0 {
		return physics.NoEntity, physics.Zero, false
	}
	p := g.svc.Perception
	for _, id := range p.OverlapSphere(origin, radius, g.Params.TargetMask) {
		pos, ok := p.Position(id)
		if !ok {
			continue
		}
		toTarget := pos.Sub(origin)
		dir := toTarget.Normalized()
		if physics.AngleDeg(forward, dir) >= halfAngle {
			continue
		}
		if p.Raycast(origin, dir, toTarget.Length(), g.Params.ObstacleMask) {
			continue
		}
		return id, pos, true
	}
	return physics.NoEntity, physics.Zero, false
}

// noticeTarget records a detection on the blackboard and announces a newly
// acquired target.
func (g *Guard) noticeTarget(id physics.EntityID, pos physics.Vec3) {
	fresh := !g.seen || g.Blackboard.Target != id
	g.Blackboard.remember(id, pos)
	g.Blackboard.FollowCounter = g.Params.Tenacity
	g.seen = true
	if !fresh {
		return
	}
	g.metrics.Detection()
	g.logger.Debug("target detected",
		log.Uint64("target", uint64(id)),
		log.Uint64("frame", g.tree.Frame()),
	)
	g.publish(EventTargetDetected, TargetEvent{Guard: g.Name, Target: id, Position: pos, Frame: g.tree.Frame()})
}

func (g *Guard) loseTarget() {
	if !g.seen {
		return
	}
	g.seen = false
	g.logger.Debug("target lost",
		log.Uint64("target", uint64(g.Blackboard.Target)),
		log.Int("follow", g.Blackboard.FollowCounter),
	)
	g.publish(EventTargetLost, TargetEvent{
		Guard:    g.Name,
		Target:   g.Blackboard.Target,
		Position: g.Blackboard.LastKnownPosition,
		Frame:    g.tree.Frame(),
	})
}
