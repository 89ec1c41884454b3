package guard

import (
	"github.com/zeusync/guardai/internal/core/events/bus"
	"github.com/zeusync/guardai/internal/core/observability/log"
	"github.com/zeusync/guardai/internal/core/systems/physics"
)

const (
	EventTargetDetected = "guard.target_detected"
	EventTargetLost     = "guard.target_lost"
	EventAttack         = "guard.attack"
	EventNodeError      = "guard.node_error"
)

type TargetEvent struct {
	Guard    string           `json:"guard"`
	Target   physics.EntityID `json:"target"`
	Position physics.Vec3     `json:"position"`
	Frame    uint64           `json:"frame"`
}

type AttackEvent struct {
	Guard  string           `json:"guard"`
	Target physics.EntityID `json:"target"`
	Damage int              `json:"damage"`
	Frame  uint64           `json:"frame"`
}

type NodeErrorEvent struct {
	Guard string `json:"guard"`
	Node  string `json:"node"`
	Frame uint64 `json:"frame"`
	Error string `json:"error"`
}

func (g *Guard) publish(typ string, data any) {
	if g.events == nil {
		return
	}
	if err := g.events.Publish(bus.NewEvent(typ, g.Name, data)); err != nil {
		g.logger.Warn("event handler failed", log.String("type", typ), log.Error(err))
	}
}
