package guard

import (
	"errors"

	"github.com/zeusync/guardai/internal/core/systems/physics"
)

// Perception answers spatial queries about the world.
type Perception interface {
	// OverlapSphere returns candidate entities on mask within radius.
	OverlapSphere(center physics.Vec3, radius float64, mask physics.Layer) []physics.EntityID
	Position(id physics.EntityID) (physics.Vec3, bool)
	// Raycast reports whether something on mask blocks the segment.
	Raycast(origin, dir physics.Vec3, maxDist float64, mask physics.Layer) bool
}

// Navigator follows paths for the guard.
type Navigator interface {
	SetDestination(p physics.Vec3)
	PathPending() bool
	RemainingDistance() float64
	StoppingDistance() float64
	// PathComplete is false once the planned path is known to end short of
	// the destination.
	PathComplete() bool
	// Velocity is the current speed.
	Velocity() float64
}

type Damager interface {
	ApplyDamage(id physics.EntityID, amount int)
}

// Body is the guard's own transform.
type Body interface {
	physics.Transform
	SetYaw(deg float64)
}

// Services bundles the collaborators a guard's leaves call into.
type Services struct {
	Perception Perception
	Navigator  Navigator
	Damager    Damager
	Body       Body
}

func (s Services) validate() error {
	var errs []error
	if s.Perception == nil {
		errs = append(errs, errors.New("perception service missing"))
	}
	if s.Navigator == nil {
		errs = append(errs, errors.New("navigator service missing"))
	}
	if s.Damager == nil {
		errs = append(errs, errors.New("damager service missing"))
	}
	if s.Body == nil {
		errs = append(errs, errors.New("body missing"))
	}
	return errors.Join(errs...)
}
