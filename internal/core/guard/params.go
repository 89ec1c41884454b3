package guard

import (
	"errors"
	"fmt"

	"github.com/zeusync/guardai/internal/core/systems/physics"
)

// Params are the per-guard tunables. Angles are full cone angles in
// degrees; a candidate is inside a cone when its bearing is below half of it.
type Params struct {
	ViewRadius      float64 `mapstructure:"view_radius"`
	ViewAngle       float64 `mapstructure:"view_angle"`
	CloseViewRadius float64 `mapstructure:"close_view_radius"`
	CloseViewAngle  float64 `mapstructure:"close_view_angle"`

	MeleeWeapon bool    `mapstructure:"melee_weapon"`
	MeleeRange  float64 `mapstructure:"melee_range"`
	GunRange    float64 `mapstructure:"gun_range"`
	Damage      int     `mapstructure:"damage"`
	// RateOfFire is the cooldown, in cooldown checks, set after each attack.
	RateOfFire int `mapstructure:"rate_of_fire"`
	// Tenacity is how many frames a lost target keeps being followed.
	Tenacity int `mapstructure:"tenacity"`

	TargetMask   physics.Layer `mapstructure:"target_mask"`
	ObstacleMask physics.Layer `mapstructure:"obstacle_mask"`

	// LookAroundLimit is the swing to each side in degrees; TurnSpeed is in
	// degrees per second.
	LookAroundLimit float64 `mapstructure:"look_around_limit"`
	TurnSpeed       float64 `mapstructure:"turn_speed"`
}

func DefaultParams() Params {
	return Params{
		ViewRadius:      10,
		ViewAngle:       90,
		CloseViewRadius: 2,
		CloseViewAngle:  270,
		MeleeWeapon:     false,
		MeleeRange:      1.5,
		GunRange:        8,
		Damage:          10,
		RateOfFire:      30,
		Tenacity:        120,
		TargetMask:      1 << 0,
		ObstacleMask:    1 << 1,
		LookAroundLimit: 60,
		TurnSpeed:       90,
	}
}

func (p Params) Validate() error {
	var errs []error
	if p.ViewRadius < 0 || p.CloseViewRadius < 0 {
		errs = append(errs, errors.New("view radii must not be negative"))
	}
	if p.ViewAngle < 0 || p.ViewAngle > 360 || p.CloseViewAngle < 0 || p.CloseViewAngle > 360 {
		errs = append(errs, fmt.Errorf("view angles %v/%v must be within [0, 360]", p.ViewAngle, p.CloseViewAngle))
	}
	if p.MeleeRange < 0 || p.GunRange < 0 {
		errs = append(errs, errors.New("weapon ranges must not be negative"))
	}
	if p.Damage < 0 || p.RateOfFire < 0 || p.Tenacity < 0 {
		errs = append(errs, errors.New("damage, rate of fire and tenacity must not be negative"))
	}
	if p.LookAroundLimit <= 0 || p.TurnSpeed <= 0 {
		errs = append(errs, errors.New("look around limit and turn speed must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("guard params: %w", errors.Join(errs...))
	}
	return nil
}

func (p Params) HalfAngle() float64      { return p.ViewAngle / 2 }
func (p Params) CloseHalfAngle() float64 { return p.CloseViewAngle / 2 }

// AttackRange is the range of the equipped weapon.
func (p Params) AttackRange() float64 {
	if p.MeleeWeapon {
		return p.MeleeRange
	}
	return p.GunRange
}
