package guard

import (
	"bytes"
	_ "embed"

	"github.com/zeusync/guardai/internal/core/bt"
	"github.com/zeusync/guardai/internal/core/systems/physics"
)

//go:embed tree.yaml
var defaultTree []byte

// DefaultTree decodes the built-in guard tree.
func DefaultTree() (*bt.Definition, error) {
	return bt.LoadYAML(bytes.NewReader(defaultTree))
}

// DefaultTreeSource is the YAML the built-in tree is decoded from.
func DefaultTreeSource() []byte {
	return append([]byte(nil), defaultTree...)
}

// NewRegistry registers every guard leaf under the name tree definitions
// use for it.
func NewRegistry() *bt.Registry[*Guard] {
	reg := bt.NewRegistry[*Guard]()
	stateless := map[string]Node{
		"detect":                     Detect{},
		"check_range":                CheckRange{},
		"check_attack_cooldown":      CheckAttackCooldown{},
		"check_following":            CheckFollowing{},
		"check_curious":              CheckCurious{},
		"has_melee_weapon":           HasMeleeWeapon{},
		"attack":                     Attack{},
		"pursue_target":              PursueTarget(),
		"update_last_known_position": UpdateLastKnownPosition{},
		"decrement_follow_counter":   DecrementFollowCounter{},
		"set_curious":                SetCurious{},
		"clear_curious":              ClearCurious{},
		"unimplemented":              bt.Unimplemented[*Guard]{},
	}
	for name, node := range stateless {
		reg.RegisterLeaf(name, func(bt.Params) (Node, error) { return node, nil })
	}

	reg.RegisterLeaf("look_around", func(bt.Params) (Node, error) {
		return &LookAround{}, nil
	})
	reg.RegisterLeaf("move_to", func(p bt.Params) (Node, error) {
		x, err := p.Float("x", 0)
		if err != nil {
			return nil, err
		}
		y, err := p.Float("y", 0)
		if err != nil {
			return nil, err
		}
		z, err := p.Float("z", 0)
		if err != nil {
			return nil, err
		}
		return MoveTo(physics.V3(x, y, z)), nil
	})
	return reg
}
