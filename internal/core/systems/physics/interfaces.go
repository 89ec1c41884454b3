package physics

// Lightweight physics abstractions shared by perception, navigation and the
// agents that consume them. Only the yaw axis is modelled for orientation:
// agents stand upright and turn around +Y.

// Layer is a collision category bitmask. A query mask matches a collider when
// the two share at least one bit.
type Layer uint32

const (
	LayerNone Layer = 0
	LayerAll  Layer = ^Layer(0)
)

// Has reports whether l shares any bit with mask.
func (l Layer) Has(mask Layer) bool { return l&mask != 0 }

// Transform provides spatial information for an upright body.
type Transform interface {
	Position() Vec3
	// Yaw is the heading in degrees, 0 facing +Z, increasing clockwise seen from above.
	Yaw() float64
}

// EntityID is a handle to a collider owned by the world. Zero is never
// assigned.
type EntityID uint64

const NoEntity EntityID = 0
