package physics

import "math"

const epsilon = 1e-9

// Vec3 is a plain 3D vector value.
type Vec3 struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
	Z float64 `json:"z" yaml:"z" mapstructure:"z"`
}

var (
	Zero    = Vec3{}
	Forward = Vec3{Z: 1}
	Up      = Vec3{Y: 1}
)

func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3         { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3         { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3    { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64      { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Length() float64         { return math.Sqrt(v.Dot(v)) }
func (v Vec3) Distance(o Vec3) float64 { return o.Sub(v).Length() }

// Flat drops the vertical component.
func (v Vec3) Flat() Vec3 { return Vec3{X: v.X, Z: v.Z} }

// Normalized returns the unit vector, or Zero for a degenerate input.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l < epsilon {
		return Zero
	}
	return v.Scale(1 / l)
}

// IsZero reports whether v is (numerically) the zero vector.
func (v Vec3) IsZero() bool { return v.Length() < epsilon }

// AngleDeg returns the unsigned angle between a and b in degrees, in [0, 180].
// A degenerate operand yields 0.
func AngleDeg(a, b Vec3) float64 {
	den := a.Length() * b.Length()
	if den < epsilon {
		return 0
	}
	c := a.Dot(b) / den
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c) * 180 / math.Pi
}

// DirFromYaw converts a heading in degrees into a horizontal unit direction.
func DirFromYaw(deg float64) Vec3 {
	r := deg * math.Pi / 180
	return Vec3{X: math.Sin(r), Z: math.Cos(r)}
}

// Yaw returns the heading in degrees of the horizontal part of v.
func Yaw(v Vec3) float64 {
	return math.Atan2(v.X, v.Z) * 180 / math.Pi
}

// MoveTowards steps from a to b by at most maxStep.
func MoveTowards(a, b Vec3, maxStep float64) Vec3 {
	d := b.Sub(a)
	l := d.Length()
	if l <= maxStep || l < epsilon {
		return b
	}
	return a.Add(d.Scale(maxStep / l))
}
