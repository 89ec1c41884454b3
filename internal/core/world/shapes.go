package world

import (
	"math"

	"github.com/zeusync/guardai/internal/core/systems/physics"
)

// Shape is a static collider volume.
type Shape interface {
	// Intersect reports whether the ray origin + t*dir (dir normalized) meets
	// the shape for some t in [0, maxDist].
	Intersect(origin, dir physics.Vec3, maxDist float64) bool
	// OverlapsRect reports whether the shape covers any part of the XZ
	// rectangle [minX, maxX] x [minZ, maxZ].
	OverlapsRect(minX, minZ, maxX, maxZ float64) bool
}

// Box is an axis-aligned box.
type Box struct {
	Min, Max physics.Vec3
}

func (b Box) Intersect(origin, dir physics.Vec3, maxDist float64) bool {
	tmin, tmax := 0.0, maxDist
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	for i := range 3 {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return true
}

func (b Box) OverlapsRect(minX, minZ, maxX, maxZ float64) bool {
	return b.Min.X <= maxX && b.Max.X >= minX && b.Min.Z <= maxZ && b.Max.Z >= minZ
}

type Sphere struct {
	Center physics.Vec3
	Radius float64
}

func (s Sphere) Intersect(origin, dir physics.Vec3, maxDist float64) bool {
	m := origin.Sub(s.Center)
	b := m.Dot(dir)
	c := m.Dot(m) - s.Radius*s.Radius
	if c <= 0 {
		return true // origin inside
	}
	if b > 0 {
		return false
	}
	disc := b*b - c
	if disc < 0 {
		return false
	}
	return -b-math.Sqrt(disc) <= maxDist
}

func (s Sphere) OverlapsRect(minX, minZ, maxX, maxZ float64) bool {
	dx := s.Center.X - math.Max(minX, math.Min(s.Center.X, maxX))
	dz := s.Center.Z - math.Max(minZ, math.Min(s.Center.Z, maxZ))
	return dx*dx+dz*dz <= s.Radius*s.Radius
}
