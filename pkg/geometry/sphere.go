package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material core.Material
}

// NewSphere creates a new sphere. Radius is expected to be positive;
// scene descriptions validate it before calling.
func NewSphere(center core.Vec3, radius float64, material core.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic a*t² + 2b*t + c = 0 with the factor 2 folded into b
	a := ray.Direction.Dot(ray.Direction)
	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	// Tangent rays (discriminant == 0) count as misses
	discriminant := b*b - a*c
	if discriminant <= 0 {
		return nil, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Smaller root first so the nearest visible surface wins
	root := (-b - sqrtD) / a
	if root <= tMin || root >= tMax {
		root = (-b + sqrtD) / a
		if root <= tMin || root >= tMax {
			return nil, false
		}
	}

	point := ray.At(root)
	return &core.HitRecord{
		T:        root,
		Point:    point,
		Normal:   point.Subtract(s.Center).Divide(s.Radius),
		Material: s.Material,
	}, true
}
