package integrator

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along ray
	RayColor(ray core.Ray, world core.Hittable, sampler core.Sampler) core.Vec3
}

// GradientBackground is the sky seen by rays that escape the scene.
// It is the only light source.
type GradientBackground struct {
	Top    core.Vec3 `json:"top"`    // Color straight up
	Bottom core.Vec3 `json:"bottom"` // Color straight down
}

// DefaultBackground returns the white to sky-blue gradient
func DefaultBackground() GradientBackground {
	return GradientBackground{
		Top:    core.NewVec3(0.5, 0.7, 1.0),
		Bottom: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// Evaluate returns the background color for a ray direction
func (g GradientBackground) Evaluate(ray core.Ray) core.Vec3 {
	unitDirection := ray.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-t)*bottom + t*top
	return g.Bottom.Multiply(1.0 - t).Add(g.Top.Multiply(t))
}
