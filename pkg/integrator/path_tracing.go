package integrator

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

const (
	// DefaultMaxDepth bounds the number of bounces traced per camera sample
	DefaultMaxDepth = 50

	// ShadowAcneEpsilon is the minimum hit distance; it keeps scattered rays
	// from re-hitting the surface they start on.
	ShadowAcneEpsilon = 0.001
)

// PathTracingIntegrator implements unidirectional path tracing without
// Russian roulette: paths end on absorption, escape, or the depth bound.
type PathTracingIntegrator struct {
	MaxDepth   int
	Background GradientBackground
}

// NewPathTracingIntegrator creates a new path tracing integrator.
// A non-positive maxDepth falls back to DefaultMaxDepth.
func NewPathTracingIntegrator(maxDepth int, background GradientBackground) *PathTracingIntegrator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &PathTracingIntegrator{
		MaxDepth:   maxDepth,
		Background: background,
	}
}

// RayColor computes the color for a single camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world core.Hittable, sampler core.Sampler) core.Vec3 {
	return pt.rayColor(ray, world, sampler, 0)
}

// rayColor is the recursive radiance estimate at the given bounce depth
func (pt *PathTracingIntegrator) rayColor(ray core.Ray, world core.Hittable, sampler core.Sampler, depth int) core.Vec3 {
	hit, isHit := world.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return pt.Background.Evaluate(ray)
	}

	// A ray that escapes at the bound still sees the sky; one that hits a surface there is black.
	// Diffuse and dielectric surfaces never absorb, so this is what ends the recursion.
	if depth >= pt.MaxDepth {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	return scatter.Attenuation.MultiplyVec(pt.rayColor(scatter.Scattered, world, sampler, depth+1))
}
