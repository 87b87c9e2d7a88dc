package renderer

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/material"
)

// testScene is a minimal Scene implementation
type testScene struct {
	camera     core.Camera
	world      core.Hittable
	background integrator.GradientBackground
}

func (s *testScene) GetCamera() core.Camera                       { return s.camera }
func (s *testScene) GetWorld() core.Hittable                      { return s.world }
func (s *testScene) GetBackground() integrator.GradientBackground { return s.background }

// emptyScene has nothing in front of the camera, so every pixel shows the sky
func emptyScene() *testScene {
	return &testScene{
		camera:     geometry.NewDefaultCamera(),
		world:      geometry.NewHittableList(),
		background: integrator.DefaultBackground(),
	}
}

// sphereScene mixes diffuse, metal and glass so every sampling path is exercised
func sphereScene() *testScene {
	return &testScene{
		camera: geometry.NewDefaultCamera(),
		world: geometry.NewHittableList(
			geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))),
			geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)),
			geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, material.NewDielectric(1.5)),
			geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0))),
		),
		background: integrator.DefaultBackground(),
	}
}

// constantSampler returns the same value for every dimension
type constantSampler struct {
	value float64
}

func (c constantSampler) Get1D() float64   { return c.value }
func (c constantSampler) Get2D() core.Vec2 { return core.NewVec2(c.value, c.value) }
func (c constantSampler) Get3D() core.Vec3 { return core.NewVec3(c.value, c.value, c.value) }

// constantIntegrator returns a fixed color and counts its calls
type constantIntegrator struct {
	color core.Vec3
	calls int
}

func (c *constantIntegrator) RayColor(ray core.Ray, world core.Hittable, sampler core.Sampler) core.Vec3 {
	c.calls++
	return c.color
}

// recordingCamera records the image plane coordinates it is asked for
type recordingCamera struct {
	coords []core.Vec2
}

func (r *recordingCamera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	r.coords = append(r.coords, core.NewVec2(s, t))
	return core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))
}
