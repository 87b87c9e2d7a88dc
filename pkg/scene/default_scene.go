package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewDefaultScene creates the reference scene: one small diffuse sphere resting on
// a huge diffuse ground sphere, seen through the fixed default camera.
func NewDefaultScene() *Scene {
	s := newScene("default")
	s.SamplingConfig.Width = 200
	s.SamplingConfig.Height = 100
	s.SamplingConfig.SamplesPerPixel = 100

	// Both spheres halve the light at each bounce
	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, gray)
	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, gray)

	return s
}
