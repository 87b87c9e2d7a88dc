package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// DefaultMaterialsCamera frames the three material spheres from slightly above
func DefaultMaterialsCamera() geometry.CameraConfig {
	return geometry.CameraConfig{
		Center:        core.NewVec3(-2, 2, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          40,
		AspectRatio:   2,
		Aperture:      0,
		FocusDistance: 0, // Auto-calculate focus distance
	}
}

// NewMaterialsScene creates a row of diffuse, glass and metal spheres over a ground sphere.
// An optional camera configuration replaces the default framing.
func NewMaterialsScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	s := newScene("materials")
	s.SamplingConfig.Width = 400
	s.SamplingConfig.Height = 200

	cameraConfig := DefaultMaterialsCamera()
	if len(cameraOverrides) > 0 {
		cameraConfig = cameraOverrides[0]
	}
	if err := s.SetCamera(cameraConfig); err != nil {
		return nil, err
	}

	lambertianBlue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	lambertianGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	metalGold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)
	glass := material.NewDielectric(1.5)

	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, lambertianBlue)
	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, lambertianGround)
	s.AddSphere(core.NewVec3(1, 0, -1), 0.5, metalGold)
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.5, glass)

	return s, nil
}
