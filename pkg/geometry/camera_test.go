package geometry

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestDefaultCamera_GetRay(t *testing.T) {
	camera := NewDefaultCamera()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	tests := []struct {
		name      string
		s, t      float64
		direction core.Vec3
	}{
		{"lower left", 0, 0, core.NewVec3(-2, -1, -1)},
		{"center", 0.5, 0.5, core.NewVec3(0, 0, -1)},
		{"upper right", 1, 1, core.NewVec3(2, 1, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.GetRay(tt.s, tt.t, sampler)
			if !ray.Origin.Equals(core.NewVec3(0, 0, 0)) {
				t.Errorf("Pinhole camera origin should be fixed, got %v", ray.Origin)
			}
			if !ray.Direction.Equals(tt.direction) {
				t.Errorf("Expected direction %v, got %v", tt.direction, ray.Direction)
			}
		})
	}
}

func TestNewCamera_Basis(t *testing.T) {
	camera, err := NewCamera(CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 2,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// vfov 90 => half height 1, aspect 2 => half width 2, focus distance auto = 1:
	// identical to the default camera.
	def := NewDefaultCamera()
	const tolerance = 1e-12
	checks := []struct {
		name     string
		got, exp core.Vec3
	}{
		{"lower left", camera.lowerLeftCorner, def.lowerLeftCorner},
		{"horizontal", camera.horizontal, def.horizontal},
		{"vertical", camera.vertical, def.vertical},
		{"u", camera.u, def.u},
		{"v", camera.v, def.v},
		{"w", camera.w, def.w},
	}
	for _, c := range checks {
		if c.got.Subtract(c.exp).Length() > tolerance {
			t.Errorf("%s: expected %v, got %v", c.name, c.exp, c.got)
		}
	}
	if def.AspectRatio() != DefaultCameraAspectRatio || math.Abs(camera.AspectRatio()-2) > tolerance {
		t.Errorf("Expected 2:1 viewports, got %f and %f", def.AspectRatio(), camera.AspectRatio())
	}
}

func TestNewCamera_FocusPlaneIsSharp(t *testing.T) {
	config := CameraConfig{
		Center:        core.NewVec3(3, 3, 2),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20,
		AspectRatio:   2,
		Aperture:      2.0,
		FocusDistance: 0,
	}
	camera, err := NewCamera(config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if camera.LensRadius() != 1.0 {
		t.Errorf("Expected lens radius 1, got %f", camera.LensRadius())
	}
	if !camera.Origin().Equals(config.Center) {
		t.Errorf("Expected origin %v, got %v", config.Center, camera.Origin())
	}

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	focusDistance := config.Center.Subtract(config.LookAt).Length()

	// Every ray through the image center converges on LookAt regardless of lens offset
	offsetSeen := false
	for i := 0; i < 100; i++ {
		ray := camera.GetRay(0.5, 0.5, sampler)
		if !ray.Origin.Equals(config.Center) {
			offsetSeen = true
		}
		if ray.Origin.Subtract(config.Center).Length() > camera.LensRadius()+1e-9 {
			t.Fatalf("Ray origin %v outside the lens", ray.Origin)
		}
		target := ray.At(1)
		if target.Subtract(config.LookAt).Length() > 1e-9*focusDistance*10 {
			t.Fatalf("Ray should pass through look-at point, got %v", target)
		}
	}
	if !offsetSeen {
		t.Error("Expected lens sampling to offset some ray origins")
	}
}

func TestNewCamera_Validation(t *testing.T) {
	valid := CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 2,
	}

	tests := []struct {
		name   string
		modify func(*CameraConfig)
	}{
		{"zero fov", func(c *CameraConfig) { c.VFov = 0 }},
		{"fov 180", func(c *CameraConfig) { c.VFov = 180 }},
		{"zero aspect", func(c *CameraConfig) { c.AspectRatio = 0 }},
		{"negative aperture", func(c *CameraConfig) { c.Aperture = -1 }},
		{"negative focus", func(c *CameraConfig) { c.FocusDistance = -1 }},
		{"coincident look_at", func(c *CameraConfig) { c.LookAt = c.Center }},
		{"up parallel to view", func(c *CameraConfig) { c.Up = core.NewVec3(0, 0, 1) }},
		{"NaN position", func(c *CameraConfig) { c.Center = core.NewVec3(math.NaN(), 0, 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.modify(&config)
			camera, err := NewCamera(config)
			if !errors.Is(err, ErrInvalidCamera) {
				t.Errorf("Expected ErrInvalidCamera, got %v", err)
			}
			if camera != nil {
				t.Error("Expected nil camera on error")
			}
		})
	}
}
