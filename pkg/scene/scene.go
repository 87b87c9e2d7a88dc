package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Camera         core.Camera
	CameraConfig   *geometry.CameraConfig // nil for the fixed default camera
	World          *geometry.HittableList // Objects in the scene
	Background     integrator.GradientBackground
	SamplingConfig renderer.SamplingConfig // Suggested image size and sample count
}

// newScene creates an empty scene with the default camera, sky and sampling settings
func newScene(name string) *Scene {
	return &Scene{
		Name:           name,
		Camera:         geometry.NewDefaultCamera(),
		World:          geometry.NewHittableList(),
		Background:     integrator.DefaultBackground(),
		SamplingConfig: renderer.DefaultSamplingConfig(),
	}
}

// GetCamera implements renderer.Scene
func (s *Scene) GetCamera() core.Camera { return s.Camera }

// GetWorld implements renderer.Scene
func (s *Scene) GetWorld() core.Hittable { return s.World }

// GetBackground implements renderer.Scene
func (s *Scene) GetBackground() integrator.GradientBackground { return s.Background }

// AddSphere adds a sphere to the scene
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat core.Material) {
	s.World.Add(geometry.NewSphere(center, radius, mat))
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// SetCamera replaces the camera with a configured thin-lens camera
func (s *Scene) SetCamera(config geometry.CameraConfig) error {
	camera, err := geometry.NewCamera(config)
	if err != nil {
		return err
	}
	s.Camera = camera
	s.CameraConfig = &config
	return nil
}

// FitImage resolves the image size for optional width and height overrides and keeps
// the camera's pixels square. With no override the scene's suggested size is returned.
// A zero dimension is derived from the other one and the camera's aspect ratio.
// A configured camera is rebuilt for the new aspect ratio; the fixed default camera
// cannot change shape, so it only accepts 2:1 sizes.
func (s *Scene) FitImage(width, height int) (int, int, error) {
	if width < 0 || height < 0 {
		return 0, 0, fmt.Errorf("%w: image size must be positive, got %dx%d", renderer.ErrInvalidConfig, width, height)
	}
	if width == 0 && height == 0 {
		return s.SamplingConfig.Width, s.SamplingConfig.Height, nil
	}

	aspect := geometry.DefaultCameraAspectRatio
	if s.CameraConfig != nil {
		aspect = s.CameraConfig.AspectRatio
	}
	if height == 0 {
		height = max(1, int(math.Round(float64(width)/aspect)))
	}
	if width == 0 {
		width = max(1, int(math.Round(float64(height)*aspect)))
	}

	if s.CameraConfig == nil {
		// Allow the rounding of an odd width or height
		if int(math.Round(float64(width)/aspect)) != height && int(math.Round(float64(height)*aspect)) != width {
			return 0, 0, fmt.Errorf("%w: the default camera renders 2:1 images, got %dx%d", renderer.ErrInvalidConfig, width, height)
		}
		return width, height, nil
	}

	config := *s.CameraConfig
	config.AspectRatio = float64(width) / float64(height)
	if err := s.SetCamera(config); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}
