package scene

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

func TestNewDefaultScene(t *testing.T) {
	s := NewDefaultScene()

	if s.GetPrimitiveCount() != 2 {
		t.Errorf("Expected 2 spheres, got %d", s.GetPrimitiveCount())
	}
	config := s.SamplingConfig
	if config.Width != 200 || config.Height != 100 || config.SamplesPerPixel != 100 {
		t.Errorf("Expected 200x100 at 100 spp, got %dx%d at %d", config.Width, config.Height, config.SamplesPerPixel)
	}
	if s.CameraConfig != nil {
		t.Error("Expected the fixed default camera")
	}

	// The center ray hits the small sphere head on
	ray := s.GetCamera().GetRay(0.5, 0.5, core.NewSeededSampler(1))
	hit, ok := s.GetWorld().Hit(ray, 0.001, 1e9)
	if !ok || hit.T < 0.5-1e-9 || hit.T > 0.5+1e-9 {
		t.Errorf("Expected center ray to hit at t=0.5, got %v (hit=%v)", hit, ok)
	}
}

func TestNewMaterialsScene(t *testing.T) {
	s, err := NewMaterialsScene()
	if err != nil {
		t.Fatalf("NewMaterialsScene failed: %v", err)
	}
	if s.GetPrimitiveCount() != 4 {
		t.Errorf("Expected 4 spheres, got %d", s.GetPrimitiveCount())
	}

	override := DefaultMaterialsCamera()
	override.VFov = 90
	s, err = NewMaterialsScene(override)
	if err != nil {
		t.Fatalf("NewMaterialsScene with override failed: %v", err)
	}
	if s.CameraConfig.VFov != 90 {
		t.Errorf("Expected camera override to apply, got vfov %f", s.CameraConfig.VFov)
	}

	override.LookAt = override.Center
	if _, err := NewMaterialsScene(override); !errors.Is(err, geometry.ErrInvalidCamera) {
		t.Errorf("Expected ErrInvalidCamera, got %v", err)
	}
}

func TestNewRandomScene(t *testing.T) {
	a, err := NewRandomScene(7)
	if err != nil {
		t.Fatalf("NewRandomScene failed: %v", err)
	}
	b, err := NewRandomScene(7)
	if err != nil {
		t.Fatalf("NewRandomScene failed: %v", err)
	}

	if a.GetPrimitiveCount() != b.GetPrimitiveCount() {
		t.Fatalf("Same seed produced %d and %d spheres", a.GetPrimitiveCount(), b.GetPrimitiveCount())
	}
	// Ground, up to 22*22 small spheres and three large ones
	if n := a.GetPrimitiveCount(); n < 400 || n > 1+22*22+3 {
		t.Errorf("Unexpected sphere count %d", n)
	}

	clearing := core.NewVec3(4, 0.2, 0)
	for i, obj := range a.World.Objects {
		sa := obj.(*geometry.Sphere)
		sb := b.World.Objects[i].(*geometry.Sphere)
		if !sa.Center.Equals(sb.Center) || sa.Radius != sb.Radius {
			t.Fatalf("Sphere %d differs between identical seeds", i)
		}
		if sa.Radius == 0.2 && sa.Center.Subtract(clearing).Length() <= 0.9 {
			t.Errorf("Small sphere %d at %v intrudes on the clearing", i, sa.Center)
		}
	}

	if a.CameraConfig == nil || a.CameraConfig.Aperture != 0.1 {
		t.Error("Expected a thin-lens camera with aperture 0.1")
	}
}

func TestOklchToRGB_InRange(t *testing.T) {
	for h := 0.0; h < 360; h += 15 {
		c := oklchToRGB(0.7, 0.15, h)
		if c.X < 0 || c.X > 1 || c.Y < 0 || c.Y > 1 || c.Z < 0 || c.Z > 1 {
			t.Errorf("Hue %f produced out of range color %v", h, c)
		}
	}
}

func TestScene_RendersThroughRenderer(t *testing.T) {
	s := NewDefaultScene()
	config := s.SamplingConfig
	config.Width, config.Height, config.SamplesPerPixel = 16, 8, 2
	config.Seed = 3

	rt, err := renderer.NewRaytracer(s, config)
	if err != nil {
		t.Fatalf("NewRaytracer failed: %v", err)
	}
	pixels, stats, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(pixels) != 16*8 || stats.TotalSamples != 16*8*2 {
		t.Errorf("Expected 128 pixels and 256 samples, got %d and %d", len(pixels), stats.TotalSamples)
	}

	// Top corners see open sky, which is never black
	if pixels[0] == (renderer.RGB{}) {
		t.Error("Expected sky in the top-left corner")
	}
}

func TestScene_FitImage(t *testing.T) {
	tests := []struct {
		name           string
		newScene       func() (*Scene, error)
		width, height  int
		expectedWidth  int
		expectedHeight int
		expectError    bool
	}{
		{"default scene keeps its size", func() (*Scene, error) { return NewDefaultScene(), nil }, 0, 0, 200, 100, false},
		{"default scene derives height", func() (*Scene, error) { return NewDefaultScene(), nil }, 400, 0, 400, 200, false},
		{"default scene derives width", func() (*Scene, error) { return NewDefaultScene(), nil }, 0, 50, 100, 50, false},
		{"default scene rounds odd width", func() (*Scene, error) { return NewDefaultScene(), nil }, 401, 0, 401, 201, false},
		{"default scene rejects 4:1", func() (*Scene, error) { return NewDefaultScene(), nil }, 400, 100, 0, 0, true},
		{"negative width", func() (*Scene, error) { return NewDefaultScene(), nil }, -1, 0, 0, 0, true},
		{"materials derives height", func() (*Scene, error) { return NewMaterialsScene() }, 300, 0, 300, 150, false},
		{"materials square", func() (*Scene, error) { return NewMaterialsScene() }, 64, 64, 64, 64, false},
		{"random portrait", func() (*Scene, error) { return NewRandomScene(1) }, 100, 300, 100, 300, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.newScene()
			if err != nil {
				t.Fatalf("Scene construction failed: %v", err)
			}

			width, height, err := s.FitImage(tt.width, tt.height)
			if tt.expectError {
				if !errors.Is(err, renderer.ErrInvalidConfig) {
					t.Errorf("Expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FitImage failed: %v", err)
			}
			if width != tt.expectedWidth || height != tt.expectedHeight {
				t.Errorf("Expected %dx%d, got %dx%d", tt.expectedWidth, tt.expectedHeight, width, height)
			}

			// Square pixels: the camera viewport has the image's shape
			camera, ok := s.GetCamera().(*geometry.Camera)
			if !ok {
				t.Fatalf("Unexpected camera type %T", s.GetCamera())
			}
			imageAspect := float64(width) / float64(height)
			if math.Abs(camera.AspectRatio()-imageAspect) > 2.0/float64(height) {
				t.Errorf("Camera aspect %f does not match image aspect %f", camera.AspectRatio(), imageAspect)
			}
		})
	}
}
