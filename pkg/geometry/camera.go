package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ErrInvalidCamera is returned for camera configurations that cannot produce rays
var ErrInvalidCamera = errors.New("invalid camera configuration")

// CameraConfig contains the parameters of a thin-lens camera
type CameraConfig struct {
	Center        core.Vec3 `json:"look_from"`      // Camera position
	LookAt        core.Vec3 `json:"look_at"`        // Point the camera is looking at
	Up            core.Vec3 `json:"up"`             // Up direction hint
	VFov          float64   `json:"vfov"`           // Vertical field of view in degrees
	AspectRatio   float64   `json:"aspect_ratio"`   // Width / height
	Aperture      float64   `json:"aperture"`       // Lens diameter, 0 for a pinhole
	FocusDistance float64   `json:"focus_distance"` // 0 = distance from Center to LookAt
}

// Camera generates rays for rendering
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3
	lensRadius      float64
}

// DefaultCameraAspectRatio is the viewport width / height of NewDefaultCamera
const DefaultCameraAspectRatio = 2.0

// NewDefaultCamera creates the fixed pinhole camera at the origin looking down -Z
// with a 2:1 viewport.
func NewDefaultCamera() *Camera {
	return &Camera{
		origin:          core.NewVec3(0, 0, 0),
		lowerLeftCorner: core.NewVec3(-2, -1, -1),
		horizontal:      core.NewVec3(4, 0, 0),
		vertical:        core.NewVec3(0, 2, 0),
		u:               core.NewVec3(1, 0, 0),
		v:               core.NewVec3(0, 1, 0),
		w:               core.NewVec3(0, 0, 1),
		lensRadius:      0,
	}
}

// Validate checks that the configuration describes a usable camera
func (c CameraConfig) Validate() error {
	if c.VFov <= 0 || c.VFov >= 180 {
		return fmt.Errorf("%w: vertical fov must be in (0, 180) degrees, got %g", ErrInvalidCamera, c.VFov)
	}
	if c.AspectRatio <= 0 || math.IsInf(c.AspectRatio, 0) || math.IsNaN(c.AspectRatio) {
		return fmt.Errorf("%w: aspect ratio must be positive, got %g", ErrInvalidCamera, c.AspectRatio)
	}
	if c.Aperture < 0 {
		return fmt.Errorf("%w: aperture must not be negative, got %g", ErrInvalidCamera, c.Aperture)
	}
	if c.FocusDistance < 0 {
		return fmt.Errorf("%w: focus distance must not be negative, got %g", ErrInvalidCamera, c.FocusDistance)
	}
	if !c.Center.IsFinite() || !c.LookAt.IsFinite() || !c.Up.IsFinite() {
		return fmt.Errorf("%w: camera vectors must be finite", ErrInvalidCamera)
	}
	viewDir := c.Center.Subtract(c.LookAt)
	if viewDir.IsNearZero() {
		return fmt.Errorf("%w: look_from and look_at coincide at %v", ErrInvalidCamera, c.Center)
	}
	if c.Up.Cross(viewDir).IsNearZero() {
		return fmt.Errorf("%w: up vector %v is parallel to the view direction", ErrInvalidCamera, c.Up)
	}
	return nil
}

// NewCamera creates a thin-lens camera from the configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	focusDistance := config.FocusDistance
	if focusDistance == 0 {
		focusDistance = config.Center.Subtract(config.LookAt).Length()
	}

	theta := config.VFov * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := config.AspectRatio * halfHeight

	// Orthonormal camera basis
	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	origin := config.Center
	lowerLeftCorner := origin.
		Subtract(u.Multiply(halfWidth * focusDistance)).
		Subtract(v.Multiply(halfHeight * focusDistance)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      u.Multiply(2 * halfWidth * focusDistance),
		vertical:        v.Multiply(2 * halfHeight * focusDistance),
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
	}, nil
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1.
// With a non-zero aperture the ray origin is jittered across the lens.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	offset := core.NewVec3(0, 0, 0)
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
		offset = c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))
	}

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin).
		Subtract(offset)

	return core.NewRay(c.origin.Add(offset), direction)
}

// Origin returns the lens center
func (c *Camera) Origin() core.Vec3 {
	return c.origin
}

// AspectRatio returns the viewport width / height
func (c *Camera) AspectRatio() float64 {
	return c.horizontal.Length() / c.vertical.Length()
}

// LensRadius returns half the aperture
func (c *Camera) LensRadius() float64 {
	return c.lensRadius
}
