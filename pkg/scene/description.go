package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/material"
)

// ErrInvalidDescription is returned for scene descriptions that cannot be built
var ErrInvalidDescription = errors.New("invalid scene description")

// Description is the JSON form of a scene
type Description struct {
	Name            string                         `json:"name,omitempty"`
	Description     string                         `json:"description,omitempty"`
	Group           string                         `json:"group,omitempty"`
	Width           int                            `json:"width,omitempty"`
	Height          int                            `json:"height,omitempty"`
	SamplesPerPixel int                            `json:"samples_per_pixel,omitempty"`
	Camera          *geometry.CameraConfig         `json:"camera,omitempty"` // nil = fixed default camera
	Background      *integrator.GradientBackground `json:"background,omitempty"`
	Materials       map[string]MaterialDescription `json:"materials,omitempty"` // Named, shared materials
	Primitives      []PrimitiveDescription         `json:"primitives"`
}

// MaterialDescription describes one material. Fields that do not apply to the kind are ignored.
type MaterialDescription struct {
	Kind            string    `json:"kind"` // lambertian, metal or dielectric
	Albedo          core.Vec3 `json:"albedo"`
	Fuzz            float64   `json:"fuzz,omitempty"`
	RefractiveIndex float64   `json:"refractive_index,omitempty"`
}

// PrimitiveDescription describes one shape with either an inline material or a reference
// to a named one.
type PrimitiveDescription struct {
	Shape       string               `json:"shape"`
	Center      core.Vec3            `json:"center"`
	Radius      float64              `json:"radius"`
	Material    *MaterialDescription `json:"material,omitempty"`
	MaterialRef string               `json:"material_ref,omitempty"`
}

// ParseDescription decodes a JSON scene description. Unknown fields are rejected.
func ParseDescription(r io.Reader) (*Description, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var desc Description
	if err := decoder.Decode(&desc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescription, err)
	}
	return &desc, nil
}

// LoadFile reads and builds a JSON scene description
func LoadFile(path string) (*Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	desc, err := ParseDescription(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if desc.Name == "" {
		desc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	s, err := desc.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks the description without building it
func (d *Description) Validate() error {
	if d.Width < 0 || d.Height < 0 || d.SamplesPerPixel < 0 {
		return fmt.Errorf("%w: width, height and samples_per_pixel must not be negative", ErrInvalidDescription)
	}
	for name, m := range d.Materials {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("material %q: %w", name, err)
		}
	}
	for i, p := range d.Primitives {
		if err := d.validatePrimitive(p); err != nil {
			return fmt.Errorf("primitive %d: %w", i, err)
		}
	}
	if d.Background != nil && (!d.Background.Top.IsFinite() || !d.Background.Bottom.IsFinite()) {
		return fmt.Errorf("%w: background colors must be finite", ErrInvalidDescription)
	}
	if d.Camera != nil {
		if err := d.cameraConfig().Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDescription, err)
		}
	}
	return nil
}

func (d *Description) validatePrimitive(p PrimitiveDescription) error {
	if p.Shape != "sphere" {
		return fmt.Errorf("%w: unknown shape %q", ErrInvalidDescription, p.Shape)
	}
	if !p.Center.IsFinite() {
		return fmt.Errorf("%w: center %v is not finite", ErrInvalidDescription, p.Center)
	}
	if !(p.Radius > 0) || math.IsInf(p.Radius, 0) {
		return fmt.Errorf("%w: radius must be positive, got %g", ErrInvalidDescription, p.Radius)
	}

	switch {
	case p.Material != nil && p.MaterialRef != "":
		return fmt.Errorf("%w: material and material_ref are mutually exclusive", ErrInvalidDescription)
	case p.Material != nil:
		return p.Material.Validate()
	case p.MaterialRef != "":
		if _, ok := d.Materials[p.MaterialRef]; !ok {
			return fmt.Errorf("%w: unknown material_ref %q", ErrInvalidDescription, p.MaterialRef)
		}
		return nil
	default:
		return fmt.Errorf("%w: primitive has no material", ErrInvalidDescription)
	}
}

// Validate checks that the material can be built
func (m MaterialDescription) Validate() error {
	switch m.Kind {
	case "lambertian", "metal":
		if !m.Albedo.IsFinite() {
			return fmt.Errorf("%w: albedo %v is not finite", ErrInvalidDescription, m.Albedo)
		}
	case "dielectric":
		if !(m.RefractiveIndex > 0) || math.IsInf(m.RefractiveIndex, 0) {
			return fmt.Errorf("%w: refractive index must be positive, got %g", ErrInvalidDescription, m.RefractiveIndex)
		}
	default:
		return fmt.Errorf("%w: unknown material kind %q", ErrInvalidDescription, m.Kind)
	}
	return nil
}

// Build creates the material. Metal fuzz is clamped to [0, 1].
func (m MaterialDescription) Build() (core.Material, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	switch m.Kind {
	case "lambertian":
		return material.NewLambertian(m.Albedo), nil
	case "metal":
		return material.NewMetal(m.Albedo, m.Fuzz), nil
	default:
		return material.NewDielectric(m.RefractiveIndex), nil
	}
}

// cameraConfig fills in the optional camera fields
func (d *Description) cameraConfig() geometry.CameraConfig {
	config := *d.Camera
	if config.Up.IsNearZero() {
		config.Up = core.NewVec3(0, 1, 0)
	}
	if config.AspectRatio == 0 && d.Width > 0 && d.Height > 0 {
		config.AspectRatio = float64(d.Width) / float64(d.Height)
	}
	return config
}

// Build validates the description and creates the scene.
// Primitives referring to the same named material share one instance.
func (d *Description) Build() (*Scene, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	s := newScene(d.Name)
	if d.Width > 0 {
		s.SamplingConfig.Width = d.Width
	}
	if d.Height > 0 {
		s.SamplingConfig.Height = d.Height
	}
	if d.SamplesPerPixel > 0 {
		s.SamplingConfig.SamplesPerPixel = d.SamplesPerPixel
	}
	if d.Background != nil {
		s.Background = *d.Background
	}
	if d.Camera != nil {
		if err := s.SetCamera(d.cameraConfig()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDescription, err)
		}
	}

	named := make(map[string]core.Material, len(d.Materials))
	for name, m := range d.Materials {
		mat, err := m.Build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		named[name] = mat
	}

	for i, p := range d.Primitives {
		mat := named[p.MaterialRef]
		if p.Material != nil {
			var err error
			if mat, err = p.Material.Build(); err != nil {
				return nil, fmt.Errorf("primitive %d: %w", i, err)
			}
		}
		s.AddSphere(p.Center, p.Radius, mat)
	}

	return s, nil
}
