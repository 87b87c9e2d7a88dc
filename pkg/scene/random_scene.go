package scene

import (
	"math"
	"math/rand"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewRandomScene creates a field of small random spheres around three large feature
// spheres. The same seed always produces the same layout.
func NewRandomScene(seed int64) (*Scene, error) {
	s := newScene("random")
	s.SamplingConfig.Width = 600
	s.SamplingConfig.Height = 300
	s.SamplingConfig.SamplesPerPixel = 50

	err := s.SetCamera(geometry.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20,
		AspectRatio:   2,
		Aperture:      0.1,
		FocusDistance: 10,
	})
	if err != nil {
		return nil, err
	}

	random := rand.New(rand.NewSource(seed))
	glass := material.NewDielectric(1.5)

	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	// Keep the small spheres clear of the large metal sphere
	clearing := core.NewVec3(4, 0.2, 0)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			center := core.NewVec3(float64(a)+0.9*random.Float64(), 0.2, float64(b)+0.9*random.Float64())
			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			var mat core.Material
			switch choose := random.Float64(); {
			case choose < 0.8:
				mat = material.NewLambertian(oklchToRGB(0.7, 0.15, random.Float64()*360))
			case choose < 0.95:
				albedo := core.NewVec3(
					0.5*(1+random.Float64()),
					0.5*(1+random.Float64()),
					0.5*(1+random.Float64()),
				)
				mat = material.NewMetal(albedo, 0.5*random.Float64())
			default:
				mat = glass
			}
			s.AddSphere(center, 0.2, mat)
		}
	}

	s.AddSphere(core.NewVec3(0, 1, 0), 1.0, glass)
	s.AddSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1)))
	s.AddSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0))

	return s, nil
}

// oklchToRGB converts OKLCH color values to linear RGB.
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}
