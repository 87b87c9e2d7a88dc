package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// Scatter implements the Material interface for dielectric scattering.
// Dielectrics never absorb: the ray is either refracted or reflected.
func (d *Dielectric) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	// Clear glass does not tint
	attenuation := core.NewVec3(1.0, 1.0, 1.0)

	var outwardNormal core.Vec3
	var niOverNt, cosine float64

	directionDotNormal := rayIn.Direction.Dot(hit.Normal)
	if directionDotNormal > 0 {
		// Ray travels along the outward normal: it is leaving the medium
		outwardNormal = hit.Normal.Negate()
		niOverNt = d.RefractiveIndex
		cosine = d.RefractiveIndex * directionDotNormal / rayIn.Direction.Length()
	} else {
		// Ray is entering the medium from outside
		outwardNormal = hit.Normal
		niOverNt = 1.0 / d.RefractiveIndex
		cosine = -directionDotNormal / rayIn.Direction.Length()
	}

	direction := reflect(rayIn.Direction, hit.Normal)
	if refracted, ok := refract(rayIn.Direction, outwardNormal, niOverNt); ok {
		// Probabilistic Fresnel split between the reflected and refracted ray
		if sampler.Get1D() > Schlick(cosine, d.RefractiveIndex) {
			direction = refracted
		}
	}

	return core.ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: attenuation,
	}, true
}
