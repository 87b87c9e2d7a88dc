package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// reflect calculates the reflection of a vector v off a surface with normal n
func reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// refract bends v through a surface with normal n using Snell's law.
// It returns false on total internal reflection.
func refract(v, n core.Vec3, niOverNt float64) (core.Vec3, bool) {
	uv := v.Normalize()
	dt := uv.Dot(n)
	discriminant := 1.0 - niOverNt*niOverNt*(1-dt*dt)
	if discriminant <= 0 {
		return core.Vec3{}, false
	}
	refracted := uv.Subtract(n.Multiply(dt)).Multiply(niOverNt).
		Subtract(n.Multiply(math.Sqrt(discriminant)))
	return refracted, true
}

// Schlick calculates the Fresnel reflectance using Schlick's approximation
func Schlick(cosine, refractiveIndex float64) float64 {
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
