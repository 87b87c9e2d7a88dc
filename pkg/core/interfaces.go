package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	T        float64  // Parameter t along the ray
	Point    Vec3     // Point of intersection
	Normal   Vec3     // Outward unit normal, never flipped toward the ray
	Material Material // Material of the hit object, shared with the primitive
}

// Hittable is anything a ray can be intersected with
type Hittable interface {
	// Hit returns the nearest intersection with t strictly inside (tMin, tMax)
	Hit(ray Ray, tMin, tMax float64) (*HitRecord, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   Ray  // The outgoing ray
	Attenuation Vec3 // Color attenuation
}

// Material interface for surfaces that can scatter rays
type Material interface {
	// Scatter returns false when the incoming ray is absorbed
	Scatter(rayIn Ray, hit HitRecord, sampler Sampler) (ScatterResult, bool)
}

// Camera maps normalized image-plane coordinates to world-space rays
type Camera interface {
	GetRay(s, t float64, sampler Sampler) Ray
}
