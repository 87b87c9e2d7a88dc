package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat core.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = [3]float64{m.Albedo.X, m.Albedo.Y, m.Albedo.Z}
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = [3]float64{m.Albedo.X, m.Albedo.Y, m.Albedo.Z}
		properties["color"] = hexColor(m.Albedo)
		properties["fuzzness"] = m.Fuzzness
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

// hexColor formats a [0,1] color as #rrggbb
func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// InspectResult contains information about the object hit by an inspection ray
type InspectResult struct {
	Hit       bool
	HitRecord *core.HitRecord
	Ray       core.Ray
	Sphere    *geometry.Sphere // The sphere that was hit, if it could be identified
}

// inspectPixel casts a ray through the center of pixel (pixelX, pixelY), row 0 at the top,
// and returns the nearest object hit
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) InspectResult {
	u := (float64(pixelX) + 0.5) / float64(width)
	v := (float64(height-1-pixelY) + 0.5) / float64(height)

	// Seeded sampler so lens jitter is the same on every request
	ray := sceneObj.Camera.GetRay(u, v, core.NewSeededSampler(0))

	hit, isHit := sceneObj.World.Hit(ray, integrator.ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return InspectResult{Hit: false, Ray: ray}
	}

	// The list does not say which object produced the hit, so find the sphere with the same distance
	for _, obj := range sceneObj.World.Objects {
		sphere, ok := obj.(*geometry.Sphere)
		if !ok {
			continue
		}
		if sphereHit, sphereIsHit := sphere.Hit(ray, integrator.ShadowAcneEpsilon, hit.T+integrator.ShadowAcneEpsilon); sphereIsHit && sphereHit.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, Ray: ray, Sphere: sphere}
		}
	}

	return InspectResult{Hit: true, HitRecord: hit, Ray: ray}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(sphere *geometry.Sphere) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	if sphere == nil {
		return "unknown", properties
	}
	properties["center"] = [3]float64{sphere.Center.X, sphere.Center.Y, sphere.Center.Z}
	properties["radius"] = sphere.Radius
	return "sphere", properties
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	sceneObj, sampling, err := s.setupRender(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// Parse pixel coordinates
	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}
	if pixelX < 0 || pixelX >= sampling.Width || pixelY < 0 || pixelY >= sampling.Height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	result := inspectPixel(sceneObj, sampling.Width, sampling.Height, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := extractMaterialInfo(result.HitRecord.Material)
	geometryType, geometryProps := extractGeometryInfo(result.Sphere)

	hit := result.HitRecord
	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        [3]float64{hit.Point.X, hit.Point.Y, hit.Point.Z},
		Normal:       [3]float64{hit.Normal.X, hit.Normal.Y, hit.Normal.Z},
		Distance:     hit.T,
		FrontFace:    result.Ray.Direction.Dot(hit.Normal) < 0,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
