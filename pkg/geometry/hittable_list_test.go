package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

func TestHittableList_Empty(t *testing.T) {
	list := NewHittableList()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if _, isHit := list.Hit(ray, 0.001, math.Inf(1)); isHit {
		t.Error("Empty list should never report a hit")
	}
}

func TestHittableList_ReturnsNearest(t *testing.T) {
	near := material.NewLambertian(core.NewVec3(1, 0, 0))
	far := material.NewLambertian(core.NewVec3(0, 0, 1))

	nearSphere := NewSphere(core.NewVec3(0, 0, -2), 1.0, near)
	farSphere := NewSphere(core.NewVec3(0, 0, -3), 1.5, far) // overlaps nearSphere

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	// Insertion order must not change which sphere wins
	orders := map[string]*HittableList{
		"near first": NewHittableList(nearSphere, farSphere),
		"far first":  NewHittableList(farSphere, nearSphere),
	}

	for name, list := range orders {
		t.Run(name, func(t *testing.T) {
			hit, isHit := list.Hit(ray, 0.001, math.Inf(1))
			if !isHit {
				t.Fatal("Expected hit")
			}
			if hit.T != 1.0 {
				t.Errorf("Expected nearest t=1, got %f", hit.T)
			}
			if hit.Material != core.Material(near) {
				t.Error("Expected the nearer sphere's material")
			}
		})
	}
}

func TestHittableList_RespectsTMax(t *testing.T) {
	list := NewHittableList(NewSphere(core.NewVec3(0, 0, -10), 1.0, nil))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if _, isHit := list.Hit(ray, 0.001, 5); isHit {
		t.Error("Hit beyond tMax should be rejected")
	}
}

type countingHittable struct {
	calls []float64 // tMax seen on each call
	t     float64
}

func (c *countingHittable) Hit(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	c.calls = append(c.calls, tMax)
	if c.t > tMin && c.t < tMax {
		return &core.HitRecord{T: c.t}, true
	}
	return nil, false
}

func TestHittableList_NarrowsTMax(t *testing.T) {
	first := &countingHittable{t: 3}
	second := &countingHittable{t: 5}
	list := NewHittableList(first, second)

	hit, isHit := list.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)), 0.001, 100)
	if !isHit || hit.T != 3 {
		t.Fatalf("Expected hit at t=3, got %v (hit=%t)", hit, isHit)
	}
	if second.calls[0] != 3 {
		t.Errorf("Second object should be queried with tMax narrowed to 3, got %f", second.calls[0])
	}
	if list.Len() != 2 {
		t.Errorf("Expected 2 objects, got %d", list.Len())
	}
}
