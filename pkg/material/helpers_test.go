package material

import (
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

// constantSampler returns the same value for every dimension.
// 0.5 maps to the center of the unit sphere/disk, keeping rejection loops finite.
type constantSampler struct {
	value float64
}

func (c constantSampler) Get1D() float64 { return c.value }
func (c constantSampler) Get2D() core.Vec2 {
	return core.NewVec2(c.value, c.value)
}
func (c constantSampler) Get3D() core.Vec3 {
	return core.NewVec3(c.value, c.value, c.value)
}

// forbiddenSampler fails the test if any randomness is drawn
type forbiddenSampler struct {
	t *testing.T
}

func (f forbiddenSampler) Get1D() float64 {
	f.t.Fatal("unexpected random draw")
	return 0
}
func (f forbiddenSampler) Get2D() core.Vec2 {
	f.t.Fatal("unexpected random draw")
	return core.Vec2{}
}
func (f forbiddenSampler) Get3D() core.Vec3 {
	f.t.Fatal("unexpected random draw")
	return core.Vec3{}
}
