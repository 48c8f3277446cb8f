package lighting

import (
	"github.com/meridianmaps/meridian/internal/engine/shader"
	pmath "github.com/meridianmaps/meridian/pkg/math"
)

// DirectionalLight illuminates everything from a fixed direction, like
// the sun.
type DirectionalLight struct {
	name string

	// Direction points toward the light.
	Direction pmath.Vec3
	Ambient   pmath.Vec3
	Diffuse   pmath.Vec3
}

// NewDirectionalLight returns a white light shining from the given
// direction.
func NewDirectionalLight(name string, direction pmath.Vec3) *DirectionalLight {
	return &DirectionalLight{
		name:      name,
		Direction: direction.Normalize(),
		Ambient:   pmath.Vec3{X: 0.3, Y: 0.3, Z: 0.3},
		Diffuse:   pmath.Vec3{X: 0.7, Y: 0.7, Z: 0.7},
	}
}

// Name returns the instance name.
func (l *DirectionalLight) Name() string { return l.name }

// Apply writes the light uniforms at the given array index.
func (l *DirectionalLight) Apply(p *shader.Program, index int) {
	base := uniformBase(index)
	p.SetInt(base+".kind", kindDirectional)
	p.SetVec3(base+".direction", l.Direction.Normalize())
	p.SetVec3(base+".ambient", l.Ambient)
	p.SetVec3(base+".diffuse", l.Diffuse)
}
