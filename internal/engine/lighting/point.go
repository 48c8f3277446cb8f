package lighting

import (
	"github.com/meridianmaps/meridian/internal/engine/shader"
	pmath "github.com/meridianmaps/meridian/pkg/math"
)

// PointLight radiates from a position in eye space with a soft distance
// falloff.
type PointLight struct {
	name string

	// Position is in eye-relative meters, matching the vertex positions
	// the shaders see.
	Position pmath.Vec3
	Ambient  pmath.Vec3
	Diffuse  pmath.Vec3

	// Radius is the distance at which the light has faded to half.
	Radius float32
}

// NewPointLight returns a white point light at the given position.
func NewPointLight(name string, position pmath.Vec3, radius float32) *PointLight {
	return &PointLight{
		name:     name,
		Position: position,
		Ambient:  pmath.Vec3{},
		Diffuse:  pmath.Vec3{X: 0.8, Y: 0.8, Z: 0.8},
		Radius:   radius,
	}
}

// Name returns the instance name.
func (l *PointLight) Name() string { return l.name }

// Apply writes the light uniforms at the given array index.
func (l *PointLight) Apply(p *shader.Program, index int) {
	base := uniformBase(index)
	p.SetInt(base+".kind", kindPoint)
	p.SetVec3(base+".position", l.Position)
	p.SetVec3(base+".ambient", l.Ambient)
	p.SetVec3(base+".diffuse", l.Diffuse)
	p.SetFloat(base+".radius", l.Radius)
}
