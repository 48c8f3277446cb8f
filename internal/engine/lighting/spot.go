package lighting

import (
	"math"

	"github.com/meridianmaps/meridian/internal/engine/shader"
	pmath "github.com/meridianmaps/meridian/pkg/math"
)

// SpotLight is a point light constrained to a cone.
type SpotLight struct {
	name string

	Position  pmath.Vec3
	Direction pmath.Vec3
	Ambient   pmath.Vec3
	Diffuse   pmath.Vec3
	Radius    float32

	// CutoffDeg is the half-angle of the cone in degrees.
	CutoffDeg float32
}

// NewSpotLight returns a white spot light aimed along direction.
func NewSpotLight(name string, position, direction pmath.Vec3, cutoffDeg float32) *SpotLight {
	return &SpotLight{
		name:      name,
		Position:  position,
		Direction: direction.Normalize(),
		Ambient:   pmath.Vec3{},
		Diffuse:   pmath.Vec3{X: 0.9, Y: 0.9, Z: 0.9},
		Radius:    500,
		CutoffDeg: cutoffDeg,
	}
}

// Name returns the instance name.
func (l *SpotLight) Name() string { return l.name }

// Apply writes the light uniforms at the given array index.
func (l *SpotLight) Apply(p *shader.Program, index int) {
	base := uniformBase(index)
	p.SetInt(base+".kind", kindSpot)
	p.SetVec3(base+".position", l.Position)
	p.SetVec3(base+".direction", l.Direction.Normalize())
	p.SetVec3(base+".ambient", l.Ambient)
	p.SetVec3(base+".diffuse", l.Diffuse)
	p.SetFloat(base+".radius", l.Radius)
	p.SetFloat(base+".cosCutoff", float32(math.Cos(float64(l.CutoffDeg)*math.Pi/180)))
}
