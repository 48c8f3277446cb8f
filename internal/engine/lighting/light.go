// Package lighting provides the light types the map shaders understand.
//
// Hosts construct concrete lights, hand them to the scene, and keep their
// own typed pointers for animation. Nothing here requires type assertions
// at render time.
package lighting

import (
	"fmt"
	"math"

	"github.com/meridianmaps/meridian/internal/engine/shader"
	pmath "github.com/meridianmaps/meridian/pkg/math"
)

// MaxLights is the light array size compiled into the shaders.
const MaxLights = 8

// Shader-side light kinds, mirrored by the GLSL light struct.
const (
	kindDirectional int32 = iota
	kindPoint
	kindSpot
)

// Light is one shader light. Apply writes the light's uniforms at the
// given index of the shader light array; the program must be bound.
type Light interface {
	Name() string
	Apply(p *shader.Program, index int)
}

func uniformBase(index int) string {
	return fmt.Sprintf("u_lights[%d]", index)
}

// DirectionFromAngles returns the unit vector pointing toward a light at
// the given horizontal azimuth (degrees clockwise from north) and
// elevation above the horizon. The frame is x east, y north, z up.
func DirectionFromAngles(azimuthDeg, elevationDeg float64) pmath.Vec3 {
	az := azimuthDeg * math.Pi / 180
	el := elevationDeg * math.Pi / 180
	return pmath.Vec3{
		X: float32(math.Cos(el) * math.Sin(az)),
		Y: float32(math.Cos(el) * math.Cos(az)),
		Z: float32(math.Sin(el)),
	}
}
