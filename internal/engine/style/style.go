// Package style turns tile features into meshes and draws them.
//
// Each style owns one shader program and one mesh per tile. Mesh
// building is pure CPU work and runs on fetch goroutines; everything
// else happens on the render thread.
package style

import (
	"github.com/paulmach/orb/maptile"

	"github.com/meridianmaps/meridian/internal/engine/geom"
	"github.com/meridianmaps/meridian/internal/engine/lighting"
	"github.com/meridianmaps/meridian/internal/engine/mesh"
	"github.com/meridianmaps/meridian/internal/engine/shader"
	pmath "github.com/meridianmaps/meridian/pkg/math"
)

// VertexLayout is the interleaved layout shared by the built-in styles:
// position (x east, y north, z up) and an RGB color.
var VertexLayout = mesh.Layout{
	{Name: "position", Size: 3},
	{Name: "color", Size: 3},
}

// Style is one way of drawing tile features.
type Style interface {
	// Name keys the meshes built by this style.
	Name() string

	// Build compiles the style's shader program and registers it with
	// reg for context-loss handling.
	Build(reg *mesh.Registry) error

	// Dispose releases the program.
	Dispose()

	// BuildMesh tessellates the features this style draws, or returns
	// nil when the tile has none of them. Must be safe to call from
	// several goroutines at once.
	BuildMesh(id maptile.Tile, data *geom.TileData) *mesh.Data

	// SetupFrame binds the program and sets per-frame state.
	SetupFrame(vp pmath.Mat4, lights []lighting.Light)

	// DrawTile draws one tile's mesh with its model transform.
	DrawTile(model pmath.Mat4, m *mesh.Mesh)
}

// Layer pairs a feature layer name with its fill color.
type Layer struct {
	Name  string
	Color [3]float32
}

// NamedLayer builds a Layer with the palette color for its name.
func NamedLayer(name string) Layer {
	return Layer{Name: name, Color: PaletteColor(name)}
}

// PaletteColor returns the built-in map color for well-known layer
// names. Unknown layers render mid-gray.
func PaletteColor(name string) [3]float32 {
	switch name {
	case "earth":
		return [3]float32{0.29, 0.29, 0.27}
	case "landuse":
		return [3]float32{0.26, 0.33, 0.24}
	case "water":
		return [3]float32{0.14, 0.26, 0.43}
	case "buildings":
		return [3]float32{0.48, 0.45, 0.42}
	case "roads":
		return [3]float32{0.58, 0.58, 0.58}
	}
	return [3]float32{0.5, 0.5, 0.5}
}

// baseStyle carries the program plumbing shared by the built-in styles.
type baseStyle struct {
	name string
	prog *shader.Program
	reg  *mesh.Registry
}

// Name keys the meshes built by this style.
func (b *baseStyle) Name() string { return b.name }

// Build compiles the program and registers it for context loss.
func (b *baseStyle) Build(reg *mesh.Registry) error {
	if err := b.prog.Build(); err != nil {
		return err
	}
	b.reg = reg
	if reg != nil {
		reg.Add(b.prog)
	}
	return nil
}

// Dispose deletes the program and drops it from the registry.
func (b *baseStyle) Dispose() {
	b.prog.Dispose()
	if b.reg != nil {
		b.reg.Remove(b.prog)
		b.reg = nil
	}
}

// SetupFrame binds the program and uploads camera and lights.
func (b *baseStyle) SetupFrame(vp pmath.Mat4, lights []lighting.Light) {
	if !b.prog.Valid() {
		// Context was lost and the scene has not rebuilt yet; drawing
		// would hit program 0.
		if err := b.prog.Build(); err != nil {
			return
		}
		if b.reg != nil {
			b.reg.Add(b.prog)
		}
	}
	b.prog.Use()
	b.prog.SetMat4("u_vp", vp)
	n := 0
	for _, l := range lights {
		if n >= lighting.MaxLights {
			break
		}
		l.Apply(b.prog, n)
		n++
	}
	b.prog.SetInt("u_lightCount", int32(n))
}

// DrawTile draws one tile mesh.
func (b *baseStyle) DrawTile(model pmath.Mat4, m *mesh.Mesh) {
	if m.Empty() {
		return
	}
	b.prog.SetMat4("u_model", model)
	m.Draw()
}
