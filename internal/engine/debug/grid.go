// Package debug holds development overlays and capture helpers. Nothing
// here is needed to draw a map; the viewer wires these to keybinds.
package debug

import (
	_ "embed"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/meridianmaps/meridian/internal/engine/geom"
	"github.com/meridianmaps/meridian/internal/engine/lighting"
	"github.com/meridianmaps/meridian/internal/engine/mesh"
	"github.com/meridianmaps/meridian/internal/engine/projection"
	"github.com/meridianmaps/meridian/internal/engine/shader"
	"github.com/meridianmaps/meridian/internal/engine/style"
	pmath "github.com/meridianmaps/meridian/pkg/math"
)

//go:embed shaders/grid.vert
var gridVertexShader string

//go:embed shaders/grid.frag
var gridFragmentShader string

const (
	// gridWidthPixels is the outline width in screen pixels.
	gridWidthPixels = 2.0

	// gridZ lifts the outline above extruded road lines so it is not
	// depth-fought away.
	gridZ = 6.0
)

// gridColor is magenta, chosen to clash with the map palette.
var gridColor = [3]float32{1.0, 0.2, 0.8}

// GridStyle draws the outline of every visible tile. It is an overlay
// for checking tile coverage and eviction, off by default.
type GridStyle struct {
	name string
	prog *shader.Program
	reg  *mesh.Registry
	proj projection.Projection

	// Visible toggles drawing. Meshes are still built while hidden so
	// flipping it on costs nothing.
	Visible bool
}

// NewGridStyle returns a tile-outline overlay using the given
// projection for tile footprints.
func NewGridStyle(name string, proj projection.Projection) *GridStyle {
	return &GridStyle{
		name: name,
		prog: shader.NewProgram(name, gridVertexShader, gridFragmentShader),
		proj: proj,
	}
}

// Name keys the meshes built by this style.
func (g *GridStyle) Name() string { return g.name }

// Build compiles the program and registers it for context loss.
func (g *GridStyle) Build(reg *mesh.Registry) error {
	if err := g.prog.Build(); err != nil {
		return err
	}
	g.reg = reg
	if reg != nil {
		reg.Add(g.prog)
	}
	return nil
}

// Dispose deletes the program and drops it from the registry.
func (g *GridStyle) Dispose() {
	g.prog.Dispose()
	if g.reg != nil {
		g.reg.Remove(g.prog)
		g.reg = nil
	}
}

// BuildMesh extrudes the tile's border ring into a flat ribbon. The
// width is fixed in screen pixels, so the metric half-width depends on
// the tile's zoom.
func (g *GridStyle) BuildMesh(id maptile.Tile, _ *geom.TileData) *mesh.Data {
	b := g.proj.TileBounds(id)
	span := b.Max[0] - b.Min[0]
	half := gridWidthPixels / 2 * g.proj.MetersPerPixel(float64(id.Z))

	ring := orb.LineString{{0, 0}, {span, 0}, {span, span}, {0, span}, {0, 0}}
	coords, tris := geom.ExtrudeLine(ring, half)
	if len(tris) == 0 {
		return nil
	}

	d := &mesh.Data{Layout: style.VertexLayout}
	d.Vertices = make([]float32, 0, len(coords)/2*6)
	for i := 0; i+1 < len(coords); i += 2 {
		d.Vertices = append(d.Vertices,
			float32(coords[i]), float32(coords[i+1]), gridZ,
			gridColor[0], gridColor[1], gridColor[2],
		)
	}
	d.Indices = tris
	return d
}

// SetupFrame binds the program and uploads the camera. Lights are
// ignored; the outline is unlit.
func (g *GridStyle) SetupFrame(vp pmath.Mat4, _ []lighting.Light) {
	if !g.Visible {
		return
	}
	if !g.prog.Valid() {
		if err := g.prog.Build(); err != nil {
			return
		}
		if g.reg != nil {
			g.reg.Add(g.prog)
		}
	}
	g.prog.Use()
	g.prog.SetMat4("u_vp", vp)
}

// DrawTile draws one tile's outline.
func (g *GridStyle) DrawTile(model pmath.Mat4, m *mesh.Mesh) {
	if !g.Visible || m.Empty() {
		return
	}
	g.prog.SetMat4("u_model", model)
	m.Draw()
}
