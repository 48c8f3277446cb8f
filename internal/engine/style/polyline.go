package style

import (
	_ "embed"

	"github.com/paulmach/orb/maptile"

	"github.com/meridianmaps/meridian/internal/engine/geom"
	"github.com/meridianmaps/meridian/internal/engine/mesh"
	"github.com/meridianmaps/meridian/internal/engine/projection"
	"github.com/meridianmaps/meridian/internal/engine/shader"
)

//go:embed shaders/polyline.vert
var polylineVertSrc string

//go:embed shaders/polyline.frag
var polylineFragSrc string

// PolylineStyle extrudes line features into flat ribbons of constant
// screen width.
type PolylineStyle struct {
	baseStyle
	proj   projection.Projection
	layers []Layer

	// WidthPixels is the ribbon width on screen at the tile's zoom.
	WidthPixels float64

	// ZOffset lifts the ribbons above polygon fills, in meters.
	ZOffset float32
}

// NewPolylineStyle builds a line style for the given layers.
func NewPolylineStyle(name string, proj projection.Projection, layers []Layer, widthPixels float64) *PolylineStyle {
	return &PolylineStyle{
		baseStyle: baseStyle{
			name: name,
			prog: shader.NewProgram(name, polylineVertSrc, polylineFragSrc),
		},
		proj:        proj,
		layers:      layers,
		WidthPixels: widthPixels,
		ZOffset:     2.5,
	}
}

// Layers returns the configured layers.
func (s *PolylineStyle) Layers() []Layer { return s.layers }

// BuildMesh extrudes every line of the style's layers. The ribbon width
// in meters comes from the tile zoom, so lines keep their screen width.
func (s *PolylineStyle) BuildMesh(id maptile.Tile, data *geom.TileData) *mesh.Data {
	halfWidth := s.WidthPixels / 2 * s.proj.MetersPerPixel(float64(id.Z))

	d := &mesh.Data{Layout: VertexLayout}
	for _, layer := range s.layers {
		src := data.Find(layer.Name)
		if src == nil {
			continue
		}
		for _, line := range src.Lines {
			coords, tris := geom.ExtrudeLine(line, halfWidth)
			if len(tris) == 0 {
				continue
			}
			base := uint32(len(d.Vertices)) / 6
			for i := 0; i+1 < len(coords); i += 2 {
				d.Vertices = append(d.Vertices,
					float32(coords[i]), float32(coords[i+1]), s.ZOffset,
					layer.Color[0], layer.Color[1], layer.Color[2],
				)
			}
			for _, idx := range tris {
				d.Indices = append(d.Indices, base+idx)
			}
		}
	}
	if len(d.Indices) == 0 {
		return nil
	}
	return d
}
