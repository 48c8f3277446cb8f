package style

import (
	_ "embed"

	"github.com/paulmach/orb/maptile"

	"github.com/meridianmaps/meridian/internal/engine/geom"
	"github.com/meridianmaps/meridian/internal/engine/mesh"
	"github.com/meridianmaps/meridian/internal/engine/shader"
)

//go:embed shaders/polygon.vert
var polygonVertSrc string

//go:embed shaders/polygon.frag
var polygonFragSrc string

// layerLift is the vertical separation between consecutive polygon
// layers, in meters. With depth testing on it keeps buildings above
// water above land without relying on draw order alone.
const layerLift = 1.0

// PolygonStyle fills area features layer by layer. Layer order decides
// stacking: later layers draw on top.
type PolygonStyle struct {
	baseStyle
	layers []Layer
}

// NewPolygonStyle builds a fill style for the given layers.
func NewPolygonStyle(name string, layers []Layer) *PolygonStyle {
	return &PolygonStyle{
		baseStyle: baseStyle{
			name: name,
			prog: shader.NewProgram(name, polygonVertSrc, polygonFragSrc),
		},
		layers: layers,
	}
}

// Layers returns the configured layers in draw order.
func (s *PolygonStyle) Layers() []Layer { return s.layers }

// BuildMesh triangulates every polygon of the style's layers into one
// interleaved mesh.
func (s *PolygonStyle) BuildMesh(_ maptile.Tile, data *geom.TileData) *mesh.Data {
	d := &mesh.Data{Layout: VertexLayout}
	for li, layer := range s.layers {
		src := data.Find(layer.Name)
		if src == nil {
			continue
		}
		z := float32(li) * layerLift
		for _, poly := range src.Polygons {
			coords, tris := geom.Triangulate(poly)
			if len(tris) == 0 {
				continue
			}
			base := uint32(len(d.Vertices)) / 6
			for i := 0; i+1 < len(coords); i += 2 {
				d.Vertices = append(d.Vertices,
					float32(coords[i]), float32(coords[i+1]), z,
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
