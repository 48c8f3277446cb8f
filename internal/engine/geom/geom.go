// Package geom holds the CPU-side feature geometry of map tiles and the
// triangulation helpers that turn it into renderable meshes.
//
// All coordinates are tile-local meters: x grows east, y grows north and
// the origin sits at the tile's southwest corner on the mercator plane.
package geom

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// minFeatureArea drops degenerate slivers produced by clipping, in
// square meters of the mercator plane.
const minFeatureArea = 1e-4

// Layer groups the features of one named map layer within a single tile.
type Layer struct {
	Name     string
	Polygons []orb.Polygon
	Lines    []orb.LineString
}

// AddPolygon appends a polygon, dropping empty and near-zero-area ones.
func (l *Layer) AddPolygon(p orb.Polygon) {
	if len(p) == 0 || len(p[0]) < 3 {
		return
	}
	if planar.Area(p) < minFeatureArea {
		return
	}
	l.Polygons = append(l.Polygons, p)
}

// AddLine appends a line string, dropping ones too short to extrude.
func (l *Layer) AddLine(ls orb.LineString) {
	if len(ls) < 2 {
		return
	}
	l.Lines = append(l.Lines, ls)
}

// Empty reports whether the layer carries no features.
func (l *Layer) Empty() bool {
	return len(l.Polygons) == 0 && len(l.Lines) == 0
}

// TileData is the parsed feature geometry of one tile, grouped by layer.
type TileData struct {
	Layers []Layer
}

// Layer returns the layer with the given name, appending it if missing.
func (d *TileData) Layer(name string) *Layer {
	for i := range d.Layers {
		if d.Layers[i].Name == name {
			return &d.Layers[i]
		}
	}
	d.Layers = append(d.Layers, Layer{Name: name})
	return &d.Layers[len(d.Layers)-1]
}

// Find returns the named layer or nil.
func (d *TileData) Find(name string) *Layer {
	for i := range d.Layers {
		if d.Layers[i].Name == name {
			return &d.Layers[i]
		}
	}
	return nil
}

// Merge folds the layers of src into d, matching layers by name.
func (d *TileData) Merge(src *TileData) {
	if src == nil {
		return
	}
	for i := range src.Layers {
		s := &src.Layers[i]
		t := d.Layer(s.Name)
		t.Polygons = append(t.Polygons, s.Polygons...)
		t.Lines = append(t.Lines, s.Lines...)
	}
}

// Empty reports whether no layer carries any feature.
func (d *TileData) Empty() bool {
	for i := range d.Layers {
		if !d.Layers[i].Empty() {
			return false
		}
	}
	return true
}
