package source

import (
	"context"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/project"
	"github.com/paulmach/orb/simplify"

	"github.com/meridianmaps/meridian/internal/engine/geom"
	"github.com/meridianmaps/meridian/internal/engine/projection"
)

const (
	// clipBufferFrac widens the clip window by a fraction of the tile
	// span so extruded lines do not get cut visibly at tile edges.
	clipBufferFrac = 0.05

	// simplifyPixels is the Douglas-Peucker tolerance in screen pixels
	// at the requested zoom.
	simplifyPixels = 0.5
)

// GeoJSON serves tiles cut from a feature collection held in memory.
// The collection is projected to mercator meters once at construction;
// Request only clips, simplifies and shifts, so concurrent requests are
// safe.
type GeoJSON struct {
	name     string
	proj     projection.Projection
	features []preparedFeature
}

type preparedFeature struct {
	layer string
	geom  orb.Geometry
	bound orb.Bound
}

// NewGeoJSON parses a GeoJSON feature collection. Features are assigned
// to layers by their "layer" (or "kind") property; without one, areas
// land in "earth" and lines in "roads".
func NewGeoJSON(name string, data []byte, proj projection.Projection) (*GeoJSON, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}

	s := &GeoJSON{name: name, proj: proj}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		layer := featureLayer(f)
		if layer == "" {
			continue
		}
		g := project.Geometry(orb.Clone(f.Geometry), project.WGS84.ToMercator)
		s.features = append(s.features, preparedFeature{
			layer: layer,
			geom:  g,
			bound: g.Bound(),
		})
	}
	return s, nil
}

// NewGeoJSONFromFile reads path and builds a GeoJSON source from its
// contents.
func NewGeoJSONFromFile(name, path string, proj projection.Projection) (*GeoJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}
	return NewGeoJSON(name, data, proj)
}

// Name identifies the source in logs.
func (s *GeoJSON) Name() string { return s.name }

// Request cuts the collection down to the tile.
func (s *GeoJSON) Request(ctx context.Context, t maptile.Tile) (*geom.TileData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := s.proj.TileBounds(t)
	span := bounds.Max[0] - bounds.Min[0]
	buffer := span * clipBufferFrac
	window := orb.Bound{
		Min: orb.Point{bounds.Min[0] - buffer, bounds.Min[1] - buffer},
		Max: orb.Point{bounds.Max[0] + buffer, bounds.Max[1] + buffer},
	}
	tolerance := s.proj.MetersPerPixel(float64(t.Z)) * simplifyPixels

	var data geom.TileData
	for i := range s.features {
		f := &s.features[i]
		if !window.Intersects(f.bound) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g := clip.Geometry(window, orb.Clone(f.geom))
		if g == nil {
			continue
		}
		g = simplify.DouglasPeucker(tolerance).Simplify(g)
		if g == nil {
			continue
		}
		translate(g, -bounds.Min[0], -bounds.Min[1])
		appendGeometry(data.Layer(f.layer), g)
	}
	return &data, nil
}

func featureLayer(f *geojson.Feature) string {
	for _, key := range []string{"layer", "kind"} {
		if v, ok := f.Properties[key].(string); ok && v != "" {
			return v
		}
	}
	switch f.Geometry.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return "earth"
	case orb.LineString, orb.MultiLineString:
		return "roads"
	}
	return ""
}

// appendGeometry files a clipped geometry under the layer, splitting
// multi geometries.
func appendGeometry(l *geom.Layer, g orb.Geometry) {
	switch g := g.(type) {
	case orb.Polygon:
		l.AddPolygon(g)
	case orb.MultiPolygon:
		for _, p := range g {
			l.AddPolygon(p)
		}
	case orb.LineString:
		l.AddLine(g)
	case orb.MultiLineString:
		for _, ls := range g {
			l.AddLine(ls)
		}
	case orb.Ring:
		l.AddPolygon(orb.Polygon{g})
	case orb.Collection:
		for _, sub := range g {
			appendGeometry(l, sub)
		}
	}
}

// translate shifts a geometry in place.
func translate(g orb.Geometry, dx, dy float64) {
	switch g := g.(type) {
	case orb.Point:
		// Points are value types; handled by callers if ever needed.
	case orb.LineString:
		translatePoints(g, dx, dy)
	case orb.MultiLineString:
		for _, ls := range g {
			translatePoints(ls, dx, dy)
		}
	case orb.Ring:
		translatePoints(g, dx, dy)
	case orb.Polygon:
		for _, r := range g {
			translatePoints(r, dx, dy)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			for _, r := range p {
				translatePoints(r, dx, dy)
			}
		}
	case orb.Collection:
		for _, sub := range g {
			translate(sub, dx, dy)
		}
	}
}

func translatePoints(pts []orb.Point, dx, dy float64) {
	for i := range pts {
		pts[i][0] += dx
		pts[i][1] += dy
	}
}
