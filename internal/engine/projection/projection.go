// Package projection maps between geographic coordinates and the local
// metric plane the renderer works in.
package projection

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/project"
)

// ErrOutOfRange reports a geographic coordinate outside the projectable
// domain. The conversion functions themselves never return it; they clamp.
// It is for callers that need to reject bad input up front.
var ErrOutOfRange = errors.New("projection: coordinate outside valid range")

const (
	// EarthRadius is the WGS84 equatorial radius in meters.
	EarthRadius = 6378137.0

	// MaxLatitude is the latitude bound of the square web-mercator plane.
	MaxLatitude = 85.05112878

	// DefaultTileSize is the tile edge length in pixels used for ground
	// resolution math.
	DefaultTileSize = 256.0
)

// earthCircumference is the length of the equator in meters.
const earthCircumference = 2 * math.Pi * EarthRadius

// Projection converts between lon/lat degrees and planar meters. Both
// directions are pure and deterministic; inputs outside the valid domain
// are clamped onto its edge.
type Projection interface {
	// LonLatToMeters projects a geographic point (lon, lat in degrees)
	// onto the metric plane.
	LonLatToMeters(ll orb.Point) orb.Point

	// MetersToLonLat is the inverse of LonLatToMeters.
	MetersToLonLat(m orb.Point) orb.Point

	// MetersPerPixel returns the ground resolution at the given
	// (fractional) zoom level.
	MetersPerPixel(zoom float64) float64

	// TileBounds returns the tile's footprint on the metric plane.
	TileBounds(t maptile.Tile) orb.Bound

	// TileAt returns the tile containing the given metric point.
	TileAt(m orb.Point, z maptile.Zoom) maptile.Tile
}

// Mercator is the spherical web-mercator projection. The zero value is
// ready to use with DefaultTileSize.
type Mercator struct {
	// TileSize overrides the tile edge length in pixels; zero means
	// DefaultTileSize.
	TileSize float64
}

// NewMercator returns a Mercator projection with the default tile size.
func NewMercator() Mercator {
	return Mercator{TileSize: DefaultTileSize}
}

func (p Mercator) tileSize() float64 {
	if p.TileSize > 0 {
		return p.TileSize
	}
	return DefaultTileSize
}

// LonLatToMeters projects lon/lat degrees to meters. Latitude is clamped
// to ±MaxLatitude and longitude to ±180 so the result is always finite.
func (Mercator) LonLatToMeters(ll orb.Point) orb.Point {
	return project.WGS84.ToMercator(ClampLonLat(ll))
}

// MetersToLonLat converts a metric point back to lon/lat degrees.
func (Mercator) MetersToLonLat(m orb.Point) orb.Point {
	return project.Mercator.ToWGS84(m)
}

// MetersPerPixel returns the ground resolution at the given zoom.
func (p Mercator) MetersPerPixel(zoom float64) float64 {
	return earthCircumference / (p.tileSize() * math.Exp2(zoom))
}

// TileBounds returns the tile footprint in meters.
func (Mercator) TileBounds(t maptile.Tile) orb.Bound {
	return project.Bound(t.Bound(), project.WGS84.ToMercator)
}

// TileAt returns the tile containing the metric point at zoom z.
func (p Mercator) TileAt(m orb.Point, z maptile.Zoom) maptile.Tile {
	t := maptile.At(p.MetersToLonLat(m), z)
	max := uint32(1<<z) - 1
	if t.X > max {
		t.X = max
	}
	if t.Y > max {
		t.Y = max
	}
	return t
}

// ClampLonLat moves a geographic point onto the projectable domain.
func ClampLonLat(ll orb.Point) orb.Point {
	lon, lat := ll[0], ll[1]
	if lon < -180 {
		lon = -180
	} else if lon > 180 {
		lon = 180
	}
	if lat < -MaxLatitude {
		lat = -MaxLatitude
	} else if lat > MaxLatitude {
		lat = MaxLatitude
	}
	return orb.Point{lon, lat}
}

// CheckLonLat reports ErrOutOfRange for coordinates the projection would
// have to clamp. Useful for validating configuration.
func CheckLonLat(lon, lat float64) error {
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return ErrOutOfRange
	}
	if lon < -180 || lon > 180 || lat < -MaxLatitude || lat > MaxLatitude {
		return ErrOutOfRange
	}
	return nil
}
