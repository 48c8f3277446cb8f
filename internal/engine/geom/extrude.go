package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// maxMiterScale caps the miter length at sharp joins so near-reversals
// cannot shoot vertices far off the line.
const maxMiterScale = 4.0

// ExtrudeLine widens a line string into a flat ribbon of the given
// half-width. Joins are mitered, ends get butt caps.
//
// The returned coords slice holds x, y vertex pairs, two per input point
// (left side then right side). tris holds counter-clockwise triangle
// indices into that vertex list. Lines with fewer than two distinct
// points yield nil.
func ExtrudeLine(line orb.LineString, halfWidth float64) (coords []float64, tris []uint32) {
	pts := dedupe(line)
	if len(pts) < 2 {
		return nil, nil
	}

	coords = make([]float64, 0, len(pts)*4)
	for i, p := range pts {
		var dx, dy float64
		switch {
		case i == 0:
			dx, dy = dir(pts[0], pts[1])
		case i == len(pts)-1:
			dx, dy = dir(pts[i-1], pts[i])
		default:
			ax, ay := dir(pts[i-1], pts[i])
			bx, by := dir(pts[i], pts[i+1])
			dx, dy = ax+bx, ay+by
			if l := math.Hypot(dx, dy); l > 1e-12 {
				dx, dy = dx/l, dy/l
			} else {
				// Segment reverses on itself; fall back to the
				// incoming direction.
				dx, dy = ax, ay
			}
		}

		// Left normal of the (averaged) direction.
		nx, ny := -dy, dx

		scale := halfWidth
		if i > 0 && i < len(pts)-1 {
			// Miter: stretch the joint normal so the ribbon keeps
			// its width through the turn.
			ax, ay := dir(pts[i-1], pts[i])
			if d := nx*-ay + ny*ax; math.Abs(d) > 1/maxMiterScale {
				scale = halfWidth / d
			} else {
				scale = halfWidth * maxMiterScale
			}
		}

		coords = append(coords,
			p[0]+nx*scale, p[1]+ny*scale,
			p[0]-nx*scale, p[1]-ny*scale)
	}

	tris = make([]uint32, 0, (len(pts)-1)*6)
	for i := 0; i < len(pts)-1; i++ {
		l0, r0 := uint32(2*i), uint32(2*i+1)
		l1, r1 := uint32(2*i+2), uint32(2*i+3)
		tris = append(tris, l0, r0, l1, r0, r1, l1)
	}
	return coords, tris
}

func dedupe(line orb.LineString) []orb.Point {
	pts := make([]orb.Point, 0, len(line))
	for _, p := range line {
		if len(pts) > 0 && p == pts[len(pts)-1] {
			continue
		}
		pts = append(pts, p)
	}
	return pts
}

func dir(a, b orb.Point) (float64, float64) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l := math.Hypot(dx, dy)
	return dx / l, dy / l
}
