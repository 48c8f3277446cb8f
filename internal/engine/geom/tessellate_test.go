package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// triangleAreaSum adds up the signed areas of the output triangles. Any
// clockwise triangle contributes negatively, so a correct triangulation
// sums to the polygon area.
func triangleAreaSum(coords []float64, tris []uint32) float64 {
	total := 0.0
	for i := 0; i+2 < len(tris); i += 3 {
		ax, ay := coords[2*tris[i]], coords[2*tris[i]+1]
		bx, by := coords[2*tris[i+1]], coords[2*tris[i+1]+1]
		cx, cy := coords[2*tris[i+2]], coords[2*tris[i+2]+1]
		total += ((bx-ax)*(cy-ay) - (by-ay)*(cx-ax)) / 2
	}
	return total
}

func square(x, y, size float64) orb.Ring {
	return orb.Ring{
		{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y},
	}
}

func TestTriangulateSquare(t *testing.T) {
	coords, tris := Triangulate(orb.Polygon{square(0, 0, 10)})
	if len(coords) != 8 {
		t.Fatalf("got %d coords, want 8", len(coords))
	}
	if len(tris) != 6 {
		t.Fatalf("got %d indices, want 6", len(tris))
	}
	if got := triangleAreaSum(coords, tris); math.Abs(got-100) > 1e-9 {
		t.Errorf("triangle area sum = %v, want 100", got)
	}
}

func TestTriangulateConcave(t *testing.T) {
	// An L shape: the naive fan from any single vertex would leave the
	// notch covered.
	l := orb.Polygon{{
		{0, 0}, {4, 0}, {4, 1}, {1, 1}, {1, 4}, {0, 4}, {0, 0},
	}}
	coords, tris := Triangulate(l)
	want := planar.Area(l)
	if got := triangleAreaSum(coords, tris); math.Abs(got-want) > 1e-9 {
		t.Errorf("triangle area sum = %v, want %v", got, want)
	}
	for i := 0; i+2 < len(tris); i += 3 {
		ax, ay := coords[2*tris[i]], coords[2*tris[i]+1]
		bx, by := coords[2*tris[i+1]], coords[2*tris[i+1]+1]
		cx, cy := coords[2*tris[i+2]], coords[2*tris[i+2]+1]
		if (bx-ax)*(cy-ay)-(by-ay)*(cx-ax) < 0 {
			t.Errorf("triangle %d wound clockwise", i/3)
		}
	}
}

func TestTriangulateWithHole(t *testing.T) {
	poly := orb.Polygon{square(0, 0, 10), square(4, 4, 2)}
	coords, tris := Triangulate(poly)
	want := planar.Area(poly)
	if got := triangleAreaSum(coords, tris); math.Abs(got-want) > 1e-9 {
		t.Errorf("triangle area sum = %v, want %v", got, want)
	}
	// 8 distinct vertices, bridge duplicates only add indices.
	if len(coords) != 16 {
		t.Errorf("got %d coords, want 16", len(coords))
	}
}

func TestTriangulateTwoHoles(t *testing.T) {
	poly := orb.Polygon{square(0, 0, 20), square(2, 9, 2), square(12, 9, 2)}
	coords, tris := Triangulate(poly)
	want := planar.Area(poly)
	if got := triangleAreaSum(coords, tris); math.Abs(got-want) > 1e-6 {
		t.Errorf("triangle area sum = %v, want %v", got, want)
	}
}

func TestTriangulateReversedWinding(t *testing.T) {
	// Outer ring given clockwise, hole counter-clockwise; the clipper
	// must normalize both.
	outer := orb.Ring{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}
	hole := orb.Ring{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}}
	poly := orb.Polygon{outer, hole}
	coords, tris := Triangulate(poly)
	if got := triangleAreaSum(coords, tris); math.Abs(got-96) > 1e-9 {
		t.Errorf("triangle area sum = %v, want 96", got)
	}
}

func TestTriangulateDegenerate(t *testing.T) {
	if c, tr := Triangulate(orb.Polygon{}); c != nil || tr != nil {
		t.Error("empty polygon should yield nil")
	}
	line := orb.Polygon{{{0, 0}, {1, 1}, {0, 0}}}
	if _, tr := Triangulate(line); len(tr) != 0 {
		t.Errorf("collapsed ring yielded %d indices", len(tr))
	}
	// Duplicate consecutive points must not produce extra vertices.
	dup := orb.Polygon{{{0, 0}, {0, 0}, {10, 0}, {10, 10}, {10, 10}, {0, 10}, {0, 0}}}
	coords, tris := Triangulate(dup)
	if len(coords) != 8 {
		t.Errorf("got %d coords after dedupe, want 8", len(coords))
	}
	if got := triangleAreaSum(coords, tris); math.Abs(got-100) > 1e-9 {
		t.Errorf("triangle area sum = %v, want 100", got)
	}
}
