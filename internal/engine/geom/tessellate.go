package geom

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// Triangulate computes a triangulation of the polygon by ear clipping.
// Holes are removed first by bridging each one to the enclosing ring.
//
// The returned coords slice holds the vertices as x, y pairs (outer ring
// first, then the holes, closing duplicates removed). tris holds triangle
// corner indices into that vertex list, wound counter-clockwise.
func Triangulate(poly orb.Polygon) (coords []float64, tris []uint32) {
	if len(poly) == 0 {
		return nil, nil
	}

	head, coords := buildRing(nil, poly[0], orb.CCW)
	if head == nil {
		return nil, nil
	}

	// Bridge holes right to left so a hole can never hide behind one
	// that has not been merged yet.
	holes := make([]*earNode, 0, len(poly)-1)
	for _, ring := range poly[1:] {
		var h *earNode
		h, coords = buildRing(coords, ring, orb.CW)
		if h != nil {
			holes = append(holes, h)
		}
	}
	sort.Slice(holes, func(i, j int) bool {
		return maxXNode(holes[i]).x > maxXNode(holes[j]).x
	})
	for _, h := range holes {
		head = bridgeHole(head, h)
	}

	return coords, earClip(head, nil)
}

// earNode is a vertex in the circular doubly linked ring the clipper
// consumes. Bridge duplicates share the index of the original vertex.
type earNode struct {
	x, y       float64
	i          uint32
	prev, next *earNode
}

// buildRing turns a ring into a linked list with the requested winding,
// appending its vertices to coords. Closing and consecutive duplicate
// points are skipped. Returns nil for rings with fewer than 3 distinct
// points.
func buildRing(coords []float64, ring orb.Ring, want orb.Orientation) (*earNode, []float64) {
	pts := []orb.Point(ring)
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}

	var head, tail *earNode
	n := 0
	for _, p := range pts {
		if tail != nil && p[0] == tail.x && p[1] == tail.y {
			continue
		}
		node := &earNode{x: p[0], y: p[1], i: uint32(len(coords) / 2)}
		coords = append(coords, p[0], p[1])
		if head == nil {
			head = node
		} else {
			tail.next = node
			node.prev = tail
		}
		tail = node
		n++
	}
	if n < 3 {
		return nil, coords
	}
	tail.next = head
	head.prev = tail

	if ringOrientation(head) != want {
		reverseRing(head)
	}
	return head, coords
}

func ringOrientation(head *earNode) orb.Orientation {
	area := 0.0
	n := head
	for {
		area += (n.next.x - n.x) * (n.next.y + n.y)
		n = n.next
		if n == head {
			break
		}
	}
	if area < 0 {
		return orb.CCW
	}
	return orb.CW
}

func reverseRing(head *earNode) {
	n := head
	for {
		n.prev, n.next = n.next, n.prev
		n = n.prev
		if n == head {
			break
		}
	}
}

func maxXNode(head *earNode) *earNode {
	best := head
	for n := head.next; n != head; n = n.next {
		if n.x > best.x {
			best = n
		}
	}
	return best
}

func cross(a, b, c *earNode) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

// pointInTriangle reports whether p lies inside or on the triangle abc,
// either winding, excluding points coincident with a corner.
func pointInTriangle(p, a, b, c *earNode) bool {
	if (p.x == a.x && p.y == a.y) || (p.x == b.x && p.y == b.y) || (p.x == c.x && p.y == c.y) {
		return false
	}
	d1, d2, d3 := cross(a, b, p), cross(b, c, p), cross(c, a, p)
	return (d1 >= 0 && d2 >= 0 && d3 >= 0) || (d1 <= 0 && d2 <= 0 && d3 <= 0)
}

// bridgeHole merges a hole ring into the outer ring by duplicating one
// mutually visible vertex pair, following the classic max-x bridge
// construction. Returns the (unchanged) outer head.
func bridgeHole(outer, hole *earNode) *earNode {
	m := maxXNode(hole)

	// Shoot a ray from m toward +x and find the closest crossing of the
	// outer ring.
	var edge *earNode // crossing edge (edge, edge.next)
	ix := math.Inf(1)
	n := outer
	for {
		a, b := n, n.next
		if (a.y > m.y) != (b.y > m.y) {
			x := a.x + (m.y-a.y)*(b.x-a.x)/(b.y-a.y)
			if x >= m.x && x < ix {
				ix = x
				edge = n
			}
		}
		n = n.next
		if n == outer {
			break
		}
	}
	if edge == nil {
		// Hole is outside the ring; drop it.
		return outer
	}

	// Candidate bridge target: the crossing edge endpoint with larger x,
	// unless a reflex vertex hides inside the triangle (m, i, p). Of
	// those, take the one closest in angle to the ray.
	p := edge
	if edge.next.x > edge.x {
		p = edge.next
	}
	ipt := &earNode{x: ix, y: m.y}
	target := p
	bestTan := math.Inf(1)
	for n = outer; ; {
		if n != p && cross(n.prev, n, n.next) < 0 && pointInTriangle(n, m, ipt, p) {
			tan := math.Abs(n.y-m.y) / (n.x - m.x)
			if tan < bestTan || (tan == bestTan && n.x < target.x) {
				bestTan = tan
				target = n
			}
		}
		n = n.next
		if n == outer {
			break
		}
	}

	// Splice: target -> m -> ...hole... -> m' -> target' -> target.next.
	m2 := &earNode{x: m.x, y: m.y, i: m.i}
	t2 := &earNode{x: target.x, y: target.y, i: target.i}
	holeEnd := m.prev

	t2.next = target.next
	target.next.prev = t2
	target.next = m
	m.prev = target
	holeEnd.next = m2
	m2.prev = holeEnd
	m2.next = t2
	t2.prev = m2

	return outer
}

// earClip triangulates the bridged ring, appending to tris.
func earClip(head *earNode, tris []uint32) []uint32 {
	if head == nil {
		return tris
	}
	n := 1
	for node := head.next; node != head; node = node.next {
		n++
	}

	cur := head
	stalled := 0
	for n > 3 {
		a, b, c := cur.prev, cur, cur.next
		area := cross(a, b, c)
		switch {
		case area > 0 && isEar(a, b, c):
			tris = append(tris, a.i, b.i, c.i)
			fallthrough
		case area == 0:
			// Clip the ear, or silently drop a degenerate spike.
			a.next = c
			c.prev = a
			cur = c
			n--
			stalled = 0
		default:
			cur = cur.next
			stalled++
			if stalled > n {
				// Self-intersecting input; fan out what is left
				// rather than looping forever.
				return fanRemainder(cur, n, tris)
			}
		}
	}
	return append(tris, cur.prev.i, cur.i, cur.next.i)
}

func isEar(a, b, c *earNode) bool {
	for p := c.next; p != a; p = p.next {
		if pointInTriangle(p, a, b, c) {
			return false
		}
	}
	return true
}

func fanRemainder(head *earNode, n int, tris []uint32) []uint32 {
	for node := head.next; n > 2; n-- {
		tris = append(tris, head.i, node.i, node.next.i)
		node = node.next
	}
	return tris
}
