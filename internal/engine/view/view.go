// Package view models the map camera: a float64 position on the
// mercator plane, a continuous zoom, and the viewport that together
// decide which tiles are on screen.
//
// Matrices handed to the GPU are camera-relative. World coordinates
// reach 2e7 meters, far beyond float32 precision at street level, so the
// eye offset is removed in float64 before anything is narrowed.
package view

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/meridianmaps/meridian/internal/engine/projection"
	pmath "github.com/meridianmaps/meridian/pkg/math"
)

const (
	// ReferenceZoom is the zoom level gesture and animation speeds are
	// calibrated against.
	ReferenceZoom = 16.0

	// PanSpeedScale converts the zoom difference from ReferenceZoom
	// into a movement speed factor.
	PanSpeedScale = 0.1

	// fovY is the vertical field of view in radians.
	fovY = math.Pi / 4

	// DefaultTileMargin pre-fetches an extra eighth of the viewport on
	// every edge.
	DefaultTileMargin = 0.125
)

// View is the map camera. Not safe for concurrent use; the render loop
// owns it.
type View struct {
	proj      projection.Projection
	worldSize float64

	// Camera ground position in mercator meters.
	x, y float64
	zoom float64

	minZoom, maxZoom float64
	margin           float64

	width, height int
}

// New returns a view centered on the mercator origin at minZoom.
func New(proj projection.Projection, minZoom, maxZoom float64) *View {
	if maxZoom < minZoom {
		minZoom, maxZoom = maxZoom, minZoom
	}
	world := proj.TileBounds(maptile.New(0, 0, 0))
	return &View{
		proj:      proj,
		worldSize: world.Max[0] - world.Min[0],
		zoom:      minZoom,
		minZoom:   minZoom,
		maxZoom:   maxZoom,
		margin:    DefaultTileMargin,
		width:     1,
		height:    1,
	}
}

// SetTileMargin sets the extra viewport fraction fetched on each edge.
func (v *View) SetTileMargin(margin float64) {
	if margin >= 0 {
		v.margin = margin
	}
}

// SetViewport resizes the visible screen area in pixels.
func (v *View) SetViewport(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	v.width, v.height = width, height
}

// Viewport returns the screen size in pixels.
func (v *View) Viewport() (int, int) { return v.width, v.height }

// SetPosition moves the camera to a geographic position. Out-of-range
// coordinates are clamped onto the projectable domain.
func (v *View) SetPosition(lon, lat float64) {
	m := v.proj.LonLatToMeters(orb.Point{lon, lat})
	v.x, v.y = m[0], m[1]
	v.clampPosition()
}

// Position returns the camera's geographic position.
func (v *View) Position() (lon, lat float64) {
	ll := v.proj.MetersToLonLat(orb.Point{v.x, v.y})
	return ll[0], ll[1]
}

// Center returns the camera ground position in mercator meters.
func (v *View) Center() (x, y float64) { return v.x, v.y }

// Translate moves the camera by meters on the ground plane.
func (v *View) Translate(dx, dy float64) {
	v.x += dx
	v.y += dy
	v.clampPosition()
}

func (v *View) clampPosition() {
	half := v.worldSize / 2
	v.x = math.Min(half, math.Max(-half, v.x))
	v.y = math.Min(half, math.Max(-half, v.y))
}

// SetZoom sets the continuous zoom, clamped to the configured range.
func (v *View) SetZoom(z float64) {
	if math.IsNaN(z) {
		return
	}
	v.zoom = math.Min(v.maxZoom, math.Max(v.minZoom, z))
}

// Zoom returns the continuous zoom level.
func (v *View) Zoom() float64 { return v.zoom }

// ZoomBy shifts the zoom by dz, keeping it in range.
func (v *View) ZoomBy(dz float64) { v.SetZoom(v.zoom + dz) }

// InvZoomScale is the speed factor for gestures and animations tuned at
// ReferenceZoom: 2x per zoom level out.
func (v *View) InvZoomScale() float64 {
	return PanSpeedScale * math.Exp2(ReferenceZoom-v.zoom)
}

// MetersPerPixel is the ground resolution at the current zoom.
func (v *View) MetersPerPixel() float64 {
	return v.proj.MetersPerPixel(v.zoom)
}

// TileZoom returns the integer zoom for tile selection.
func (v *View) TileZoom() maptile.Zoom {
	z := math.Floor(v.zoom)
	if z < v.minZoom {
		z = math.Ceil(v.minZoom)
	}
	if z > v.maxZoom {
		z = math.Floor(v.maxZoom)
	}
	if z < 0 {
		z = 0
	}
	return maptile.Zoom(z)
}

// ScreenToWorld maps a screen pixel to the mercator point under it.
func (v *View) ScreenToWorld(px, py float64) (x, y float64) {
	mpp := v.MetersPerPixel()
	x = v.x + (px-float64(v.width)/2)*mpp
	y = v.y - (py-float64(v.height)/2)*mpp
	return x, y
}

// ZoomAround changes zoom while keeping the world point under the given
// screen pixel fixed, the way pinch and double-tap gestures behave.
func (v *View) ZoomAround(px, py, dz float64) {
	wx, wy := v.ScreenToWorld(px, py)
	v.ZoomBy(dz)
	mpp := v.MetersPerPixel()
	v.x = wx - (px-float64(v.width)/2)*mpp
	v.y = wy + (py-float64(v.height)/2)*mpp
	v.clampPosition()
}

// Altitude is the camera height that makes one screen pixel cover
// exactly MetersPerPixel meters of ground at the view center.
func (v *View) Altitude() float64 {
	return float64(v.height) * v.MetersPerPixel() / (2 * math.Tan(fovY/2))
}

// Eye returns the camera position in world meters, z up.
func (v *View) Eye() (x, y, z float64) {
	return v.x, v.y, v.Altitude()
}

// VisibleTiles returns the tiles covering the viewport at the current
// tile zoom, expanded by the tile margin.
func (v *View) VisibleTiles() maptile.Set {
	return v.TilesAt(v.TileZoom())
}

// TilesAt returns the covering tile set for an explicit zoom level.
func (v *View) TilesAt(z maptile.Zoom) maptile.Set {
	mpp := v.MetersPerPixel()
	halfW := float64(v.width) / 2 * mpp * (1 + 2*v.margin)
	halfH := float64(v.height) / 2 * mpp * (1 + 2*v.margin)

	n := uint32(1) << z
	span := v.worldSize / float64(n)
	half := v.worldSize / 2

	x0 := tileIndex((v.x-halfW+half)/span, n)
	x1 := tileIndex((v.x+halfW+half)/span, n)
	// Row 0 is the top of the world; mercator y grows north.
	y0 := tileIndex((half-(v.y+halfH))/span, n)
	y1 := tileIndex((half-(v.y-halfH))/span, n)

	set := make(maptile.Set, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			set[maptile.New(x, y, z)] = true
		}
	}
	return set
}

func tileIndex(f float64, n uint32) uint32 {
	i := math.Floor(f)
	if i < 0 {
		return 0
	}
	if i > float64(n-1) {
		return n - 1
	}
	return uint32(i)
}

// ViewProj returns the camera-relative view-projection matrix. Vertices
// fed through it must already be eye-relative; the translation by -Eye
// happens in float64 on the CPU.
func (v *View) ViewProj() pmath.Mat4 {
	alt := v.Altitude()
	near := math.Max(0.5, alt/50)
	far := alt * 4

	proj := pmath.Perspective(
		float32(fovY),
		float32(v.width)/float32(v.height),
		float32(near),
		float32(far),
	)
	look := pmath.LookAt(
		pmath.Vec3{Z: float32(alt)},
		pmath.Vec3{},
		pmath.Vec3{Y: 1},
	)
	return proj.Mul(look)
}
