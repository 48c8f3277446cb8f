// Package engine ties the map subsystems together behind one facade.
//
// A Map owns its own projection, view, scene, tile manager, and render
// pipeline; several maps can coexist in one process. Construction makes
// no GL calls, so a Map can be wired before a context exists. The host
// drives the lifecycle from the thread owning the context: Initialize
// once, then Update before Render each frame, Resize on surface
// changes, Teardown at the end. OnContextDestroyed recovers from a
// context loss without refetching any tile data.
package engine

import (
	"math"

	"go.uber.org/zap"

	"github.com/meridianmaps/meridian/internal/config"
	"github.com/meridianmaps/meridian/internal/engine/debug"
	"github.com/meridianmaps/meridian/internal/engine/projection"
	"github.com/meridianmaps/meridian/internal/engine/renderer"
	"github.com/meridianmaps/meridian/internal/engine/scene"
	"github.com/meridianmaps/meridian/internal/engine/source"
	"github.com/meridianmaps/meridian/internal/engine/style"
	"github.com/meridianmaps/meridian/internal/engine/tile"
	"github.com/meridianmaps/meridian/internal/engine/view"
)

// Map is one self-contained map instance.
type Map struct {
	log *zap.Logger

	proj     projection.Projection
	view     *view.View
	scene    *scene.Scene
	pipeline *renderer.Pipeline
	tiles    *tile.Manager

	initialized bool
}

// New wires a map from configuration. The scene should be fully
// composed (styles and lights added); BuildShaders runs in Initialize.
func New(cfg *config.Config, sc *scene.Scene, src source.Source, log *zap.Logger) *Map {
	if log == nil {
		log = zap.NewNop()
	}
	proj := projection.NewMercator()

	v := view.New(proj, cfg.Map.MinZoom, cfg.Map.MaxZoom)
	v.SetViewport(cfg.Graphics.Width, cfg.Graphics.Height)
	v.SetTileMargin(cfg.Map.TileMargin)
	v.SetPosition(cfg.Map.StartLon, cfg.Map.StartLat)
	v.SetZoom(cfg.Map.StartZoom)

	pipe := renderer.NewPipeline(proj, log.Named("render"))

	mgr := tile.NewManager(tile.Options{
		Source:     src,
		Build:      sc.BuildMeshes,
		Registry:   pipe.Registry(),
		Log:        log.Named("tile"),
		MaxCached:  cfg.Map.CacheTiles,
		MaxRetries: cfg.Map.FetchRetries,
		RetryDelay: cfg.Map.RetryBackoff,
	})

	return &Map{
		log:      log,
		proj:     proj,
		view:     v,
		scene:    sc,
		pipeline: pipe,
		tiles:    mgr,
	}
}

// DefaultScene composes the standard map scene from configuration: one
// polygon style over the configured fill layers and one line style over
// the road layers, colored from the built-in palette. Lights are for
// the host to add, so it can keep the concrete pointers and animate
// them.
func DefaultScene(cfg *config.Config) (*scene.Scene, error) {
	sc := scene.New()

	fills := make([]style.Layer, 0, len(cfg.Scene.PolygonLayers))
	for _, name := range cfg.Scene.PolygonLayers {
		fills = append(fills, style.NamedLayer(name))
	}
	if err := sc.AddStyle(style.NewPolygonStyle("polygon", fills)); err != nil {
		return nil, err
	}

	lines := make([]style.Layer, 0, len(cfg.Scene.LineLayers))
	for _, name := range cfg.Scene.LineLayers {
		lines = append(lines, style.NamedLayer(name))
	}
	ps := style.NewPolylineStyle("polyline", projection.NewMercator(), lines, 6)
	if err := sc.AddStyle(ps); err != nil {
		return nil, err
	}

	return sc, nil
}

// View exposes the camera, for hosts that position it directly.
func (m *Map) View() *view.View { return m.view }

// Scene returns the drawable content.
func (m *Map) Scene() *scene.Scene { return m.scene }

// Counts reports loaded, in-flight, and total tracked tiles.
func (m *Map) Counts() (loaded, pending, total int) {
	return m.tiles.Counts()
}

// Initialize sets up GL state and compiles the scene's shaders. It is
// idempotent; calling it again is a no-op. The GL context must be
// current.
func (m *Map) Initialize() error {
	if m.initialized {
		return nil
	}
	if err := m.pipeline.Init(m.scene); err != nil {
		return err
	}
	m.initialized = true
	lon, lat := m.view.Position()
	m.log.Info("map initialized",
		zap.Float64("lon", lon),
		zap.Float64("lat", lat),
		zap.Float64("zoom", m.view.Zoom()),
	)
	return nil
}

// Resize updates the viewport after a surface size change.
func (m *Map) Resize(width, height int) {
	m.view.SetViewport(width, height)
	if m.initialized {
		m.pipeline.Resize(width, height)
	}
}

// Update refreshes the tile set for the current view. Hosts call it
// once per frame, before Render, after applying any gesture input. The
// frame delta is unused here; light animation belongs to the host.
func (m *Map) Update(_ float64) {
	m.tiles.UpdateTileSet(m.view.VisibleTiles())
}

// Render draws one frame of the loaded visible tiles.
func (m *Map) Render() {
	m.pipeline.Render(m.scene, m.view, m.tiles.VisibleTiles())
}

// OnContextDestroyed invalidates every GPU handle and rebuilds the
// shaders against the new context. Tile geometry is kept; meshes
// re-upload on their next draw.
func (m *Map) OnContextDestroyed() error {
	return m.pipeline.OnContextLost(m.scene)
}

// CaptureScreenshot saves the last rendered frame as a PNG under dir
// and returns the written path. Call it after Render, from the thread
// owning the context.
func (m *Map) CaptureScreenshot(dir string) (string, error) {
	w, h := m.view.Viewport()
	pixels := m.pipeline.ReadPixels(w, h)
	return debug.NewScreenshot(dir).SavePixels(pixels, w, h)
}

// Teardown stops all fetch work and frees GPU resources. The map must
// not be used afterwards.
func (m *Map) Teardown() {
	m.tiles.Teardown()
	if m.initialized {
		m.pipeline.Teardown(m.scene)
		m.initialized = false
	}
}

// HandleTapGesture nudges the camera by a screen-space delta, scaled to
// ground meters for the current zoom.
func (m *Map) HandleTapGesture(x, y float64) {
	s := m.view.InvZoomScale()
	m.view.Translate(x*s, y*s)
	m.log.Debug("tap", zap.Float64("x", x), zap.Float64("y", y))
}

// HandleDoubleTapGesture is reserved; it only logs for now.
func (m *Map) HandleDoubleTapGesture(x, y float64) {
	m.log.Debug("double tap", zap.Float64("x", x), zap.Float64("y", y))
}

// HandlePanGesture pans the camera by a screen-space velocity. Screen x
// grows right and y grows down, so the world moves opposite the drag.
func (m *Map) HandlePanGesture(vx, vy float64) {
	s := m.view.InvZoomScale()
	m.view.Translate(-vx*s, vy*s)
}

// HandlePinchGesture zooms fractionally by log2 of the scale factor,
// keeping the world point under the gesture focus fixed.
func (m *Map) HandlePinchGesture(x, y, scale float64) {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return
	}
	m.view.ZoomAround(x, y, math.Log2(scale))
}
