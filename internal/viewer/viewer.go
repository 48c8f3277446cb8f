// Package viewer implements the interactive demo host: an SDL2 window,
// an input pump, and one map wired from configuration.
package viewer

import (
	"fmt"
	"math"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/meridianmaps/meridian/internal/config"
	"github.com/meridianmaps/meridian/internal/engine"
	"github.com/meridianmaps/meridian/internal/engine/debug"
	"github.com/meridianmaps/meridian/internal/engine/input"
	"github.com/meridianmaps/meridian/internal/engine/lighting"
	"github.com/meridianmaps/meridian/internal/engine/projection"
	"github.com/meridianmaps/meridian/internal/engine/source"
	"github.com/meridianmaps/meridian/internal/engine/window"
	"github.com/meridianmaps/meridian/internal/logger"
	pmath "github.com/meridianmaps/meridian/pkg/math"
)

// keyPanPx is the pan distance of one arrow key press, in pixels.
const keyPanPx = 60.0

// Viewer is the running demo application.
type Viewer struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool

	window *window.Window
	input  *input.Input
	m      *engine.Map

	// The viewer owns the animated lights as concrete types and mutates
	// their fields each frame.
	orbit *lighting.PointLight
	sweep *lighting.SpotLight

	grid *debug.GridStyle

	start time.Time
}

// New creates the window and GL context, wires the map from config, and
// initializes it. Must run on the main thread.
func New(cfg *config.Config) (*Viewer, error) {
	if err := projection.CheckLonLat(cfg.Map.StartLon, cfg.Map.StartLat); err != nil {
		return nil, fmt.Errorf("config: start position: %w", err)
	}

	v := &Viewer{
		cfg:   cfg,
		log:   logger.Named("viewer"),
		start: time.Now(),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      "Meridian",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	src, err := buildSource(cfg)
	if err != nil {
		v.window.Close()
		return nil, err
	}

	sc, err := engine.DefaultScene(cfg)
	if err != nil {
		v.window.Close()
		return nil, err
	}

	// Tile-grid overlay, toggled with G. Added last so it draws over the
	// map styles.
	v.grid = debug.NewGridStyle("tilegrid", projection.NewMercator())
	if err := sc.AddStyle(v.grid); err != nil {
		v.window.Close()
		return nil, err
	}

	// Demo lighting: a fixed sun, a green point light orbiting the view
	// center, and a spot light sweeping like a lighthouse.
	sun := lighting.NewDirectionalLight("sun", pmath.Vec3{X: -1, Y: -1, Z: 1})
	v.orbit = lighting.NewPointLight("orbit", pmath.Vec3{Z: 100}, 150)
	v.orbit.Diffuse = pmath.Vec3{Y: 1}
	v.sweep = lighting.NewSpotLight("sweep", pmath.Vec3{Z: 100}, pmath.Vec3{X: 1, Z: -1}, 18)
	v.sweep.Diffuse = pmath.Vec3{X: 0.6, Y: 0.6, Z: 0.3}
	for _, l := range []lighting.Light{sun, v.orbit, v.sweep} {
		if err := sc.AddLight(l); err != nil {
			v.window.Close()
			return nil, err
		}
	}

	v.m = engine.New(cfg, sc, src, logger.Named("map"))
	if err := v.m.Initialize(); err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to initialize map: %w", err)
	}
	v.m.Resize(v.window.GetSize())

	v.input = input.New()

	v.log.Info("viewer ready",
		zap.String("source", src.Name()),
		zap.Float64("zoom", v.m.View().Zoom()),
	)
	return v, nil
}

// buildSource assembles the configured data sources, fanned out behind
// a Multi when more than one is set.
func buildSource(cfg *config.Config) (source.Source, error) {
	proj := projection.NewMercator()
	var srcs []source.Source

	if cfg.Scene.GeoJSON != "" {
		s, err := source.NewGeoJSONFromFile("geojson", cfg.Scene.GeoJSON, proj)
		if err != nil {
			return nil, fmt.Errorf("loading geojson source: %w", err)
		}
		srcs = append(srcs, s)
	}
	if cfg.Scene.TileURL != "" {
		srcs = append(srcs, source.NewMVT("mvt", cfg.Scene.TileURL, proj, nil))
	}

	switch len(srcs) {
	case 0:
		return nil, fmt.Errorf("config: no data source set (need scene.geojson or scene.tile_url)")
	case 1:
		return srcs[0], nil
	default:
		return source.NewMulti("all", srcs...), nil
	}
}

// Run starts the main loop: input, update, render, swap.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		for _, event := range v.input.Events() {
			v.handleEvent(event)
		}

		v.animateLights()
		v.m.Update(dt)
		v.m.Render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			loaded, pending, cached := v.m.Counts()
			v.log.Debug("frame stats",
				zap.Int("fps", frameCount),
				zap.Int("loaded", loaded),
				zap.Int("pending", pending),
				zap.Int("cached", cached),
				zap.Float64("zoom", v.m.View().Zoom()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvent(e input.Event) {
	switch e.Type {
	case input.EventQuit:
		v.running = false
	case input.EventWindowResize:
		v.m.Resize(e.Width, e.Height)
	case input.EventKeyDown:
		v.handleKey(e.Key)
	case input.EventTap:
		v.m.HandleTapGesture(e.X, e.Y)
	case input.EventDoubleTap:
		v.m.HandleDoubleTapGesture(e.X, e.Y)
	case input.EventPan:
		v.m.HandlePanGesture(e.DX, e.DY)
	case input.EventPinch:
		v.m.HandlePinchGesture(e.X, e.Y, e.Scale)
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	w, h := v.m.View().Viewport()
	switch key {
	case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
		v.running = false

	case sdl.SCANCODE_L:
		// Exercise context loss for real: drop the GL context, make a
		// new one, and recover without refetching tiles.
		if err := v.window.RecreateContext(); err != nil {
			v.log.Error("context recreation failed", zap.Error(err))
			v.running = false
			return
		}
		if err := v.m.OnContextDestroyed(); err != nil {
			v.log.Error("context recovery failed", zap.Error(err))
			v.running = false
		}

	case sdl.SCANCODE_G:
		v.grid.Visible = !v.grid.Visible
		v.log.Info("tile grid toggled", zap.Bool("visible", v.grid.Visible))

	case sdl.SCANCODE_F12:
		if path, err := v.m.CaptureScreenshot("screenshots"); err != nil {
			v.log.Error("screenshot failed", zap.Error(err))
		} else {
			v.log.Info("screenshot saved", zap.String("path", path))
		}

	case sdl.SCANCODE_LEFT:
		v.m.HandlePanGesture(keyPanPx, 0)
	case sdl.SCANCODE_RIGHT:
		v.m.HandlePanGesture(-keyPanPx, 0)
	case sdl.SCANCODE_UP:
		v.m.HandlePanGesture(0, keyPanPx)
	case sdl.SCANCODE_DOWN:
		v.m.HandlePanGesture(0, -keyPanPx)

	case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
		v.m.HandlePinchGesture(float64(w)/2, float64(h)/2, 2)
	case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
		v.m.HandlePinchGesture(float64(w)/2, float64(h)/2, 0.5)
	}
}

// animateLights replays the demo animation: the point light circles the
// view center while the spot light's beam sweeps around it.
func (v *Viewer) animateLights() {
	t := time.Since(v.start).Seconds()
	v.orbit.Position = pmath.Vec3{
		X: float32(100 * math.Cos(t)),
		Y: float32(100 * math.Sin(t)),
		Z: 100,
	}
	v.sweep.Direction = pmath.Vec3{
		X: float32(math.Cos(t)),
		Y: float32(math.Sin(t)),
		Z: -1,
	}
}

// Close tears down the map and window and persists the window size.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.window != nil && !v.cfg.Graphics.Fullscreen {
		if w, h := v.window.GetSize(); w > 0 && h > 0 {
			v.cfg.Graphics.Width = w
			v.cfg.Graphics.Height = h
		}
	}
	if v.m != nil {
		v.m.Teardown()
	}
	if v.window != nil {
		v.window.Close()
	}
	if err := v.cfg.Save(); err != nil {
		v.log.Warn("failed to save config", zap.Error(err))
	}
}
