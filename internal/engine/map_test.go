package engine

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"go.uber.org/zap"

	"github.com/meridianmaps/meridian/internal/config"
	"github.com/meridianmaps/meridian/internal/engine/geom"
)

// countingSource serves one square polygon for every tile and counts
// requests, so tests can assert fetch behavior.
type countingSource struct {
	mu sync.Mutex
	n  int
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Request(_ context.Context, _ maptile.Tile) (*geom.TileData, error) {
	s.mu.Lock()
	s.n++
	s.mu.Unlock()
	data := &geom.TileData{}
	data.Layer("earth").AddPolygon(orb.Polygon{{{0, 0}, {50, 0}, {50, 50}, {0, 50}, {0, 0}}})
	return data, nil
}

func (s *countingSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

func testConfig() *config.Config {
	cfg := config.Default()
	// A small viewport keeps the visible tile set tiny.
	cfg.Graphics.Width = 256
	cfg.Graphics.Height = 256
	return cfg
}

func testMap(t *testing.T, src *countingSource) *Map {
	t.Helper()
	cfg := testConfig()
	sc, err := DefaultScene(cfg)
	if err != nil {
		t.Fatalf("DefaultScene: %v", err)
	}
	return New(cfg, sc, src, zap.NewNop())
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestDefaultSceneStyles(t *testing.T) {
	sc, err := DefaultScene(testConfig())
	if err != nil {
		t.Fatalf("DefaultScene: %v", err)
	}
	styles := sc.Styles()
	if len(styles) != 2 {
		t.Fatalf("expected 2 styles, got %d", len(styles))
	}
	if styles[0].Name() != "polygon" || styles[1].Name() != "polyline" {
		t.Errorf("unexpected style order: %q, %q", styles[0].Name(), styles[1].Name())
	}
}

func TestTapMovesCameraScaled(t *testing.T) {
	m := testMap(t, &countingSource{})

	x0, y0 := m.View().Center()
	m.HandleTapGesture(10, 20)
	x1, y1 := m.View().Center()

	// At the reference zoom the gesture scale is exactly PanSpeedScale.
	if got, want := x1-x0, 1.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("tap dx = %v, want %v", got, want)
	}
	if got, want := y1-y0, 2.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("tap dy = %v, want %v", got, want)
	}
}

func TestPanMovesOppositeDrag(t *testing.T) {
	m := testMap(t, &countingSource{})

	x0, y0 := m.View().Center()
	m.HandlePanGesture(100, 0)
	x1, y1 := m.View().Center()

	if got, want := x1-x0, -10.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("pan dx = %v, want %v", got, want)
	}
	if y1 != y0 {
		t.Errorf("pan moved y by %v, want 0", y1-y0)
	}
}

func TestPanScalesWithZoom(t *testing.T) {
	m := testMap(t, &countingSource{})
	m.View().SetZoom(15)

	x0, _ := m.View().Center()
	m.HandlePanGesture(100, 0)
	x1, _ := m.View().Center()

	// One level out doubles the ground distance per pixel.
	if got, want := x1-x0, -20.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("pan dx at zoom 15 = %v, want %v", got, want)
	}
}

func TestPinchZoomsFractionally(t *testing.T) {
	m := testMap(t, &countingSource{})
	w, h := m.View().Viewport()
	cx, cy := float64(w)/2, float64(h)/2

	m.HandlePinchGesture(cx, cy, 2)
	if got := m.View().Zoom(); math.Abs(got-17) > 1e-9 {
		t.Errorf("zoom after 2x pinch = %v, want 17", got)
	}
	m.HandlePinchGesture(cx, cy, 0.5)
	if got := m.View().Zoom(); math.Abs(got-16) > 1e-9 {
		t.Errorf("zoom after 0.5x pinch = %v, want 16", got)
	}
}

func TestPinchClampsAndRejectsBadScale(t *testing.T) {
	m := testMap(t, &countingSource{})
	m.View().SetZoom(18)

	m.HandlePinchGesture(128, 128, 8)
	if got := m.View().Zoom(); got != 18 {
		t.Errorf("zoom exceeded max: %v", got)
	}

	for _, scale := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		m.HandlePinchGesture(128, 128, scale)
		if got := m.View().Zoom(); got != 18 {
			t.Errorf("zoom changed by scale %v: %v", scale, got)
		}
	}
}

func TestDoubleTapIsReserved(t *testing.T) {
	m := testMap(t, &countingSource{})
	x0, y0 := m.View().Center()
	zoom := m.View().Zoom()

	m.HandleDoubleTapGesture(64, 64)

	if x1, y1 := m.View().Center(); x1 != x0 || y1 != y0 {
		t.Error("double tap moved the camera")
	}
	if m.View().Zoom() != zoom {
		t.Error("double tap changed zoom")
	}
}

func TestUpdateLoadsVisibleTiles(t *testing.T) {
	src := &countingSource{}
	m := testMap(t, src)
	defer m.Teardown()

	m.Update(0)
	_, _, total := m.Counts()
	if total == 0 {
		t.Fatal("update requested no tiles")
	}
	waitFor(t, "all tiles loaded", func() bool {
		loaded, _, _ := m.Counts()
		return loaded == total
	})

	// A steady view issues no further fetches.
	before := src.count()
	m.Update(0)
	m.Update(0)
	if got := src.count(); got != before {
		t.Errorf("steady updates issued %d extra fetches", got-before)
	}
}

func TestResizeUpdatesViewport(t *testing.T) {
	m := testMap(t, &countingSource{})
	m.Resize(800, 600)
	if w, h := m.View().Viewport(); w != 800 || h != 600 {
		t.Errorf("viewport = %dx%d, want 800x600", w, h)
	}
}
