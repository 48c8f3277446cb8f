package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Map.StartZoom != 16 {
		t.Errorf("expected start zoom 16, got %f", cfg.Map.StartZoom)
	}
	if cfg.Map.MinZoom > cfg.Map.MaxZoom {
		t.Error("min zoom must not exceed max zoom")
	}
	if cfg.Map.CacheTiles != 128 {
		t.Errorf("expected cache_tiles 128, got %d", cfg.Map.CacheTiles)
	}
	if cfg.Map.FetchRetries != 3 {
		t.Errorf("expected fetch_retries 3, got %d", cfg.Map.FetchRetries)
	}
	if cfg.Map.RetryBackoff != 500*time.Millisecond {
		t.Errorf("expected retry_backoff 500ms, got %v", cfg.Map.RetryBackoff)
	}

	if len(cfg.Scene.PolygonLayers) == 0 || cfg.Scene.PolygonLayers[0] != "earth" {
		t.Errorf("expected polygon layers starting with earth, got %v", cfg.Scene.PolygonLayers)
	}
	if len(cfg.Scene.LineLayers) != 1 || cfg.Scene.LineLayers[0] != "roads" {
		t.Errorf("expected line layers [roads], got %v", cfg.Scene.LineLayers)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

map:
  start_lon: 13.40495
  start_lat: 52.52001
  start_zoom: 12
  cache_tiles: 64
  fetch_retries: 5
  retry_backoff: 250ms

scene:
  polygon_layers: [water]
  line_layers: [roads, paths]

logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen true")
	}
	if cfg.Map.StartLon != 13.40495 || cfg.Map.StartLat != 52.52001 {
		t.Errorf("expected Berlin start, got (%f, %f)", cfg.Map.StartLon, cfg.Map.StartLat)
	}
	if cfg.Map.CacheTiles != 64 {
		t.Errorf("expected cache_tiles 64, got %d", cfg.Map.CacheTiles)
	}
	if cfg.Map.RetryBackoff != 250*time.Millisecond {
		t.Errorf("expected retry_backoff 250ms, got %v", cfg.Map.RetryBackoff)
	}
	if len(cfg.Scene.LineLayers) != 2 {
		t.Errorf("expected 2 line layers, got %v", cfg.Scene.LineLayers)
	}
	// Unset fields keep their defaults.
	if cfg.Map.MaxZoom != 18 {
		t.Errorf("expected default max_zoom 18, got %f", cfg.Map.MaxZoom)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Map.MinZoom = 10
	cfg.Map.MaxZoom = 5
	if err := cfg.validate(); err == nil {
		t.Error("expected error for min_zoom above max_zoom")
	}

	cfg = Default()
	cfg.Map.CacheTiles = 0
	if err := cfg.validate(); err == nil {
		t.Error("expected error for zero cache_tiles")
	}

	cfg = Default()
	cfg.Map.FetchRetries = -1
	if err := cfg.validate(); err == nil {
		t.Error("expected error for negative fetch_retries")
	}

	if err := Default().validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := Default()
	cfg.Map.StartZoom = 9
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Map.StartZoom != 9 {
		t.Errorf("expected start zoom 9 after round trip, got %f", loaded.Map.StartZoom)
	}
}
