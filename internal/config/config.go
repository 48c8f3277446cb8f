// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Map      MapConfig      `yaml:"map"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// MapConfig holds camera and tile-cache tuning.
type MapConfig struct {
	StartLon  float64 `yaml:"start_lon"`
	StartLat  float64 `yaml:"start_lat"`
	StartZoom float64 `yaml:"start_zoom"`
	MinZoom   float64 `yaml:"min_zoom"`
	MaxZoom   float64 `yaml:"max_zoom"`

	// CacheTiles bounds the number of decoded tiles kept in memory,
	// including tiles no longer visible (pan/zoom smoothing).
	CacheTiles int `yaml:"cache_tiles"`

	// FetchRetries and RetryBackoff control transient fetch failure
	// handling before a tile is left failed.
	FetchRetries int           `yaml:"fetch_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// TileMargin expands the visible tile query by a fraction of the
	// viewport on each side to hide seams during motion.
	TileMargin float64 `yaml:"tile_margin"`
}

// SceneConfig holds style and data source settings.
type SceneConfig struct {
	// PolygonLayers are drawn by the polygon style, bottom to top.
	PolygonLayers []string `yaml:"polygon_layers"`
	// LineLayers are drawn by the polyline style.
	LineLayers []string `yaml:"line_layers"`

	// GeoJSON is an optional path to a FeatureCollection served as tiles.
	GeoJSON string `yaml:"geojson"`
	// TileURL is an optional MVT endpoint with {z}/{x}/{y} placeholders.
	TileURL string `yaml:"tile_url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
// The start position is lower Manhattan, which has dense enough data to
// exercise every layer.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Map: MapConfig{
			StartLon:     -74.00796,
			StartLat:     40.70361,
			StartZoom:    16,
			MinZoom:      0,
			MaxZoom:      18,
			CacheTiles:   128,
			FetchRetries: 3,
			RetryBackoff: 500 * time.Millisecond,
			TileMargin:   0.125,
		},
		Scene: SceneConfig{
			PolygonLayers: []string{"earth", "landuse", "water", "buildings"},
			LineLayers:    []string{"roads"},
			GeoJSON:       "",
			TileURL:       "https://demotiles.maplibre.org/tiles/{z}/{x}/{y}.pbf",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
