package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagLon        = flag.Float64("lon", 0, "Start longitude")
	flagLat        = flag.Float64("lat", 0, "Start latitude")
	flagZoom       = flag.Float64("zoom", 0, "Start zoom level")
	flagGeoJSON    = flag.String("geojson", "", "Path to a GeoJSON data source")
	flagTiles      = flag.String("tiles", "", "MVT tile endpoint ({z}/{x}/{y} placeholders)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagLon != 0 {
		cfg.Map.StartLon = *flagLon
	}
	if *flagLat != 0 {
		cfg.Map.StartLat = *flagLat
	}
	if *flagZoom != 0 {
		cfg.Map.StartZoom = *flagZoom
	}
	if *flagGeoJSON != "" {
		cfg.Scene.GeoJSON = *flagGeoJSON
	}
	if *flagTiles != "" {
		cfg.Scene.TileURL = *flagTiles
	}
}
