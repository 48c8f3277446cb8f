// Package scene holds what the map draws: the ordered styles and the
// lights. A scene is assembled once, built, and immutable afterwards.
package scene

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb/maptile"

	"github.com/meridianmaps/meridian/internal/engine/geom"
	"github.com/meridianmaps/meridian/internal/engine/lighting"
	"github.com/meridianmaps/meridian/internal/engine/mesh"
	"github.com/meridianmaps/meridian/internal/engine/style"
)

// ErrSceneBuilt rejects mutations after BuildShaders has run. Hosts
// compose the scene up front; swapping content mid-flight would race
// the tile workers building meshes against it.
var ErrSceneBuilt = errors.New("scene: already built")

// Scene is the drawable content of a map.
type Scene struct {
	styles []style.Style
	lights []lighting.Light
	built  bool
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// AddStyle appends a style to the draw order. Style names must be
// unique; they key the per-tile meshes.
func (s *Scene) AddStyle(st style.Style) error {
	if s.built {
		return ErrSceneBuilt
	}
	for _, have := range s.styles {
		if have.Name() == st.Name() {
			return fmt.Errorf("scene: duplicate style %q", st.Name())
		}
	}
	s.styles = append(s.styles, st)
	return nil
}

// AddLight appends a light, up to the shader limit.
func (s *Scene) AddLight(l lighting.Light) error {
	if s.built {
		return ErrSceneBuilt
	}
	if len(s.lights) >= lighting.MaxLights {
		return fmt.Errorf("scene: more than %d lights", lighting.MaxLights)
	}
	s.lights = append(s.lights, l)
	return nil
}

// Styles returns the styles in draw order.
func (s *Scene) Styles() []style.Style { return s.styles }

// Lights returns the scene lights.
func (s *Scene) Lights() []lighting.Light { return s.lights }

// Built reports whether BuildShaders has run.
func (s *Scene) Built() bool { return s.built }

// BuildShaders compiles every style's program and freezes the scene.
// Call it again after a context loss to relink eagerly. Needs the GL
// context current.
func (s *Scene) BuildShaders(reg *mesh.Registry) error {
	s.built = true
	for _, st := range s.styles {
		if err := st.Build(reg); err != nil {
			return fmt.Errorf("scene: %w", err)
		}
	}
	return nil
}

// BuildMeshes tessellates one tile for every style. It is handed to the
// tile manager and runs on fetch goroutines; styles must already be
// frozen by then.
func (s *Scene) BuildMeshes(id maptile.Tile, data *geom.TileData) map[string]*mesh.Data {
	if data == nil {
		return nil
	}
	out := make(map[string]*mesh.Data, len(s.styles))
	for _, st := range s.styles {
		if d := st.BuildMesh(id, data); d != nil {
			out[st.Name()] = d
		}
	}
	return out
}

// Dispose releases every style's GPU objects.
func (s *Scene) Dispose() {
	for _, st := range s.styles {
		st.Dispose()
	}
}
