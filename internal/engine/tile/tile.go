// Package tile tracks the lifecycle of map tiles: which ones the view
// needs, fetching them in the background, and caching the results.
package tile

import (
	"context"

	"github.com/paulmach/orb/maptile"

	"github.com/meridianmaps/meridian/internal/engine/mesh"
)

// State is a tile's position in its fetch lifecycle.
type State int

const (
	// StateNotNeeded marks a cached tile outside the wanted set.
	StateNotNeeded State = iota

	// StateRequested marks a tile with a fetch in flight.
	StateRequested

	// StateLoaded marks a tile whose meshes are ready to draw.
	StateLoaded

	// StateFailed marks a tile whose fetch exhausted its retries.
	StateFailed

	// StateCancelled marks a tile whose fetch was abandoned because the
	// view moved on.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateNotNeeded:
		return "not-needed"
	case StateRequested:
		return "requested"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// MapTile is one tracked tile. All mutable fields are guarded by the
// manager's lock; render code only touches meshes after the tile was
// published as loaded.
type MapTile struct {
	id     maptile.Tile
	state  State
	meshes map[string]*mesh.Mesh

	// lastSeen is the manager frame this tile was last wanted, for
	// least-recently-visible eviction.
	lastSeen uint64

	cancel context.CancelFunc
}

// ID returns the tile address.
func (t *MapTile) ID() maptile.Tile { return t.id }

// Mesh returns the mesh built for the named style, or nil.
func (t *MapTile) Mesh(style string) *mesh.Mesh {
	return t.meshes[style]
}

// dispose frees all GPU meshes. Caller must hold the manager lock and
// the GL context.
func (t *MapTile) dispose() {
	for _, m := range t.meshes {
		m.Dispose()
	}
	t.meshes = nil
}
