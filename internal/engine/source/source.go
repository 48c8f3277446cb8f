// Package source produces tile feature data for the tile manager.
//
// A Source answers one tile at a time. Implementations must be safe for
// concurrent requests; the manager fans fetches out across goroutines.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulmach/orb/maptile"

	"github.com/meridianmaps/meridian/internal/engine/geom"
)

// ErrFetchFailed reports that a tile could not be retrieved. The manager
// treats it as retryable.
var ErrFetchFailed = errors.New("source: fetch failed")

// Source delivers the feature geometry of single tiles.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Request returns the tile's features in tile-local meters. A tile
	// with no features yields an empty TileData and a nil error.
	// Cancellation of ctx surfaces as context.Canceled.
	Request(ctx context.Context, t maptile.Tile) (*geom.TileData, error)
}

// Multi fans a request out to several sources and merges their layers.
type Multi struct {
	name    string
	sources []Source
}

// NewMulti combines sources under one name.
func NewMulti(name string, sources ...Source) *Multi {
	return &Multi{name: name, sources: sources}
}

// Name identifies the combined source.
func (m *Multi) Name() string { return m.name }

// Request queries every source in order. Partial results are returned as
// long as at least one source succeeds; if all fail the errors are
// joined.
func (m *Multi) Request(ctx context.Context, t maptile.Tile) (*geom.TileData, error) {
	var (
		data geom.TileData
		errs []error
		hits int
	)
	for _, s := range m.sources {
		d, err := s.Request(ctx, t)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		hits++
		data.Merge(d)
	}
	if hits == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &data, nil
}
