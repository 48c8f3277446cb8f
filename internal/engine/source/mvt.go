package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/project"

	"github.com/meridianmaps/meridian/internal/engine/geom"
	"github.com/meridianmaps/meridian/internal/engine/projection"
)

const (
	// maxTileBytes caps a single tile download.
	maxTileBytes = 16 << 20

	userAgent = "meridian/1.0"
)

var gzipMagic = []byte{0x1f, 0x8b}

// MVT fetches Mapbox vector tiles over HTTP from a URL template with
// {z}, {x} and {y} placeholders.
type MVT struct {
	name     string
	template string
	proj     projection.Projection
	client   *http.Client
}

// NewMVT builds an HTTP tile source. A nil client gets a default with a
// 15 second timeout.
func NewMVT(name, urlTemplate string, proj projection.Projection, client *http.Client) *MVT {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &MVT{name: name, template: urlTemplate, proj: proj, client: client}
}

// Name identifies the source in logs.
func (s *MVT) Name() string { return s.name }

// URL expands the template for one tile.
func (s *MVT) URL(t maptile.Tile) string {
	r := strings.NewReplacer(
		"{z}", strconv.FormatUint(uint64(t.Z), 10),
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
	)
	return r.Replace(s.template)
}

// Request downloads and decodes one tile.
func (s *MVT) Request(ctx context.Context, t maptile.Tile) (*geom.TileData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(t), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		// Servers answer empty regions both ways; treat as an empty tile.
		return &geom.TileData{}, nil
	default:
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	layers, err := unmarshalTile(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return s.decode(layers, t), nil
}

func unmarshalTile(body []byte) (mvt.Layers, error) {
	if bytes.HasPrefix(body, gzipMagic) {
		return mvt.UnmarshalGzipped(body)
	}
	return mvt.Unmarshal(body)
}

// decode moves the tile's features into tile-local meters. The server
// already clipped and generalized them.
func (s *MVT) decode(layers mvt.Layers, t maptile.Tile) *geom.TileData {
	layers.ProjectToWGS84(t)
	origin := s.proj.TileBounds(t).Min

	var data geom.TileData
	for _, layer := range layers {
		if layer == nil || len(layer.Features) == 0 {
			continue
		}
		out := data.Layer(layer.Name)
		for _, f := range layer.Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			g := project.Geometry(f.Geometry, project.WGS84.ToMercator)
			translate(g, -origin[0], -origin[1])
			appendGeometry(out, g)
		}
	}
	return &data
}
