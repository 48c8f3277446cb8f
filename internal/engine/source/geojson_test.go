package source

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"

	"github.com/meridianmaps/meridian/internal/engine/projection"
)

// testTile is a zoom-14 tile over central Berlin.
var testTile = maptile.At(orb.Point{13.4050, 52.5200}, 14)

func boxAround(c orb.Point, d float64) orb.Polygon {
	return orb.Polygon{{
		{c[0] - d, c[1] - d},
		{c[0] + d, c[1] - d},
		{c[0] + d, c[1] + d},
		{c[0] - d, c[1] + d},
		{c[0] - d, c[1] - d},
	}}
}

func testCollection(t *testing.T) []byte {
	t.Helper()
	c := testTile.Center()

	fc := geojson.NewFeatureCollection()

	water := geojson.NewFeature(boxAround(c, 0.002))
	water.Properties["layer"] = "water"
	fc.Append(water)

	// No layer property: a line defaults to the roads layer.
	road := geojson.NewFeature(orb.LineString{
		{c[0] - 0.01, c[1]}, {c[0] + 0.01, c[1]},
	})
	fc.Append(road)

	far := geojson.NewFeature(boxAround(orb.Point{c[0] + 1, c[1]}, 0.002))
	far.Properties["layer"] = "faraway"
	fc.Append(far)

	data, err := fc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return data
}

func TestGeoJSONRequest(t *testing.T) {
	proj := projection.NewMercator()
	s, err := NewGeoJSON("test", testCollection(t), proj)
	if err != nil {
		t.Fatalf("NewGeoJSON: %v", err)
	}

	data, err := s.Request(context.Background(), testTile)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	water := data.Find("water")
	if water == nil || len(water.Polygons) == 0 {
		t.Fatal("water layer missing")
	}
	roads := data.Find("roads")
	if roads == nil || len(roads.Lines) == 0 {
		t.Fatal("default roads layer missing")
	}
	if data.Find("faraway") != nil {
		t.Error("distant feature leaked into the tile")
	}

	// Geometry must be tile-local: within the tile span plus the clip
	// buffer.
	b := proj.TileBounds(testTile)
	span := b.Max[0] - b.Min[0]
	slack := span * 2 * clipBufferFrac
	for _, p := range water.Polygons {
		for _, ring := range p {
			for _, pt := range ring {
				if pt[0] < -slack || pt[0] > span+slack || pt[1] < -slack || pt[1] > span+slack {
					t.Fatalf("vertex %v outside tile-local range [0, %v]", pt, span)
				}
			}
		}
	}
}

func TestGeoJSONEmptyTile(t *testing.T) {
	s, err := NewGeoJSON("test", testCollection(t), projection.NewMercator())
	if err != nil {
		t.Fatalf("NewGeoJSON: %v", err)
	}
	empty := maptile.At(orb.Point{-100, 40}, 14)
	data, err := s.Request(context.Background(), empty)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if !data.Empty() {
		t.Errorf("tile on another continent has %d layers", len(data.Layers))
	}
}

func TestGeoJSONCancelled(t *testing.T) {
	s, err := NewGeoJSON("test", testCollection(t), projection.NewMercator())
	if err != nil {
		t.Fatalf("NewGeoJSON: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Request(ctx, testTile); err != context.Canceled {
		t.Errorf("Request on cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestGeoJSONRejectsGarbage(t *testing.T) {
	if _, err := NewGeoJSON("bad", []byte("{not json"), projection.NewMercator()); err == nil {
		t.Error("garbage input accepted")
	}
}

func TestGeoJSONSharedStateUntouched(t *testing.T) {
	proj := projection.NewMercator()
	s, err := NewGeoJSON("test", testCollection(t), proj)
	if err != nil {
		t.Fatalf("NewGeoJSON: %v", err)
	}
	poly := s.features[0].geom.(orb.Polygon)
	before := poly[0][0]

	// Requests clone before clipping, so repeated requests must see
	// identical source geometry.
	for i := 0; i < 3; i++ {
		if _, err := s.Request(context.Background(), testTile); err != nil {
			t.Fatalf("Request %d: %v", i, err)
		}
	}
	if poly[0][0] != before {
		t.Error("request mutated prepared features")
	}
}
