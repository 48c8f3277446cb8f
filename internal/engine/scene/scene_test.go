package scene

import (
	"errors"
	"testing"

	"github.com/paulmach/orb/maptile"

	"github.com/meridianmaps/meridian/internal/engine/geom"
	"github.com/meridianmaps/meridian/internal/engine/lighting"
	"github.com/meridianmaps/meridian/internal/engine/mesh"
	pmath "github.com/meridianmaps/meridian/pkg/math"
)

// stubStyle avoids GL so scene behavior is testable headless.
type stubStyle struct {
	name   string
	built  int
	builds int
	empty  bool
}

func (s *stubStyle) Name() string                  { return s.name }
func (s *stubStyle) Build(*mesh.Registry) error    { s.built++; return nil }
func (s *stubStyle) Dispose()                      {}
func (s *stubStyle) SetupFrame(pmath.Mat4, []lighting.Light) {}
func (s *stubStyle) DrawTile(pmath.Mat4, *mesh.Mesh)         {}

func (s *stubStyle) BuildMesh(maptile.Tile, *geom.TileData) *mesh.Data {
	s.builds++
	if s.empty {
		return nil
	}
	return &mesh.Data{Indices: []uint32{0, 1, 2}}
}

func TestSceneFreezesAfterBuild(t *testing.T) {
	s := New()
	if err := s.AddStyle(&stubStyle{name: "fill"}); err != nil {
		t.Fatalf("AddStyle: %v", err)
	}
	if err := s.AddLight(lighting.NewDirectionalLight("sun", pmath.Vec3{Z: 1})); err != nil {
		t.Fatalf("AddLight: %v", err)
	}

	if err := s.BuildShaders(nil); err != nil {
		t.Fatalf("BuildShaders: %v", err)
	}
	if !s.Built() {
		t.Fatal("scene not marked built")
	}
	if err := s.AddStyle(&stubStyle{name: "late"}); !errors.Is(err, ErrSceneBuilt) {
		t.Errorf("AddStyle after build = %v, want ErrSceneBuilt", err)
	}
	if err := s.AddLight(lighting.NewPointLight("late", pmath.Vec3{}, 1)); !errors.Is(err, ErrSceneBuilt) {
		t.Errorf("AddLight after build = %v, want ErrSceneBuilt", err)
	}
}

func TestSceneRejectsDuplicateStyles(t *testing.T) {
	s := New()
	if err := s.AddStyle(&stubStyle{name: "fill"}); err != nil {
		t.Fatalf("first AddStyle: %v", err)
	}
	if err := s.AddStyle(&stubStyle{name: "fill"}); err == nil {
		t.Error("duplicate style name accepted")
	}
}

func TestSceneLightLimit(t *testing.T) {
	s := New()
	for i := 0; i < lighting.MaxLights; i++ {
		l := lighting.NewPointLight("l", pmath.Vec3{}, 1)
		if err := s.AddLight(l); err != nil {
			t.Fatalf("light %d rejected: %v", i, err)
		}
	}
	if err := s.AddLight(lighting.NewPointLight("overflow", pmath.Vec3{}, 1)); err == nil {
		t.Error("light beyond shader limit accepted")
	}
}

func TestRebuildAfterContextLoss(t *testing.T) {
	s := New()
	fill := &stubStyle{name: "fill"}
	if err := s.AddStyle(fill); err != nil {
		t.Fatal(err)
	}
	if err := s.BuildShaders(nil); err != nil {
		t.Fatal(err)
	}
	// Eager shader rebuild after context loss runs BuildShaders again.
	if err := s.BuildShaders(nil); err != nil {
		t.Fatal(err)
	}
	if fill.built != 2 {
		t.Errorf("style built %d times, want 2", fill.built)
	}
}

func TestBuildMeshesSkipsEmptyStyles(t *testing.T) {
	s := New()
	fill := &stubStyle{name: "fill"}
	lines := &stubStyle{name: "lines", empty: true}
	if err := s.AddStyle(fill); err != nil {
		t.Fatal(err)
	}
	if err := s.AddStyle(lines); err != nil {
		t.Fatal(err)
	}

	var data geom.TileData
	builds := s.BuildMeshes(maptile.New(0, 0, 1), &data)
	if len(builds) != 1 {
		t.Fatalf("got %d mesh builds, want 1", len(builds))
	}
	if builds["fill"] == nil {
		t.Error("fill style missing from builds")
	}
	if fill.builds != 1 || lines.builds != 1 {
		t.Errorf("style build counts = %d, %d, want 1, 1", fill.builds, lines.builds)
	}

	if got := s.BuildMeshes(maptile.New(0, 0, 1), nil); got != nil {
		t.Error("nil tile data should yield nil builds")
	}
}
