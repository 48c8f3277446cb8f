// Package renderer drives the per-frame GL work: fixed pipeline state,
// the draw loop over styles and tiles, and recovery when the GL context
// is replaced.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/meridianmaps/meridian/internal/engine/mesh"
	"github.com/meridianmaps/meridian/internal/engine/projection"
	"github.com/meridianmaps/meridian/internal/engine/scene"
	"github.com/meridianmaps/meridian/internal/engine/tile"
	"github.com/meridianmaps/meridian/internal/engine/view"
	pmath "github.com/meridianmaps/meridian/pkg/math"
)

// clearColor is the background behind the map.
var clearColor = [3]float32{0.3, 0.3, 0.3}

// Pipeline owns the GL-side rendering state, including the registry of
// every GPU resource alive in the current context.
type Pipeline struct {
	log  *zap.Logger
	proj projection.Projection
	reg  *mesh.Registry

	drawCalls int
}

// NewPipeline builds a pipeline. No GL calls happen until Init.
func NewPipeline(proj projection.Projection, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		log:  log,
		proj: proj,
		reg:  mesh.NewRegistry(),
	}
}

// Registry exposes the resource registry so tile meshes and shader
// programs can enroll for context-loss invalidation.
func (p *Pipeline) Registry() *mesh.Registry { return p.reg }

// Init loads the GL bindings, sets the fixed state the map relies on,
// and compiles the scene's shaders. The GL context must be current.
func (p *Pipeline) Init(sc *scene.Scene) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	p.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	p.applyState()
	if err := sc.BuildShaders(p.reg); err != nil {
		return err
	}
	drainErrors(p.log, "init")
	return nil
}

// applyState sets the fixed-function state every frame assumes. A new
// context starts from GL defaults, so context recovery re-runs this.
func (p *Pipeline) applyState() {
	// Opaque geometry only: no blending, depth sorted with LEQUAL so
	// coplanar later draws win, back faces culled.
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.ClearDepth(1)
	gl.DepthRange(0, 1)
	gl.Enable(gl.CULL_FACE)
	gl.FrontFace(gl.CCW)
	gl.CullFace(gl.BACK)
	gl.ClearColor(clearColor[0], clearColor[1], clearColor[2], 1)
}

// Resize updates the GL viewport.
func (p *Pipeline) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	drainErrors(p.log, "resize")
}

// Render draws one frame: every style over every visible tile.
func (p *Pipeline) Render(sc *scene.Scene, v *view.View, tiles []*tile.MapTile) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	vp := v.ViewProj()
	eyeX, eyeY, _ := v.Eye()
	lights := sc.Lights()

	p.drawCalls = 0
	for _, st := range sc.Styles() {
		st.SetupFrame(vp, lights)
		for _, t := range tiles {
			m := t.Mesh(st.Name())
			if m.Empty() {
				continue
			}
			// The eye offset is removed in float64; tile-local vertex
			// coordinates are small enough for float32.
			origin := p.proj.TileBounds(t.ID()).Min
			model := pmath.Translate(
				float32(origin[0]-eyeX),
				float32(origin[1]-eyeY),
				0,
			)
			st.DrawTile(model, m)
			p.drawCalls++
		}
	}
	drainErrors(p.log, "render")
}

// DrawCalls reports how many tile meshes the last Render drew.
func (p *Pipeline) DrawCalls() int { return p.drawCalls }

// ReadPixels returns the framebuffer contents as tightly packed RGBA,
// bottom row first.
func (p *Pipeline) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

// OnContextLost tells every live resource its GL handles are gone,
// re-applies the fixed state, and eagerly recompiles the scene's
// shaders against the new context. Tile meshes re-upload lazily on
// their next draw; nothing is re-fetched.
func (p *Pipeline) OnContextLost(sc *scene.Scene) error {
	p.reg.InvalidateAll()
	p.log.Info("GL context lost, resources invalidated",
		zap.Int("resources", p.reg.Len()),
	)
	p.applyState()
	if err := sc.BuildShaders(p.reg); err != nil {
		return err
	}
	drainErrors(p.log, "context-restore")
	return nil
}

// Teardown releases the scene's GPU objects while the context is still
// alive.
func (p *Pipeline) Teardown(sc *scene.Scene) {
	sc.Dispose()
	drainErrors(p.log, "teardown")
}
