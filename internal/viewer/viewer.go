// Package viewer assembles an orrery frame: it loads the body table, mesh and
// textures, binds one geometry per body to the scene, and draws the
// starfield, orbit rings, bodies and atmosphere shells in order.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"time"

	"github.com/taigrr/orrery/internal/config"
	"github.com/taigrr/orrery/internal/logging"
	"github.com/taigrr/orrery/pkg/assets"
	"github.com/taigrr/orrery/pkg/math3d"
	"github.com/taigrr/orrery/pkg/models"
	"github.com/taigrr/orrery/pkg/render"
	"github.com/taigrr/orrery/pkg/scene"
)

// ringSegments is the chord count of an orbit ring.
const ringSegments = 96

// CellAspect is the height/width ratio of one half-block pixel.
const CellAspect = 1.0

// Viewer owns everything needed to draw frames of one scene.
type Viewer struct {
	Scene  *scene.Scene
	Camera *render.OrbitCamera
	Clock  *scene.Clock

	Projection render.Projection
	Background color.RGBA
	ShowOrbits bool

	mesh       *models.Mesh
	fb         *render.Framebuffer
	rast       *render.Rasterizer
	wire       *render.Wireframe
	backdrop   []*render.Geometry
	opaque     []*render.Geometry
	shells     []*render.Geometry
	light      math3d.Vec4
	renderErrs int

	log logging.Logger
}

// New builds a viewer of width x height framebuffer pixels from cfg.
func New(ctx context.Context, cfg config.Config, width, height int, log logging.Logger) (*Viewer, error) {
	log = logging.OrNop(log)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return nil, err
	}

	table, err := loadTable(cfg.BodiesPath)
	if err != nil {
		return nil, err
	}
	opts := cfg.SceneOptions()
	if opts.TimeScale == 0 {
		opts.TimeScale = table.TimeScale
	}
	sc, err := scene.New(table.Bodies, opts)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}

	mesh, err := LoadMesh(cfg)
	if err != nil {
		return nil, err
	}
	log.Infof("body mesh %q: %d vertices, %d triangles", mesh.Name, mesh.VertexCount(), mesh.TriangleCount())

	provider := assets.NewProvider(cfg.TextureDir, cfg.MaxTexture, log)
	specs := make([]scene.BodySpec, 0, len(sc.Bodies()))
	for _, b := range sc.Bodies() {
		specs = append(specs, b.Spec)
	}
	bodyTex, err := provider.Bodies(ctx, specs)
	if err != nil {
		return nil, err
	}
	faces := scene.Starfield(scene.StarfieldDistance)
	starTex, err := provider.Starfield(ctx, faces)
	if err != nil {
		return nil, err
	}
	log.Debugf("decoded %d textures from %q", provider.Cached(), cfg.TextureDir)

	fb := render.NewFramebuffer(width, height)
	v := &Viewer{
		Scene:      sc,
		Camera:     cfg.NewCamera(),
		Clock:      scene.NewClock(),
		Projection: cfg.RenderProjection(),
		Background: bg,
		ShowOrbits: cfg.Orbits,
		mesh:       mesh,
		fb:         fb,
		rast:       render.NewRasterizer(fb),
		wire:       render.NewWireframe(fb),
		light:      math3d.Point(0, 0, 0),
		log:        log,
	}

	quad := models.NewQuad()
	for i, face := range faces {
		g := render.NewGeometry(quad, starTex[i], render.UnlitProgram{})
		g.State = render.BackdropState
		g.FrustumCull = false
		g.SetWorldMatrix(face.World)
		v.backdrop = append(v.backdrop, g)
	}

	for _, b := range sc.Bodies() {
		g := newBodyGeometry(mesh, bodyTex[b.Spec.ID], b.Spec)
		if err := sc.Attach(b.Spec.ID, g); err != nil {
			return nil, err
		}
		if b.Spec.Style == scene.StyleShell {
			v.shells = append(v.shells, g)
		} else {
			v.opaque = append(v.opaque, g)
		}
	}
	return v, nil
}

func loadTable(path string) (*scene.Table, error) {
	if path == "" {
		return scene.DefaultTable(), nil
	}
	return scene.LoadTable(path)
}

// LoadMesh returns the body mesh named by cfg.MeshPath: a glTF binary, an
// Assimp JSON export, or a procedural sphere when no path is set. Loaded
// meshes are fitted to models.SphereRadius.
func LoadMesh(cfg config.Config) (*models.Mesh, error) {
	var (
		mesh *models.Mesh
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(cfg.MeshPath)); {
	case cfg.MeshPath == "":
		return models.NewUVSphere(models.SphereRadius, cfg.SphereStacks, cfg.SphereSlices)
	case ext == ".glb" || ext == ".gltf":
		mesh, err = models.LoadGLB(cfg.MeshPath)
	case ext == ".json":
		mesh, err = models.LoadSphereJSON(cfg.MeshPath)
		if err == nil {
			err = mesh.Fit(models.SphereRadius)
		}
	default:
		return nil, fmt.Errorf("unsupported mesh format %q (use .glb, .gltf or .json)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load mesh: %w", err)
	}
	return mesh, nil
}

func newBodyGeometry(mesh *models.Mesh, tex *render.Texture, spec scene.BodySpec) *render.Geometry {
	switch spec.Style {
	case scene.StyleEmissive:
		return render.NewGeometry(mesh, tex, render.UnlitProgram{})
	case scene.StyleShell:
		g := render.NewGeometry(mesh, tex, render.UnlitProgram{})
		g.State = render.ShellState
		g.Alpha = spec.Opacity()
		return g
	default:
		return render.NewGeometry(mesh, tex, render.NewPhongProgram())
	}
}

// Framebuffer returns the colour target.
func (v *Viewer) Framebuffer() *render.Framebuffer {
	return v.fb
}

// Stats returns the rasterizer counters of the last Render.
func (v *Viewer) Stats() render.Stats {
	return v.rast.Stats
}

// Mesh returns the shared body mesh.
func (v *Viewer) Mesh() *models.Mesh {
	return v.mesh
}

// Resize changes the framebuffer size.
func (v *Viewer) Resize(width, height int) {
	v.fb.Resize(width, height)
	v.rast.Resize()
}

// Step advances the clock to now and recomputes every body transform.
func (v *Viewer) Step(now time.Time) {
	v.Clock.Tick(now)
	v.Scene.Update(v.Clock.Elapsed)
}

// SetTime jumps to t simulated seconds and recomputes every body transform.
func (v *Viewer) SetTime(t float64) {
	v.Clock.Elapsed = t
	v.Scene.Update(t)
}

// Render draws one frame into the framebuffer. Geometry that cannot be
// drawn this frame is skipped and the first such error is returned after
// the rest of the frame is drawn.
func (v *Viewer) Render() error {
	v.fb.Clear(v.Background)
	v.rast.ClearDepth()
	v.rast.ResetStats()

	proj := v.Projection.Matrix(v.fb.Aspect(CellAspect))
	var first error
	draw := func(gs []*render.Geometry) {
		for _, g := range gs {
			if err := g.Render(v.rast, v.Camera, proj, v.light); err != nil && first == nil {
				first = err
			}
		}
	}

	draw(v.backdrop)
	if v.ShowOrbits {
		if err := v.drawOrbits(proj); err != nil && first == nil {
			first = err
		}
	}
	draw(v.opaque)
	draw(v.shells)

	if first != nil {
		v.renderErrs++
		if v.renderErrs == 1 {
			v.log.Warnf("frame incomplete: %v", first)
		}
		return fmt.Errorf("render frame: %w", first)
	}
	return nil
}

func (v *Viewer) drawOrbits(proj math3d.Mat4) error {
	view, err := v.Camera.ViewMatrix()
	if err != nil {
		return fmt.Errorf("view matrix: %w", err)
	}
	v.wire.SetViewProjection(proj.Mul(view))

	bodies := v.Scene.Bodies()
	for _, b := range bodies {
		if b.Spec.Style == scene.StyleShell {
			continue
		}
		r, err := v.Scene.DistanceOf(b.Spec.ID)
		if err != nil || r <= 0 {
			continue
		}
		center := math3d.Identity()
		if b.Parent >= 0 {
			center = bodies[b.Parent].Frame
		}
		v.wire.DrawRing(center, r, ringSegments, render.ColorOrbit)
	}
	return nil
}

// Snapshot renders the current frame and writes it to path as PNG.
func (v *Viewer) Snapshot(path string) error {
	if err := v.Render(); err != nil {
		v.log.Warnf("snapshot %s: %v", path, err)
	}
	return v.fb.SavePNG(path)
}
