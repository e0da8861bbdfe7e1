package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/taigrr/orrery/pkg/math3d"
)

// MeshRenderer is the read-only mesh view the rasterizer consumes.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with bounds for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// CullMode selects which triangle faces are discarded.
// Front faces wind counter-clockwise in normalized device coordinates.
type CullMode int

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

// DrawState is the fixed-function state of one draw call.
type DrawState struct {
	Cull       CullMode
	DepthTest  bool
	DepthWrite bool
	Blend      bool // src*alpha + dst*(1-alpha)
}

// OpaqueState is the state for solid bodies.
var OpaqueState = DrawState{Cull: CullBack, DepthTest: true, DepthWrite: true}

// BackdropState draws the starfield behind everything else.
var BackdropState = DrawState{Cull: CullNone}

// ShellState draws a translucent shell from the inside out over the body it
// surrounds, without hiding what is drawn after it.
var ShellState = DrawState{Cull: CullFront, DepthTest: true, Blend: true}

// Stats counts work done since the last ResetStats.
type Stats struct {
	Draws            int
	MeshesCulled     int
	TrianglesDrawn   int
	TrianglesCulled  int
	TrianglesClipped int
}

// Rasterizer draws triangles into a framebuffer with a depth buffer.
type Rasterizer struct {
	fb      *Framebuffer
	zbuffer []float64
	scratch []Varying
	Stats   Stats
}

// NewRasterizer creates a rasterizer for fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{fb: fb}
	r.Resize()
	return r
}

// Framebuffer returns the colour target.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// Resize matches the depth buffer to the framebuffer size.
func (r *Rasterizer) Resize() {
	if n := r.fb.Width * r.fb.Height; len(r.zbuffer) != n {
		r.zbuffer = make([]float64, n)
	}
	r.ClearDepth()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	return r.fb.Height
}

// ClearDepth resets the depth buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// ResetStats zeroes the counters (call once per frame).
func (r *Rasterizer) ResetStats() {
	r.Stats = Stats{}
}

// Depth returns the stored depth at (x, y).
func (r *Rasterizer) Depth(x, y int) float64 {
	if x < 0 || x >= r.fb.Width || y < 0 || y >= r.fb.Height {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.fb.Width+x]
}

// Draw runs prog over every triangle of mesh.
func (r *Rasterizer) Draw(mesh MeshRenderer, prog Program, u *Uniforms, state DrawState) {
	r.Stats.Draws++

	n := mesh.VertexCount()
	if cap(r.scratch) < n {
		r.scratch = make([]Varying, n)
	}
	out := r.scratch[:n]
	for i := range n {
		pos, normal, uv := mesh.GetVertex(i)
		out[i] = prog.Vertex(u, VertexInput{
			Position: math3d.Vec3ToMGL(pos),
			Normal:   math3d.Vec3ToMGL(normal),
			UV:       mgl32.Vec2{float32(uv.X), float32(uv.Y)},
		})
	}

	for i := range mesh.TriangleCount() {
		f := mesh.GetFace(i)
		r.drawClipped([3]Varying{out[f[0]], out[f[1]], out[f[2]]}, prog, u, state)
	}
}

// nearClipW keeps clipped vertices strictly in front of the eye.
const nearClipW = 1e-5

// drawClipped clips a clip-space triangle against the near plane (z >= -w)
// and rasterizes the resulting one or two triangles.
func (r *Rasterizer) drawClipped(tri [3]Varying, prog Program, u *Uniforms, state DrawState) {
	dist := func(v Varying) float32 { return v.Clip[2] + v.Clip[3] }

	inside := 0
	for _, v := range tri {
		if dist(v) >= 0 && v.Clip[3] > nearClipW {
			inside++
		}
	}
	switch inside {
	case 0:
		r.Stats.TrianglesClipped++
		return
	case 3:
		r.rasterize(tri, prog, u, state)
		return
	}

	// Sutherland-Hodgman against one plane yields at most four vertices.
	var poly [4]Varying
	k := 0
	for i := range 3 {
		a, b := tri[i], tri[(i+1)%3]
		da, db := dist(a), dist(b)
		if da >= 0 {
			poly[k] = a
			k++
		}
		if (da >= 0) != (db >= 0) {
			poly[k] = lerpVarying(a, b, da/(da-db))
			k++
		}
	}
	r.Stats.TrianglesClipped++
	for i := 1; i+1 < k; i++ {
		r.rasterize([3]Varying{poly[0], poly[i], poly[i+1]}, prog, u, state)
	}
}

func lerpVarying(a, b Varying, t float32) Varying {
	return Varying{
		Clip:     a.Clip.Add(b.Clip.Sub(a.Clip).Mul(t)),
		WorldPos: a.WorldPos.Add(b.WorldPos.Sub(a.WorldPos).Mul(t)),
		Normal:   a.Normal.Add(b.Normal.Sub(a.Normal).Mul(t)),
		UV:       a.UV.Add(b.UV.Sub(a.UV).Mul(t)),
	}
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y float64 // Screen coordinates
	Z    float64 // NDC depth
	InvW float64 // 1/w for perspective-correct interpolation
}

func (r *Rasterizer) toScreen(v Varying) screenVertex {
	w := float64(v.Clip[3])
	if w <= 0 {
		w = nearClipW
	}
	inv := 1 / w
	return screenVertex{
		X:    (float64(v.Clip[0])*inv + 1) * 0.5 * float64(r.fb.Width),
		Y:    (1 - float64(v.Clip[1])*inv) * 0.5 * float64(r.fb.Height), // Y flipped
		Z:    float64(v.Clip[2]) * inv,
		InvW: inv,
	}
}

func (r *Rasterizer) rasterize(tri [3]Varying, prog Program, u *Uniforms, state DrawState) {
	var sv [3]screenVertex
	for i := range 3 {
		sv[i] = r.toScreen(tri[i])
	}

	// Screen Y points down, so a counter-clockwise NDC triangle has negative area here.
	area := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[2].X-sv[0].X)*(sv[1].Y-sv[0].Y)
	if area == 0 {
		return
	}
	front := area < 0
	if (state.Cull == CullBack && !front) || (state.Cull == CullFront && front) {
		r.Stats.TrianglesCulled++
		return
	}

	minX := int(math.Max(0, math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.fb.Width-1), math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.fb.Height-1), math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}
	r.Stats.TrianglesDrawn++

	invArea := 1 / area
	sign := 1.0
	if area < 0 {
		sign = -1
	}
	tl := [3]bool{
		topLeft(sv[1], sv[2], sv[0]),
		topLeft(sv[2], sv[0], sv[1]),
		topLeft(sv[0], sv[1], sv[2]),
	}
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5

			// Edge i is opposite vertex i. Neighbours sharing an edge compute
			// exactly negated values, so the sign test splits them cleanly.
			e0 := (sv[1].X-px)*(sv[2].Y-py) - (sv[2].X-px)*(sv[1].Y-py)
			e1 := (sv[2].X-px)*(sv[0].Y-py) - (sv[0].X-px)*(sv[2].Y-py)
			e2 := (sv[0].X-px)*(sv[1].Y-py) - (sv[1].X-px)*(sv[0].Y-py)
			if !covers(e0*sign, tl[0]) || !covers(e1*sign, tl[1]) || !covers(e2*sign, tl[2]) {
				continue
			}
			b0, b1, b2 := e0*invArea, e1*invArea, e2*invArea

			z := b0*sv[0].Z + b1*sv[1].Z + b2*sv[2].Z
			if z < -1 || z > 1 {
				continue
			}
			idx := y*r.fb.Width + x
			if state.DepthTest && z >= r.zbuffer[idx] {
				continue
			}

			w0, w1, w2 := b0*sv[0].InvW, b1*sv[1].InvW, b2*sv[2].InvW
			sum := w0 + w1 + w2
			if sum == 0 {
				continue
			}
			frag := interpolate(tri, float32(w0/sum), float32(w1/sum), float32(w2/sum))

			c := prog.Fragment(u, frag)
			if state.Blend {
				if c[3] <= 0 {
					continue
				}
				r.fb.BlendPixel(x, y, VecToColor(c))
			} else {
				c[3] = 1
				r.fb.SetPixel(x, y, VecToColor(c))
			}
			if state.DepthWrite {
				r.zbuffer[idx] = z
			}
		}
	}
}

// topLeft reports whether pixel centres lying exactly on edge a-b belong to
// the triangle whose third vertex is c. That holds for left edges and for
// horizontal top edges, so a shared edge is filled by one triangle only.
func topLeft(a, b, c screenVertex) bool {
	nx, ny := a.Y-b.Y, b.X-a.X
	if nx*(c.X-a.X)+ny*(c.Y-a.Y) < 0 {
		nx, ny = -nx, -ny
	}
	return nx > 0 || (nx == 0 && ny > 0)
}

func covers(e float64, owned bool) bool {
	return e > 0 || (e == 0 && owned)
}

func interpolate(tri [3]Varying, b0, b1, b2 float32) Varying {
	return Varying{
		WorldPos: tri[0].WorldPos.Mul(b0).Add(tri[1].WorldPos.Mul(b1)).Add(tri[2].WorldPos.Mul(b2)),
		Normal:   tri[0].Normal.Mul(b0).Add(tri[1].Normal.Mul(b1)).Add(tri[2].Normal.Mul(b2)),
		UV:       tri[0].UV.Mul(b0).Add(tri[1].UV.Mul(b1)).Add(tri[2].UV.Mul(b2)),
	}
}
