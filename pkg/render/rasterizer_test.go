package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/orrery/pkg/math3d"
)

// mockMesh implements BoundedMeshRenderer for testing.
type mockMesh struct {
	vertices []struct {
		pos    math3d.Vec3
		normal math3d.Vec3
		uv     math3d.Vec2
	}
	faces [][3]int
}

func (m *mockMesh) VertexCount() int     { return len(m.vertices) }
func (m *mockMesh) TriangleCount() int   { return len(m.faces) }
func (m *mockMesh) GetFace(i int) [3]int { return m.faces[i] }
func (m *mockMesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.vertices[i]
	return v.pos, v.normal, v.uv
}

func (m *mockMesh) GetBounds() (lo, hi math3d.Vec3) {
	lo, hi = m.vertices[0].pos, m.vertices[0].pos
	for _, v := range m.vertices[1:] {
		lo, hi = lo.Min(v.pos), hi.Max(v.pos)
	}
	return lo, hi
}

func (m *mockMesh) addVertex(pos math3d.Vec3, uv math3d.Vec2) {
	m.vertices = append(m.vertices, struct {
		pos    math3d.Vec3
		normal math3d.Vec3
		uv     math3d.Vec2
	}{pos, math3d.V3(0, 0, 1), uv})
}

// newQuad returns a square of half-size s at depth z facing +Z,
// wound counter-clockwise. flip reverses the winding.
func newQuad(s, z float64, flip bool) *mockMesh {
	m := &mockMesh{}
	m.addVertex(math3d.V3(-s, -s, z), math3d.V2(0, 0))
	m.addVertex(math3d.V3(s, -s, z), math3d.V2(1, 0))
	m.addVertex(math3d.V3(-s, s, z), math3d.V2(0, 1))
	m.addVertex(math3d.V3(s, s, z), math3d.V2(1, 1))
	if flip {
		m.faces = [][3]int{{0, 2, 1}, {2, 3, 1}}
	} else {
		m.faces = [][3]int{{0, 1, 2}, {2, 1, 3}}
	}
	return m
}

type testRig struct {
	fb   *Framebuffer
	r    *Rasterizer
	cam  *OrbitCamera
	proj math3d.Mat4
}

func newTestRig(t *testing.T, size int) *testRig {
	t.Helper()
	fb := NewFramebuffer(size, size)
	fb.Clear(ColorBlack)
	cam := NewOrbitCamera()
	require.NoError(t, cam.LookAt(math3d.Point(0, 0, 5), math3d.Point(0, 0, 0)))
	return &testRig{
		fb:   fb,
		r:    NewRasterizer(fb),
		cam:  cam,
		proj: math3d.Perspective(60, 1, 0.1, 100),
	}
}

func (rig *testRig) draw(t *testing.T, mesh MeshRenderer, c Color, alpha float64, state DrawState) {
	t.Helper()
	g := NewGeometry(mesh, NewSolidTexture(c), UnlitProgram{})
	g.Alpha = alpha
	g.State = state
	require.NoError(t, g.Render(rig.r, rig.cam, rig.proj, math3d.Point(0, 0, 0)))
}

func (rig *testRig) center() Color {
	return rig.fb.GetPixel(rig.fb.Width/2, rig.fb.Height/2)
}

func TestDrawFrontFace(t *testing.T) {
	rig := newTestRig(t, 32)
	rig.draw(t, newQuad(1, 0, false), RGB(255, 0, 0), 1, OpaqueState)

	assert.Equal(t, RGB(255, 0, 0), rig.center())
	assert.Equal(t, ColorBlack, rig.fb.GetPixel(0, 0), "corner lies outside the quad")
	assert.Equal(t, 2, rig.r.Stats.TrianglesDrawn)
}

func TestDrawCulling(t *testing.T) {
	tests := []struct {
		name  string
		flip  bool
		cull  CullMode
		drawn bool
	}{
		{"front face, cull back", false, CullBack, true},
		{"back face, cull back", true, CullBack, false},
		{"front face, cull front", false, CullFront, false},
		{"back face, cull front", true, CullFront, true},
		{"back face, no culling", true, CullNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTestRig(t, 32)
			state := OpaqueState
			state.Cull = tt.cull
			rig.draw(t, newQuad(1, 0, tt.flip), ColorWhite, 1, state)

			if tt.drawn {
				assert.Equal(t, ColorWhite, rig.center())
			} else {
				assert.Equal(t, ColorBlack, rig.center())
				assert.Equal(t, 2, rig.r.Stats.TrianglesCulled)
			}
		})
	}
}

func TestDrawDepthOrder(t *testing.T) {
	near := newQuad(0.5, 1, false)
	far := newQuad(1, -1, false)

	for _, order := range []string{"near first", "far first"} {
		t.Run(order, func(t *testing.T) {
			rig := newTestRig(t, 32)
			if order == "near first" {
				rig.draw(t, near, RGB(0, 255, 0), 1, OpaqueState)
				rig.draw(t, far, RGB(0, 0, 255), 1, OpaqueState)
			} else {
				rig.draw(t, far, RGB(0, 0, 255), 1, OpaqueState)
				rig.draw(t, near, RGB(0, 255, 0), 1, OpaqueState)
			}
			assert.Equal(t, RGB(0, 255, 0), rig.center())
		})
	}
}

func TestDrawWithoutDepthWrite(t *testing.T) {
	rig := newTestRig(t, 32)
	state := OpaqueState
	state.DepthWrite = false

	rig.draw(t, newQuad(0.5, 1, false), RGB(0, 255, 0), 1, state)
	rig.draw(t, newQuad(1, -1, false), RGB(0, 0, 255), 1, OpaqueState)

	assert.Equal(t, RGB(0, 0, 255), rig.center(), "near quad left no depth behind")
}

func TestDrawWithoutDepthTest(t *testing.T) {
	rig := newTestRig(t, 32)
	rig.draw(t, newQuad(0.5, 1, false), RGB(0, 255, 0), 1, OpaqueState)

	state := OpaqueState
	state.DepthTest = false
	rig.draw(t, newQuad(1, -1, false), RGB(0, 0, 255), 1, state)

	assert.Equal(t, RGB(0, 0, 255), rig.center())
}

func TestDrawBlend(t *testing.T) {
	rig := newTestRig(t, 32)
	state := DrawState{Cull: CullBack, DepthTest: true, Blend: true}
	rig.draw(t, newQuad(1, 0, false), ColorWhite, 0.5, state)

	c := rig.center()
	assert.InDelta(t, 128, int(c.R), 1)
	assert.InDelta(t, 128, int(c.G), 1)
	assert.Equal(t, uint8(255), c.A)
}

func TestDrawBlendCoversSharedEdgeOnce(t *testing.T) {
	for _, flip := range []bool{false, true} {
		rig := newTestRig(t, 32)
		state := DrawState{Cull: CullNone, Blend: true}
		rig.draw(t, newQuad(1, 0, flip), ColorWhite, 0.5, state)

		var once, twice int
		for _, c := range rig.fb.Pixels {
			switch {
			case c.R == 0:
			case c.R <= 129:
				once++
			default:
				twice++
			}
		}
		assert.Positive(t, once, "flip=%v", flip)
		assert.Zero(t, twice, "flip=%v: pixels blended by both triangles", flip)
	}
}

func TestTopLeftOwnsOneSideOfSharedEdge(t *testing.T) {
	a := screenVertex{X: 0, Y: 0}
	b := screenVertex{X: 0, Y: 10}
	right := screenVertex{X: 10, Y: 5}
	left := screenVertex{X: -10, Y: 5}
	assert.True(t, topLeft(a, b, right), "vertical edge is the left edge of the right triangle")
	assert.False(t, topLeft(b, a, left))

	c := screenVertex{X: 10, Y: 0}
	below := screenVertex{X: 5, Y: 10}
	above := screenVertex{X: 5, Y: -10}
	assert.True(t, topLeft(a, c, below), "horizontal edge is the top edge of the triangle below")
	assert.False(t, topLeft(c, a, above))
}

func TestDrawBlendFullyTransparent(t *testing.T) {
	rig := newTestRig(t, 32)
	state := DrawState{Cull: CullBack, DepthTest: true, Blend: true}
	rig.draw(t, newQuad(1, 0, false), ColorWhite, 0, state)

	assert.Equal(t, ColorBlack, rig.center())
}

func TestDrawNearPlaneClipping(t *testing.T) {
	rig := newTestRig(t, 32)

	// One vertex sits behind the eye at z=5.
	m := &mockMesh{}
	m.addVertex(math3d.V3(-2, -2, 0), math3d.V2(0, 0))
	m.addVertex(math3d.V3(2, -2, 0), math3d.V2(1, 0))
	m.addVertex(math3d.V3(0, 0.5, 10), math3d.V2(0.5, 1))
	m.faces = [][3]int{{0, 1, 2}}

	state := OpaqueState
	state.Cull = CullNone
	rig.draw(t, m, ColorWhite, 1, state)

	assert.Equal(t, 1, rig.r.Stats.TrianglesClipped)
	assert.Positive(t, rig.r.Stats.TrianglesDrawn)
	assert.Equal(t, ColorWhite, rig.fb.GetPixel(16, 30))
}

func TestDrawFullyBehindCamera(t *testing.T) {
	rig := newTestRig(t, 32)
	rig.draw(t, newQuad(1, 20, false), ColorWhite, 1, DrawState{Cull: CullNone, DepthTest: true})

	for _, p := range rig.fb.Pixels {
		require.Equal(t, ColorBlack, p)
	}
}

func TestPhongFacesLight(t *testing.T) {
	lit := newTestRig(t, 32)
	dark := newTestRig(t, 32)
	quad := newQuad(1, 0, false)
	tex := NewSolidTexture(RGB(200, 200, 200))

	g := NewGeometry(quad, tex, NewPhongProgram())
	require.NoError(t, g.Render(lit.r, lit.cam, lit.proj, math3d.Point(0, 0, 3)))
	require.NoError(t, g.Render(dark.r, dark.cam, dark.proj, math3d.Point(0, 0, -3)))

	assert.Greater(t, lit.center().R, dark.center().R)
	assert.NotEqual(t, ColorBlack, dark.center(), "ambient keeps the unlit side visible")
}

func TestRasterizerClearDepth(t *testing.T) {
	rig := newTestRig(t, 8)
	rig.draw(t, newQuad(1, 0, false), ColorWhite, 1, OpaqueState)
	assert.Less(t, rig.r.Depth(4, 4), 1.0)

	rig.r.ClearDepth()
	for y := range 8 {
		for x := range 8 {
			require.Greater(t, rig.r.Depth(x, y), 1.0)
		}
	}
}

func TestRasterizerDepthBoundsCheck(t *testing.T) {
	rig := newTestRig(t, 8)
	assert.Greater(t, rig.r.Depth(-1, 0), 1.0)
	assert.Greater(t, rig.r.Depth(0, 100), 1.0)
}

func TestRasterizerResize(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	r := NewRasterizer(fb)
	fb.Resize(10, 6)
	r.Resize()
	assert.Equal(t, 10, r.Width())
	assert.Equal(t, 6, r.Height())
	assert.Greater(t, r.Depth(9, 5), 1.0)
}

func BenchmarkDrawQuad(b *testing.B) {
	fb := NewFramebuffer(160, 90)
	r := NewRasterizer(fb)
	cam := NewOrbitCamera()
	_ = cam.LookAt(math3d.Point(0, 0, 5), math3d.Point(0, 0, 0))
	proj := math3d.Perspective(60, 16.0/9.0, 0.1, 100)
	g := NewGeometry(newQuad(1, 0, false), NewSolidTexture(ColorWhite), NewPhongProgram())

	for b.Loop() {
		r.ClearDepth()
		_ = g.Render(r, cam, proj, math3d.Point(0, 0, 3))
	}
}
