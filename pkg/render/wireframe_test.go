package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/orrery/pkg/math3d"
)

func newTestWireframe(t *testing.T, eye math3d.Vec4) (*Framebuffer, *Wireframe) {
	t.Helper()
	fb := NewFramebuffer(64, 64)
	fb.Clear(ColorBlack)
	cam := NewOrbitCamera()
	require.NoError(t, cam.LookAt(eye, math3d.Point(0, 0, 0)))
	view, err := cam.ViewMatrix()
	require.NoError(t, err)

	w := NewWireframe(fb)
	w.SetViewProjection(math3d.Perspective(60, 1, 0.1, 100).Mul(view))
	return fb, w
}

func countLit(fb *Framebuffer) int {
	n := 0
	for _, p := range fb.Pixels {
		if p != ColorBlack {
			n++
		}
	}
	return n
}

func TestWireframeDrawRing(t *testing.T) {
	fb, w := newTestWireframe(t, math3d.Point(0, 8, 8))
	w.DrawRing(math3d.Identity(), 3, 64, ColorOrbit)

	assert.Greater(t, countLit(fb), 40)
	assert.Equal(t, ColorBlack, fb.GetPixel(32, 32), "ring is hollow")
}

func TestWireframeDrawRingDegenerate(t *testing.T) {
	fb, w := newTestWireframe(t, math3d.Point(0, 8, 8))
	w.DrawRing(math3d.Identity(), 3, 2, ColorOrbit)
	w.DrawRing(math3d.Identity(), 0, 64, ColorOrbit)
	assert.Zero(t, countLit(fb))
}

func TestWireframeLineBehindCamera(t *testing.T) {
	fb, w := newTestWireframe(t, math3d.Point(0, 0, 5))
	w.DrawLine3D(math3d.V3(-1, 0, 10), math3d.V3(1, 0, 10), ColorWhite)
	assert.Zero(t, countLit(fb))
}

func TestWireframeLineCrossingNearPlane(t *testing.T) {
	fb, w := newTestWireframe(t, math3d.Point(0, 0, 5))
	w.DrawLine3D(math3d.V3(0, -1, 0), math3d.V3(0, -1, 100), ColorWhite)

	// The clipped end projects far below the viewport, so the line reaches the bottom row.
	bottom := 0
	for x := range fb.Width {
		if fb.GetPixel(x, fb.Height-1) == ColorWhite {
			bottom++
		}
	}
	assert.Equal(t, 1, bottom)
}
