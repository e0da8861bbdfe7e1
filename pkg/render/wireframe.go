package render

import (
	"math"

	"github.com/taigrr/orrery/pkg/math3d"
)

// Wireframe draws world-space lines over the framebuffer without depth.
type Wireframe struct {
	fb       *Framebuffer
	viewProj math3d.Mat4
}

// NewWireframe creates a wireframe renderer for fb.
func NewWireframe(fb *Framebuffer) *Wireframe {
	return &Wireframe{fb: fb}
}

// SetViewProjection sets the matrix used to project subsequent lines.
func (w *Wireframe) SetViewProjection(m math3d.Mat4) {
	w.viewProj = m
}

// DrawLine3D draws the segment p1-p2, clipped against the near plane.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	a := w.viewProj.MulVec4(math3d.V4FromV3(p1, 1))
	b := w.viewProj.MulVec4(math3d.V4FromV3(p2, 1))

	da, db := a.Z+a.W, b.Z+b.W
	if da < 0 && db < 0 {
		return
	}
	if da < 0 {
		a = a.Lerp(b, da/(da-db))
	} else if db < 0 {
		b = b.Lerp(a, db/(db-da))
	}

	x1, y1, ok1 := w.toScreen(a)
	x2, y2, ok2 := w.toScreen(b)
	if !ok1 || !ok2 {
		return
	}
	w.fb.DrawLine(x1, y1, x2, y2, color)
}

// offscreenLimit bounds projected coordinates so Bresenham stays finite.
const offscreenLimit = 1 << 15

func (w *Wireframe) toScreen(clip math3d.Vec4) (int, int, bool) {
	if clip.W <= 0 {
		return 0, 0, false
	}
	x := (clip.X/clip.W + 1) * 0.5 * float64(w.fb.Width)
	y := (1 - clip.Y/clip.W) * 0.5 * float64(w.fb.Height)
	if math.Abs(x) > offscreenLimit || math.Abs(y) > offscreenLimit {
		return 0, 0, false
	}
	return int(x), int(y), true
}

// DrawRing draws a circle of the given radius in the XZ plane of frame,
// approximated by the given number of chords.
func (w *Wireframe) DrawRing(frame math3d.Mat4, radius float64, segments int, color Color) {
	if segments < 3 || radius <= 0 {
		return
	}
	prev := frame.MulPoint(math3d.V3(radius, 0, 0))
	for i := 1; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		next := frame.MulPoint(math3d.V3(radius*math.Cos(theta), 0, -radius*math.Sin(theta)))
		w.DrawLine3D(prev, next, color)
		prev = next
	}
}
