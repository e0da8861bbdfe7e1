package render

import (
	"fmt"

	"github.com/taigrr/orrery/pkg/math3d"
)

// Geometry is a drawable mesh instance: the mesh, its texture and program,
// fixed-function state, and the world matrix pushed in by the scene each frame.
type Geometry struct {
	Mesh    MeshRenderer
	Texture *Texture
	Program Program
	Alpha   float64
	State   DrawState

	// FrustumCull enables the bounding-sphere visibility test.
	FrustumCull bool

	world       math3d.Mat4
	localRadius float64
}

// NewGeometry returns an opaque geometry with an identity world matrix.
func NewGeometry(mesh MeshRenderer, tex *Texture, prog Program) *Geometry {
	g := &Geometry{
		Mesh:        mesh,
		Texture:     tex,
		Program:     prog,
		Alpha:       1,
		State:       OpaqueState,
		FrustumCull: true,
		world:       math3d.Identity(),
	}
	if b, ok := mesh.(BoundedMeshRenderer); ok {
		lo, hi := b.GetBounds()
		g.localRadius = max(lo.Len(), hi.Len())
	}
	return g
}

// SetWorldMatrix sets the object-to-world transform.
func (g *Geometry) SetWorldMatrix(m math3d.Mat4) {
	g.world = m
}

// WorldMatrix returns the object-to-world transform.
func (g *Geometry) WorldMatrix() math3d.Mat4 {
	return g.world
}

// Position returns the world-space origin of the geometry.
func (g *Geometry) Position() math3d.Vec4 {
	return math3d.Point(g.world[3], g.world[7], g.world[11])
}

// Visible reports whether the geometry's bounding sphere touches f.
func (g *Geometry) Visible(f Frustum) bool {
	if !g.FrustumCull || g.localRadius == 0 {
		return true
	}
	center, radius := BoundingSphere(g.world, g.localRadius)
	return f.IntersectsSphere(center, radius)
}

// Render draws the geometry from cam's point of view. Matrices are
// converted to column-major at this boundary. A singular view or world
// matrix is returned as an error wrapping math3d.ErrSingular and nothing is drawn.
func (g *Geometry) Render(r *Rasterizer, cam *OrbitCamera, proj math3d.Mat4, light math3d.Vec4) error {
	view, err := cam.ViewMatrix()
	if err != nil {
		return fmt.Errorf("view matrix: %w", err)
	}

	if !g.Visible(NewFrustumFromMatrix(proj.Mul(view))) {
		r.Stats.MeshesCulled++
		return nil
	}

	inv, err := g.world.Inverse()
	if err != nil {
		return fmt.Errorf("normal matrix: %w", err)
	}

	u := &Uniforms{
		World:          g.world.ColumnMajor(),
		View:           view.ColumnMajor(),
		Projection:     proj.ColumnMajor(),
		NormalMatrix:   inv.Transpose().ColumnMajor().Mat3(),
		LightPosition:  math3d.Vec3ToMGL(light.Vec3()),
		CameraPosition: math3d.Vec3ToMGL(cam.Position().Vec3()),
		Texture:        g.Texture,
		Alpha:          float32(g.Alpha),
	}
	r.Draw(g.Mesh, g.Program, u, g.State)
	return nil
}
