package render

import (
	"github.com/taigrr/orrery/pkg/math3d"
)

// Plane is Ax + By + Cz + D = 0 with (A, B, C) as Normal.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds six inward-facing planes: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts the planes of a row-major view-projection
// matrix (Gribb/Hartmann): each plane is row 3 plus or minus row 0, 1 or 2.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)

	plane := func(v math3d.Vec4) Plane {
		p := Plane{Normal: v.Vec3(), D: v.W}
		p.Normalize()
		return p
	}

	var f Frustum
	f.Planes[FrustumLeft] = plane(r3.Add(r0))
	f.Planes[FrustumRight] = plane(r3.Sub(r0))
	f.Planes[FrustumBottom] = plane(r3.Add(r1))
	f.Planes[FrustumTop] = plane(r3.Sub(r1))
	f.Planes[FrustumNear] = plane(r3.Add(r2))
	f.Planes[FrustumFar] = plane(r3.Sub(r2))
	return f
}

// ContainsPoint reports whether p is inside all six planes.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether a sphere touches the frustum.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}

// BoundingSphere returns the world-space sphere enclosing a local sphere of
// localRadius at the origin after transform. The radius uses the largest
// axis scale so non-uniform scales stay conservative.
func BoundingSphere(transform math3d.Mat4, localRadius float64) (math3d.Vec3, float64) {
	center := transform.Translation()
	sx := transform.Col(0).Len()
	sy := transform.Col(1).Len()
	sz := transform.Col(2).Len()
	return center, localRadius * max(sx, sy, sz)
}
