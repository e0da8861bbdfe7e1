package math3d

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// ColumnMajor returns a transposed float32 copy of m for consumers that
// expect column-major storage, such as shader uniforms. m is not modified.
func (m Mat4) ColumnMajor() mgl32.Mat4 {
	t := m
	t.TransposeInPlace()
	var out mgl32.Mat4
	for i, v := range t {
		out[i] = float32(v)
	}
	return out
}

// FromMGL converts a column-major mathgl matrix into a row-major Mat4.
func FromMGL(g mgl64.Mat4) Mat4 {
	m := Mat4(g)
	m.TransposeInPlace()
	return m
}

// MGL returns m as a column-major mathgl matrix.
func (m Mat4) MGL() mgl64.Mat4 {
	return mgl64.Mat4(m.Transpose())
}

// Vec3ToMGL converts v to a float32 mathgl vector.
func Vec3ToMGL(v Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}
