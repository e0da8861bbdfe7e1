package math3d

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrSingular is returned by Inverse when the matrix has no inverse.
var ErrSingular = errors.New("math3d: singular matrix")

// SingularEpsilon is the determinant magnitude below which a matrix is
// treated as singular. It is small enough to keep the tiny uniform scales
// of real-scale moons invertible.
const SingularEpsilon = 1e-15

// Mat4 is a 4x4 matrix stored in row-major order.
//
// Memory layout (indices):
// | 0  1  2  3  |
// | 4  5  6  7  |
// | 8  9  10 11 |
// | 12 13 14 15 |
//
// For an affine transform the basis vectors are the first three columns and
// the translation sits in the last column (indices 3, 7, 11). A vector is
// transformed as M * v, so in a product the rightmost matrix applies first.
type Mat4 [16]float64

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Scale returns a diagonal scale matrix.
func Scale(sx, sy, sz float64) Mat4 {
	return Mat4{
		sx, 0, 0, 0,
		0, sy, 0, 0,
		0, 0, sz, 0,
		0, 0, 0, 1,
	}
}

// ScaleUniform returns a matrix scaling all three axes by s.
func ScaleUniform(s float64) Mat4 {
	return Scale(s, s, s)
}

// RotateX returns a right-handed rotation about the X axis. The angle is in degrees.
func RotateX(deg float64) Mat4 {
	s, c := math.Sincos(deg2rad(deg))
	return Mat4{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY returns a right-handed rotation about the Y axis. The angle is in degrees.
func RotateY(deg float64) Mat4 {
	s, c := math.Sincos(deg2rad(deg))
	return Mat4{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ returns a right-handed rotation about the Z axis. The angle is in degrees.
func RotateZ(deg float64) Mat4 {
	s, c := math.Sincos(deg2rad(deg))
	return Mat4{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float64) Mat4 {
	return Mat4{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	}
}

// TranslateV returns a translation matrix for v.
func TranslateV(v Vec3) Mat4 {
	return Translate(v.X, v.Y, v.Z)
}

// TranslateV4 returns a translation matrix for v whose bottom-right element
// is v.W. Pass a point (W=1) for an ordinary translation.
func TranslateV4(v Vec4) Mat4 {
	m := Translate(v.X, v.Y, v.Z)
	m[15] = v.W
	return m
}

// Perspective returns a perspective projection.
// fovy is the vertical field of view in degrees, aspect is width/height.
// near == far or aspect <= 0 yields a degenerate matrix.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	t := near * math.Tan(deg2rad(fovy)/2)
	r := t * aspect

	m := Identity()
	m[0] = near / r
	m[5] = near / t
	m[10] = -(far + near) / (far - near)
	m[11] = -2 * near * far / (far - near)
	m[14] = -1
	m[15] = 0
	return m
}

// Orthographic returns an orthographic projection.
func Orthographic(left, right, top, bottom, near, far float64) Mat4 {
	m := Identity()
	m[0] = 2 / (right - left)
	m[3] = -(right + left) / (right - left)
	m[5] = 2 / (top - bottom)
	m[7] = -(top + bottom) / (top - bottom)
	m[10] = -2 / (far - near)
	m[11] = -(far + near) / (far - near)
	return m
}

// Mul returns a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for row := range 4 {
		for col := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row*4+k] * b[k*4+col]
			}
			m[row*4+col] = sum
		}
	}
	return m
}

// Premul returns b * a.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Premul(b Mat4) Mat4 {
	return b.Mul(a)
}

// Compose returns ms[0] * ms[1] * ... * ms[n-1]. The last matrix is the
// first applied to a vector. Compose() is the identity.
func Compose(ms ...Mat4) Mat4 {
	out := Identity()
	for _, m := range ms {
		out = out.Mul(m)
	}
	return out
}

// MulScalar multiplies every element by s.
func (m Mat4) MulScalar(s float64) Mat4 {
	for i := range m {
		m[i] *= s
	}
	return m
}

// MulVec4 returns m * v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3]*v.W,
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7]*v.W,
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]*v.W,
		m[12]*v.X + m[13]*v.Y + m[14]*v.Z + m[15]*v.W,
	}
}

// MulPoint transforms v as a point (w=1) and divides by the resulting w.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 1)).PerspectiveDivide()
}

// MulDir transforms v as a direction (w=0), ignoring translation.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 0)).Vec3()
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// TransposeInPlace transposes m.
func (m *Mat4) TransposeInPlace() {
	for row := range 4 {
		for col := row + 1; col < 4; col++ {
			m[row*4+col], m[col*4+row] = m[col*4+row], m[row*4+col]
		}
	}
}

// minors returns the twelve 2x2 minors of the top two and bottom two rows.
// Both Determinant and Inverse expand over them.
func (m Mat4) minors() (s, c [6]float64) {
	s[0] = m[0]*m[5] - m[4]*m[1]
	s[1] = m[0]*m[6] - m[4]*m[2]
	s[2] = m[0]*m[7] - m[4]*m[3]
	s[3] = m[1]*m[6] - m[5]*m[2]
	s[4] = m[1]*m[7] - m[5]*m[3]
	s[5] = m[2]*m[7] - m[6]*m[3]

	c[0] = m[8]*m[13] - m[12]*m[9]
	c[1] = m[8]*m[14] - m[12]*m[10]
	c[2] = m[8]*m[15] - m[12]*m[11]
	c[3] = m[9]*m[14] - m[13]*m[10]
	c[4] = m[9]*m[15] - m[13]*m[11]
	c[5] = m[10]*m[15] - m[14]*m[11]
	return s, c
}

// Determinant returns the determinant by cofactor (Laplace) expansion.
// No affine shape is assumed.
func (m Mat4) Determinant() float64 {
	s, c := m.minors()
	return s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
}

// Inverse returns the inverse computed as adjugate / determinant.
// A singular matrix returns the zero matrix and ErrSingular.
func (m Mat4) Inverse() (Mat4, error) {
	s, c := m.minors()
	det := s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
	if math.IsNaN(det) || math.IsInf(det, 0) || math.Abs(det) < SingularEpsilon {
		return Mat4{}, fmt.Errorf("%w (det=%g)", ErrSingular, det)
	}
	inv := 1 / det

	return Mat4{
		(m[5]*c[5] - m[6]*c[4] + m[7]*c[3]) * inv,
		(-m[1]*c[5] + m[2]*c[4] - m[3]*c[3]) * inv,
		(m[13]*s[5] - m[14]*s[4] + m[15]*s[3]) * inv,
		(-m[9]*s[5] + m[10]*s[4] - m[11]*s[3]) * inv,

		(-m[4]*c[5] + m[6]*c[2] - m[7]*c[1]) * inv,
		(m[0]*c[5] - m[2]*c[2] + m[3]*c[1]) * inv,
		(-m[12]*s[5] + m[14]*s[2] - m[15]*s[1]) * inv,
		(m[8]*s[5] - m[10]*s[2] + m[11]*s[1]) * inv,

		(m[4]*c[4] - m[5]*c[2] + m[7]*c[0]) * inv,
		(-m[0]*c[4] + m[1]*c[2] - m[3]*c[0]) * inv,
		(m[12]*s[4] - m[13]*s[2] + m[15]*s[0]) * inv,
		(-m[8]*s[4] + m[9]*s[2] - m[11]*s[0]) * inv,

		(-m[4]*c[3] + m[5]*c[1] - m[6]*c[0]) * inv,
		(m[0]*c[3] - m[1]*c[1] + m[2]*c[0]) * inv,
		(-m[12]*s[3] + m[13]*s[1] - m[14]*s[0]) * inv,
		(m[8]*s[3] - m[9]*s[1] + m[10]*s[0]) * inv,
	}, nil
}

// At returns the element at (row, col).
func (m Mat4) At(row, col int) float64 {
	return m[row*4+col]
}

// Set sets the element at (row, col).
func (m *Mat4) Set(row, col int, val float64) {
	m[row*4+col] = val
}

// Row returns row i.
func (m Mat4) Row(i int) Vec4 {
	return Vec4{m[i*4], m[i*4+1], m[i*4+2], m[i*4+3]}
}

// Col returns column i.
func (m Mat4) Col(i int) Vec4 {
	return Vec4{m[i], m[4+i], m[8+i], m[12+i]}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// Upper3x3 returns the rotation/scale block in row-major order.
func (m Mat4) Upper3x3() [9]float64 {
	return [9]float64{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// ApproxEqual reports whether every element of m is within eps of o.
func (m Mat4) ApproxEqual(o Mat4, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

// String formats the matrix as four rows.
func (m Mat4) String() string {
	var sb strings.Builder
	for row := range 4 {
		fmt.Fprintf(&sb, "[%10.4f %10.4f %10.4f %10.4f]", m[row*4], m[row*4+1], m[row*4+2], m[row*4+3])
		if row < 3 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
