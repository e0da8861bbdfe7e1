package render

import "github.com/taigrr/orrery/pkg/math3d"

// Projection holds perspective parameters. The matrix is rebuilt every frame
// from the current aspect ratio.
type Projection struct {
	FOVY float64 // vertical field of view in degrees
	Near float64
	Far  float64
}

// DefaultProjection returns a 45 degree perspective reaching past the starfield.
func DefaultProjection() Projection {
	return Projection{FOVY: 45, Near: 0.1, Far: 5000}
}

// Matrix returns the projection for aspect (width/height).
func (p Projection) Matrix(aspect float64) math3d.Mat4 {
	return math3d.Perspective(p.FOVY, aspect, p.Near, p.Far)
}
