package models

import (
	"fmt"
	"math"

	"github.com/taigrr/orrery/pkg/math3d"
)

// SphereRadius is the radius of the unit body mesh. A body of radius r is
// drawn with a uniform scale of 2r.
const SphereRadius = 0.5

// NewUVSphere builds a latitude/longitude sphere centred on the origin.
// U runs west to east from +X, V from the south pole (0) to the north pole (1),
// so an equirectangular map wraps the right way round.
func NewUVSphere(radius float64, stacks, slices int) (*Mesh, error) {
	if stacks < 2 || slices < 3 {
		return nil, fmt.Errorf("uv sphere needs at least 2 stacks and 3 slices, got %d and %d", stacks, slices)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("uv sphere radius must be positive, got %g", radius)
	}

	m := NewMesh("uvsphere")
	m.Vertices = make([]MeshVertex, 0, (stacks+1)*(slices+1))
	for i := range stacks + 1 {
		theta := math.Pi * float64(i) / float64(stacks)
		st, ct := math.Sincos(theta)
		for j := range slices + 1 {
			phi := 2 * math.Pi * float64(j) / float64(slices)
			sp, cp := math.Sincos(phi)

			n := math3d.V3(st*cp, ct, -st*sp)
			m.Vertices = append(m.Vertices, MeshVertex{
				Position: n.Scale(radius),
				Normal:   n,
				UV:       math3d.V2(float64(j)/float64(slices), 1-float64(i)/float64(stacks)),
			})
		}
	}

	// Row i runs along latitude theta_i; a is the top-left corner of a cell
	// seen from outside, b the one below it.
	row := slices + 1
	for i := range stacks {
		for j := range slices {
			a := i*row + j
			b := a + row
			if i > 0 {
				m.Faces = append(m.Faces, [3]int{a, b, a + 1})
			}
			if i < stacks-1 {
				m.Faces = append(m.Faces, [3]int{a + 1, b, b + 1})
			}
		}
	}

	m.CalculateBounds()
	return m, nil
}
