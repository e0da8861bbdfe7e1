package models

import "github.com/taigrr/orrery/pkg/math3d"

// NewQuad returns the unit quad spanning [-1, 1] in X and Y, facing +Z.
// The starfield scales and rotates six of these into a backdrop box.
func NewQuad() *Mesh {
	m := NewMesh("quad")
	normal := math3d.V3(0, 0, 1)
	for _, c := range [4][2]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		m.Vertices = append(m.Vertices, MeshVertex{
			Position: math3d.V3(c[0], c[1], 0),
			Normal:   normal,
			UV:       math3d.V2((c[0]+1)/2, (c[1]+1)/2),
		})
	}
	m.Faces = [][3]int{{0, 1, 2}, {2, 1, 3}}
	m.CalculateBounds()
	return m
}
