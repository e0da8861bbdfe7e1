package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/taigrr/orrery/pkg/math3d"
)

// ErrNoMeshes is returned when a mesh document contains no meshes.
var ErrNoMeshes = errors.New("models: document has no meshes")

// assimpDoc is the subset of an Assimp JSON export the loader reads.
// Attribute arrays are flat: three floats per position or normal, two per
// texture coordinate.
type assimpDoc struct {
	Meshes []struct {
		Name          string      `json:"name"`
		Vertices      []float64   `json:"vertices"`
		Normals       []float64   `json:"normals"`
		TextureCoords [][]float64 `json:"texturecoords"`
		Faces         [][]int     `json:"faces"`
	} `json:"meshes"`
}

// LoadSphereJSON reads the first mesh of an Assimp JSON export from path.
func LoadSphereJSON(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mesh json: %w", err)
	}
	defer f.Close()
	return DecodeSphereJSON(f)
}

// DecodeSphereJSON decodes the first mesh of an Assimp JSON export.
// Missing normals are rebuilt from the faces; missing texture coordinates
// are left at zero.
func DecodeSphereJSON(r io.Reader) (*Mesh, error) {
	var doc assimpDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode mesh json: %w", err)
	}
	if len(doc.Meshes) == 0 {
		return nil, ErrNoMeshes
	}
	src := doc.Meshes[0]

	if len(src.Vertices)%3 != 0 {
		return nil, fmt.Errorf("mesh json: %d position floats is not a multiple of 3", len(src.Vertices))
	}
	n := len(src.Vertices) / 3
	hasNormals := len(src.Normals) == len(src.Vertices)
	var uvs []float64
	if len(src.TextureCoords) > 0 && len(src.TextureCoords[0]) == 2*n {
		uvs = src.TextureCoords[0]
	}

	name := src.Name
	if name == "" {
		name = "json"
	}
	m := NewMesh(name)
	m.Vertices = make([]MeshVertex, n)
	for i := range n {
		v := &m.Vertices[i]
		v.Position = math3d.V3(src.Vertices[i*3], src.Vertices[i*3+1], src.Vertices[i*3+2])
		if hasNormals {
			v.Normal = math3d.V3(src.Normals[i*3], src.Normals[i*3+1], src.Normals[i*3+2])
		}
		if uvs != nil {
			v.UV = math3d.V2(uvs[i*2], uvs[i*2+1])
		}
	}

	m.Faces = make([][3]int, 0, len(src.Faces))
	for i, f := range src.Faces {
		if len(f) != 3 {
			return nil, fmt.Errorf("mesh json: face %d has %d indices, want 3", i, len(f))
		}
		m.Faces = append(m.Faces, [3]int{f[0], f[1], f[2]})
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("mesh json: %w", err)
	}

	if !hasNormals {
		m.CalculateSmoothNormals()
	}
	m.CalculateBounds()
	return m, nil
}
