package models

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/orrery/pkg/math3d"
)

const quadJSON = `{
  "meshes": [{
    "name": "quad",
    "vertices": [-1, -1, 0, 1, -1, 0, -1, 1, 0, 1, 1, 0],
    "normals": [0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1],
    "texturecoords": [[0, 0, 1, 0, 0, 1, 1, 1]],
    "faces": [[0, 1, 2], [2, 1, 3]]
  }]
}`

func TestDecodeSphereJSON(t *testing.T) {
	m, err := DecodeSphereJSON(strings.NewReader(quadJSON))
	require.NoError(t, err)

	assert.Equal(t, "quad", m.Name)
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, [][3]int{{0, 1, 2}, {2, 1, 3}}, m.Faces)
	assert.Equal(t, math3d.V3(1, 1, 0), m.Vertices[3].Position)
	assert.Equal(t, math3d.V3(0, 0, 1), m.Vertices[3].Normal)
	assert.Equal(t, math3d.V2(0, 1), m.Vertices[2].UV)
	assert.Equal(t, math3d.V3(-1, -1, 0), m.BoundsMin)
}

func TestDecodeSphereJSONWithoutNormals(t *testing.T) {
	doc := `{"meshes": [{"vertices": [0,0,0, 1,0,0, 0,1,0], "faces": [[0,1,2]]}]}`
	m, err := DecodeSphereJSON(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "json", m.Name)
	for _, v := range m.Vertices {
		assert.InDelta(t, 1, v.Normal.Z, 1e-12)
		assert.Equal(t, math3d.Vec2{}, v.UV)
	}
}

func TestDecodeSphereJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not json", `{"meshes": [`, "decode mesh json"},
		{"ragged positions", `{"meshes": [{"vertices": [0, 1], "faces": []}]}`, "multiple of 3"},
		{"quad face", `{"meshes": [{"vertices": [0,0,0, 1,0,0, 0,1,0, 1,1,0], "faces": [[0,1,2,3]]}]}`, "face 0 has 4 indices"},
		{"index out of range", `{"meshes": [{"vertices": [0,0,0, 1,0,0, 0,1,0], "faces": [[0,1,7]]}]}`, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSphereJSON(strings.NewReader(tt.doc))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDecodeSphereJSONNoMeshes(t *testing.T) {
	_, err := DecodeSphereJSON(strings.NewReader(`{"meshes": []}`))
	assert.True(t, errors.Is(err, ErrNoMeshes))
}

func TestLoadSphereJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sphere.json")
	require.NoError(t, os.WriteFile(path, []byte(quadJSON), 0o644))

	m, err := LoadSphereJSON(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TriangleCount())

	_, err = LoadSphereJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
