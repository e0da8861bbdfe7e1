package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms are the per-draw inputs shared by every vertex and fragment.
// Matrices are column-major float32, the form a GPU upload would take.
type Uniforms struct {
	World      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4

	// NormalMatrix is the inverse transpose of World's upper 3x3.
	NormalMatrix mgl32.Mat3

	LightPosition  mgl32.Vec3
	CameraPosition mgl32.Vec3

	Texture *Texture
	Alpha   float32
}

// VertexInput holds the attributes of one mesh vertex.
type VertexInput struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Varying is a vertex stage output. The rasterizer interpolates every field
// except Clip across the triangle.
type Varying struct {
	Clip     mgl32.Vec4
	WorldPos mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Program is a vertex and fragment stage pair.
type Program interface {
	Vertex(u *Uniforms, in VertexInput) Varying
	// Fragment returns straight (non-premultiplied) RGBA in [0, 1].
	Fragment(u *Uniforms, in Varying) mgl32.Vec4
}

// transformVertex is the vertex stage both programs share.
func transformVertex(u *Uniforms, in VertexInput) Varying {
	world := u.World.Mul4x1(in.Position.Vec4(1))
	return Varying{
		Clip:     u.Projection.Mul4(u.View).Mul4x1(world),
		WorldPos: world.Vec3(),
		Normal:   u.NormalMatrix.Mul3x1(in.Normal),
		UV:       in.UV,
	}
}

func sampleAlbedo(u *Uniforms, uv mgl32.Vec2) mgl32.Vec4 {
	if u.Texture == nil {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	return u.Texture.SampleVec(uv)
}

// PhongProgram lights a textured surface with a single point light:
// ambient, Lambert diffuse and Phong specular terms.
type PhongProgram struct {
	Ambient   float32
	Specular  float32
	Shininess float32
}

// NewPhongProgram returns the lighting used for planets and moons.
func NewPhongProgram() *PhongProgram {
	return &PhongProgram{
		Ambient:   0.08,
		Specular:  0.25,
		Shininess: 32,
	}
}

func (p *PhongProgram) Vertex(u *Uniforms, in VertexInput) Varying {
	return transformVertex(u, in)
}

func (p *PhongProgram) Fragment(u *Uniforms, in Varying) mgl32.Vec4 {
	albedo := sampleAlbedo(u, in.UV)

	n := safeNormalize(in.Normal)
	l := safeNormalize(u.LightPosition.Sub(in.WorldPos))
	v := safeNormalize(u.CameraPosition.Sub(in.WorldPos))

	diffuse := max(n.Dot(l), 0)

	var spec float32
	if diffuse > 0 {
		// reflect(-l, n)
		r := n.Mul(2 * n.Dot(l)).Sub(l)
		spec = p.Specular * float32(math.Pow(float64(max(r.Dot(v), 0)), float64(p.Shininess)))
	}

	light := p.Ambient + diffuse
	return mgl32.Vec4{
		albedo[0]*light + spec,
		albedo[1]*light + spec,
		albedo[2]*light + spec,
		albedo[3] * u.Alpha,
	}
}

// UnlitProgram outputs the texture colour with its alpha scaled by
// Uniforms.Alpha. Used for the sun, the starfield and the atmosphere shell.
type UnlitProgram struct{}

func (UnlitProgram) Vertex(u *Uniforms, in VertexInput) Varying {
	return transformVertex(u, in)
}

func (UnlitProgram) Fragment(u *Uniforms, in Varying) mgl32.Vec4 {
	c := sampleAlbedo(u, in.UV)
	c[3] *= u.Alpha
	return c
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}
