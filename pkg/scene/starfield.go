package scene

import "github.com/taigrr/orrery/pkg/math3d"

// StarfieldDistance is the half-size of the backdrop box.
const StarfieldDistance = 350

// Backdrop is one fixed face of the starfield box. Its mesh is the unit quad
// spanning [-1, 1] in X and Y.
type Backdrop struct {
	Name    string
	Texture string
	World   math3d.Mat4
}

// Starfield returns the six faces of a box of half-size d around the origin.
// The faces never move, so they are computed once.
func Starfield(d float64) []Backdrop {
	face := func(name, texture string, t, r math3d.Mat4) Backdrop {
		return Backdrop{
			Name:    name,
			Texture: texture,
			World:   math3d.Compose(t, r, math3d.ScaleUniform(d)),
		}
	}
	return []Backdrop{
		face("top", "star_top3.png", math3d.Translate(0, d, 0), math3d.RotateX(90)),
		face("bottom", "star_bottom4.png", math3d.Translate(0, -d, 0), math3d.RotateX(90)),
		face("back", "star_back6.png", math3d.Translate(0, 0, -d), math3d.RotateY(180)),
		face("left", "star_left2.png", math3d.Translate(-d, 0, 0), math3d.RotateY(90)),
		face("right", "star_right1.png", math3d.Translate(d, 0, 0), math3d.RotateY(-90)),
		face("fore", "star_front5.png", math3d.Translate(0, 0, d), math3d.RotateY(180)),
	}
}
