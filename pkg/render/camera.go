package render

import (
	"errors"
	"math"

	"github.com/taigrr/orrery/pkg/math3d"
)

// ErrDegenerateBasis is returned by LookAt when no orthonormal basis can be
// built: the eye sits on the target, or the view direction is parallel to
// the world up axis.
var ErrDegenerateBasis = errors.New("render: degenerate look-at basis")

// Orbit camera defaults.
const (
	DefaultPitch            = -45.0
	DefaultZoom             = 1.0
	DefaultMinDistance      = 1.0
	DefaultMaxDistance      = 30.0
	DefaultDragSensitivity  = 0.5   // degrees per pixel
	DefaultWheelSensitivity = 0.001 // zoom per wheel unit
	MaxPitch                = 85.0
)

// basisEpsilon guards the cross product in LookAt.
const basisEpsilon = 1e-9

var worldUp = math3d.Direction(0, 1, 0)

// OrbitCamera circles a fixed target. Yaw and pitch come from drag input,
// the orbit distance from a zoom scale in [0, 1] mapped linearly between
// MinDistance and MaxDistance.
//
// The camera keeps only its world matrix. The view matrix is derived from it
// on every call and the position is read from its translation column, so
// neither can drift from the orientation.
type OrbitCamera struct {
	YawDegrees   float64
	PitchDegrees float64
	ZoomScale    float64

	MinDistance float64
	MaxDistance float64
	Target      math3d.Vec4

	DragSensitivity  float64
	WheelSensitivity float64

	world math3d.Mat4
}

// NewOrbitCamera returns a camera with the default orbit parameters,
// already updated so its world matrix is valid.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{
		MinDistance:      DefaultMinDistance,
		MaxDistance:      DefaultMaxDistance,
		DragSensitivity:  DefaultDragSensitivity,
		WheelSensitivity: DefaultWheelSensitivity,
	}
	c.Reset()
	return c
}

// Reset restores yaw, pitch, zoom and target to their defaults and updates.
func (c *OrbitCamera) Reset() {
	c.YawDegrees = 0
	c.PitchDegrees = DefaultPitch
	c.ZoomScale = DefaultZoom
	c.Target = math3d.Point(0, 0, 0)
	_ = c.Update()
}

// Distance returns the current eye-to-target distance.
func (c *OrbitCamera) Distance() float64 {
	return c.MinDistance + (c.MaxDistance-c.MinDistance)*c.ZoomScale
}

// Update recomputes the world matrix from yaw, pitch and zoom.
// The tether is rotated by pitch first, then yaw.
func (c *OrbitCamera) Update() error {
	tether := math3d.Direction(0, 0, c.Distance())
	tether = math3d.RotateX(c.PitchDegrees).MulVec4(tether)
	tether = math3d.RotateY(c.YawDegrees).MulVec4(tether)

	eye := c.Target.Add(tether)
	return c.LookAt(eye, c.Target)
}

// LookAt places the camera at eye facing target. The world matrix columns
// become [right, up, -forward, eye].
// On ErrDegenerateBasis the previous world matrix is kept.
func (c *OrbitCamera) LookAt(eye, target math3d.Vec4) error {
	dir := target.Sub(eye)
	if dir.Len() < basisEpsilon {
		return ErrDegenerateBasis
	}
	forward := dir.Normalize()

	side := forward.Cross(worldUp)
	if side.Len() < basisEpsilon {
		return ErrDegenerateBasis
	}
	right := side.Normalize()
	up := right.Cross(forward)

	c.world = math3d.Mat4{
		right.X, up.X, -forward.X, eye.X,
		right.Y, up.Y, -forward.Y, eye.Y,
		right.Z, up.Z, -forward.Z, eye.Z,
		0, 0, 0, 1,
	}
	return nil
}

// WorldMatrix returns the camera-to-world matrix.
func (c *OrbitCamera) WorldMatrix() math3d.Mat4 {
	return c.world
}

// ViewMatrix returns the inverse of the world matrix, computed fresh.
func (c *OrbitCamera) ViewMatrix() (math3d.Mat4, error) {
	return c.world.Inverse()
}

// Position returns the eye position from the world matrix translation.
func (c *OrbitCamera) Position() math3d.Vec4 {
	return math3d.Point(c.world[3], c.world[7], c.world[11])
}

// Drag applies a pointer delta in pixels.
func (c *OrbitCamera) Drag(dx, dy float64) {
	c.YawDegrees -= dx * c.DragSensitivity
	c.SetPitch(c.PitchDegrees - dy*c.DragSensitivity)
}

// Wheel applies a wheel delta. Positive deltas zoom in.
func (c *OrbitCamera) Wheel(delta float64) {
	c.SetZoom(c.ZoomScale - delta*c.WheelSensitivity)
}

// SetPitch sets the pitch clamped to [-MaxPitch, MaxPitch].
func (c *OrbitCamera) SetPitch(deg float64) {
	c.PitchDegrees = math.Max(-MaxPitch, math.Min(MaxPitch, deg))
}

// SetZoom sets the zoom scale clamped to [0, 1].
func (c *OrbitCamera) SetZoom(z float64) {
	c.ZoomScale = math.Max(0, math.Min(1, z))
}
