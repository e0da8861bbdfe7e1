package main

import "github.com/charmbracelet/harmonica"

// axis carries a drag velocity that springs back to rest after release.
type axis struct {
	Velocity float64
	accel    float64 // spring velocity of Velocity itself
	spring   harmonica.Spring
}

func newAxis(fps int) axis {
	// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
	return axis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// update returns the velocity for this frame and decays it toward 0.
func (a *axis) update() float64 {
	v := a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
	return v
}

// Inertia keeps the camera orbiting for a moment after a drag ends.
// Velocities are in framebuffer pixels per frame, the unit OrbitCamera.Drag takes.
type Inertia struct {
	Yaw, Pitch axis
	fps        int
}

// NewInertia returns inertia at rest for the given frame rate.
func NewInertia(fps int) *Inertia {
	return &Inertia{Yaw: newAxis(fps), Pitch: newAxis(fps), fps: fps}
}

// Throw sets the velocity from the latest drag delta.
func (in *Inertia) Throw(dx, dy float64) {
	in.Yaw.Velocity, in.Yaw.accel = dx, 0
	in.Pitch.Velocity, in.Pitch.accel = dy, 0
}

// Update returns this frame's drag delta.
func (in *Inertia) Update() (dx, dy float64) {
	return in.Yaw.update(), in.Pitch.update()
}

// Stop brings both axes to rest.
func (in *Inertia) Stop() {
	in.Yaw = newAxis(in.fps)
	in.Pitch = newAxis(in.fps)
}
