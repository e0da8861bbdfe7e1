// Package scene schedules the per-frame transforms of orbiting bodies.
//
// Bodies live in an arena ordered parents-first. Every Update recomputes each
// world matrix from the elapsed simulated time, composing
// parentFrame * orbit * translate * spin * scale, and pushes it to the
// body's Renderable. Nothing is carried over between frames.
package scene

import (
	"fmt"
	"math"

	"github.com/taigrr/orrery/pkg/math3d"
)

// Renderable receives a body's world matrix once per frame.
type Renderable interface {
	SetWorldMatrix(math3d.Mat4)
}

// Body is one node of the arena.
type Body struct {
	Spec BodySpec
	// Parent is the arena index of the parent body, -1 for roots.
	Parent   int
	Geometry Renderable

	// Frame is parentFrame * orbit * translate. Satellites build on it.
	Frame math3d.Mat4
	// World is Frame * spin * scale.
	World math3d.Mat4
}

// Position returns the body's world-space centre.
func (b *Body) Position() math3d.Vec3 {
	return b.World.Translation()
}

// Options control the presentation of the table.
type Options struct {
	// TimeScale multiplies every angular speed. Zero means DefaultTimeScale.
	TimeScale    float64
	RealScale    bool
	RealDistance bool
}

// Scene owns the body arena.
type Scene struct {
	bodies []*Body
	index  map[string]int
	opts   Options
}

// New validates specs and builds the arena. Bodies are reordered so every
// parent precedes its children; siblings keep their table order.
func New(specs []BodySpec, opts Options) (*Scene, error) {
	specs = append([]BodySpec(nil), specs...)
	for i := range specs {
		specs[i].applyDefaults()
	}
	if err := Validate(specs); err != nil {
		return nil, err
	}
	if opts.TimeScale == 0 {
		opts.TimeScale = DefaultTimeScale
	}

	s := &Scene{
		bodies: make([]*Body, 0, len(specs)),
		index:  make(map[string]int, len(specs)),
		opts:   opts,
	}

	// Repeated passes place each body once its parent is placed. Validate has
	// ruled out cycles, so every pass places at least one body.
	placed := make([]bool, len(specs))
	for len(s.bodies) < len(specs) {
		for i, spec := range specs {
			if placed[i] {
				continue
			}
			parent := -1
			if spec.Parent != "" {
				p, ok := s.index[spec.Parent]
				if !ok {
					continue
				}
				parent = p
			}
			s.index[spec.ID] = len(s.bodies)
			s.bodies = append(s.bodies, &Body{
				Spec:   spec,
				Parent: parent,
				Frame:  math3d.Identity(),
				World:  math3d.Identity(),
			})
			placed[i] = true
		}
	}

	s.Update(0)
	return s, nil
}

// NewDefault builds the scene from the built-in table.
func NewDefault(opts Options) (*Scene, error) {
	t := DefaultTable()
	if opts.TimeScale == 0 {
		opts.TimeScale = t.TimeScale
	}
	return New(t.Bodies, opts)
}

// Update recomputes every body transform for the given simulated seconds
// since start and pushes the world matrices to attached geometry.
func (s *Scene) Update(elapsed float64) {
	for i, b := range s.bodies {
		parentFrame := math3d.Identity()
		if b.Parent >= 0 {
			parentFrame = s.bodies[b.Parent].Frame
		}

		orbit := math3d.RotateY(elapsed * b.Spec.OrbitSpeed * s.opts.TimeScale)
		spin := math3d.RotateY(elapsed * b.Spec.SpinSpeed * s.opts.TimeScale)
		d := s.distance(i)
		r := s.radius(i)

		b.Frame = math3d.Compose(parentFrame, orbit, math3d.Translate(d, 0, 0))
		b.World = math3d.Compose(b.Frame, spin, math3d.ScaleUniform(2*r))

		if b.Geometry != nil {
			b.Geometry.SetWorldMatrix(b.World)
		}
	}
}

func (s *Scene) radius(i int) float64 {
	b := s.bodies[i]
	if b.Spec.RadiusOfParent > 0 {
		return s.radius(b.Parent) * b.Spec.RadiusOfParent
	}
	if s.opts.RealScale {
		return b.Spec.Radius
	}
	return b.Spec.Radius * b.Spec.Exaggeration
}

func (s *Scene) distance(i int) float64 {
	d := s.bodies[i].Spec.Distance
	if s.opts.RealDistance || d == 0 {
		return d
	}
	return math.Log2(d)
}

func (s *Scene) lookup(id string) (int, error) {
	i, ok := s.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBody, id)
	}
	return i, nil
}

// Attach connects a renderable to a body and pushes the current world matrix.
func (s *Scene) Attach(id string, r Renderable) error {
	i, err := s.lookup(id)
	if err != nil {
		return err
	}
	b := s.bodies[i]
	b.Geometry = r
	if r != nil {
		r.SetWorldMatrix(b.World)
	}
	return nil
}

// Body returns the body with the given id.
func (s *Scene) Body(id string) (*Body, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.bodies[i], true
}

// Bodies returns the arena in update order. The slice must not be modified.
func (s *Scene) Bodies() []*Body {
	return s.bodies
}

// Radius returns the drawn radius of a body under the current scale mode.
func (s *Scene) Radius(id string) (float64, error) {
	i, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	return s.radius(i), nil
}

// DistanceOf returns the drawn distance of a body from its parent under the
// current distance mode.
func (s *Scene) DistanceOf(id string) (float64, error) {
	i, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	return s.distance(i), nil
}

// World returns a body's world matrix from the last Update.
func (s *Scene) World(id string) (math3d.Mat4, error) {
	i, err := s.lookup(id)
	if err != nil {
		return math3d.Mat4{}, err
	}
	return s.bodies[i].World, nil
}

// TimeScale returns the shared angular speed multiplier.
func (s *Scene) TimeScale() float64 { return s.opts.TimeScale }

// RealScale reports whether radii are drawn unexaggerated.
func (s *Scene) RealScale() bool { return s.opts.RealScale }

// RealDistance reports whether distances are drawn linearly.
func (s *Scene) RealDistance() bool { return s.opts.RealDistance }

// SetRealScale switches between real and exaggerated radii. The change
// shows on the next Update.
func (s *Scene) SetRealScale(on bool) { s.opts.RealScale = on }

// SetRealDistance switches between linear and log2-compressed distances.
// The change shows on the next Update.
func (s *Scene) SetRealDistance(on bool) { s.opts.RealDistance = on }

// ToggleRealScale flips the scale mode and returns the new value.
func (s *Scene) ToggleRealScale() bool {
	s.opts.RealScale = !s.opts.RealScale
	return s.opts.RealScale
}

// ToggleRealDistance flips the distance mode and returns the new value.
func (s *Scene) ToggleRealDistance() bool {
	s.opts.RealDistance = !s.opts.RealDistance
	return s.opts.RealDistance
}
