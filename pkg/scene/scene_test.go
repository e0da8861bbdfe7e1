package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/orrery/pkg/math3d"
)

const eps = 1e-9

type recorder struct {
	calls int
	last  math3d.Mat4
}

func (r *recorder) SetWorldMatrix(m math3d.Mat4) {
	r.calls++
	r.last = m
}

func defaultScene(t *testing.T, opts Options) *Scene {
	t.Helper()
	s, err := NewDefault(opts)
	require.NoError(t, err)
	return s
}

func TestArenaOrderParentsFirst(t *testing.T) {
	// Children listed before their parents.
	specs := []BodySpec{
		{ID: "moon", Parent: "earth", Radius: 1, Distance: 1},
		{ID: "earth", Parent: "sun", Radius: 1, Distance: 10},
		{ID: "sun", Radius: 1},
	}
	s, err := New(specs, Options{})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, b := range s.Bodies() {
		if b.Parent >= 0 {
			assert.True(t, seen[s.Bodies()[b.Parent].Spec.ID], "%s placed before its parent", b.Spec.ID)
		}
		seen[b.Spec.ID] = true
	}
	assert.Equal(t, "sun", s.Bodies()[0].Spec.ID)
}

func TestNewDoesNotModifySpecs(t *testing.T) {
	specs := []BodySpec{{ID: "sun", Radius: 1}}
	_, err := New(specs, Options{})
	require.NoError(t, err)
	assert.Zero(t, specs[0].Exaggeration)
}

func TestUpdateAtZeroHasNoRotation(t *testing.T) {
	for _, opts := range []Options{{}, {RealScale: true, RealDistance: true}} {
		s := defaultScene(t, opts)
		s.Update(0)
		for _, b := range s.Bodies() {
			r, err := s.Radius(b.Spec.ID)
			require.NoError(t, err)
			want := math3d.ScaleUniform(2 * r).Upper3x3()
			got := b.World.Upper3x3()
			for i := range got {
				assert.InDelta(t, want[i], got[i], eps, "%s element %d", b.Spec.ID, i)
			}
		}
	}
}

func TestUpdateAtZeroPlacesBodiesOnXAxis(t *testing.T) {
	s := defaultScene(t, Options{RealDistance: true})
	s.Update(0)

	earth, err := s.World("earth")
	require.NoError(t, err)
	assert.Equal(t, math3d.V3(10, 0, 0), earth.Translation())

	moon, err := s.World("moon")
	require.NoError(t, err)
	assert.InDelta(t, 11.5, moon.Translation().X, eps)

	atmo, err := s.World("atmosphere")
	require.NoError(t, err)
	assert.Equal(t, earth.Translation(), atmo.Translation())
}

func TestExaggeratedRadii(t *testing.T) {
	tests := []struct {
		id     string
		factor float64
	}{
		{"sun", 1},
		{"mercury", 16},
		{"venus", 16},
		{"earth", 16},
		{"mars", 16},
		{"moon", 20},
		{"jupiter", 4},
		{"saturn", 4},
		{"uranus", 4},
		{"neptune", 4},
		{"atmosphere", 16},
	}

	actual := defaultScene(t, Options{RealScale: true})
	exaggerated := defaultScene(t, Options{RealScale: false})
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r, err := actual.Radius(tt.id)
			require.NoError(t, err)
			e, err := exaggerated.Radius(tt.id)
			require.NoError(t, err)
			assert.InEpsilon(t, r*tt.factor, e, 1e-12)
		})
	}
}

func TestAtmosphereFollowsEarthRadius(t *testing.T) {
	s := defaultScene(t, Options{})
	earth, _ := s.Radius("earth")
	atmo, _ := s.Radius("atmosphere")
	assert.InEpsilon(t, earth*1.4, atmo, 1e-12)
}

func TestCompressedDistances(t *testing.T) {
	s := defaultScene(t, Options{RealDistance: false})

	tests := []struct {
		id   string
		want float64
	}{
		{"sun", 0},
		{"earth", math.Log2(10)},
		{"moon", math.Log2(1.5)},
		{"neptune", math.Log2(300.5)},
		{"atmosphere", 0},
	}
	for _, tt := range tests {
		got, err := s.DistanceOf(tt.id)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, eps, tt.id)
	}
}

func TestToggles(t *testing.T) {
	s := defaultScene(t, Options{})
	before, _ := s.Radius("earth")

	assert.True(t, s.ToggleRealScale())
	after, _ := s.Radius("earth")
	assert.InEpsilon(t, before/16, after, 1e-12)

	w0, _ := s.World("earth")
	s.Update(0)
	w1, _ := s.World("earth")
	assert.False(t, w0.ApproxEqual(w1, 1e-12), "world matrix picks up the new scale on Update")

	assert.True(t, s.ToggleRealDistance())
	d, _ := s.DistanceOf("earth")
	assert.Equal(t, 10.0, d)

	s.SetRealScale(false)
	s.SetRealDistance(false)
	assert.False(t, s.RealScale())
	assert.False(t, s.RealDistance())
}

func TestMoonFollowsEarth(t *testing.T) {
	s := defaultScene(t, Options{RealDistance: true})

	for _, elapsed := range []float64{0, 0.5, 3, 17.25} {
		s.Update(elapsed)
		earth, _ := s.Body("earth")
		moon, _ := s.Body("moon")

		// The moon sits 1.5 units from the earth whatever either has done.
		assert.InDelta(t, 1.5, moon.Position().Distance(earth.Position()), 1e-9, "t=%v", elapsed)
	}
}

func TestOrbitAngle(t *testing.T) {
	s := defaultScene(t, Options{RealDistance: true})
	earth, _ := s.Body("earth")

	// A quarter orbit: RotateY(90) sends +X to -Z.
	quarter := 90 / (earth.Spec.OrbitSpeed * s.TimeScale())
	s.Update(quarter)

	p := earth.Position()
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, -10, p.Z, 1e-9)
}

func TestWorldComposition(t *testing.T) {
	s := defaultScene(t, Options{})
	const elapsed = 2.5
	s.Update(elapsed)

	earth, _ := s.Body("earth")
	moon, _ := s.Body("moon")
	ts := s.TimeScale()
	r, _ := s.Radius("moon")
	d, _ := s.DistanceOf("moon")

	want := math3d.Compose(
		earth.Frame,
		math3d.RotateY(elapsed*moon.Spec.OrbitSpeed*ts),
		math3d.Translate(d, 0, 0),
		math3d.RotateY(elapsed*moon.Spec.SpinSpeed*ts),
		math3d.ScaleUniform(2*r),
	)
	assert.True(t, want.ApproxEqual(moon.World, 1e-12))
}

func TestSpinDoesNotMoveSatellites(t *testing.T) {
	specs := []BodySpec{
		{ID: "planet", Radius: 1, SpinSpeed: 30},
		{ID: "sat", Parent: "planet", Radius: 0.1, Distance: 4},
	}
	s, err := New(specs, Options{TimeScale: 1, RealDistance: true})
	require.NoError(t, err)

	s.Update(1)
	w, _ := s.World("sat")
	assert.Equal(t, math3d.V3(4, 0, 0), w.Translation())
}

func TestAttach(t *testing.T) {
	s := defaultScene(t, Options{})
	rec := &recorder{}
	require.NoError(t, s.Attach("mars", rec))
	assert.Equal(t, 1, rec.calls, "attach pushes the current matrix")

	s.Update(1)
	s.Update(2)
	assert.Equal(t, 3, rec.calls)
	w, _ := s.World("mars")
	assert.Equal(t, w, rec.last)

	err := s.Attach("pluto", rec)
	assert.True(t, errors.Is(err, ErrUnknownBody))
}

func TestUnknownBody(t *testing.T) {
	s := defaultScene(t, Options{})
	_, err := s.Radius("vulcan")
	assert.ErrorIs(t, err, ErrUnknownBody)
	_, err = s.DistanceOf("vulcan")
	assert.ErrorIs(t, err, ErrUnknownBody)
	_, err = s.World("vulcan")
	assert.ErrorIs(t, err, ErrUnknownBody)
	_, ok := s.Body("vulcan")
	assert.False(t, ok)
}

func TestWorldMatricesInvertible(t *testing.T) {
	// Real-scale moons are tiny; their world matrices must still invert.
	s := defaultScene(t, Options{RealScale: true, RealDistance: true})
	s.Update(123.4)
	for _, b := range s.Bodies() {
		_, err := b.World.Inverse()
		assert.NoError(t, err, b.Spec.ID)
	}
}

func BenchmarkSceneUpdate(b *testing.B) {
	s, err := NewDefault(Options{})
	if err != nil {
		b.Fatal(err)
	}
	t := 0.0
	for b.Loop() {
		t += 1.0 / 60
		s.Update(t)
	}
}
