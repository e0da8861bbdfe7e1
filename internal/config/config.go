// Package config holds orrery's runtime settings: built-in defaults, an
// optional YAML overlay, and command-line overrides applied by the caller.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/taigrr/orrery/pkg/render"
	"github.com/taigrr/orrery/pkg/scene"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Camera configures the orbit camera.
type Camera struct {
	MinDistance      float64 `yaml:"min_distance"`
	MaxDistance      float64 `yaml:"max_distance"`
	Pitch            float64 `yaml:"pitch"`
	Zoom             float64 `yaml:"zoom"`
	DragSensitivity  float64 `yaml:"drag_sensitivity"`
	WheelSensitivity float64 `yaml:"wheel_sensitivity"`
	Inertia          bool    `yaml:"inertia"`
}

// Projection configures the perspective projection.
type Projection struct {
	FOVY float64 `yaml:"fovy"`
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`
}

// Config is the full runtime configuration.
type Config struct {
	FPS        int    `yaml:"fps"`
	Background string `yaml:"background"`

	// TextureDir is searched for body and starfield images. Missing files
	// fall back to procedural textures.
	TextureDir   string `yaml:"texture_dir"`
	MaxTexture   int    `yaml:"max_texture"`
	MeshPath     string `yaml:"mesh_path"`
	BodiesPath   string `yaml:"bodies_path"`
	SphereStacks int    `yaml:"sphere_stacks"`
	SphereSlices int    `yaml:"sphere_slices"`

	TimeScale    float64 `yaml:"time_scale"`
	RealScale    bool    `yaml:"real_scale"`
	RealDistance bool    `yaml:"real_distance"`
	Orbits       bool    `yaml:"orbits"`
	HUD          bool    `yaml:"hud"`

	Camera     Camera     `yaml:"camera"`
	Projection Projection `yaml:"projection"`
}

// Default returns the built-in configuration.
func Default() Config {
	proj := render.DefaultProjection()
	return Config{
		FPS:          60,
		Background:   "#000000",
		MaxTexture:   512,
		SphereStacks: 24,
		SphereSlices: 32,
		HUD:          true,
		Camera: Camera{
			MinDistance:      render.DefaultMinDistance,
			MaxDistance:      render.DefaultMaxDistance,
			Pitch:            render.DefaultPitch,
			Zoom:             render.DefaultZoom,
			DragSensitivity:  render.DefaultDragSensitivity,
			WheelSensitivity: render.DefaultWheelSensitivity,
			Inertia:          true,
		},
		Projection: Projection{FOVY: proj.FOVY, Near: proj.Near, Far: proj.Far},
	}
}

// Load reads path over Default. Fields missing from the file keep their
// defaults; unknown fields are an error. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first setting that cannot drive a frame.
func (c Config) Validate() error {
	switch {
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.FPS)
	case c.SphereStacks < 2 || c.SphereSlices < 3:
		return fmt.Errorf("%w: sphere needs at least 2 stacks and 3 slices, got %dx%d",
			ErrInvalid, c.SphereStacks, c.SphereSlices)
	case c.TimeScale < 0:
		return fmt.Errorf("%w: time_scale must not be negative", ErrInvalid)
	case c.Camera.MinDistance <= 0 || c.Camera.MaxDistance < c.Camera.MinDistance:
		return fmt.Errorf("%w: camera distance range [%g, %g]",
			ErrInvalid, c.Camera.MinDistance, c.Camera.MaxDistance)
	case c.Camera.Zoom < 0 || c.Camera.Zoom > 1:
		return fmt.Errorf("%w: camera zoom %g outside [0, 1]", ErrInvalid, c.Camera.Zoom)
	case c.Projection.FOVY <= 0 || c.Projection.FOVY >= 180:
		return fmt.Errorf("%w: fovy %g outside (0, 180)", ErrInvalid, c.Projection.FOVY)
	case c.Projection.Near <= 0 || c.Projection.Far <= c.Projection.Near:
		return fmt.Errorf("%w: clip range [%g, %g]", ErrInvalid, c.Projection.Near, c.Projection.Far)
	}
	if _, err := c.BackgroundColor(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// BackgroundColor parses Background.
func (c Config) BackgroundColor() (color.RGBA, error) {
	return scene.ParseColor(c.Background)
}

// NewCamera returns an orbit camera built from the camera settings.
func (c Config) NewCamera() *render.OrbitCamera {
	cam := render.NewOrbitCamera()
	cam.MinDistance = c.Camera.MinDistance
	cam.MaxDistance = c.Camera.MaxDistance
	cam.DragSensitivity = c.Camera.DragSensitivity
	cam.WheelSensitivity = c.Camera.WheelSensitivity
	cam.SetPitch(c.Camera.Pitch)
	cam.SetZoom(c.Camera.Zoom)
	_ = cam.Update()
	return cam
}

// RenderProjection returns the projection settings for the renderer.
func (c Config) RenderProjection() render.Projection {
	return render.Projection{FOVY: c.Projection.FOVY, Near: c.Projection.Near, Far: c.Projection.Far}
}

// SceneOptions returns the scene modes. A zero TimeScale defers to the body table.
func (c Config) SceneOptions() scene.Options {
	return scene.Options{
		TimeScale:    c.TimeScale,
		RealScale:    c.RealScale,
		RealDistance: c.RealDistance,
	}
}
