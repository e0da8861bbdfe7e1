// orrery - Terminal Solar System
// Watch the planets orbit the sun in your terminal.
//
// Controls:
//
//	Mouse drag  - Orbit the camera (with inertia)
//	Scroll      - Zoom in/out
//	Arrows      - Orbit the camera
//	S           - Toggle real planet scale
//	D           - Toggle real distances
//	O           - Toggle orbit rings
//	Space       - Pause/resume time
//	[ / ]       - Slow down/speed up time
//	R           - Reset camera
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/orrery/internal/config"
	"github.com/taigrr/orrery/internal/logging"
	"github.com/taigrr/orrery/internal/viewer"
)

var version = "dev"

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

// options are the command-line flags. Flags that are set override the
// config file, which overrides the built-in defaults.
type options struct {
	configPath string
	logPath    string
	debug      bool

	fps          int
	textureDir   string
	meshPath     string
	bodiesPath   string
	timeScale    float64
	realScale    bool
	realDistance bool
	orbits       bool

	snapshot string
	width    int
	height   int
	at       float64
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "orrery",
		Short: "A solar system in your terminal",
		Long: `orrery draws the sun, planets and moon orbiting in real time with a
software rasterizer and paints them into terminal cells.

Textures are read from --textures when present; bodies without one get a
procedural texture.`,
		Example: `  orrery
  orrery --textures ./textures --real-distance
  orrery --snapshot frame.png --at 3600`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	f.StringVar(&o.logPath, "log", "", "write logs to this file")
	f.BoolVar(&o.debug, "debug", false, "enable debug logging")
	f.IntVar(&o.fps, "fps", 60, "target frames per second")
	f.StringVarP(&o.textureDir, "textures", "t", "", "directory of body and starfield images")
	f.StringVarP(&o.meshPath, "mesh", "m", "", "body mesh (.glb, .gltf or Assimp .json); default is a generated sphere")
	f.StringVarP(&o.bodiesPath, "bodies", "b", "", "YAML body table; default is the built-in solar system")
	f.Float64Var(&o.timeScale, "time-scale", 0, "angular speed multiplier; 0 uses the body table's")
	f.BoolVar(&o.realScale, "real-scale", false, "draw planets at their real size")
	f.BoolVar(&o.realDistance, "real-distance", false, "draw orbits at their real distance")
	f.BoolVar(&o.orbits, "orbits", false, "draw orbit rings")
	f.StringVar(&o.snapshot, "snapshot", "", "render one frame to this PNG file and exit")
	f.IntVar(&o.width, "width", 320, "snapshot width in pixels")
	f.IntVar(&o.height, "height", 180, "snapshot height in pixels")
	f.Float64Var(&o.at, "at", 0, "snapshot time in simulated seconds")
	return cmd
}

// load reads the config file and applies the flags the user set.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("fps") {
		cfg.FPS = o.fps
	}
	if f.Changed("textures") {
		cfg.TextureDir = o.textureDir
	}
	if f.Changed("mesh") {
		cfg.MeshPath = o.meshPath
	}
	if f.Changed("bodies") {
		cfg.BodiesPath = o.bodiesPath
	}
	if f.Changed("time-scale") {
		cfg.TimeScale = o.timeScale
	}
	if f.Changed("real-scale") {
		cfg.RealScale = o.realScale
	}
	if f.Changed("real-distance") {
		cfg.RealDistance = o.realDistance
	}
	if f.Changed("orbits") {
		cfg.Orbits = o.orbits
	}
	return cfg, cfg.Validate()
}

// openLog returns the logger for this run. Interactive runs log only to a
// file because the terminal is in use; snapshots fall back to stderr.
func (o *options) openLog() (logging.Logger, io.Closer, error) {
	if o.logPath == "" && o.snapshot != "" {
		return logging.New(os.Stderr, "orrery", o.debug), nil, nil
	}
	return logging.Open(o.logPath, "orrery", o.debug)
}

func run(cmd *cobra.Command, o *options) error {
	cfg, err := o.load(cmd)
	if err != nil {
		return err
	}

	log, closer, err := o.openLog()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	if o.snapshot != "" {
		return runSnapshot(cmd.Context(), cfg, o, log)
	}
	return runTerminal(cmd.Context(), cfg, log)
}

func runSnapshot(ctx context.Context, cfg config.Config, o *options, log logging.Logger) error {
	if o.width <= 0 || o.height <= 0 {
		return fmt.Errorf("snapshot size %dx%d must be positive", o.width, o.height)
	}
	v, err := viewer.New(ctx, cfg, o.width, o.height, log)
	if err != nil {
		return err
	}
	v.SetTime(o.at)
	if err := v.Snapshot(o.snapshot); err != nil {
		return err
	}
	log.Infof("wrote %s (%dx%d, t=%gs)", o.snapshot, o.width, o.height, o.at)
	return nil
}
