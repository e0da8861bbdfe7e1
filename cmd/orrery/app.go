package main

import (
	"context"
	"fmt"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"

	"github.com/taigrr/orrery/internal/config"
	"github.com/taigrr/orrery/internal/logging"
	"github.com/taigrr/orrery/internal/viewer"
	"github.com/taigrr/orrery/pkg/render"
)

const (
	// cellPixels converts a terminal cell of mouse motion into the pointer
	// pixels OrbitCamera.Drag expects.
	cellPixels = 8.0
	// wheelStep is the wheel delta of one scroll notch.
	wheelStep = 100.0
	// arrowStep is the drag, in pixels, of one arrow key press.
	arrowStep = 10.0
	minSpeed  = 1.0 / 64
	maxSpeed  = 64.0
)

// app is the interactive state around a viewer. Events are handled on the
// frame loop goroutine, so nothing here is shared.
type app struct {
	cfg     config.Config
	v       *viewer.Viewer
	hud     *HUD
	inertia *Inertia
	log     logging.Logger

	dragging     bool
	lastX, lastY int
	quit         bool
}

func newApp(cfg config.Config, v *viewer.Viewer, log logging.Logger, now time.Time) *app {
	hud := NewHUD(now)
	hud.Visible = cfg.HUD
	return &app{
		cfg:     cfg,
		v:       v,
		hud:     hud,
		inertia: NewInertia(cfg.FPS),
		log:     logging.OrNop(log),
	}
}

// handle applies one terminal event. Window size events are handled by the
// caller, which owns the terminal.
func (a *app) handle(ev uv.Event) {
	cam := a.v.Camera
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("esc", "ctrl+c"):
			a.quit = true
		case ev.MatchString("left"):
			cam.Drag(-arrowStep, 0)
		case ev.MatchString("right"):
			cam.Drag(arrowStep, 0)
		case ev.MatchString("up"):
			cam.Drag(0, -arrowStep)
		case ev.MatchString("down"):
			cam.Drag(0, arrowStep)
		case ev.MatchString("s"):
			a.log.Infof("real scale: %t", a.v.Scene.ToggleRealScale())
		case ev.MatchString("d"):
			a.log.Infof("real distance: %t", a.v.Scene.ToggleRealDistance())
		case ev.MatchString("o"):
			a.v.ShowOrbits = !a.v.ShowOrbits
		case ev.MatchString("space"):
			a.v.Clock.Paused = !a.v.Clock.Paused
		case ev.MatchString("["):
			a.v.Clock.Speed = max(minSpeed, a.v.Clock.Speed/2)
		case ev.MatchString("]"):
			a.v.Clock.Speed = min(maxSpeed, a.v.Clock.Speed*2)
		case ev.MatchString("r"):
			a.v.Camera = a.cfg.NewCamera()
			a.inertia.Stop()
		case ev.MatchString("?", "shift+/"):
			a.hud.Visible = !a.hud.Visible
		}

	case uv.MouseClickEvent:
		if ev.Button == uv.MouseLeft {
			a.dragging = true
			a.lastX, a.lastY = ev.X, ev.Y
			a.inertia.Stop()
		}

	case uv.MouseReleaseEvent:
		a.dragging = false

	case uv.MouseMotionEvent:
		if a.dragging {
			dx := float64(ev.X-a.lastX) * cellPixels
			dy := float64(ev.Y-a.lastY) * cellPixels
			cam.Drag(dx, dy)
			a.inertia.Throw(dx, dy)
			a.lastX, a.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			cam.Wheel(wheelStep)
		case uv.MouseWheelDown:
			cam.Wheel(-wheelStep)
		}
	}
}

// step advances the simulation and camera to now.
func (a *app) step(now time.Time) {
	if !a.dragging && a.cfg.Camera.Inertia {
		if dx, dy := a.inertia.Update(); dx != 0 || dy != 0 {
			a.v.Camera.Drag(dx, dy)
		}
	}
	if err := a.v.Camera.Update(); err != nil {
		a.log.Debugf("camera: %v", err)
	}
	a.v.Step(now)
}

// frame renders the viewer and returns the drawable for the terminal.
func (a *app) frame(now time.Time) frame {
	_ = a.v.Render() // logged by the viewer; a partial frame is still shown
	a.hud.UpdateFPS(now)
	return frame{
		fb:  a.v.Framebuffer(),
		hud: a.hud,
		state: hudState{
			Elapsed:      a.v.Clock.Elapsed,
			Speed:        a.v.Clock.Speed,
			Paused:       a.v.Clock.Paused,
			RealScale:    a.v.Scene.RealScale(),
			RealDistance: a.v.Scene.RealDistance(),
			Orbits:       a.v.ShowOrbits,
			Stats:        a.v.Stats(),
		},
	}
}

func runTerminal(ctx context.Context, cfg config.Config, log logging.Logger) error {
	term := uv.DefaultTerminal()
	if log.DebugEnabled() {
		term.SetLogger(log)
	}

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	fbWidth, fbHeight := render.FramebufferSize(width, height)
	v, err := viewer.New(ctx, cfg, fbWidth, fbHeight, log)
	if err != nil {
		return err
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	if err := term.Resize(width, height); err != nil {
		return fmt.Errorf("resize terminal: %w", err)
	}
	_, _ = term.WriteString(ansi.SetModeMouseAnyEvent + ansi.SetModeMouseExtSgr)

	defer func() {
		_, _ = term.WriteString(ansi.ResetModeMouseAnyEvent + ansi.ResetModeMouseExtSgr)
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			log.Errorf("shutdown terminal: %v", err)
		}
	}()

	a := newApp(cfg, v, log, time.Now())
	events := term.Events()
	targetDuration := time.Second / time.Duration(cfg.FPS)
	log.Infof("started %dx%d at %d fps", width, height, cfg.FPS)

	for {
	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				if ws, ok := ev.(uv.WindowSizeEvent); ok {
					width, height = ws.Width, ws.Height
					term.Erase()
					if err := term.Resize(width, height); err != nil {
						return fmt.Errorf("resize terminal: %w", err)
					}
					v.Resize(render.FramebufferSize(width, height))
					continue
				}
				a.handle(ev)
			default:
				break drain
			}
		}
		if a.quit {
			return nil
		}

		now := time.Now()
		a.step(now)
		term.Draw(a.frame(now))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
