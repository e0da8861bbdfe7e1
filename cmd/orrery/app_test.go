package main

import (
	"context"
	"testing"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/orrery/internal/config"
	"github.com/taigrr/orrery/internal/viewer"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	return newTestAppWith(t, func(*config.Config) {})
}

func newTestAppWith(t *testing.T, edit func(*config.Config)) *app {
	t.Helper()
	cfg := config.Default()
	cfg.SphereStacks, cfg.SphereSlices = 6, 8
	edit(&cfg)
	v, err := viewer.New(context.Background(), cfg, 32, 16, nil)
	require.NoError(t, err)
	return newApp(cfg, v, nil, time.Unix(0, 0))
}

func press(code rune) uv.KeyPressEvent {
	return uv.KeyPressEvent{Code: code}
}

func TestHandleToggles(t *testing.T) {
	a := newTestApp(t)

	a.handle(press('s'))
	assert.True(t, a.v.Scene.RealScale())
	a.handle(press('d'))
	assert.True(t, a.v.Scene.RealDistance())
	a.handle(press('o'))
	assert.True(t, a.v.ShowOrbits)
	a.handle(press(uv.KeySpace))
	assert.True(t, a.v.Clock.Paused)
	a.handle(press('?'))
	assert.False(t, a.hud.Visible)

	a.handle(press('s'))
	assert.False(t, a.v.Scene.RealScale())
	assert.False(t, a.quit)
}

func TestHandleSpeed(t *testing.T) {
	a := newTestApp(t)

	a.handle(press(']'))
	a.handle(press(']'))
	assert.Equal(t, 4.0, a.v.Clock.Speed)

	for range 20 {
		a.handle(press('['))
	}
	assert.Equal(t, minSpeed, a.v.Clock.Speed)
}

func TestHandleQuit(t *testing.T) {
	for _, ev := range []uv.KeyPressEvent{
		press(uv.KeyEscape),
		{Code: 'c', Mod: uv.ModCtrl},
	} {
		a := newTestApp(t)
		a.handle(ev)
		assert.True(t, a.quit, ev.String())
	}
}

func TestHandleCamera(t *testing.T) {
	a := newTestApp(t)
	yaw := a.v.Camera.YawDegrees

	a.handle(press(uv.KeyLeft))
	assert.Greater(t, a.v.Camera.YawDegrees, yaw)

	a.handle(uv.MouseWheelEvent{Button: uv.MouseWheelUp})
	assert.Less(t, a.v.Camera.ZoomScale, 1.0)

	a.handle(press('r'))
	assert.Equal(t, 0.0, a.v.Camera.YawDegrees)
	assert.Equal(t, 1.0, a.v.Camera.ZoomScale)
}

func TestDragThrowsInertia(t *testing.T) {
	a := newTestApp(t)
	yaw := a.v.Camera.YawDegrees

	a.handle(uv.MouseClickEvent{X: 10, Y: 5, Button: uv.MouseLeft})
	a.handle(uv.MouseMotionEvent{X: 12, Y: 5, Button: uv.MouseLeft})
	assert.InDelta(t, yaw-2*cellPixels*a.v.Camera.DragSensitivity, a.v.Camera.YawDegrees, 1e-9)

	a.handle(uv.MouseReleaseEvent{X: 12, Y: 5, Button: uv.MouseLeft})
	afterDrag := a.v.Camera.YawDegrees
	a.step(time.Unix(1, 0))
	assert.Less(t, a.v.Camera.YawDegrees, afterDrag, "camera keeps turning after release")
}

func TestDragWithoutInertia(t *testing.T) {
	a := newTestAppWith(t, func(cfg *config.Config) { cfg.Camera.Inertia = false })

	a.handle(uv.MouseClickEvent{X: 10, Y: 5, Button: uv.MouseLeft})
	a.handle(uv.MouseMotionEvent{X: 12, Y: 5, Button: uv.MouseLeft})
	a.handle(uv.MouseReleaseEvent{X: 12, Y: 5, Button: uv.MouseLeft})
	afterDrag := a.v.Camera.YawDegrees
	a.step(time.Unix(1, 0))
	assert.Equal(t, afterDrag, a.v.Camera.YawDegrees, "camera stops on release")
}

func TestFrameState(t *testing.T) {
	a := newTestApp(t)
	a.handle(press('o'))
	a.step(time.Unix(10, 0))

	f := a.frame(time.Unix(10, 0))
	assert.True(t, f.state.Orbits)
	assert.Equal(t, 1.0, f.state.Speed)
	assert.Same(t, a.v.Framebuffer(), f.fb)

	scr := uv.NewScreenBuffer(64, 8)
	f.Draw(scr, uv.Rect(0, 0, 64, 8))
	assert.Equal(t, "▀", scr.CellAt(10, 3).Content)
	assert.Contains(t, rowText(scr, 7, 64), "[x] O:orbits")
}

func TestOptionsLoad(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--fps", "24", "--real-distance", "--orbits"}))

	o := optionsOf(t, cmd)
	cfg, err := o.load(cmd)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.FPS)
	assert.True(t, cfg.RealDistance)
	assert.True(t, cfg.Orbits)
	assert.False(t, cfg.RealScale)
	assert.Empty(t, cfg.TextureDir)
}

func TestOptionsLoadInvalid(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--fps", "0"}))

	_, err := optionsOf(t, cmd).load(cmd)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

// optionsOf reads the parsed flags back into options.
func optionsOf(t *testing.T, cmd *cobra.Command) *options {
	t.Helper()
	f := cmd.Flags()
	o := &options{}
	var err error
	o.fps, err = f.GetInt("fps")
	require.NoError(t, err)
	o.realDistance, err = f.GetBool("real-distance")
	require.NoError(t, err)
	o.orbits, err = f.GetBool("orbits")
	require.NoError(t, err)
	return o
}
