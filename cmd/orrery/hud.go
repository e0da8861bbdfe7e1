package main

import (
	"fmt"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/orrery/pkg/render"
)

// hudState is what the overlay reports for one frame.
type hudState struct {
	Elapsed      float64
	Speed        float64
	Paused       bool
	RealScale    bool
	RealDistance bool
	Orbits       bool
	Stats        render.Stats
}

// HUD renders an overlay with the frame rate, simulated time and modes.
type HUD struct {
	Visible bool

	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a visible HUD.
func NewHUD(now time.Time) *HUD {
	return &HUD{Visible: true, fpsTime: now}
}

// UpdateFPS counts a frame at now (call once per frame).
func (h *HUD) UpdateFPS(now time.Time) {
	h.fpsFrames++
	elapsed := now.Sub(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = now
	}
}

// FPS returns the frame rate measured over the last full second.
func (h *HUD) FPS() float64 {
	return h.fps
}

var (
	hudStyle   = uv.Style{Fg: render.ColorHUD, Bg: render.ColorBlack}
	hudBold    = uv.Style{Fg: render.ColorHUD, Bg: render.ColorBlack, Attrs: uv.AttrBold}
	hudDim     = uv.Style{Fg: render.ColorHUDDim, Bg: render.ColorBlack, Attrs: uv.AttrFaint}
	hudChecked = uv.Style{Fg: render.RGB(120, 220, 140), Bg: render.ColorBlack}
)

// Draw paints the overlay on the first and last rows of area.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle, st hudState) {
	if !h.Visible || area.Dy() < 2 {
		return
	}
	top, bottom := area.Min.Y, area.Max.Y-1

	drawText(scr, area, area.Min.X, top, fmt.Sprintf(" %.0f FPS ", h.fps), hudStyle)

	const title = " orrery "
	drawText(scr, area, area.Min.X+max((area.Dx()-len(title))/2, 0), top, title, hudBold)

	clock := fmt.Sprintf(" t=%.0fs x%g ", st.Elapsed, st.Speed)
	if st.Paused {
		clock = " paused" + clock
	}
	drawText(scr, area, area.Max.X-len(clock), top, clock, hudStyle)

	x := area.Min.X
	x = drawToggle(scr, area, x, bottom, "S", "real scale", st.RealScale)
	x = drawToggle(scr, area, x, bottom, "D", "real distance", st.RealDistance)
	drawToggle(scr, area, x, bottom, "O", "orbits", st.Orbits)

	tris := fmt.Sprintf(" %d tris ", st.Stats.TrianglesDrawn)
	drawText(scr, area, area.Max.X-len(tris), bottom, tris, hudDim)
}

func drawToggle(scr uv.Screen, area uv.Rectangle, x, y int, key, label string, on bool) int {
	box, style := "[ ]", hudStyle
	if on {
		box, style = "[x]", hudChecked
	}
	x = drawText(scr, area, x, y, " "+box, style)
	return drawText(scr, area, x, y, fmt.Sprintf(" %s:%s", key, label), hudStyle)
}

// drawText writes s one cell per rune starting at (x, y), clipped to area,
// and returns the column after the last rune.
func drawText(scr uv.Screen, area uv.Rectangle, x, y int, s string, style uv.Style) int {
	for _, r := range s {
		if x >= area.Max.X {
			break
		}
		if x >= area.Min.X {
			scr.SetCell(x, y, &uv.Cell{Content: string(r), Width: 1, Style: style})
		}
		x++
	}
	return x
}

// frame is the Drawable handed to the terminal: the framebuffer with the
// HUD on top.
type frame struct {
	fb    *render.Framebuffer
	hud   *HUD
	state hudState
}

func (f frame) Draw(scr uv.Screen, area uv.Rectangle) {
	f.fb.Draw(scr, area)
	f.hud.Draw(scr, area, f.state)
}
