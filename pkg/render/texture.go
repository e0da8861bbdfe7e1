package render

import (
	"image"
	"image/color"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// Texture is an RGBA image sampled by shader programs.
// V=0 is the bottom row, matching images uploaded with a Y flip.
type Texture struct {
	Width      int
	Height     int
	Pixels     []Color
	WrapU      WrapMode
	WrapV      WrapMode
	FilterMode FilterMode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:      width,
		Height:     height,
		Pixels:     make([]Color, width*height),
		WrapU:      WrapRepeat,
		WrapV:      WrapRepeat,
		FilterMode: FilterBilinear,
	}
}

// TextureFromImage copies img into a texture. If either side of img exceeds
// maxSize (when maxSize > 0) it is downsampled first, keeping its aspect.
func TextureFromImage(img image.Image, maxSize int) *Texture {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		scale := float64(maxSize) / float64(max(w, h))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}

	tex := NewTexture(w, h)
	for y := range h {
		for x := range w {
			tex.Pixels[y*w+x] = dst.RGBAAt(x, y)
		}
	}
	return tex
}

// NewSolidTexture returns a 1x1 texture of c.
func NewSolidTexture(c Color) *Texture {
	tex := NewTexture(1, 1)
	tex.Pixels[0] = c
	return tex
}

// bandWarp is the largest vertical displacement, in texels, that noise
// applies to a band edge.
const bandWarp = 4.0

// NewBandedTexture returns a texture of horizontal latitude bands that
// alternate between c and a darker shade of it. Used when no image is found.
// A non-zero seed warps the band edges with Perlin noise sampled around a
// cylinder, so the texture still wraps seamlessly in U.
func NewBandedTexture(c Color, bands int, seed int64) *Texture {
	const w, h = 64, 64
	tex := NewTexture(w, h)
	dark := MultiplyColor(c, 0.75)

	var noise *perlin.Perlin
	if seed != 0 {
		noise = perlin.NewPerlin(2, 2, 3, seed)
	}
	for y := range h {
		for x := range w {
			fy := float64(y)
			if noise != nil {
				a := 2 * math.Pi * float64(x) / w
				fy += bandWarp * noise.Noise3D(math.Cos(a), math.Sin(a), float64(y)/8)
			}
			col := c
			if int(math.Floor(fy*float64(bands)/h))&1 == 1 {
				col = dark
			}
			tex.Pixels[y*w+x] = col
		}
	}
	return tex
}

// NewStarTexture returns a black texture sprinkled with deterministic stars.
func NewStarTexture(size int, seed uint32) *Texture {
	tex := NewTexture(size, size)
	state := seed | 1
	for i := range tex.Pixels {
		// xorshift32
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		if state%97 == 0 {
			lum := uint8(140 + state%116)
			tex.Pixels[i] = Color{R: lum, G: lum, B: lum, A: 255}
		} else {
			tex.Pixels[i] = ColorBlack
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample samples the texture at UV coordinates (0-1 range).
func (t *Texture) Sample(u, v float64) Color {
	u = wrapCoord(u, t.WrapU)
	v = wrapCoord(v, t.WrapV)

	// Image Y=0 is at the top, V=0 at the bottom.
	v = 1.0 - v

	switch t.FilterMode {
	case FilterBilinear:
		return t.sampleBilinear(u, v)
	default:
		return t.sampleNearest(u, v)
	}
}

// SampleVec samples at uv and returns normalized RGBA for shader math.
func (t *Texture) SampleVec(uv mgl32.Vec2) mgl32.Vec4 {
	return ColorToVec(t.Sample(float64(uv[0]), float64(uv[1])))
}

func wrapCoord(coord float64, mode WrapMode) float64 {
	switch mode {
	case WrapRepeat:
		coord -= math.Floor(coord)
	case WrapClamp:
		coord = math.Max(0, math.Min(1, coord))
	}
	return coord
}

func (t *Texture) sampleNearest(u, v float64) Color {
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.GetPixel(x, y)
}

func (t *Texture) sampleBilinear(u, v float64) Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := wrapPixelCoord(x0+1, t.Width, t.WrapU)
	y1 := wrapPixelCoord(y0+1, t.Height, t.WrapV)
	x0 = wrapPixelCoord(x0, t.Width, t.WrapU)
	y0 = wrapPixelCoord(y0, t.Height, t.WrapV)

	top := lerpColor(t.GetPixel(x0, y0), t.GetPixel(x1, y0), tx)
	bot := lerpColor(t.GetPixel(x0, y1), t.GetPixel(x1, y1), tx)
	return lerpColor(top, bot, ty)
}

func wrapPixelCoord(x, size int, mode WrapMode) int {
	switch mode {
	case WrapRepeat:
		x %= size
		if x < 0 {
			x += size
		}
	case WrapClamp:
		x = max(0, min(size-1, x))
	}
	return x
}

func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}

// MultiplyColor scales RGB by intensity and keeps alpha.
func MultiplyColor(c Color, intensity float64) Color {
	return Color{
		R: uint8(math.Min(255, float64(c.R)*intensity)),
		G: uint8(math.Min(255, float64(c.G)*intensity)),
		B: uint8(math.Min(255, float64(c.B)*intensity)),
		A: c.A,
	}
}

// ColorToVec converts c to normalized RGBA.
func ColorToVec(c color.RGBA) mgl32.Vec4 {
	return mgl32.Vec4{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

// VecToColor converts normalized RGBA to a color, clamping each channel.
func VecToColor(v mgl32.Vec4) color.RGBA {
	ch := func(f float32) uint8 {
		return uint8(mgl32.Clamp(f, 0, 1)*255 + 0.5)
	}
	return color.RGBA{ch(v[0]), ch(v[1]), ch(v[2]), ch(v[3])}
}
