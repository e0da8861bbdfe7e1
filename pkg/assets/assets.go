// Package assets resolves the textures orrery draws with. Images are read
// from a directory, decoded concurrently and cached by name. Bodies and
// starfield faces whose image is absent get a procedural texture instead.
package assets

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/taigrr/orrery/internal/logging"
	"github.com/taigrr/orrery/pkg/render"
	"github.com/taigrr/orrery/pkg/scene"
)

// DefaultConcurrency bounds the number of images decoded at once.
const DefaultConcurrency = 4

// starTextureSize is the side of a procedural starfield face.
const starTextureSize = 128

// Provider loads textures from Dir.
type Provider struct {
	// Dir is the texture directory. Empty means every texture is procedural.
	Dir string
	// MaxSize caps the longest side of a decoded image. Zero keeps full size.
	MaxSize int
	// Concurrency bounds parallel decodes. Zero means DefaultConcurrency.
	Concurrency int

	log    logging.Logger
	flight singleflight.Group
	mu     sync.Mutex
	cache  map[string]*render.Texture
}

// NewProvider returns a provider reading from dir. A nil logger discards output.
func NewProvider(dir string, maxSize int, log logging.Logger) *Provider {
	return &Provider{
		Dir:     dir,
		MaxSize: maxSize,
		log:     logging.OrNop(log),
		cache:   make(map[string]*render.Texture),
	}
}

// Load decodes the image called name inside Dir. Results are cached and
// concurrent requests for one name share a single decode. A missing file
// wraps fs.ErrNotExist.
func (p *Provider) Load(name string) (*render.Texture, error) {
	if tex, ok := p.cached(name); ok {
		return tex, nil
	}
	if p.Dir == "" || name == "" {
		return nil, fmt.Errorf("load texture %q: %w", name, fs.ErrNotExist)
	}

	v, err, _ := p.flight.Do(name, func() (any, error) {
		if tex, ok := p.cached(name); ok {
			return tex, nil
		}
		tex, err := p.decode(name)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.cache[name] = tex
		p.mu.Unlock()
		return tex, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*render.Texture), nil
}

func (p *Provider) cached(name string) (*render.Texture, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tex, ok := p.cache[name]
	return tex, ok
}

func (p *Provider) decode(name string) (*render.Texture, error) {
	f, err := os.Open(filepath.Join(p.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("load texture: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", name, err)
	}
	tex := render.TextureFromImage(img, p.MaxSize)
	p.log.Debugf("loaded %s texture %s (%dx%d)", format, name, tex.Width, tex.Height)
	return tex, nil
}

// Cached reports how many textures have been decoded.
func (p *Provider) Cached() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cache)
}

// load returns the named texture or fallback when it cannot be read. A
// missing file is expected and logged at debug; an unreadable one is a warning.
func (p *Provider) load(name string, fallback func() *render.Texture) *render.Texture {
	tex, err := p.Load(name)
	switch {
	case err == nil:
		return tex
	case errors.Is(err, fs.ErrNotExist):
		p.log.Debugf("texture %q not found, using fallback", name)
	default:
		p.log.Warnf("%v, using fallback", err)
	}
	return fallback()
}

// BodyFallback returns the procedural texture for spec: turbulent latitude
// bands when spec asks for them, otherwise its flat colour. The turbulence
// is seeded from the body id, so a body always looks the same.
func BodyFallback(spec scene.BodySpec) *render.Texture {
	if spec.Bands > 1 {
		h := fnv.New64a()
		h.Write([]byte(spec.ID))
		return render.NewBandedTexture(spec.RGBA(), spec.Bands, int64(h.Sum64()|1))
	}
	return render.NewSolidTexture(spec.RGBA())
}

// StarFallback returns a procedural starfield face. Each face index gets its
// own pattern.
func StarFallback(face int) *render.Texture {
	return render.NewStarTexture(starTextureSize, uint32(face+1)*2654435761)
}

func (p *Provider) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	n := p.Concurrency
	if n <= 0 {
		n = DefaultConcurrency
	}
	g.SetLimit(n)
	return g, ctx
}

// Bodies resolves a texture for every spec, keyed by body id. Only
// cancellation of ctx is an error; unreadable images fall back.
func (p *Provider) Bodies(ctx context.Context, specs []scene.BodySpec) (map[string]*render.Texture, error) {
	out := make([]*render.Texture, len(specs))
	g, ctx := p.group(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = p.load(spec.Texture, func() *render.Texture { return BodyFallback(spec) })
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load body textures: %w", err)
	}

	textures := make(map[string]*render.Texture, len(specs))
	for i, spec := range specs {
		textures[spec.ID] = out[i]
	}
	return textures, nil
}

// Starfield resolves a texture for every backdrop face, in order.
func (p *Provider) Starfield(ctx context.Context, faces []scene.Backdrop) ([]*render.Texture, error) {
	out := make([]*render.Texture, len(faces))
	g, ctx := p.group(ctx)
	for i, face := range faces {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = p.load(face.Texture, func() *render.Texture { return StarFallback(i) })
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load starfield textures: %w", err)
	}
	return out, nil
}
