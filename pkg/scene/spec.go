package scene

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed bodies.yaml
var defaultBodies []byte

// DefaultTimeScale is the shared speed multiplier of the built-in table.
const DefaultTimeScale = 10000

// Style selects how a body is drawn.
type Style string

const (
	// StyleLit is a textured surface lit by the sun.
	StyleLit Style = "lit"
	// StyleEmissive is drawn unlit, as the light source itself.
	StyleEmissive Style = "emissive"
	// StyleShell is a translucent unlit shell such as an atmosphere.
	StyleShell Style = "shell"
)

// BodySpec is one row of the kinematic table.
type BodySpec struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Parent string `yaml:"parent,omitempty"`

	// Degrees per simulated second, before the table's time scale.
	SpinSpeed  float64 `yaml:"spin_speed"`
	OrbitSpeed float64 `yaml:"orbit_speed"`

	// Distance from the parent in real units (AU x 10).
	Distance float64 `yaml:"distance"`
	// Radius is the real radius. Ignored when RadiusOfParent is set.
	Radius         float64 `yaml:"radius"`
	Exaggeration   float64 `yaml:"exaggeration"`
	RadiusOfParent float64 `yaml:"radius_of_parent"`

	Style   Style   `yaml:"style"`
	Texture string  `yaml:"texture"`
	Color   string  `yaml:"color"`
	// Alpha is the opacity of a shell in [0, 1]. Unset means opaque.
	Alpha *float64 `yaml:"alpha,omitempty"`
	// Bands is the number of latitude bands in the fallback texture.
	Bands int `yaml:"bands"`
}

// Table is a kinematic table file.
type Table struct {
	TimeScale float64    `yaml:"time_scale"`
	Bodies    []BodySpec `yaml:"bodies"`
}

var (
	ErrNoBodies      = errors.New("scene: table has no bodies")
	ErrDuplicateBody = errors.New("scene: duplicate body id")
	ErrUnknownParent = errors.New("scene: unknown parent")
	ErrCycle         = errors.New("scene: parent cycle")
	ErrInvalidBody   = errors.New("scene: invalid body")
	ErrUnknownBody   = errors.New("scene: unknown body")
)

// DefaultTable returns the built-in solar system table.
func DefaultTable() *Table {
	t, err := DecodeTable(bytes.NewReader(defaultBodies))
	if err != nil {
		panic(fmt.Sprintf("embedded bodies.yaml: %v", err))
	}
	return t
}

// LoadTable reads a table from a YAML file.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open body table: %w", err)
	}
	defer f.Close()
	return DecodeTable(f)
}

// DecodeTable parses and validates a YAML table. Unknown keys are rejected.
// Zero exaggeration defaults to 1, an empty style to lit and a zero time
// scale to DefaultTimeScale. An absent alpha stays nil and reads as opaque.
func DecodeTable(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var t Table
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode body table: %w", err)
	}
	if t.TimeScale == 0 {
		t.TimeScale = DefaultTimeScale
	}
	for i := range t.Bodies {
		t.Bodies[i].applyDefaults()
	}
	if err := Validate(t.Bodies); err != nil {
		return nil, err
	}
	return &t, nil
}

func (b *BodySpec) applyDefaults() {
	if b.Name == "" {
		b.Name = b.ID
	}
	if b.Exaggeration == 0 {
		b.Exaggeration = 1
	}
	if b.Style == "" {
		b.Style = StyleLit
	}
}

// Validate checks ids, parents, sizes and styles. Parents may appear after
// their children; New reorders them.
func Validate(specs []BodySpec) error {
	if len(specs) == 0 {
		return ErrNoBodies
	}

	byID := make(map[string]*BodySpec, len(specs))
	for i := range specs {
		b := &specs[i]
		if b.ID == "" {
			return fmt.Errorf("%w: body %d has no id", ErrInvalidBody, i)
		}
		if _, dup := byID[b.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateBody, b.ID)
		}
		byID[b.ID] = b
	}

	for i := range specs {
		b := &specs[i]
		if err := b.check(); err != nil {
			return fmt.Errorf("%w %q: %v", ErrInvalidBody, b.ID, err)
		}
		if b.Parent != "" {
			if _, ok := byID[b.Parent]; !ok {
				return fmt.Errorf("%w: %q has parent %q", ErrUnknownParent, b.ID, b.Parent)
			}
		} else if b.RadiusOfParent > 0 {
			return fmt.Errorf("%w %q: radius_of_parent needs a parent", ErrInvalidBody, b.ID)
		}
	}

	// Every parent is known from here on. Walking up more links than there
	// are bodies means a loop.
	for i := range specs {
		b := &specs[i]
		cur := b
		for range len(specs) {
			if cur.Parent == "" {
				break
			}
			cur = byID[cur.Parent]
			if cur == b {
				return fmt.Errorf("%w: through %q", ErrCycle, b.ID)
			}
		}
		if cur.Parent != "" {
			return fmt.Errorf("%w: above %q", ErrCycle, b.ID)
		}
	}
	return nil
}

func (b *BodySpec) check() error {
	switch {
	case b.RadiusOfParent < 0:
		return fmt.Errorf("radius_of_parent %g is negative", b.RadiusOfParent)
	case b.RadiusOfParent == 0 && b.Radius <= 0:
		return fmt.Errorf("radius %g must be positive", b.Radius)
	case b.Exaggeration <= 0:
		return fmt.Errorf("exaggeration %g must be positive", b.Exaggeration)
	case b.Distance < 0:
		return fmt.Errorf("distance %g is negative", b.Distance)
	case b.Alpha != nil && (*b.Alpha < 0 || *b.Alpha > 1):
		return fmt.Errorf("alpha %g outside [0, 1]", *b.Alpha)
	case b.Bands < 0:
		return fmt.Errorf("bands %d is negative", b.Bands)
	}
	switch b.Style {
	case StyleLit, StyleEmissive, StyleShell:
	default:
		return fmt.Errorf("unknown style %q", b.Style)
	}
	if b.Color != "" {
		if _, err := ParseColor(b.Color); err != nil {
			return err
		}
	}
	return nil
}

// Opacity returns Alpha, or 1 when the table leaves it unset.
func (b BodySpec) Opacity() float64 {
	if b.Alpha == nil {
		return 1
	}
	return *b.Alpha
}

// RGBA returns the body's fallback colour, grey when none is set.
func (b BodySpec) RGBA() color.RGBA {
	c, err := ParseColor(b.Color)
	if err != nil {
		return color.RGBA{128, 128, 128, 255}
	}
	return c
}

// ParseColor parses an opaque "#rrggbb" or "#rgb" colour.
func ParseColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse colour: %w", err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}, nil
}
