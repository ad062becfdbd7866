package raster

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/inamate/designer/internal/engine"
)

var ErrEmptyFamily = errors.New("font family is empty")

type faceStyle struct {
	bold   bool
	italic bool
}

// FontRegistry maps CSS font families to parsed OpenType fonts. Families
// without a registered font fall back to the Go fonts.
type FontRegistry struct {
	mu       sync.RWMutex
	families map[string]map[faceStyle]*opentype.Font
	fallback map[faceStyle]*opentype.Font
	mono     *opentype.Font
}

func mustParse(data []byte) *opentype.Font {
	f, err := opentype.Parse(data)
	if err != nil {
		panic(err)
	}
	return f
}

// NewFontRegistry returns a registry preloaded with the Go font family.
func NewFontRegistry() *FontRegistry {
	return &FontRegistry{
		families: map[string]map[faceStyle]*opentype.Font{},
		fallback: map[faceStyle]*opentype.Font{
			{}:                         mustParse(goregular.TTF),
			{bold: true}:               mustParse(gobold.TTF),
			{italic: true}:             mustParse(goitalic.TTF),
			{bold: true, italic: true}: mustParse(gobolditalic.TTF),
		},
		mono: mustParse(gomono.TTF),
	}
}

var defaultFonts = NewFontRegistry()

// DefaultFonts is the registry canvases use unless told otherwise.
func DefaultFonts() *FontRegistry {
	return defaultFonts
}

// RegisterFont adds a font resource to the default registry as the
// regular face of family.
func RegisterFont(family string, data []byte) error {
	return defaultFonts.Register(family, false, false, data)
}

// Register parses data and stores it under family for the given style.
func (r *FontRegistry) Register(family string, bold, italic bool, data []byte) error {
	key := normalizeFamily(family)
	if key == "" {
		return ErrEmptyFamily
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %q: %w", family, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.families[key] == nil {
		r.families[key] = map[faceStyle]*opentype.Font{}
	}
	r.families[key][faceStyle{bold, italic}] = f
	return nil
}

func normalizeFamily(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), `"'`))
}

// Lookup resolves a CSS family list, trying each name in order. A family
// registered without the requested style serves its regular face.
func (r *FontRegistry) Lookup(f engine.Font) *opentype.Font {
	style := faceStyle{bold: f.Weight >= 600, italic: f.Italic}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range strings.Split(f.Family, ",") {
		name = normalizeFamily(name)
		if faces, ok := r.families[name]; ok {
			if ff := faces[style]; ff != nil {
				return ff
			}
			if ff := faces[faceStyle{}]; ff != nil {
				return ff
			}
		}
		if name == "monospace" || name == "go mono" {
			return r.mono
		}
	}
	return r.fallback[style]
}

type faceKey struct {
	font *opentype.Font
	size float64
}

// faceCache holds sized faces for one canvas; faces are not safe for
// concurrent use.
type faceCache map[faceKey]font.Face

func (c faceCache) face(f *opentype.Font, size float64) (font.Face, error) {
	k := faceKey{f, size}
	if face, ok := c[k]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	c[k] = face
	return face, nil
}
