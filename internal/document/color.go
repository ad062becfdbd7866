package document

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBA is a color with r/g/b in [0,255] and a in [0,1]. Channels are not
// clamped at the type level.
type RGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

var (
	Black       = RGBA{0, 0, 0, 1}
	White       = RGBA{255, 255, 255, 1}
	Transparent = RGBA{}
)

// HexToRGBA parses #rgb, #rrggbb or #rrggbbaa (the leading # is optional).
// Invalid input yields opaque black. For #rrggbbaa the embedded alpha is
// multiplied with alpha.
func HexToRGBA(hex string, alpha float64) RGBA {
	s := strings.ToLower(strings.TrimSpace(hex))
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Black
		}
		alpha *= float64(a) / 255
		s = s[:7]
	}
	if len(s) != 4 && len(s) != 7 {
		return Black
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return Black
	}
	r, g, b := c.RGB255()
	return RGBA{R: float64(r), G: float64(g), B: float64(b), A: alpha}
}

// RGBAToHex formats the color as #rrggbb. Alpha is ignored; channels are
// rounded to the nearest integer and clamped to [0,255].
func RGBAToHex(c RGBA) string {
	return "#" + hexByte(c.R) + hexByte(c.G) + hexByte(c.B)
}

func hexByte(v float64) string {
	n := int(math.Round(clamp(v, 0, 255)))
	if n < 16 {
		return "0" + strconv.FormatInt(int64(n), 16)
	}
	return strconv.FormatInt(int64(n), 16)
}

// Hex is RGBAToHex as a method.
func (c RGBA) Hex() string {
	return RGBAToHex(c)
}

// WithAlpha returns c with its alpha replaced.
func (c RGBA) WithAlpha(a float64) RGBA {
	c.A = a
	return c
}

// Clamped returns c with every channel forced into range.
func (c RGBA) Clamped() RGBA {
	return RGBA{
		R: clamp(c.R, 0, 255),
		G: clamp(c.G, 0, 255),
		B: clamp(c.B, 0, 255),
		A: clamp(c.A, 0, 1),
	}
}

// Colorful converts the color channels to a go-colorful color (alpha dropped).
func (c RGBA) Colorful() colorful.Color {
	cc := c.Clamped()
	return colorful.Color{R: cc.R / 255, G: cc.G / 255, B: cc.B / 255}
}

// Normalized returns all four channels in [0,1].
func (c RGBA) Normalized() (r, g, b, a float64) {
	cc := c.Clamped()
	return cc.R / 255, cc.G / 255, cc.B / 255, cc.A
}

// NRGBA converts to a non-premultiplied stdlib color.
func (c RGBA) NRGBA() color.NRGBA {
	cc := c.Clamped()
	return color.NRGBA{
		R: uint8(math.Round(cc.R)),
		G: uint8(math.Round(cc.G)),
		B: uint8(math.Round(cc.B)),
		A: uint8(math.Round(cc.A * 255)),
	}
}

// CSS formats the color as rgba(r, g, b, a).
func (c RGBA) CSS() string {
	cc := c.Clamped()
	return "rgba(" +
		strconv.Itoa(int(math.Round(cc.R))) + ", " +
		strconv.Itoa(int(math.Round(cc.G))) + ", " +
		strconv.Itoa(int(math.Round(cc.B))) + ", " +
		strconv.FormatFloat(cc.A, 'f', -1, 64) + ")"
}

// Lerp blends between c and o by t in [0,1] in straight RGB space.
func (c RGBA) Lerp(o RGBA, t float64) RGBA {
	return RGBA{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
