package raster

import (
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/fcolor"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/designer/internal/document"
)

// coverageMask folds the clip and a global alpha into one mask. It
// returns nil when neither restricts drawing.
func coverageMask(clip *image.Alpha, alpha float64, bounds image.Rectangle) *image.Alpha {
	if clip == nil && alpha >= 1 {
		return nil
	}
	m := image.NewAlpha(bounds)
	a := math.Max(0, math.Min(1, alpha))
	for i := range m.Pix {
		v := 255.0
		if clip != nil {
			v = float64(clip.Pix[i])
		}
		m.Pix[i] = uint8(math.Round(v * a))
	}
	return m
}

// composite draws src onto dst through the clip at the given alpha with
// a blend mode.
func composite(dst, src *image.RGBA, clip *image.Alpha, alpha float64, mode document.BlendMode) {
	mask := coverageMask(clip, alpha, dst.Bounds())
	if mode.IsNormal() {
		if mask == nil {
			draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
		} else {
			draw.DrawMask(dst, dst.Bounds(), src, src.Bounds().Min, mask, mask.Bounds().Min, draw.Over)
		}
		return
	}
	if mask != nil {
		masked := image.NewRGBA(src.Bounds())
		draw.DrawMask(masked, masked.Bounds(), src, src.Bounds().Min, mask, mask.Bounds().Min, draw.Src)
		src = masked
	}
	fn := blendFunc(mode)
	out := blend.Blend(dst, src, func(b, s fcolor.RGBAF64) fcolor.RGBAF64 {
		return blendPremultiplied(b, s, fn)
	})
	draw.Draw(dst, dst.Bounds(), out, out.Bounds().Min, draw.Src)
}

type channelFunc func(b, s [3]float64) [3]float64

// blendPremultiplied composites premultiplied s over b with the mixing
// function applied where both are present.
func blendPremultiplied(b, s fcolor.RGBAF64, fn channelFunc) fcolor.RGBAF64 {
	if s.A <= 0 {
		return b
	}
	ab, as := b.A, s.A
	var cb, cs [3]float64
	if ab > 0 {
		cb = [3]float64{b.R / ab, b.G / ab, b.B / ab}
	}
	cs = [3]float64{s.R / as, s.G / as, s.B / as}
	mixed := fn(cb, cs)
	var out [3]float64
	for i := range out {
		c := (1-ab)*cs[i] + ab*mixed[i]
		out[i] = as*c + (1-as)*ab*cb[i]
	}
	return fcolor.RGBAF64{R: out[0], G: out[1], B: out[2], A: as + ab*(1-as)}
}

func separable(f func(b, s float64) float64) channelFunc {
	return func(b, s [3]float64) [3]float64 {
		return [3]float64{f(b[0], s[0]), f(b[1], s[1]), f(b[2], s[2])}
	}
}

func hardLight(b, s float64) float64 {
	if s <= 0.5 {
		return b * 2 * s
	}
	s = 2*s - 1
	return b + s - b*s
}

func softLight(b, s float64) float64 {
	if s <= 0.5 {
		return b - (1-2*s)*b*(1-b)
	}
	d := math.Sqrt(b)
	if b <= 0.25 {
		d = ((16*b-12)*b + 4) * b
	}
	return b + (2*s-1)*(d-b)
}

func colorDodge(b, s float64) float64 {
	switch {
	case b == 0:
		return 0
	case s >= 1:
		return 1
	}
	return math.Min(1, b/(1-s))
}

func colorBurn(b, s float64) float64 {
	switch {
	case b >= 1:
		return 1
	case s <= 0:
		return 0
	}
	return 1 - math.Min(1, (1-b)/s)
}

// hslMix rebuilds a color from the hue, saturation and lightness of the
// backdrop or source as chosen.
func hslMix(hueFromSrc, satFromSrc, lightFromSrc bool) channelFunc {
	return func(b, s [3]float64) [3]float64 {
		bh, bs, bl := colorful.Color{R: b[0], G: b[1], B: b[2]}.Hsl()
		sh, ss, sl := colorful.Color{R: s[0], G: s[1], B: s[2]}.Hsl()
		pick := func(src bool, sv, bv float64) float64 {
			if src {
				return sv
			}
			return bv
		}
		c := colorful.Hsl(pick(hueFromSrc, sh, bh), pick(satFromSrc, ss, bs), pick(lightFromSrc, sl, bl)).Clamped()
		return [3]float64{c.R, c.G, c.B}
	}
}

func blendFunc(mode document.BlendMode) channelFunc {
	switch mode {
	case document.BlendMultiply:
		return separable(func(b, s float64) float64 { return b * s })
	case document.BlendScreen:
		return separable(func(b, s float64) float64 { return b + s - b*s })
	case document.BlendOverlay:
		return separable(func(b, s float64) float64 { return hardLight(s, b) })
	case document.BlendDarken:
		return separable(math.Min)
	case document.BlendLighten:
		return separable(math.Max)
	case document.BlendColorDodge:
		return separable(colorDodge)
	case document.BlendColorBurn:
		return separable(colorBurn)
	case document.BlendHardLight:
		return separable(hardLight)
	case document.BlendSoftLight:
		return separable(softLight)
	case document.BlendDifference:
		return separable(func(b, s float64) float64 { return math.Abs(b - s) })
	case document.BlendExclusion:
		return separable(func(b, s float64) float64 { return b + s - 2*b*s })
	case document.BlendHue:
		return hslMix(true, false, false)
	case document.BlendSaturation:
		return hslMix(false, true, false)
	case document.BlendColor:
		return hslMix(true, true, false)
	case document.BlendLuminosity:
		return hslMix(false, false, true)
	}
	return func(_, s [3]float64) [3]float64 { return s }
}
