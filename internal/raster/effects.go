package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/noise"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/engine"
)

// Images in this file are premultiplied *image.RGBA of canvas size.
// bild's color operations work on straight color, so they run between
// unpremultiply and premultiply.

func unpremultiply(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	for i := 0; i < len(img.Pix); i += 4 {
		a := img.Pix[i+3]
		if a == 0 {
			continue
		}
		out.Pix[i+0] = uint8(min(255, int(img.Pix[i+0])*255/int(a)))
		out.Pix[i+1] = uint8(min(255, int(img.Pix[i+1])*255/int(a)))
		out.Pix[i+2] = uint8(min(255, int(img.Pix[i+2])*255/int(a)))
		out.Pix[i+3] = a
	}
	return out
}

func premultiply(img *image.RGBA) *image.RGBA {
	for i := 0; i < len(img.Pix); i += 4 {
		a := int(img.Pix[i+3])
		img.Pix[i+0] = uint8(int(img.Pix[i+0]) * a / 255)
		img.Pix[i+1] = uint8(int(img.Pix[i+1]) * a / 255)
		img.Pix[i+2] = uint8(int(img.Pix[i+2]) * a / 255)
	}
	return img
}

// straightOp runs a straight-color bild operation on a premultiplied image.
func straightOp(img *image.RGBA, op func(image.Image) *image.RGBA) *image.RGBA {
	out := op(unpremultiply(img))
	return premultiply(toRGBA(out, img.Bounds()))
}

func toRGBA(img image.Image, bounds image.Rectangle) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds() == bounds {
		return rgba
	}
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)
	return out
}

// tint replaces every pixel's color with c, keeping coverage. With
// invert the coverage is inverted first.
func tint(img *image.RGBA, c document.RGBA, invert bool) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	r, g, b, a := c.Normalized()
	for i := 0; i < len(img.Pix); i += 4 {
		cov := float64(img.Pix[i+3]) / 255
		if invert {
			cov = 1 - cov
		}
		k := cov * a
		out.Pix[i+0] = uint8(math.Round(r * k * 255))
		out.Pix[i+1] = uint8(math.Round(g * k * 255))
		out.Pix[i+2] = uint8(math.Round(b * k * 255))
		out.Pix[i+3] = uint8(math.Round(k * 255))
	}
	return out
}

// shift moves img by (dx, dy) device pixels.
func shift(img *image.RGBA, dx, dy float64) *image.RGBA {
	ox, oy := int(math.Round(dx)), int(math.Round(dy))
	if ox == 0 && oy == 0 {
		return img
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, img.Bounds().Add(image.Pt(ox, oy)), img, img.Bounds().Min, draw.Src)
	return out
}

// maskBy scales img by the coverage of mask.
func maskBy(img, mask *image.RGBA) *image.RGBA {
	for i := 0; i < len(img.Pix); i += 4 {
		m := int(mask.Pix[i+3])
		for j := range 4 {
			img.Pix[i+j] = uint8(int(img.Pix[i+j]) * m / 255)
		}
	}
	return img
}

func over(dst, src *image.RGBA) *image.RGBA {
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
	return dst
}

func gaussian(img *image.RGBA, radius float64) *image.RGBA {
	if radius <= 0 {
		return img
	}
	return toRGBA(blur.Gaussian(img, radius), img.Bounds())
}

// motionBlur smears img along a line of the given length at angle
// degrees.
func motionBlur(img *image.RGBA, length, angle float64) *image.RGBA {
	n := int(math.Round(length))
	if n < 1 {
		return img
	}
	size := 2*n + 1
	k := convolution.NewKernel(size, size)
	sin, cos := math.Sincos(angle * math.Pi / 180)
	for i := -n; i <= n; i++ {
		x := n + int(math.Round(float64(i)*cos))
		y := n + int(math.Round(float64(i)*sin))
		k.Matrix[y*size+x] = 1
	}
	return toRGBA(convolution.Convolve(img, k.Normalized(), &convolution.Options{}), img.Bounds())
}

// ApplyEffect post-processes isolated content. Distances are document
// units multiplied by scale.
func ApplyEffect(content *image.RGBA, e document.Effect, scale float64) *image.RGBA {
	switch e.Kind {
	case document.EffectBlur:
		if e.BlurType == document.BlurMotion {
			return motionBlur(content, e.Radius*scale, e.Angle)
		}
		return gaussian(content, e.Radius*scale)

	case document.EffectInnerShadow:
		sh := tint(content, e.Color, true)
		sh = gaussian(shift(sh, e.OffsetX*scale, e.OffsetY*scale), e.Radius*scale)
		return over(content, maskBy(sh, content))

	case document.EffectGlow:
		if e.GlowType == document.GlowInner {
			g := gaussian(tint(content, e.Color, true), e.Radius*scale)
			return over(content, maskBy(g, content))
		}
		g := gaussian(tint(content, e.Color, false), (e.Radius+e.Spread)*scale)
		return over(g, content)

	case document.EffectColorAdjust:
		return straightOp(content, func(img image.Image) *image.RGBA {
			return colorAdjust(img, e)
		})

	case document.EffectNoise:
		return addNoise(content, e.Amount, e.Monochrome)
	}
	return content
}

func colorAdjust(img image.Image, e document.Effect) *image.RGBA {
	out := toRGBA(img, img.Bounds())
	if e.Brightness != 0 {
		out = adjust.Brightness(out, e.Brightness/100)
	}
	if e.Contrast != 0 {
		out = adjust.Contrast(out, e.Contrast/100)
	}
	if e.Saturation != 0 {
		out = adjust.Saturation(out, e.Saturation/100)
	}
	if e.HueRotate != 0 {
		out = adjust.Hue(out, int(math.Round(e.HueRotate)))
	}
	if e.Temperature != 0 || e.Tint != 0 {
		out = adjust.Apply(out, warmth(e.Temperature, e.Tint))
	}
	return out
}

// warmth shifts red against blue for temperature and green against
// magenta for tint, both in [-100,100].
func warmth(temperature, tint float64) func(color.RGBA) color.RGBA {
	dt := temperature / 100 * 40
	dg := tint / 100 * 40
	return func(c color.RGBA) color.RGBA {
		return color.RGBA{
			R: clampByte(float64(c.R) + dt),
			G: clampByte(float64(c.G) - dg),
			B: clampByte(float64(c.B) - dt),
			A: c.A,
		}
	}
}

func clampByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

// addNoise perturbs visible pixels with gaussian noise scaled by amount
// in [0,100].
func addNoise(img *image.RGBA, amount float64, mono bool) *image.RGBA {
	if amount <= 0 {
		return img
	}
	b := img.Bounds()
	n := noise.Generate(b.Dx(), b.Dy(), &noise.Options{NoiseFn: noise.Gaussian, Monochrome: mono})
	k := amount / 100
	out := unpremultiply(img)
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i+3] == 0 {
			continue
		}
		for j := range 3 {
			d := (float64(n.Pix[i+j]) - 128) * k
			out.Pix[i+j] = clampByte(float64(out.Pix[i+j]) + d)
		}
	}
	return premultiply(out)
}

// ApplyFilters runs a filter chain over drawn content.
func ApplyFilters(img *image.RGBA, chain engine.FilterChain, scale float64) *image.RGBA {
	for _, f := range chain {
		switch f.Kind {
		case engine.FilterBlur:
			img = gaussian(img, f.Amount*scale)
		default:
			img = straightOp(img, func(src image.Image) *image.RGBA {
				return colorFilter(src, f)
			})
		}
	}
	return img
}

func colorFilter(src image.Image, f engine.Filter) *image.RGBA {
	amount := f.Amount / 100
	switch f.Kind {
	case engine.FilterBrightness:
		return adjust.Brightness(src, amount-1)
	case engine.FilterContrast:
		return adjust.Contrast(src, amount-1)
	case engine.FilterSaturate:
		return adjust.Saturation(src, amount-1)
	case engine.FilterTemperature:
		return adjust.Apply(src, warmth(f.Amount, 0))
	case engine.FilterGrayscale:
		return mix(src, adjust.Saturation(src, -1), amount)
	case engine.FilterSepia:
		return mix(src, effect.Sepia(src), amount)
	}
	return toRGBA(src, src.Bounds())
}

func mix(base image.Image, full *image.RGBA, amount float64) *image.RGBA {
	if amount >= 1 {
		return full
	}
	return blend.Opacity(base, full, math.Max(0, amount))
}
