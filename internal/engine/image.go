package engine

import (
	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

// FitRects computes the source and destination rectangles for drawing an
// image of size img into box. crop, in normalized image coordinates, is
// applied before fitting. Cover crops the source around focal; contain
// letterboxes the destination centered in box; stretch and fill map the
// whole source onto box.
func FitRects(img geom.Size, box geom.Rect, fit document.ImageFit, focal geom.Vec2, crop *geom.Rect) (src, dst geom.Rect) {
	src = geom.Rect{Width: img.Width, Height: img.Height}
	if crop != nil && !crop.IsEmpty() {
		x0, y0 := clamp01(crop.X), clamp01(crop.Y)
		x1, y1 := clamp01(crop.X+crop.Width), clamp01(crop.Y+crop.Height)
		src = geom.Rect{X: x0 * img.Width, Y: y0 * img.Height, Width: (x1 - x0) * img.Width, Height: (y1 - y0) * img.Height}
	}
	dst = box
	if src.IsEmpty() || box.IsEmpty() {
		return src, dst
	}

	switch fit {
	case document.FitContain:
		scale := min(box.Width/src.Width, box.Height/src.Height)
		w, h := src.Width*scale, src.Height*scale
		dst = geom.Rect{X: box.X + (box.Width-w)/2, Y: box.Y + (box.Height-h)/2, Width: w, Height: h}
	case document.FitStretch, document.FitFill:
	default:
		scale := max(box.Width/src.Width, box.Height/src.Height)
		w, h := box.Width/scale, box.Height/scale
		src.X += (src.Width - w) * clamp01(focal.X)
		src.Y += (src.Height - h) * clamp01(focal.Y)
		src.Width, src.Height = w, h
	}
	return src, dst
}

// FiltersOf converts image filters to a surface filter chain, leaving out
// neutral steps.
func FiltersOf(f document.ImageFilters) FilterChain {
	var c FilterChain
	pct := func(k FilterKind, v float64) {
		if v != 0 && v != 100 {
			c = append(c, Filter{Kind: k, Amount: v})
		}
	}
	pct(FilterBrightness, f.Brightness)
	pct(FilterContrast, f.Contrast)
	pct(FilterSaturate, f.Saturation)
	if f.Temperature != 0 {
		c = append(c, Filter{Kind: FilterTemperature, Amount: max(-100, min(100, f.Temperature))})
	}
	if f.Grayscale {
		c = append(c, Filter{Kind: FilterGrayscale, Amount: 100})
	}
	if f.Sepia {
		c = append(c, Filter{Kind: FilterSepia, Amount: 100})
	}
	if f.Blur > 0 {
		c = append(c, Filter{Kind: FilterBlur, Amount: f.Blur})
	}
	return c
}

func (r *renderer) paintImage(l *document.ImageLayer) {
	s := r.s
	box := l.Transform.Box()
	if box.IsEmpty() {
		return
	}
	shape := RoundedRectPath(box, document.UniformRadii(l.CornerRadius))

	if l.Element != nil {
		b := l.Element.Bounds()
		src, dst := FitRects(geom.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}, box, l.Fit, l.FocalPoint, l.CropRect)
		src.X += float64(b.Min.X)
		src.Y += float64(b.Min.Y)

		s.Save()
		if l.CornerRadius > 0 {
			shape.Trace(s)
			s.Clip(document.FillNonZero)
		}
		if chain := FiltersOf(l.Filters); len(chain) > 0 {
			s.SetFilter(chain)
		}
		s.DrawImage(ImageSource{Ref: l.ImageRef, Image: l.Element}, src, dst)
		s.Restore()
	} else {
		r.debug("image layer has no element", "layer", l.ID, "ref", l.ImageRef)
	}

	for _, f := range l.Fills {
		r.fillPath(shape, f, box, document.FillNonZero)
	}
	for _, st := range l.Strokes {
		r.strokePath(shape, st, box, document.FillNonZero, true)
	}
}
