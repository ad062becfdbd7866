package engine

import (
	"math"
	"slices"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

// ResolveGradient builds the user-space gradient for a gradient paint
// spanning box. A linear gradient's direction comes from the rotation of
// the paint transform and runs along a line of length max(w,h) through
// the box center. Radial gradients ignore the transform and use radius
// max(w,h)/2. Angular and diamond gradients become linear unless native
// is set.
func ResolveGradient(p document.Paint, box geom.Rect, native bool) Gradient {
	cx, cy := box.Center()
	size := math.Max(box.Width, box.Height)
	spread := p.Spread
	if spread == "" {
		spread = document.SpreadPad
	}
	g := Gradient{Stops: gradientStops(p), Spread: spread}

	switch p.GradientType {
	case document.GradientRadial:
		g.Type = document.GradientRadial
		g.X0, g.Y0, g.X1, g.Y1 = cx, cy, cx, cy
		g.R = size / 2
		return g
	case document.GradientAngular, document.GradientDiamond:
		if native {
			g.Type = p.GradientType
			g.X0, g.Y0, g.X1, g.Y1 = cx, cy, cx, cy
			g.R = size / 2
			g.Angle = p.GradientAngle()
			return g
		}
	}

	theta := p.GradientAngle()
	dx, dy := math.Cos(theta)*size/2, math.Sin(theta)*size/2
	g.Type = document.GradientLinear
	g.X0, g.Y0 = cx-dx, cy-dy
	g.X1, g.Y1 = cx+dx, cy+dy
	g.Angle = theta
	return g
}

// gradientStops sorts a copy of the stops by offset, clamps offsets and
// folds the paint opacity into each stop.
func gradientStops(p document.Paint) []document.GradientStop {
	stops := slices.Clone(p.Stops)
	slices.SortStableFunc(stops, func(a, b document.GradientStop) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})
	for i := range stops {
		stops[i].Offset = clamp01(stops[i].Offset)
		stops[i].Color.A *= clamp01(p.Opacity)
	}
	return stops
}

// resolveStyle turns a paint into a surface style. Pattern paints resolve
// to their motif color for strokes and text; image paints have no style.
func (r *renderer) resolveStyle(p document.Paint, box geom.Rect) (Style, bool) {
	op := clamp01(p.Opacity)
	switch p.Kind {
	case document.PaintSolid, document.PaintPattern:
		return SolidStyle(p.Color.WithAlpha(p.Color.A * op)), true
	case document.PaintGradient:
		switch len(p.Stops) {
		case 0:
			return SolidStyle(document.Transparent), true
		case 1:
			c := p.Stops[0].Color
			return SolidStyle(c.WithAlpha(c.A * op)), true
		}
		native := false
		if gs, ok := r.s.(GradientSupport); ok {
			native = gs.SupportsGradient(p.GradientType)
		}
		g := ResolveGradient(p, box, native)
		return Style{Gradient: &g}, true
	}
	return Style{}, false
}

func (r *renderer) fillPath(p Path, paint document.Paint, box geom.Rect, rule document.FillRule) {
	if len(p) == 0 {
		return
	}
	s := r.s
	switch paint.Kind {
	case document.PaintSolid, document.PaintGradient:
		st, _ := r.resolveStyle(paint, box)
		s.SetFillStyle(st)
		p.Trace(s)
		s.Fill(rule)
	case document.PaintPattern:
		s.Save()
		p.Trace(s)
		s.Clip(rule)
		r.opts.Patterns.PaintPattern(s, paint, box)
		s.Restore()
	case document.PaintImage:
		if r.opts.Images == nil {
			return
		}
		img := r.opts.Images(paint.ImageRef)
		if img == nil {
			r.debug("image paint unresolved", "ref", paint.ImageRef)
			return
		}
		b := img.Bounds()
		src, dst := FitRects(geom.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}, box, paint.Fit, geom.Vec2{X: 0.5, Y: 0.5}, nil)
		src.X += float64(b.Min.X)
		src.Y += float64(b.Min.Y)
		s.Save()
		p.Trace(s)
		s.Clip(rule)
		s.SetGlobalAlpha(r.alpha * clamp01(paint.Opacity))
		s.DrawImage(ImageSource{Ref: paint.ImageRef, Image: img}, src, dst)
		s.Restore()
	default:
		r.debug("unknown paint skipped", "kind", paint.Kind)
	}
}

// strokePath strokes p with st. Inside and outside alignment clip to the
// path (or its complement) and double the width; open paths always
// stroke centered.
func (r *renderer) strokePath(p Path, st document.StrokeSpec, box geom.Rect, rule document.FillRule, closed bool) {
	if st.Width <= 0 || len(p) == 0 {
		return
	}
	style, ok := r.resolveStyle(st.Paint, box)
	if !ok {
		return
	}
	s := r.s
	s.Save()
	defer s.Restore()

	width := st.Width
	if closed {
		switch st.Align {
		case document.StrokeInside:
			p.Trace(s)
			s.Clip(rule)
			width *= 2
		case document.StrokeOutside:
			outer := RectPath(p.Bounds().Inset(-(width*2 + 1)))
			outer.Trace(s)
			p.Append(s)
			s.Clip(document.FillEvenOdd)
			width *= 2
		}
	}

	s.SetStrokeStyle(style)
	s.SetLineWidth(width)
	s.SetLineDash(st.Dash)
	lineCap := st.Cap
	if lineCap == "" {
		lineCap = document.CapButt
	}
	join := st.Join
	if join == "" {
		join = document.JoinMiter
	}
	s.SetLineCap(lineCap)
	s.SetLineJoin(join)
	miter := st.MiterLimit
	if miter <= 0 {
		miter = 10
	}
	s.SetMiterLimit(miter)
	p.Trace(s)
	s.Stroke()
}
