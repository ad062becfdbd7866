package raster

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/engine"
	"github.com/inamate/designer/internal/geom"
)

// gradientPattern evaluates a user-space gradient at device pixels. inv
// maps device space back to the user space the gradient was defined in.
type gradientPattern struct {
	g     engine.Gradient
	inv   geom.Matrix2D
	alpha float64
}

var _ gg.Pattern = (*gradientPattern)(nil)

func newGradientPattern(g engine.Gradient, m geom.Matrix2D, alpha float64) *gradientPattern {
	return &gradientPattern{g: g, inv: m.Invert(), alpha: alpha}
}

func (p *gradientPattern) ColorAt(x, y int) color.Color {
	ux, uy := p.inv.TransformPoint(float64(x)+0.5, float64(y)+0.5)
	t := GradientParam(p.g, ux, uy)
	c := StopColor(p.g.Stops, Spread(p.g.Spread, t))
	c.A *= p.alpha
	return c.NRGBA()
}

// GradientParam returns the unspread gradient parameter at a user-space
// point. Linear gradients project onto the start→end axis; radial and
// diamond gradients grow from the center to R; angular gradients sweep
// clockwise from Angle.
func GradientParam(g engine.Gradient, x, y float64) float64 {
	switch g.Type {
	case document.GradientRadial:
		if g.R <= 0 {
			return 1
		}
		return math.Hypot(x-g.X0, y-g.Y0) / g.R
	case document.GradientAngular:
		a := math.Atan2(y-g.Y0, x-g.X0) - g.Angle
		a = math.Mod(a, 2*math.Pi)
		if a < 0 {
			a += 2 * math.Pi
		}
		return a / (2 * math.Pi)
	case document.GradientDiamond:
		if g.R <= 0 {
			return 1
		}
		sin, cos := math.Sincos(-g.Angle)
		dx, dy := x-g.X0, y-g.Y0
		rx := dx*cos - dy*sin
		ry := dx*sin + dy*cos
		return (math.Abs(rx) + math.Abs(ry)) / g.R
	}
	dx, dy := g.X1-g.X0, g.Y1-g.Y0
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return 0
	}
	return ((x-g.X0)*dx + (y-g.Y0)*dy) / l2
}

// Spread folds t into [0,1].
func Spread(s document.SpreadMethod, t float64) float64 {
	switch s {
	case document.SpreadRepeat:
		return t - math.Floor(t)
	case document.SpreadReflect:
		t = math.Mod(math.Abs(t), 2)
		if t > 1 {
			t = 2 - t
		}
		return t
	}
	return math.Max(0, math.Min(1, t))
}

// StopColor interpolates sorted stops at t.
func StopColor(stops []document.GradientStop, t float64) document.RGBA {
	switch {
	case len(stops) == 0:
		return document.Transparent
	case t <= stops[0].Offset:
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t <= b.Offset {
			span := b.Offset - a.Offset
			if span <= 0 {
				return b.Color
			}
			return a.Color.Lerp(b.Color, (t-a.Offset)/span)
		}
	}
	return stops[len(stops)-1].Color
}

// patternFor builds the gg pattern for a style drawn under m at the
// given global alpha.
func patternFor(s engine.Style, m geom.Matrix2D, alpha float64) gg.Pattern {
	if s.Gradient != nil {
		return newGradientPattern(*s.Gradient, m, alpha)
	}
	c := s.Color
	c.A *= alpha
	return gg.NewSolidPattern(c.NRGBA())
}
