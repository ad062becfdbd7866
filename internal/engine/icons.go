package engine

import (
	"math"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

// IconDrawer draws a named icon into box. It reports false for unknown
// ids.
type IconDrawer interface {
	DrawIcon(s Surface, id string, box geom.Rect, c document.RGBA, strokeWidth float64) bool
}

// IconSet is a library of stroked icons drawn on a 24×24 grid.
type IconSet map[string]func() Path

// DefaultIcons holds the built-in contact and UI icons.
var DefaultIcons = IconSet{
	"phone": func() Path {
		p := RoundedRectPath(geom.Rect{X: 7, Y: 2, Width: 10, Height: 20}, document.UniformRadii(2))
		p.MoveTo(11, 18)
		p.LineTo(13, 18)
		return p
	},
	"email": func() Path {
		p := RoundedRectPath(geom.Rect{X: 2, Y: 4, Width: 20, Height: 16}, document.UniformRadii(2))
		p.MoveTo(22, 7)
		p.LineTo(12, 13)
		p.LineTo(2, 7)
		return p
	},
	"globe": func() Path {
		var p Path
		p.MoveTo(22, 12)
		p.Arc(12, 12, 10, 0, 2*math.Pi, false)
		p.MoveTo(2, 12)
		p.LineTo(22, 12)
		p.MoveTo(16, 12)
		p.Ellipse(12, 12, 4, 10, 0, 0, 2*math.Pi, false)
		return p
	},
	"location": func() Path {
		var p Path
		p.MoveTo(4, 10)
		p.Arc(12, 10, 8, math.Pi, 2*math.Pi, false)
		p.CubicTo(20, 16, 13, 21.5, 12, 22)
		p.CubicTo(11, 21.5, 4, 16, 4, 10)
		p.Close()
		p.MoveTo(15, 10)
		p.Arc(12, 10, 3, 0, 2*math.Pi, false)
		return p
	},
	"user": func() Path {
		var p Path
		p.MoveTo(16, 7)
		p.Arc(12, 7, 4, 0, 2*math.Pi, false)
		p.MoveTo(4, 21)
		p.LineTo(4, 20)
		p.CubicTo(4, 16.7, 6.7, 14, 10, 14)
		p.LineTo(14, 14)
		p.CubicTo(17.3, 14, 20, 16.7, 20, 20)
		p.LineTo(20, 21)
		return p
	},
	"star": func() Path {
		return polygonPath(PolygonPoints(geom.Rect{X: 2, Y: 2, Width: 20, Height: 20}, 5, 0.5, true))
	},
	"heart": func() Path {
		var p Path
		p.MoveTo(12, 21)
		p.CubicTo(12, 21, 3, 14.5, 3, 8.5)
		p.CubicTo(3, 5.5, 5.5, 3, 8.5, 3)
		p.CubicTo(10.2, 3, 11.4, 4, 12, 5)
		p.CubicTo(12.6, 4, 13.8, 3, 15.5, 3)
		p.CubicTo(18.5, 3, 21, 5.5, 21, 8.5)
		p.CubicTo(21, 14.5, 12, 21, 12, 21)
		p.Close()
		return p
	},
	"check": func() Path {
		var p Path
		p.MoveTo(20, 6)
		p.LineTo(9, 17)
		p.LineTo(4, 12)
		return p
	},
	"briefcase": func() Path {
		p := RoundedRectPath(geom.Rect{X: 2, Y: 7, Width: 20, Height: 14}, document.UniformRadii(2))
		p.MoveTo(16, 7)
		p.LineTo(16, 5)
		p.CubicTo(16, 3.9, 15.1, 3, 14, 3)
		p.LineTo(10, 3)
		p.CubicTo(8.9, 3, 8, 3.9, 8, 5)
		p.LineTo(8, 7)
		return p
	},
	"link": func() Path {
		tilt := geom.RotateAbout(-45, 12, 12)
		p := RoundedRectPath(geom.Rect{X: 2, Y: 9, Width: 11, Height: 6}, document.UniformRadii(3)).Transform(tilt)
		return append(p, RoundedRectPath(geom.Rect{X: 11, Y: 9, Width: 11, Height: 6}, document.UniformRadii(3)).Transform(tilt)...)
	},
}

// Path returns the icon outline on the 24-unit grid.
func (set IconSet) Path(id string) (Path, bool) {
	build, ok := set[id]
	if !ok {
		return nil, false
	}
	return build(), true
}

func (set IconSet) DrawIcon(s Surface, id string, box geom.Rect, c document.RGBA, strokeWidth float64) bool {
	p, ok := set.Path(id)
	if !ok {
		return false
	}
	if strokeWidth <= 0 {
		strokeWidth = 2
	}
	s.Save()
	defer s.Restore()
	s.Translate(box.X, box.Y)
	s.Scale(box.Width/24, box.Height/24)
	s.SetStrokeStyle(SolidStyle(c))
	s.SetLineWidth(strokeWidth)
	s.SetLineDash(nil)
	s.SetLineCap(document.CapRound)
	s.SetLineJoin(document.JoinRound)
	p.Trace(s)
	s.Stroke()
	return true
}
