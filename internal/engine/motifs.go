package engine

import (
	"math"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

// PatternPainter tiles a pattern paint over box. The caller has already
// clipped the surface to the painted shape.
type PatternPainter interface {
	PaintPattern(s Surface, p document.Paint, box geom.Rect)
}

// PatternFunc adapts a function to PatternPainter.
type PatternFunc func(s Surface, p document.Paint, box geom.Rect)

func (f PatternFunc) PaintPattern(s Surface, p document.Paint, box geom.Rect) { f(s, p, box) }

// DefaultPatterns draws the built-in vector motifs.
var DefaultPatterns PatternPainter = PatternFunc(paintMotif)

const defaultPatternSpacing = 20

type motif struct {
	// tilt is added to the paint rotation, in degrees.
	tilt   float64
	filled bool
	build  func(p *Path, step, r float64)
}

var motifs = map[document.PatternType]motif{
	document.PatternDots: {filled: true, build: func(p *Path, step, r float64) {
		cells(step, r, false, func(x, y float64) {
			p.MoveTo(x+step*0.15, y)
			p.Arc(x, y, step*0.15, 0, 2*math.Pi, false)
		})
	}},
	document.PatternGrid: {build: func(p *Path, step, r float64) {
		rules(p, step, r)
		verticals(p, step, r)
	}},
	document.PatternLines:         {build: rules},
	document.PatternDiagonalLines: {tilt: 45, build: rules},
	document.PatternCrosshatch: {tilt: 45, build: func(p *Path, step, r float64) {
		rules(p, step, r)
		verticals(p, step, r)
	}},
	document.PatternChevron: {build: func(p *Path, step, r float64) { zigzag(p, step, r, step, step/2) }},
	document.PatternZigzag:  {build: func(p *Path, step, r float64) { zigzag(p, step, r, step/2, step/4) }},
	document.PatternWaves: {build: func(p *Path, step, r float64) {
		for y := -r; y <= r; y += step {
			p.MoveTo(-r, y)
			up := true
			for x := -r; x < r; x += step / 2 {
				dy := step / 4
				if up {
					dy = -dy
				}
				p.QuadTo(x+step/4, y+dy, x+step/2, y)
				up = !up
			}
		}
	}},
	document.PatternCircles: {build: func(p *Path, step, r float64) {
		cells(step, r, false, func(x, y float64) {
			p.MoveTo(x+step*0.35, y)
			p.Arc(x, y, step*0.35, 0, 2*math.Pi, false)
		})
	}},
	document.PatternTriangles: {filled: true, build: func(p *Path, step, r float64) {
		h := step * 0.3
		cells(step, r, false, func(x, y float64) {
			p.MoveTo(x, y-h)
			p.LineTo(x+h, y+h)
			p.LineTo(x-h, y+h)
			p.Close()
		})
	}},
	document.PatternHexagons: {build: func(p *Path, step, r float64) {
		rad := step / 2
		cells(step, r, true, func(x, y float64) {
			for i := range 6 {
				a := math.Pi/6 + float64(i)*math.Pi/3
				px, py := x+rad*math.Cos(a), y+rad*math.Sin(a)
				if i == 0 {
					p.MoveTo(px, py)
				} else {
					p.LineTo(px, py)
				}
			}
			p.Close()
		})
	}},
	document.PatternDiamonds: {filled: true, build: func(p *Path, step, r float64) {
		d := step * 0.3
		cells(step, r, false, func(x, y float64) {
			p.MoveTo(x, y-d)
			p.LineTo(x+d, y)
			p.LineTo(x, y+d)
			p.LineTo(x-d, y)
			p.Close()
		})
	}},
}

// cells calls fn at every cell center covering [-r, r]². Staggered grids
// shift odd rows by half a step.
func cells(step, r float64, stagger bool, fn func(x, y float64)) {
	row := 0
	for y := -r; y <= r+step; y += step {
		off := 0.0
		if stagger && row%2 == 1 {
			off = step / 2
		}
		for x := -r - off; x <= r+step; x += step {
			fn(x, y)
		}
		row++
	}
}

func rules(p *Path, step, r float64) {
	for y := -r; y <= r; y += step {
		p.MoveTo(-r, y)
		p.LineTo(r, y)
	}
}

func verticals(p *Path, step, r float64) {
	for x := -r; x <= r; x += step {
		p.MoveTo(x, -r)
		p.LineTo(x, r)
	}
}

func zigzag(p *Path, step, r, period, amp float64) {
	for y := -r; y <= r; y += step {
		p.MoveTo(-r, y)
		up := true
		for x := -r; x < r; x += period / 2 {
			dy := amp
			if up {
				dy = -amp
			}
			p.LineTo(x+period/2, y+dy)
			up = !up
		}
	}
}

func paintMotif(s Surface, paint document.Paint, box geom.Rect) {
	m, ok := motifs[paint.PatternType]
	if !ok || box.IsEmpty() {
		return
	}
	scale := paint.Scale
	if scale <= 0 {
		scale = 1
	}
	step := paint.Spacing
	if step <= 0 {
		step = defaultPatternSpacing
	}
	step *= scale

	// The motif is built around the box center and must cover the box at
	// any rotation, so it spans the circumscribed circle.
	cx, cy := box.Center()
	r := math.Hypot(box.Width, box.Height)/2 + step
	var p Path
	m.build(&p, step, r)

	style := SolidStyle(paint.Color.WithAlpha(paint.Color.A * clamp01(paint.Opacity)))
	s.Save()
	defer s.Restore()
	s.Translate(cx, cy)
	if rot := paint.Rotation + m.tilt; rot != 0 {
		s.Rotate(geom.Radians(rot))
	}
	p.Trace(s)
	if m.filled {
		s.SetFillStyle(style)
		s.Fill(document.FillNonZero)
		return
	}
	s.SetStrokeStyle(style)
	s.SetLineWidth(max(1, step*0.08))
	s.SetLineDash(nil)
	s.SetLineCap(document.CapButt)
	s.SetLineJoin(document.JoinMiter)
	s.Stroke()
}
