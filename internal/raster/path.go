package raster

import (
	"math"

	"github.com/fogleman/gg"

	"github.com/inamate/designer/internal/engine"
	"github.com/inamate/designer/internal/geom"
)

// segment is a path verb with device-space points.
type segment struct {
	op  engine.PathOp
	pts []geom.Vec2
}

// devPath is a path already mapped through the transform that was
// current when each verb was added. Arcs and ellipses are flattened.
type devPath struct {
	segs       []segment
	start, cur geom.Vec2
	hasCurrent bool
}

func (p *devPath) reset() {
	*p = devPath{}
}

func (p *devPath) moveTo(pt geom.Vec2) {
	p.segs = append(p.segs, segment{engine.OpMove, []geom.Vec2{pt}})
	p.start, p.cur, p.hasCurrent = pt, pt, true
}

func (p *devPath) lineTo(pt geom.Vec2) {
	if !p.hasCurrent {
		p.moveTo(pt)
		return
	}
	p.segs = append(p.segs, segment{engine.OpLine, []geom.Vec2{pt}})
	p.cur = pt
}

func (p *devPath) quadTo(c, pt geom.Vec2) {
	if !p.hasCurrent {
		p.moveTo(c)
	}
	p.segs = append(p.segs, segment{engine.OpQuad, []geom.Vec2{c, pt}})
	p.cur = pt
}

func (p *devPath) cubicTo(c1, c2, pt geom.Vec2) {
	if !p.hasCurrent {
		p.moveTo(c1)
	}
	p.segs = append(p.segs, segment{engine.OpCubic, []geom.Vec2{c1, c2, pt}})
	p.cur = pt
}

func (p *devPath) close() {
	if !p.hasCurrent {
		return
	}
	p.segs = append(p.segs, segment{op: engine.OpClose})
	p.cur = p.start
}

// ellipse appends an elliptical arc in user space, joined to the current
// point by a line, flattened under m to within a quarter pixel.
func (p *devPath) ellipse(m geom.Matrix2D, cx, cy, rx, ry, rotation, start, end float64, anticlockwise bool) {
	sweep := arcSweep(start, end, anticlockwise)
	r := math.Max(math.Abs(rx), math.Abs(ry)) * m.ScaleFactor()
	n := 1
	if r > 0.25 {
		step := 2 * math.Acos(1-0.25/r)
		n = int(math.Ceil(math.Abs(sweep) / step))
	}
	n = max(1, min(n, 1024))
	sinR, cosR := math.Sincos(rotation)
	for i := 0; i <= n; i++ {
		t := start + sweep*float64(i)/float64(n)
		sin, cos := math.Sincos(t)
		x, y := rx*cos, ry*sin
		ux := cx + x*cosR - y*sinR
		uy := cy + x*sinR + y*cosR
		dx, dy := m.TransformPoint(ux, uy)
		if i == 0 {
			p.lineTo(geom.Vec2{X: dx, Y: dy})
		} else {
			p.segs = append(p.segs, segment{engine.OpLine, []geom.Vec2{{X: dx, Y: dy}}})
			p.cur = geom.Vec2{X: dx, Y: dy}
		}
	}
}

// arcSweep follows Canvas2D: a sweep of at least a full turn is clamped
// to one turn, anything else is reduced modulo a turn in the drawing
// direction.
func arcSweep(start, end float64, anticlockwise bool) float64 {
	const tau = 2 * math.Pi
	if !anticlockwise {
		if end-start >= tau {
			return tau
		}
		s := math.Mod(end-start, tau)
		if s < 0 {
			s += tau
		}
		return s
	}
	if start-end >= tau {
		return -tau
	}
	s := math.Mod(start-end, tau)
	if s < 0 {
		s += tau
	}
	return -s
}

func (p *devPath) trace(dc *gg.Context) {
	dc.ClearPath()
	for _, s := range p.segs {
		switch s.op {
		case engine.OpMove:
			dc.MoveTo(s.pts[0].X, s.pts[0].Y)
		case engine.OpLine:
			dc.LineTo(s.pts[0].X, s.pts[0].Y)
		case engine.OpQuad:
			dc.QuadraticTo(s.pts[0].X, s.pts[0].Y, s.pts[1].X, s.pts[1].Y)
		case engine.OpCubic:
			dc.CubicTo(s.pts[0].X, s.pts[0].Y, s.pts[1].X, s.pts[1].Y, s.pts[2].X, s.pts[2].Y)
		case engine.OpClose:
			dc.ClosePath()
		}
	}
}

// miterWedges returns the triangles that extend beveled joins between
// straight segments to full miters. Joins whose miter ratio exceeds
// limit stay beveled, as do joins that touch a curve.
func (p *devPath) miterWedges(halfWidth, limit float64) [][3]geom.Vec2 {
	var (
		out    [][3]geom.Vec2
		run    []geom.Vec2
		start  geom.Vec2
		curved bool
	)
	flush := func(closed bool) {
		out = append(out, polylineMiters(run, closed, halfWidth, limit)...)
		run = nil
	}
	for _, s := range p.segs {
		switch s.op {
		case engine.OpMove:
			flush(false)
			start, curved = s.pts[0], false
			run = []geom.Vec2{start}
		case engine.OpLine:
			if pt := s.pts[0]; len(run) == 0 || run[len(run)-1] != pt {
				run = append(run, pt)
			}
		case engine.OpQuad, engine.OpCubic:
			flush(false)
			curved = true
			run = []geom.Vec2{s.pts[len(s.pts)-1]}
		case engine.OpClose:
			if curved {
				run = append(run, start)
				flush(false)
			} else {
				flush(true)
			}
			run = []geom.Vec2{start}
		}
	}
	flush(false)
	return out
}

func polylineMiters(pts []geom.Vec2, closed bool, halfWidth, limit float64) [][3]geom.Vec2 {
	if closed && len(pts) > 1 && pts[len(pts)-1] == pts[0] {
		pts = pts[:len(pts)-1]
	}
	n := len(pts)
	if n < 3 {
		return nil
	}
	var out [][3]geom.Vec2
	first, last := 1, n-2
	if closed {
		first, last = 0, n-1
	}
	for i := first; i <= last; i++ {
		prev, next := pts[(i-1+n)%n], pts[(i+1)%n]
		if w, ok := miterWedge(prev, pts[i], next, halfWidth, limit); ok {
			out = append(out, w)
		}
	}
	return out
}

// miterWedge is the triangle between the bevel edge and the miter tip
// at corner p.
func miterWedge(prev, p, next geom.Vec2, hw, limit float64) ([3]geom.Vec2, bool) {
	d1x, d1y, ok1 := unit(p.X-prev.X, p.Y-prev.Y)
	d2x, d2y, ok2 := unit(next.X-p.X, next.Y-p.Y)
	if !ok1 || !ok2 {
		return [3]geom.Vec2{}, false
	}
	cross := d1x*d2y - d1y*d2x
	if math.Abs(cross) < 1e-9 {
		return [3]geom.Vec2{}, false
	}
	// Outer side of the turn.
	s := 1.0
	if cross > 0 {
		s = -1
	}
	n1x, n1y := -d1y, d1x
	n2x, n2y := -d2y, d2x
	vx, vy := n1x+n2x, n1y+n2y
	l2 := vx*vx + vy*vy
	if l2 < 1e-12 || 2/math.Sqrt(l2) > limit {
		return [3]geom.Vec2{}, false
	}
	k := s * hw * 2 / l2
	return [3]geom.Vec2{
		{X: p.X + s*hw*n1x, Y: p.Y + s*hw*n1y},
		{X: p.X + k*vx, Y: p.Y + k*vy},
		{X: p.X + s*hw*n2x, Y: p.Y + s*hw*n2y},
	}, true
}

func unit(x, y float64) (float64, float64, bool) {
	l := math.Hypot(x, y)
	if l == 0 {
		return 0, 0, false
	}
	return x / l, y / l, true
}
