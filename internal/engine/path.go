package engine

import (
	"encoding/json"
	"math"

	"github.com/inamate/designer/internal/geom"
)

// PathOp is a Canvas2D path verb.
type PathOp string

const (
	OpMove    PathOp = "M"
	OpLine    PathOp = "L"
	OpCubic   PathOp = "C"
	OpQuad    PathOp = "Q"
	OpArc     PathOp = "A" // cx, cy, r, start, end, anticlockwise(0|1)
	OpEllipse PathOp = "E" // cx, cy, rx, ry, rotation, start, end, anticlockwise(0|1)
	OpClose   PathOp = "Z"
)

// PathCommand is one path segment. It encodes on the wire in the
// Canvas2D array form ["M", x, y], ["C", x1, y1, x2, y2, x, y], ...
type PathCommand struct {
	Op   PathOp
	Args []float64
}

func (c PathCommand) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(c.Args)+1)
	out = append(out, string(c.Op))
	for _, a := range c.Args {
		out = append(out, a)
	}
	return json.Marshal(out)
}

// Path is an ordered list of segments in user space.
type Path []PathCommand

func (p *Path) MoveTo(x, y float64) { *p = append(*p, PathCommand{OpMove, []float64{x, y}}) }
func (p *Path) LineTo(x, y float64) { *p = append(*p, PathCommand{OpLine, []float64{x, y}}) }
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	*p = append(*p, PathCommand{OpCubic, []float64{c1x, c1y, c2x, c2y, x, y}})
}
func (p *Path) QuadTo(cx, cy, x, y float64) {
	*p = append(*p, PathCommand{OpQuad, []float64{cx, cy, x, y}})
}
func (p *Path) Arc(cx, cy, r, start, end float64, anticlockwise bool) {
	*p = append(*p, PathCommand{OpArc, []float64{cx, cy, r, start, end, boolArg(anticlockwise)}})
}
func (p *Path) Ellipse(cx, cy, rx, ry, rotation, start, end float64, anticlockwise bool) {
	*p = append(*p, PathCommand{OpEllipse, []float64{cx, cy, rx, ry, rotation, start, end, boolArg(anticlockwise)}})
}
func (p *Path) Close() { *p = append(*p, PathCommand{Op: OpClose}) }

func boolArg(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Trace replays the path onto s after BeginPath.
func (p Path) Trace(s Surface) {
	s.BeginPath()
	p.Append(s)
}

// Append replays the path onto s without starting a new one.
func (p Path) Append(s Surface) {
	for _, c := range p {
		a := c.Args
		switch c.Op {
		case OpMove:
			s.MoveTo(a[0], a[1])
		case OpLine:
			s.LineTo(a[0], a[1])
		case OpCubic:
			s.BezierCurveTo(a[0], a[1], a[2], a[3], a[4], a[5])
		case OpQuad:
			s.QuadraticCurveTo(a[0], a[1], a[2], a[3])
		case OpArc:
			s.Arc(a[0], a[1], a[2], a[3], a[4], a[5] != 0)
		case OpEllipse:
			s.Ellipse(a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7] != 0)
		case OpClose:
			s.ClosePath()
		}
	}
}

// Transform maps the path through m, which must be a rotation plus
// translation (the only matrices layer transforms produce). Arc angles
// and ellipse rotations are shifted by the rotation.
func (p Path) Transform(m geom.Matrix2D) Path {
	if m.IsIdentity() {
		return p
	}
	theta := m.RotationAngle()
	out := make(Path, len(p))
	for i, c := range p {
		a := append([]float64(nil), c.Args...)
		switch c.Op {
		case OpMove, OpLine:
			a[0], a[1] = m.TransformPoint(a[0], a[1])
		case OpCubic:
			a[0], a[1] = m.TransformPoint(a[0], a[1])
			a[2], a[3] = m.TransformPoint(a[2], a[3])
			a[4], a[5] = m.TransformPoint(a[4], a[5])
		case OpQuad:
			a[0], a[1] = m.TransformPoint(a[0], a[1])
			a[2], a[3] = m.TransformPoint(a[2], a[3])
		case OpArc:
			a[0], a[1] = m.TransformPoint(a[0], a[1])
			a[3] += theta
			a[4] += theta
		case OpEllipse:
			a[0], a[1] = m.TransformPoint(a[0], a[1])
			a[4] += theta
		}
		out[i] = PathCommand{Op: c.Op, Args: a}
	}
	return out
}

// Points returns the on-curve vertices of M and L segments, the shape a
// polygon or star path is built from.
func (p Path) Points() []geom.Vec2 {
	var out []geom.Vec2
	for _, c := range p {
		if c.Op == OpMove || c.Op == OpLine {
			out = append(out, geom.Vec2{X: c.Args[0], Y: c.Args[1]})
		}
	}
	return out
}

// Bounds is a conservative bounding box: every control point and the
// full extent of arcs and ellipses.
func (p Path) Bounds() geom.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	add := func(x, y float64) {
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	for _, c := range p {
		a := c.Args
		switch c.Op {
		case OpMove, OpLine:
			add(a[0], a[1])
		case OpCubic:
			add(a[0], a[1])
			add(a[2], a[3])
			add(a[4], a[5])
		case OpQuad:
			add(a[0], a[1])
			add(a[2], a[3])
		case OpArc:
			add(a[0]-a[2], a[1]-a[2])
			add(a[0]+a[2], a[1]+a[2])
		case OpEllipse:
			r := math.Max(a[2], a[3])
			add(a[0]-r, a[1]-r)
			add(a[0]+r, a[1]+r)
		}
	}
	if minX > maxX {
		return geom.Rect{}
	}
	return geom.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
