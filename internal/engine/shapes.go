package engine

import (
	"math"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

// RoundedRectPath builds a rectangle with independent corner radii
// (top-left, top-right, bottom-right, bottom-left). Radii are clamped to
// half the shorter side. Empty boxes yield an empty path.
func RoundedRectPath(box geom.Rect, radii document.CornerRadii) Path {
	if box.IsEmpty() {
		return nil
	}
	limit := math.Min(box.Width, box.Height) / 2
	var r [4]float64
	for i, v := range radii {
		r[i] = math.Max(0, math.Min(v, limit))
	}
	tl, tr, br, bl := r[0], r[1], r[2], r[3]
	x, y, w, h := box.X, box.Y, box.Width, box.Height

	var p Path
	p.MoveTo(x+tl, y)
	p.LineTo(x+w-tr, y)
	if tr > 0 {
		p.Arc(x+w-tr, y+tr, tr, -math.Pi/2, 0, false)
	}
	p.LineTo(x+w, y+h-br)
	if br > 0 {
		p.Arc(x+w-br, y+h-br, br, 0, math.Pi/2, false)
	}
	p.LineTo(x+bl, y+h)
	if bl > 0 {
		p.Arc(x+bl, y+h-bl, bl, math.Pi/2, math.Pi, false)
	}
	p.LineTo(x, y+tl)
	if tl > 0 {
		p.Arc(x+tl, y+tl, tl, math.Pi, 3*math.Pi/2, false)
	}
	p.Close()
	return p
}

// RectPath is a plain rectangle.
func RectPath(box geom.Rect) Path {
	return RoundedRectPath(box, document.CornerRadii{})
}

// EllipsePath is the ellipse inscribed in box.
func EllipsePath(box geom.Rect) Path {
	if box.IsEmpty() {
		return nil
	}
	cx, cy := box.Center()
	var p Path
	p.Ellipse(cx, cy, box.Width/2, box.Height/2, 0, 0, 2*math.Pi, false)
	p.Close()
	return p
}

// TrianglePath has its apex at top-center and its base on the bottom edge.
func TrianglePath(box geom.Rect) Path {
	if box.IsEmpty() {
		return nil
	}
	var p Path
	p.MoveTo(box.X+box.Width/2, box.Y)
	p.LineTo(box.X+box.Width, box.Y+box.Height)
	p.LineTo(box.X, box.Y+box.Height)
	p.Close()
	return p
}

// LinePath runs from the top-left to the bottom-right corner of box.
func LinePath(box geom.Rect) Path {
	var p Path
	p.MoveTo(box.X, box.Y)
	p.LineTo(box.X+box.Width, box.Y+box.Height)
	return p
}

// PolygonPoints returns the vertices of a regular polygon (star=false,
// sides points) or star (2*sides points) centered in box. The first
// vertex points straight up (-90°) and vertices advance clockwise by
// 360/points degrees. Star vertices alternate between the outer radius
// min(w,h)/2 and outer*innerRatio, starting with the outer one.
func PolygonPoints(box geom.Rect, sides int, innerRatio float64, star bool) []geom.Vec2 {
	if sides < 3 {
		sides = 3
	}
	n := sides
	if star {
		n = sides * 2
	}
	cx, cy := box.Center()
	outer := math.Min(box.Width, box.Height) / 2
	step := 2 * math.Pi / float64(n)

	pts := make([]geom.Vec2, n)
	for i := range pts {
		r := outer
		if star && i%2 == 1 {
			r = outer * innerRatio
		}
		a := -math.Pi/2 + float64(i)*step
		pts[i] = geom.Vec2{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return pts
}

func polygonPath(pts []geom.Vec2) Path {
	var p Path
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt.X, pt.Y)
		} else {
			p.LineTo(pt.X, pt.Y)
		}
	}
	p.Close()
	return p
}

// ShapePath builds the outline of a shape layer in document space. Unknown
// shape types fall back to a rectangle.
func ShapePath(l *document.ShapeLayer) Path {
	box := l.Transform.Box()
	if box.IsEmpty() && l.ShapeType != document.ShapeLine {
		return nil
	}
	switch l.ShapeType {
	case document.ShapeEllipse:
		return EllipsePath(box)
	case document.ShapeTriangle:
		return TrianglePath(box)
	case document.ShapePolygon:
		return polygonPath(PolygonPoints(box, l.Sides, 0, false))
	case document.ShapeStar:
		ratio := l.InnerRadiusRatio
		if ratio <= 0 || ratio >= 1 {
			ratio = 0.5
		}
		return polygonPath(PolygonPoints(box, l.Sides, ratio, true))
	case document.ShapeLine:
		return LinePath(box)
	}
	return RoundedRectPath(box, l.CornerRadii)
}

// VectorPath converts stored path commands, which are layer-local, into
// document space by offsetting them with the layer position.
func VectorPath(l *document.PathLayer) Path {
	ox, oy := l.Transform.Position.X, l.Transform.Position.Y
	var p Path
	for _, c := range l.Geometry.Commands {
		switch c.Type {
		case document.PathMoveTo:
			p.MoveTo(ox+c.X, oy+c.Y)
		case document.PathLineTo:
			p.LineTo(ox+c.X, oy+c.Y)
		case document.PathCubicTo:
			p.CubicTo(ox+c.X1, oy+c.Y1, ox+c.X2, oy+c.Y2, ox+c.X, oy+c.Y)
		case document.PathQuadTo:
			p.QuadTo(ox+c.X1, oy+c.Y1, ox+c.X, oy+c.Y)
		case document.PathArc:
			p.Arc(ox+c.X, oy+c.Y, c.Radius, geom.Radians(c.StartAngle), geom.Radians(c.EndAngle), c.Anticlockwise)
		case document.PathClosePath:
			p.Close()
		}
	}
	if l.Geometry.Closed && len(p) > 0 && p[len(p)-1].Op != OpClose {
		p.Close()
	}
	return p
}

// LayerPath returns the geometry a layer occupies, used for clips, masks
// and outlines. Layers without intrinsic geometry use their box.
func LayerPath(l document.Layer) Path {
	switch v := l.(type) {
	case *document.ShapeLayer:
		return ShapePath(v)
	case *document.PathLayer:
		return VectorPath(v)
	case *document.FrameLayer:
		return RoundedRectPath(v.Transform.Box(), v.CornerRadii)
	case *document.ImageLayer:
		return RoundedRectPath(v.Transform.Box(), document.UniformRadii(v.CornerRadius))
	}
	return RectPath(l.Base().Transform.Box())
}
