package document

import "github.com/inamate/designer/internal/geom"

// Transform is a decomposed layer transform. Position is the top-left of
// the unrotated box; rotation (degrees) is applied about Pivot, which is
// normalized to the box. Skew is carried but not rendered.
type Transform struct {
	Position geom.Vec2 `json:"position"`
	Size     geom.Size `json:"size"`
	Rotation float64   `json:"rotation"`
	SkewX    float64   `json:"skewX"`
	SkewY    float64   `json:"skewY"`
	Pivot    geom.Vec2 `json:"pivot"`
}

// NewTransform returns a transform at (x, y) with a centered pivot.
func NewTransform(x, y, w, h float64) Transform {
	return Transform{
		Position: geom.Vec2{X: x, Y: y},
		Size:     geom.Size{Width: w, Height: h},
		Pivot:    geom.Vec2{X: 0.5, Y: 0.5},
	}
}

// Box is the unrotated layer rectangle.
func (t Transform) Box() geom.Rect {
	return geom.Rect{X: t.Position.X, Y: t.Position.Y, Width: t.Size.Width, Height: t.Size.Height}
}

// PivotPoint is the pivot in the same space as Position.
func (t Transform) PivotPoint() (float64, float64) {
	return t.Position.X + t.Size.Width*t.Pivot.X, t.Position.Y + t.Size.Height*t.Pivot.Y
}

// ToMatrix rotates about the pivot point; the pivot is invariant.
func (t Transform) ToMatrix() geom.Matrix2D {
	if t.Rotation == 0 {
		return geom.Identity()
	}
	cx, cy := t.PivotPoint()
	return geom.RotateAbout(t.Rotation, cx, cy)
}

// AABB is the axis-aligned bounds of the rotated box.
func (t Transform) AABB() geom.Rect {
	return t.ToMatrix().TransformRect(t.Box())
}

type HorizontalConstraint string

const (
	ConstraintLeft     HorizontalConstraint = "left"
	ConstraintRight    HorizontalConstraint = "right"
	ConstraintHCenter  HorizontalConstraint = "center"
	ConstraintHStretch HorizontalConstraint = "stretch"
	ConstraintHScale   HorizontalConstraint = "scale"
)

type VerticalConstraint string

const (
	ConstraintTop      VerticalConstraint = "top"
	ConstraintBottom   VerticalConstraint = "bottom"
	ConstraintVCenter  VerticalConstraint = "center"
	ConstraintVStretch VerticalConstraint = "stretch"
	ConstraintVScale   VerticalConstraint = "scale"
)

// LayoutConstraints drive responsive resizing inside frames. The renderer
// ignores them.
type LayoutConstraints struct {
	Horizontal HorizontalConstraint `json:"horizontal"`
	Vertical   VerticalConstraint   `json:"vertical"`
}
