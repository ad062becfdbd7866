package document

import (
	"encoding/json"

	"github.com/inamate/designer/internal/geom"
)

type PaintKind string

const (
	PaintSolid    PaintKind = "solid"
	PaintGradient PaintKind = "gradient"
	PaintImage    PaintKind = "image"
	PaintPattern  PaintKind = "pattern"
)

type GradientType string

const (
	GradientLinear  GradientType = "linear"
	GradientRadial  GradientType = "radial"
	GradientAngular GradientType = "angular"
	GradientDiamond GradientType = "diamond"
)

type SpreadMethod string

const (
	SpreadPad     SpreadMethod = "pad"
	SpreadReflect SpreadMethod = "reflect"
	SpreadRepeat  SpreadMethod = "repeat"
)

type ImageFit string

const (
	FitCover   ImageFit = "cover"
	FitContain ImageFit = "contain"
	FitStretch ImageFit = "stretch"
	FitFill    ImageFit = "fill"
)

type PatternType string

const (
	PatternDots          PatternType = "dots"
	PatternGrid          PatternType = "grid"
	PatternLines         PatternType = "lines"
	PatternDiagonalLines PatternType = "diagonal-lines"
	PatternCrosshatch    PatternType = "crosshatch"
	PatternChevron       PatternType = "chevron"
	PatternWaves         PatternType = "waves"
	PatternZigzag        PatternType = "zigzag"
	PatternCircles       PatternType = "circles"
	PatternTriangles     PatternType = "triangles"
	PatternHexagons      PatternType = "hexagons"
	PatternDiamonds      PatternType = "diamonds"
)

// PatternTypes lists every motif a pattern paint may name.
var PatternTypes = []PatternType{
	PatternDots, PatternGrid, PatternLines, PatternDiagonalLines,
	PatternCrosshatch, PatternChevron, PatternWaves, PatternZigzag,
	PatternCircles, PatternTriangles, PatternHexagons, PatternDiamonds,
}

type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  RGBA    `json:"color"`
}

// Paint describes how a region is colored. Kind selects which of the
// remaining fields are meaningful:
//
//	solid:    Color
//	gradient: GradientType, Stops, Transform, Spread
//	image:    ImageRef, Fit, Transform
//	pattern:  PatternType, Color, Scale (0 means 1), Rotation, Spacing
//
// Opacity multiplies every kind.
type Paint struct {
	Kind PaintKind `json:"kind"`

	Color RGBA `json:"color,omitzero"`

	GradientType GradientType   `json:"gradientType,omitempty"`
	Stops        []GradientStop `json:"stops,omitempty"`
	Transform    geom.Matrix2D  `json:"transform,omitzero"`
	Spread       SpreadMethod   `json:"spread,omitempty"`

	ImageRef string   `json:"imageRef,omitempty"`
	Fit      ImageFit `json:"fit,omitempty"`

	PatternType PatternType `json:"patternType,omitempty"`
	Scale       float64     `json:"scale,omitempty"`
	Rotation    float64     `json:"rotation,omitempty"`
	Spacing     float64     `json:"spacing,omitempty"`

	Opacity float64 `json:"opacity"`
}

// UnmarshalJSON defaults opacity to 1 when absent.
func (p *Paint) UnmarshalJSON(data []byte) error {
	type raw Paint
	r := raw{Opacity: 1}
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*p = Paint(r)
	return nil
}

func SolidPaint(c RGBA) Paint {
	return Paint{Kind: PaintSolid, Color: c, Opacity: 1}
}

// LinearGradientPaint builds a linear gradient whose direction is encoded
// as a rotation matrix. 0° runs left to right, 90° top to bottom.
func LinearGradientPaint(angleDeg float64, stops ...GradientStop) Paint {
	return Paint{
		Kind:         PaintGradient,
		GradientType: GradientLinear,
		Stops:        stops,
		Transform:    geom.RotateDegrees(angleDeg),
		Spread:       SpreadPad,
		Opacity:      1,
	}
}

func RadialGradientPaint(stops ...GradientStop) Paint {
	return Paint{
		Kind:         PaintGradient,
		GradientType: GradientRadial,
		Stops:        stops,
		Transform:    geom.Identity(),
		Spread:       SpreadPad,
		Opacity:      1,
	}
}

// GradientPaint builds a gradient of any type with the given angle.
func GradientPaint(kind GradientType, angleDeg float64, spread SpreadMethod, stops ...GradientStop) Paint {
	p := LinearGradientPaint(angleDeg, stops...)
	p.GradientType = kind
	p.Spread = spread
	return p
}

func ImagePaint(ref string, fit ImageFit) Paint {
	return Paint{Kind: PaintImage, ImageRef: ref, Fit: fit, Transform: geom.Identity(), Opacity: 1}
}

func PatternPaint(pt PatternType, c RGBA, spacing float64) Paint {
	return Paint{
		Kind:        PaintPattern,
		PatternType: pt,
		Color:       c,
		Scale:       1,
		Spacing:     spacing,
		Opacity:     1,
	}
}

// GradientAngle recovers the gradient direction in radians from the
// rotation component of the paint's transform.
func (p Paint) GradientAngle() float64 {
	return p.Transform.RotationAngle()
}

func (p Paint) clone() Paint {
	if p.Stops != nil {
		p.Stops = append([]GradientStop(nil), p.Stops...)
	}
	return p
}

func clonePaints(ps []Paint) []Paint {
	if ps == nil {
		return nil
	}
	out := make([]Paint, len(ps))
	for i, p := range ps {
		out[i] = p.clone()
	}
	return out
}
