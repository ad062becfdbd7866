package engine

import (
	"fmt"
	"image"
	"strings"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

// Surface is a Canvas2D-shaped drawing target. Angles are radians. Fill
// and stroke consume the current path; Save/Restore cover transform,
// clip, alpha, blend, styles, line settings, shadow, filter and font.
type Surface interface {
	Save()
	Restore()
	SetGlobalAlpha(a float64)
	SetBlendMode(m document.BlendMode)
	Translate(x, y float64)
	Rotate(radians float64)
	Scale(sx, sy float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	BezierCurveTo(c1x, c1y, c2x, c2y, x, y float64)
	QuadraticCurveTo(cx, cy, x, y float64)
	Arc(cx, cy, r, start, end float64, anticlockwise bool)
	Ellipse(cx, cy, rx, ry, rotation, start, end float64, anticlockwise bool)
	ClosePath()

	SetFillStyle(s Style)
	SetStrokeStyle(s Style)
	SetLineWidth(w float64)
	SetLineDash(dash []float64)
	SetLineCap(c document.LineCap)
	SetLineJoin(j document.LineJoin)
	SetMiterLimit(limit float64)
	Fill(rule document.FillRule)
	Stroke()
	Clip(rule document.FillRule)

	SetShadow(sh Shadow)
	SetFilter(f FilterChain)
	DrawImage(img ImageSource, src, dst geom.Rect)

	SetFont(f Font)
	MeasureText(text string) TextMetrics
	FillText(text string, x, y float64)
	StrokeText(text string, x, y float64)
}

// GradientSupport is implemented by surfaces that paint some gradient
// types natively. Linear and radial are assumed for every surface.
type GradientSupport interface {
	SupportsGradient(t document.GradientType) bool
}

// Isolator is implemented by surfaces that can render into an offscreen
// layer and composite it back. EndIsolation applies the post effects in
// order and composites with the blend mode.
type Isolator interface {
	BeginIsolation()
	EndIsolation(effects []document.Effect, blend document.BlendMode)
}

// LayerMarker lets a surface correlate drawing with layer ids.
type LayerMarker interface {
	BeginLayer(id string)
	EndLayer(id string)
}

// Style is a fill or stroke source: a solid color unless Gradient is set.
type Style struct {
	Color    document.RGBA `json:"color"`
	Gradient *Gradient     `json:"gradient,omitempty"`
}

func SolidStyle(c document.RGBA) Style {
	return Style{Color: c}
}

// Gradient is a resolved gradient in user space. Linear gradients run
// from (X0,Y0) to (X1,Y1). Radial, angular and diamond gradients are
// centered on (X0,Y0) with radius R; angular and diamond start at Angle.
type Gradient struct {
	Type   document.GradientType   `json:"type"`
	X0     float64                 `json:"x0"`
	Y0     float64                 `json:"y0"`
	X1     float64                 `json:"x1"`
	Y1     float64                 `json:"y1"`
	R      float64                 `json:"r"`
	Angle  float64                 `json:"angle"`
	Stops  []document.GradientStop `json:"stops"`
	Spread document.SpreadMethod   `json:"spread"`
}

// Shadow is the surface shadow state. The zero value disables it.
type Shadow struct {
	Color   document.RGBA `json:"color"`
	Blur    float64       `json:"blur"`
	OffsetX float64       `json:"offsetX"`
	OffsetY float64       `json:"offsetY"`
}

func (s Shadow) IsZero() bool {
	return s.Color.A <= 0 || (s.Blur == 0 && s.OffsetX == 0 && s.OffsetY == 0)
}

type FilterKind string

const (
	FilterBrightness  FilterKind = "brightness"
	FilterContrast    FilterKind = "contrast"
	FilterSaturate    FilterKind = "saturate"
	FilterBlur        FilterKind = "blur"
	FilterGrayscale   FilterKind = "grayscale"
	FilterSepia       FilterKind = "sepia"
	FilterTemperature FilterKind = "temperature"
)

// Filter is one step of a filter chain. Amount is a percentage for the
// color filters, pixels for blur and [-100,100] for temperature.
type Filter struct {
	Kind   FilterKind `json:"kind"`
	Amount float64    `json:"amount"`
}

type FilterChain []Filter

// String renders the chain as a CSS filter value. Temperature has no CSS
// equivalent and is omitted.
func (c FilterChain) String() string {
	if len(c) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(c))
	for _, f := range c {
		switch f.Kind {
		case FilterBlur:
			parts = append(parts, fmt.Sprintf("blur(%gpx)", f.Amount))
		case FilterTemperature:
		default:
			parts = append(parts, fmt.Sprintf("%s(%g%%)", f.Kind, f.Amount))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// ImageSource names an image for DrawImage. Ref lets recording surfaces
// refer to the resource; Image carries the decoded pixels.
type ImageSource struct {
	Ref   string
	Image image.Image
}

// Font describes a text face.
type Font struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
	Weight int     `json:"weight"`
	Italic bool    `json:"italic"`
}

// CSS formats the font as a CSS font shorthand.
func (f Font) CSS() string {
	style := "normal"
	if f.Italic {
		style = "italic"
	}
	return fmt.Sprintf("%s %d %gpx %s", style, f.Weight, f.Size, f.Family)
}

type TextMetrics struct {
	Width   float64
	Ascent  float64
	Descent float64
}
