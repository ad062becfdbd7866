package document

import (
	"image"
	"slices"

	"github.com/inamate/designer/internal/geom"
)

type LayerType string

const (
	LayerText         LayerType = "text"
	LayerShape        LayerType = "shape"
	LayerImage        LayerType = "image"
	LayerFrame        LayerType = "frame"
	LayerPath         LayerType = "path"
	LayerIcon         LayerType = "icon"
	LayerGroup        LayerType = "group"
	LayerBooleanGroup LayerType = "boolean-group"
)

// Layer is one node of the scene graph. The set of implementations is
// closed: *TextLayer, *ShapeLayer, *ImageLayer, *FrameLayer, *PathLayer,
// *IconLayer, *GroupLayer and *BooleanGroupLayer.
type Layer interface {
	Base() *LayerBase
	// Clone returns a deep copy. Runtime attachments are shared.
	Clone() Layer
}

// Container is implemented by layers that own an ordered child list.
// Index 0 is the topmost child.
type Container interface {
	Layer
	ChildIDs() []string
	SetChildIDs(ids []string)
}

type LayerBase struct {
	ID          string            `json:"id"`
	Type        LayerType         `json:"type"`
	Name        string            `json:"name"`
	Tags        []string          `json:"tags"`
	ParentID    *string           `json:"parentId"`
	Transform   Transform         `json:"transform"`
	Opacity     float64           `json:"opacity"`
	BlendMode   BlendMode         `json:"blendMode"`
	Visible     bool              `json:"visible"`
	Locked      bool              `json:"locked"`
	Effects     []Effect          `json:"effects"`
	Clip        *ClipSpec         `json:"clip,omitempty"`
	Mask        *MaskSpec         `json:"mask,omitempty"`
	Constraints LayoutConstraints `json:"constraints"`
}

func (b *LayerBase) Base() *LayerBase { return b }

// HasTag reports whether the layer carries tag.
func (b *LayerBase) HasTag(tag string) bool {
	return slices.Contains(b.Tags, tag)
}

// Parent returns the parent id, or "" for the root.
func (b *LayerBase) Parent() string {
	if b.ParentID == nil {
		return ""
	}
	return *b.ParentID
}

func (b LayerBase) clone() LayerBase {
	b.Tags = slices.Clone(b.Tags)
	b.ParentID = clonePtr(b.ParentID)
	b.Effects = slices.Clone(b.Effects)
	b.Clip = clonePtr(b.Clip)
	b.Mask = clonePtr(b.Mask)
	return b
}

type TextLayer struct {
	LayerBase
	Text          string           `json:"text"`
	DefaultStyle  TextStyle        `json:"defaultStyle"`
	Runs          []TextRun        `json:"runs"`
	Paragraphs    []ParagraphStyle `json:"paragraphs"`
	Overflow      TextOverflow     `json:"overflow"`
	VerticalAlign VerticalAlign    `json:"verticalAlign"`
	TextPath      *TextPathBinding `json:"textPath,omitempty"`
}

func (l *TextLayer) Clone() Layer {
	c := *l
	c.LayerBase = l.LayerBase.clone()
	c.DefaultStyle = l.DefaultStyle.clone()
	if l.Runs != nil {
		c.Runs = make([]TextRun, len(l.Runs))
		for i, r := range l.Runs {
			c.Runs[i] = r.clone()
		}
	}
	c.Paragraphs = slices.Clone(l.Paragraphs)
	c.TextPath = clonePtr(l.TextPath)
	return &c
}

type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeEllipse   ShapeType = "ellipse"
	ShapeTriangle  ShapeType = "triangle"
	ShapePolygon   ShapeType = "polygon"
	ShapeStar      ShapeType = "star"
	ShapeLine      ShapeType = "line"
)

// CornerRadii are ordered top-left, top-right, bottom-right, bottom-left.
type CornerRadii [4]float64

func (r CornerRadii) IsZero() bool {
	return r == CornerRadii{}
}

func UniformRadii(r float64) CornerRadii {
	return CornerRadii{r, r, r, r}
}

type ShapeLayer struct {
	LayerBase
	ShapeType        ShapeType    `json:"shapeType"`
	Fills            []Paint      `json:"fills"`
	Strokes          []StrokeSpec `json:"strokes"`
	CornerRadii      CornerRadii  `json:"cornerRadii"`
	Sides            int          `json:"sides"`
	InnerRadiusRatio float64      `json:"innerRadiusRatio"`
}

func (l *ShapeLayer) Clone() Layer {
	c := *l
	c.LayerBase = l.LayerBase.clone()
	c.Fills = clonePaints(l.Fills)
	c.Strokes = cloneStrokes(l.Strokes)
	return &c
}

// ImageFilters are non-destructive adjustments applied at draw time.
// Brightness, Contrast and Saturation are percentages with 100 neutral;
// Temperature is in [-100,100]; Blur is in pixels. A zero percentage is
// treated as unset.
type ImageFilters struct {
	Brightness  float64 `json:"brightness"`
	Contrast    float64 `json:"contrast"`
	Saturation  float64 `json:"saturation"`
	Temperature float64 `json:"temperature"`
	Blur        float64 `json:"blur"`
	Grayscale   bool    `json:"grayscale"`
	Sepia       bool    `json:"sepia"`
}

func DefaultImageFilters() ImageFilters {
	return ImageFilters{Brightness: 100, Contrast: 100, Saturation: 100}
}

// IsNeutral reports whether the filters leave the image untouched.
func (f ImageFilters) IsNeutral() bool {
	return f == DefaultImageFilters() || f == ImageFilters{}
}

type ImageLayer struct {
	LayerBase
	ImageRef     string       `json:"imageRef"`
	Fit          ImageFit     `json:"fit"`
	FocalPoint   geom.Vec2    `json:"focalPoint"`
	CropRect     *geom.Rect   `json:"cropRect,omitempty"`
	Filters      ImageFilters `json:"imageFilters"`
	Fills        []Paint      `json:"fills"`
	Strokes      []StrokeSpec `json:"strokes"`
	CornerRadius float64      `json:"cornerRadius"`

	// Element is the decoded image, attached at runtime by resolving
	// ImageRef. It never persists.
	Element image.Image `json:"-"`
}

func (l *ImageLayer) Clone() Layer {
	c := *l
	c.LayerBase = l.LayerBase.clone()
	c.CropRect = clonePtr(l.CropRect)
	c.Fills = clonePaints(l.Fills)
	c.Strokes = cloneStrokes(l.Strokes)
	return &c
}

type GuideOrientation string

const (
	GuideHorizontal GuideOrientation = "horizontal"
	GuideVertical   GuideOrientation = "vertical"
)

// Guide is an editor aid. Position is measured from the frame's top or
// left edge in px.
type Guide struct {
	Orientation GuideOrientation `json:"orientation"`
	Position    float64          `json:"position"`
}

type FrameLayer struct {
	LayerBase
	Fills       []Paint      `json:"fills"`
	Strokes     []StrokeSpec `json:"strokes"`
	CornerRadii CornerRadii  `json:"cornerRadii"`
	ClipContent bool         `json:"clipContent"`
	Children    []string     `json:"children"`
	BleedMm     float64      `json:"bleedMm"`
	SafeAreaMm  float64      `json:"safeAreaMm"`
	Guides      []Guide      `json:"guides"`
}

func (l *FrameLayer) Clone() Layer {
	c := *l
	c.LayerBase = l.LayerBase.clone()
	c.Fills = clonePaints(l.Fills)
	c.Strokes = cloneStrokes(l.Strokes)
	c.Children = slices.Clone(l.Children)
	c.Guides = slices.Clone(l.Guides)
	return &c
}

func (l *FrameLayer) ChildIDs() []string       { return l.Children }
func (l *FrameLayer) SetChildIDs(ids []string) { l.Children = ids }

type PathCommandType string

const (
	PathMoveTo    PathCommandType = "M"
	PathLineTo    PathCommandType = "L"
	PathCubicTo   PathCommandType = "C"
	PathQuadTo    PathCommandType = "Q"
	PathArc       PathCommandType = "A"
	PathClosePath PathCommandType = "Z"
)

// PathCommand is one segment of a vector path in layer-local coordinates.
//
//	M, L: X, Y
//	C:    X1, Y1, X2, Y2 (controls), X, Y
//	Q:    X1, Y1 (control), X, Y
//	A:    X, Y (center), Radius, StartAngle, EndAngle (degrees), Anticlockwise
//	Z:    none
type PathCommand struct {
	Type          PathCommandType `json:"type"`
	X             float64         `json:"x,omitempty"`
	Y             float64         `json:"y,omitempty"`
	X1            float64         `json:"x1,omitempty"`
	Y1            float64         `json:"y1,omitempty"`
	X2            float64         `json:"x2,omitempty"`
	Y2            float64         `json:"y2,omitempty"`
	Radius        float64         `json:"radius,omitempty"`
	StartAngle    float64         `json:"startAngle,omitempty"`
	EndAngle      float64         `json:"endAngle,omitempty"`
	Anticlockwise bool            `json:"anticlockwise,omitempty"`
}

func MoveTo(x, y float64) PathCommand { return PathCommand{Type: PathMoveTo, X: x, Y: y} }
func LineTo(x, y float64) PathCommand { return PathCommand{Type: PathLineTo, X: x, Y: y} }
func CubicTo(x1, y1, x2, y2, x, y float64) PathCommand {
	return PathCommand{Type: PathCubicTo, X1: x1, Y1: y1, X2: x2, Y2: y2, X: x, Y: y}
}
func QuadTo(x1, y1, x, y float64) PathCommand {
	return PathCommand{Type: PathQuadTo, X1: x1, Y1: y1, X: x, Y: y}
}
func ArcTo(cx, cy, r, startDeg, endDeg float64, anticlockwise bool) PathCommand {
	return PathCommand{Type: PathArc, X: cx, Y: cy, Radius: r, StartAngle: startDeg, EndAngle: endDeg, Anticlockwise: anticlockwise}
}
func ClosePath() PathCommand { return PathCommand{Type: PathClosePath} }

type FillRule string

const (
	FillNonZero FillRule = "nonzero"
	FillEvenOdd FillRule = "evenodd"
)

type PathGeometry struct {
	Commands []PathCommand `json:"commands"`
	FillRule FillRule      `json:"fillRule"`
	Closed   bool          `json:"closed"`
}

type PathLayer struct {
	LayerBase
	Geometry PathGeometry `json:"geometry"`
	Fills    []Paint      `json:"fills"`
	Strokes  []StrokeSpec `json:"strokes"`
}

func (l *PathLayer) Clone() Layer {
	c := *l
	c.LayerBase = l.LayerBase.clone()
	c.Geometry.Commands = slices.Clone(l.Geometry.Commands)
	c.Fills = clonePaints(l.Fills)
	c.Strokes = cloneStrokes(l.Strokes)
	return &c
}

type IconLayer struct {
	LayerBase
	IconID      string  `json:"iconId"`
	Color       RGBA    `json:"color"`
	StrokeWidth float64 `json:"strokeWidth"`
}

func (l *IconLayer) Clone() Layer {
	c := *l
	c.LayerBase = l.LayerBase.clone()
	return &c
}

type BooleanOperation string

const (
	BooleanUnion     BooleanOperation = "union"
	BooleanSubtract  BooleanOperation = "subtract"
	BooleanIntersect BooleanOperation = "intersect"
	BooleanExclude   BooleanOperation = "exclude"
)

type BooleanGroupLayer struct {
	LayerBase
	Operation BooleanOperation `json:"operation"`
	Fills     []Paint          `json:"fills"`
	Strokes   []StrokeSpec     `json:"strokes"`
	Children  []string         `json:"children"`
}

func (l *BooleanGroupLayer) Clone() Layer {
	c := *l
	c.LayerBase = l.LayerBase.clone()
	c.Fills = clonePaints(l.Fills)
	c.Strokes = cloneStrokes(l.Strokes)
	c.Children = slices.Clone(l.Children)
	return &c
}

func (l *BooleanGroupLayer) ChildIDs() []string       { return l.Children }
func (l *BooleanGroupLayer) SetChildIDs(ids []string) { l.Children = ids }

type GroupLayer struct {
	LayerBase
	Children []string `json:"children"`
}

func (l *GroupLayer) Clone() Layer {
	c := *l
	c.LayerBase = l.LayerBase.clone()
	c.Children = slices.Clone(l.Children)
	return &c
}

func (l *GroupLayer) ChildIDs() []string       { return l.Children }
func (l *GroupLayer) SetChildIDs(ids []string) { l.Children = ids }

// newLayerOfType returns an empty layer value for t, or nil.
func newLayerOfType(t LayerType) Layer {
	switch t {
	case LayerText:
		return &TextLayer{}
	case LayerShape:
		return &ShapeLayer{}
	case LayerImage:
		return &ImageLayer{}
	case LayerFrame:
		return &FrameLayer{}
	case LayerPath:
		return &PathLayer{}
	case LayerIcon:
		return &IconLayer{}
	case LayerGroup:
		return &GroupLayer{}
	case LayerBooleanGroup:
		return &BooleanGroupLayer{}
	}
	return nil
}
