package document

import (
	"time"

	"github.com/inamate/designer/internal/geom"
	"github.com/inamate/designer/internal/typeid"
)

// now is the mutation clock; tests replace it.
var now = func() time.Time { return time.Now().UTC() }

type DocumentOptions struct {
	ToolID          string
	Name            string
	Width           float64
	Height          float64
	BackgroundColor *RGBA
	DPI             float64
	BleedMm         float64
	SafeAreaMm      float64
}

// CreateDocument returns a document holding exactly one root frame filled
// with the background color (opaque white by default) at 300 dpi unless
// told otherwise.
func CreateDocument(opts DocumentOptions) *Document {
	bg := White
	if opts.BackgroundColor != nil {
		bg = *opts.BackgroundColor
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = 300
	}
	name := opts.Name
	if name == "" {
		name = "Untitled"
	}

	root := NewFrameLayer(FrameOptions{
		LayerOptions: LayerOptions{Name: "Root", Width: opts.Width, Height: opts.Height},
		Fills:        []Paint{SolidPaint(bg)},
		ClipContent:  true,
		BleedMm:      opts.BleedMm,
		SafeAreaMm:   opts.SafeAreaMm,
	})
	root.ParentID = nil

	ts := now()
	return &Document{
		ID:          typeid.NewDocumentID(),
		Version:     SchemaVersion,
		Name:        name,
		ToolID:      opts.ToolID,
		RootFrameID: root.ID,
		LayersByID:  map[string]Layer{root.ID: root},
		Selection:   Selection{IDs: []string{}},
		Resources:   []Resource{},
		Meta: Meta{
			CreatedAt: ts,
			UpdatedAt: ts,
			DPI:       dpi,
			Units:     "px",
		},
	}
}

// LayerOptions are accepted by every layer factory. A zero size falls
// back to the variant's default size.
type LayerOptions struct {
	Name   string
	Tags   []string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func newBase(t LayerType, opts LayerOptions, defName string, defW, defH float64) LayerBase {
	name := opts.Name
	if name == "" {
		name = defName
	}
	w, h := opts.Width, opts.Height
	if w == 0 && h == 0 {
		w, h = defW, defH
	}
	tags := append([]string{}, opts.Tags...)
	return LayerBase{
		ID:        typeid.NewLayerID(),
		Type:      t,
		Name:      name,
		Tags:      tags,
		Transform: NewTransform(opts.X, opts.Y, w, h),
		Opacity:   1,
		BlendMode: BlendNormal,
		Visible:   true,
		Effects:   []Effect{},
		Constraints: LayoutConstraints{
			Horizontal: ConstraintLeft,
			Vertical:   ConstraintTop,
		},
	}
}

// DefaultTextStyle is the style new text layers start with.
func DefaultTextStyle() TextStyle {
	return TextStyle{
		FontFamily: "Inter",
		FontSize:   16,
		FontWeight: 400,
		LineHeight: 1.2,
		Fill:       SolidPaint(Black),
	}
}

type TextOptions struct {
	LayerOptions
	Text          string
	Style         *TextStyle
	Align         TextAlign
	Overflow      TextOverflow
	VerticalAlign VerticalAlign
}

func NewTextLayer(opts TextOptions) *TextLayer {
	style := DefaultTextStyle()
	if opts.Style != nil {
		style = opts.Style.clone()
	}
	align := opts.Align
	if align == "" {
		align = AlignLeft
	}
	overflow := opts.Overflow
	if overflow == "" {
		overflow = OverflowExpand
	}
	valign := opts.VerticalAlign
	if valign == "" {
		valign = VAlignTop
	}
	return &TextLayer{
		LayerBase:     newBase(LayerText, opts.LayerOptions, "Text", 200, 40),
		Text:          opts.Text,
		DefaultStyle:  style,
		Runs:          []TextRun{},
		Paragraphs:    []ParagraphStyle{{Align: align}},
		Overflow:      overflow,
		VerticalAlign: valign,
	}
}

type ShapeOptions struct {
	LayerOptions
	ShapeType        ShapeType
	Fills            []Paint
	Strokes          []StrokeSpec
	CornerRadii      CornerRadii
	Sides            int
	InnerRadiusRatio float64
}

func NewShapeLayer(opts ShapeOptions) *ShapeLayer {
	st := opts.ShapeType
	if st == "" {
		st = ShapeRectangle
	}
	fills := clonePaints(opts.Fills)
	if fills == nil {
		fills = []Paint{SolidPaint(HexToRGBA("#cccccc", 1))}
		if st == ShapeLine {
			fills = []Paint{}
		}
	}
	strokes := cloneStrokes(opts.Strokes)
	if strokes == nil {
		strokes = []StrokeSpec{}
		if st == ShapeLine {
			strokes = []StrokeSpec{SolidStroke(Black, 2)}
		}
	}
	sides := opts.Sides
	if sides < 3 {
		sides = 5
		if st == ShapePolygon {
			sides = 6
		}
	}
	ratio := opts.InnerRadiusRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	return &ShapeLayer{
		LayerBase:        newBase(LayerShape, opts.LayerOptions, shapeName(st), 100, 100),
		ShapeType:        st,
		Fills:            fills,
		Strokes:          strokes,
		CornerRadii:      opts.CornerRadii,
		Sides:            sides,
		InnerRadiusRatio: ratio,
	}
}

func shapeName(st ShapeType) string {
	switch st {
	case ShapeEllipse:
		return "Ellipse"
	case ShapeTriangle:
		return "Triangle"
	case ShapePolygon:
		return "Polygon"
	case ShapeStar:
		return "Star"
	case ShapeLine:
		return "Line"
	}
	return "Rectangle"
}

type ImageOptions struct {
	LayerOptions
	ImageRef     string
	Fit          ImageFit
	CornerRadius float64
}

func NewImageLayer(opts ImageOptions) *ImageLayer {
	fit := opts.Fit
	if fit == "" {
		fit = FitCover
	}
	return &ImageLayer{
		LayerBase:    newBase(LayerImage, opts.LayerOptions, "Image", 200, 200),
		ImageRef:     opts.ImageRef,
		Fit:          fit,
		FocalPoint:   geom.Vec2{X: 0.5, Y: 0.5},
		Filters:      DefaultImageFilters(),
		Fills:        []Paint{},
		Strokes:      []StrokeSpec{},
		CornerRadius: opts.CornerRadius,
	}
}

type FrameOptions struct {
	LayerOptions
	Fills       []Paint
	Strokes     []StrokeSpec
	CornerRadii CornerRadii
	ClipContent bool
	BleedMm     float64
	SafeAreaMm  float64
}

func NewFrameLayer(opts FrameOptions) *FrameLayer {
	fills := clonePaints(opts.Fills)
	if fills == nil {
		fills = []Paint{SolidPaint(White)}
	}
	strokes := cloneStrokes(opts.Strokes)
	if strokes == nil {
		strokes = []StrokeSpec{}
	}
	return &FrameLayer{
		LayerBase:   newBase(LayerFrame, opts.LayerOptions, "Frame", 400, 300),
		Fills:       fills,
		Strokes:     strokes,
		CornerRadii: opts.CornerRadii,
		ClipContent: opts.ClipContent,
		Children:    []string{},
		BleedMm:     opts.BleedMm,
		SafeAreaMm:  opts.SafeAreaMm,
		Guides:      []Guide{},
	}
}

type PathOptions struct {
	LayerOptions
	Commands []PathCommand
	FillRule FillRule
	Closed   bool
	Fills    []Paint
	Strokes  []StrokeSpec
}

func NewPathLayer(opts PathOptions) *PathLayer {
	rule := opts.FillRule
	if rule == "" {
		rule = FillNonZero
	}
	fills := clonePaints(opts.Fills)
	if fills == nil {
		fills = []Paint{}
	}
	strokes := cloneStrokes(opts.Strokes)
	if strokes == nil {
		strokes = []StrokeSpec{SolidStroke(Black, 2)}
	}
	cmds := append([]PathCommand{}, opts.Commands...)
	return &PathLayer{
		LayerBase: newBase(LayerPath, opts.LayerOptions, "Path", 100, 100),
		Geometry:  PathGeometry{Commands: cmds, FillRule: rule, Closed: opts.Closed},
		Fills:     fills,
		Strokes:   strokes,
	}
}

type IconOptions struct {
	LayerOptions
	IconID      string
	Color       *RGBA
	StrokeWidth float64
}

func NewIconLayer(opts IconOptions) *IconLayer {
	c := Black
	if opts.Color != nil {
		c = *opts.Color
	}
	sw := opts.StrokeWidth
	if sw <= 0 {
		sw = 2
	}
	return &IconLayer{
		LayerBase:   newBase(LayerIcon, opts.LayerOptions, "Icon", 24, 24),
		IconID:      opts.IconID,
		Color:       c,
		StrokeWidth: sw,
	}
}

func NewGroupLayer(opts LayerOptions) *GroupLayer {
	return &GroupLayer{
		LayerBase: newBase(LayerGroup, opts, "Group", 0, 0),
		Children:  []string{},
	}
}

type BooleanGroupOptions struct {
	LayerOptions
	Operation BooleanOperation
	Fills     []Paint
	Strokes   []StrokeSpec
}

func NewBooleanGroupLayer(opts BooleanGroupOptions) *BooleanGroupLayer {
	op := opts.Operation
	if op == "" {
		op = BooleanUnion
	}
	fills := clonePaints(opts.Fills)
	if fills == nil {
		fills = []Paint{}
	}
	strokes := cloneStrokes(opts.Strokes)
	if strokes == nil {
		strokes = []StrokeSpec{}
	}
	return &BooleanGroupLayer{
		LayerBase: newBase(LayerBooleanGroup, opts.LayerOptions, "Boolean", 0, 0),
		Operation: op,
		Fills:     fills,
		Strokes:   strokes,
		Children:  []string{},
	}
}
