package engine

import (
	"encoding/json"
	"slices"
	"unicode/utf8"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context,
// setting Transform before tracing Path.
type DrawCommand struct {
	Op          string            `json:"op"`
	ObjectID    string            `json:"objectId,omitempty"`
	Transform   []float64         `json:"transform,omitempty"`
	Path        Path              `json:"path,omitempty"`
	FillRule    string            `json:"fillRule,omitempty"`
	Fill        *Style            `json:"fill,omitempty"`
	Stroke      *Style            `json:"stroke,omitempty"`
	StrokeWidth float64           `json:"strokeWidth,omitempty"`
	LineDash    []float64         `json:"lineDash,omitempty"`
	LineCap     string            `json:"lineCap,omitempty"`
	LineJoin    string            `json:"lineJoin,omitempty"`
	MiterLimit  float64           `json:"miterLimit,omitempty"`
	Opacity     float64           `json:"opacity"`
	Blend       string            `json:"blend,omitempty"`
	Shadow      *Shadow           `json:"shadow,omitempty"`
	Filter      string            `json:"filter,omitempty"`
	Text        string            `json:"text,omitempty"`
	Font        string            `json:"font,omitempty"`
	X           float64           `json:"x,omitempty"`
	Y           float64           `json:"y,omitempty"`
	ImageRef    string            `json:"imageRef,omitempty"`
	ImageWidth  float64           `json:"imageWidth,omitempty"`
	ImageHeight float64           `json:"imageHeight,omitempty"`
	Src         *geom.Rect        `json:"src,omitempty"`
	Dst         *geom.Rect        `json:"dst,omitempty"`
	Effects     []document.Effect `json:"effects,omitempty"`
}

const (
	OpSave           = "save"
	OpRestore        = "restore"
	OpFill           = "fill"
	OpStroke         = "stroke"
	OpClip           = "clip"
	OpFillText       = "fillText"
	OpStrokeText     = "strokeText"
	OpImage          = "image"
	OpBeginLayer     = "beginLayer"
	OpEndLayer       = "endLayer"
	OpBeginIsolation = "beginIsolation"
	OpEndIsolation   = "endIsolation"
)

type recorderState struct {
	matrix     geom.Matrix2D
	alpha      float64
	blend      document.BlendMode
	fill       Style
	stroke     Style
	lineWidth  float64
	dash       []float64
	cap        document.LineCap
	join       document.LineJoin
	miterLimit float64
	shadow     Shadow
	filter     FilterChain
	font       Font
}

// Recorder is a Surface that records drawing as DrawCommands in painter's
// order. Text is measured with fixed per-rune advances, so layouts are
// deterministic and independent of installed fonts.
type Recorder struct {
	state    recorderState
	stack    []recorderState
	path     Path
	layers   []string
	commands []DrawCommand
}

var (
	_ Surface         = (*Recorder)(nil)
	_ Isolator        = (*Recorder)(nil)
	_ LayerMarker     = (*Recorder)(nil)
	_ GradientSupport = (*Recorder)(nil)
)

func NewRecorder() *Recorder {
	return &Recorder{state: recorderState{
		matrix:     geom.Identity(),
		alpha:      1,
		blend:      document.BlendNormal,
		fill:       SolidStyle(document.Black),
		stroke:     SolidStyle(document.Black),
		lineWidth:  1,
		cap:        document.CapButt,
		join:       document.JoinMiter,
		miterLimit: 10,
		font:       Font{Family: "sans-serif", Size: 10, Weight: 400},
	}}
}

// Commands returns the recorded commands.
func (r *Recorder) Commands() []DrawCommand {
	return r.commands
}

// Matrix returns the current transform.
func (r *Recorder) Matrix() geom.Matrix2D {
	return r.state.matrix
}

func (r *Recorder) objectID() string {
	if len(r.layers) == 0 {
		return ""
	}
	return r.layers[len(r.layers)-1]
}

// draw appends a command stamped with the current transform and
// compositing state.
func (r *Recorder) draw(cmd DrawCommand) {
	st := r.state
	cmd.ObjectID = r.objectID()
	cmd.Transform = st.matrix.ToSlice()
	cmd.Opacity = st.alpha
	if !st.blend.IsNormal() {
		cmd.Blend = st.blend.CompositeOperation()
	}
	if !st.shadow.IsZero() {
		sh := st.shadow
		cmd.Shadow = &sh
	}
	if len(st.filter) > 0 {
		cmd.Filter = st.filter.String()
	}
	r.commands = append(r.commands, cmd)
}

func (r *Recorder) Save() {
	s := r.state
	s.dash = slices.Clone(s.dash)
	s.filter = slices.Clone(s.filter)
	r.stack = append(r.stack, s)
	r.commands = append(r.commands, DrawCommand{Op: OpSave, Opacity: r.state.alpha})
}

func (r *Recorder) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.state = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.commands = append(r.commands, DrawCommand{Op: OpRestore, Opacity: r.state.alpha})
}

func (r *Recorder) SetGlobalAlpha(a float64)          { r.state.alpha = clamp01(a) }
func (r *Recorder) SetBlendMode(m document.BlendMode) { r.state.blend = m }

func (r *Recorder) Translate(x, y float64) {
	r.state.matrix = r.state.matrix.Multiply(geom.Translate(x, y))
}

func (r *Recorder) Rotate(radians float64) {
	r.state.matrix = r.state.matrix.Multiply(geom.Rotate(radians))
}

func (r *Recorder) Scale(sx, sy float64) {
	r.state.matrix = r.state.matrix.Multiply(geom.Scale(sx, sy))
}

func (r *Recorder) BeginPath()          { r.path = nil }
func (r *Recorder) MoveTo(x, y float64) { r.path.MoveTo(x, y) }
func (r *Recorder) LineTo(x, y float64) { r.path.LineTo(x, y) }
func (r *Recorder) BezierCurveTo(c1x, c1y, c2x, c2y, x, y float64) {
	r.path.CubicTo(c1x, c1y, c2x, c2y, x, y)
}
func (r *Recorder) QuadraticCurveTo(cx, cy, x, y float64) { r.path.QuadTo(cx, cy, x, y) }
func (r *Recorder) Arc(cx, cy, rad, start, end float64, anticlockwise bool) {
	r.path.Arc(cx, cy, rad, start, end, anticlockwise)
}
func (r *Recorder) Ellipse(cx, cy, rx, ry, rotation, start, end float64, anticlockwise bool) {
	r.path.Ellipse(cx, cy, rx, ry, rotation, start, end, anticlockwise)
}
func (r *Recorder) ClosePath() { r.path.Close() }

func (r *Recorder) SetFillStyle(s Style)            { r.state.fill = s }
func (r *Recorder) SetStrokeStyle(s Style)          { r.state.stroke = s }
func (r *Recorder) SetLineWidth(w float64)          { r.state.lineWidth = w }
func (r *Recorder) SetLineDash(dash []float64)      { r.state.dash = slices.Clone(dash) }
func (r *Recorder) SetLineCap(c document.LineCap)   { r.state.cap = c }
func (r *Recorder) SetLineJoin(j document.LineJoin) { r.state.join = j }
func (r *Recorder) SetMiterLimit(limit float64)     { r.state.miterLimit = limit }
func (r *Recorder) SetShadow(sh Shadow)             { r.state.shadow = sh }
func (r *Recorder) SetFilter(f FilterChain)         { r.state.filter = slices.Clone(f) }
func (r *Recorder) SetFont(f Font)                  { r.state.font = f }
func (r *Recorder) SupportsGradient(t document.GradientType) bool {
	// Canvas2D has linear, radial and conic gradients.
	return t != document.GradientDiamond
}

func (r *Recorder) Fill(rule document.FillRule) {
	fill := r.state.fill
	r.draw(DrawCommand{Op: OpFill, Path: slices.Clip(r.path), FillRule: string(rule), Fill: &fill})
}

func (r *Recorder) Stroke() {
	st := r.state
	stroke := st.stroke
	r.draw(DrawCommand{
		Op:          OpStroke,
		Path:        slices.Clip(r.path),
		Stroke:      &stroke,
		StrokeWidth: st.lineWidth,
		LineDash:    st.dash,
		LineCap:     string(st.cap),
		LineJoin:    string(st.join),
		MiterLimit:  st.miterLimit,
	})
}

func (r *Recorder) Clip(rule document.FillRule) {
	r.draw(DrawCommand{Op: OpClip, Path: slices.Clip(r.path), FillRule: string(rule)})
}

func (r *Recorder) DrawImage(img ImageSource, src, dst geom.Rect) {
	cmd := DrawCommand{Op: OpImage, ImageRef: img.Ref, Src: &src, Dst: &dst}
	if img.Image != nil {
		b := img.Image.Bounds()
		cmd.ImageWidth, cmd.ImageHeight = float64(b.Dx()), float64(b.Dy())
	}
	r.draw(cmd)
}

// MeasureText uses an advance of 0.6em per rune, an ascent of 0.8em and
// a descent of 0.2em.
func (r *Recorder) MeasureText(text string) TextMetrics {
	size := r.state.font.Size
	return TextMetrics{
		Width:   float64(utf8.RuneCountInString(text)) * size * 0.6,
		Ascent:  size * 0.8,
		Descent: size * 0.2,
	}
}

func (r *Recorder) FillText(text string, x, y float64) {
	fill := r.state.fill
	r.draw(DrawCommand{Op: OpFillText, Text: text, Font: r.state.font.CSS(), X: x, Y: y, Fill: &fill})
}

func (r *Recorder) StrokeText(text string, x, y float64) {
	stroke := r.state.stroke
	r.draw(DrawCommand{Op: OpStrokeText, Text: text, Font: r.state.font.CSS(), X: x, Y: y, Stroke: &stroke, StrokeWidth: r.state.lineWidth})
}

func (r *Recorder) BeginLayer(id string) {
	r.layers = append(r.layers, id)
	r.commands = append(r.commands, DrawCommand{Op: OpBeginLayer, ObjectID: id, Opacity: r.state.alpha})
}

func (r *Recorder) EndLayer(id string) {
	if n := len(r.layers); n > 0 {
		r.layers = r.layers[:n-1]
	}
	r.commands = append(r.commands, DrawCommand{Op: OpEndLayer, ObjectID: id, Opacity: r.state.alpha})
}

func (r *Recorder) BeginIsolation() {
	r.commands = append(r.commands, DrawCommand{Op: OpBeginIsolation, ObjectID: r.objectID(), Opacity: r.state.alpha})
}

func (r *Recorder) EndIsolation(effects []document.Effect, blend document.BlendMode) {
	cmd := DrawCommand{Op: OpEndIsolation, ObjectID: r.objectID(), Opacity: r.state.alpha, Effects: effects}
	if !blend.IsNormal() {
		cmd.Blend = blend.CompositeOperation()
	}
	r.commands = append(r.commands, cmd)
}

// CompileDrawCommands renders the document into a draw command buffer.
// Commands are in painter's order (back to front).
func CompileDrawCommands(doc *document.Document, opts Options) []DrawCommand {
	if doc == nil {
		return nil
	}
	rec := NewRecorder()
	RenderDocument(rec, doc, opts)
	return rec.Commands()
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
