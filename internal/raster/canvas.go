package raster

import (
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/engine"
	"github.com/inamate/designer/internal/geom"
)

type state struct {
	matrix     geom.Matrix2D
	alpha      float64
	blend      document.BlendMode
	fill       engine.Style
	stroke     engine.Style
	lineWidth  float64
	dash       []float64
	cap        document.LineCap
	join       document.LineJoin
	miterLimit float64
	shadow     engine.Shadow
	filter     engine.FilterChain
	font       engine.Font
	clip       *image.Alpha
}

type isolation struct {
	parent *image.RGBA
	clip   *image.Alpha
	scale  float64
}

// Canvas is an engine.Surface that rasterizes into an RGBA image with
// gg. Paths are mapped to device space as they are built, so gg itself
// always draws with an identity matrix. Clips are coverage masks.
type Canvas struct {
	root   *image.RGBA
	img    *image.RGBA
	bounds image.Rectangle

	state state
	stack []state
	path  devPath

	isolations []isolation

	fonts *FontRegistry
	faces faceCache
	buf   sfnt.Buffer
}

var (
	_ engine.Surface         = (*Canvas)(nil)
	_ engine.Isolator        = (*Canvas)(nil)
	_ engine.GradientSupport = (*Canvas)(nil)
)

// NewCanvas returns a transparent w×h canvas.
func NewCanvas(w, h int) *Canvas {
	return NewCanvasForRGBA(image.NewRGBA(image.Rect(0, 0, max(1, w), max(1, h))))
}

// NewCanvasForRGBA draws onto an existing image. The image must have its
// origin at (0,0).
func NewCanvasForRGBA(img *image.RGBA) *Canvas {
	return &Canvas{
		root:   img,
		img:    img,
		bounds: img.Bounds(),
		state: state{
			matrix:     geom.Identity(),
			alpha:      1,
			blend:      document.BlendNormal,
			fill:       engine.SolidStyle(document.Black),
			stroke:     engine.SolidStyle(document.Black),
			lineWidth:  1,
			cap:        document.CapButt,
			join:       document.JoinMiter,
			miterLimit: 10,
			font:       engine.Font{Family: "sans-serif", Size: 10, Weight: 400},
		},
		fonts: defaultFonts,
		faces: faceCache{},
	}
}

// UseFonts switches the font registry.
func (c *Canvas) UseFonts(r *FontRegistry) {
	c.fonts = r
	c.faces = faceCache{}
}

// Image returns the canvas pixels (premultiplied).
func (c *Canvas) Image() *image.RGBA {
	return c.root
}

// Clear fills the whole canvas with col, ignoring clip and transform.
func (c *Canvas) Clear(col color.Color) {
	dc := gg.NewContextForRGBA(c.img)
	dc.SetColor(col)
	dc.Clear()
}

func (c *Canvas) Save() {
	s := c.state
	s.dash = slices.Clone(s.dash)
	s.filter = slices.Clone(s.filter)
	c.stack = append(c.stack, s)
}

func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Canvas) SetGlobalAlpha(a float64) {
	c.state.alpha = math.Max(0, math.Min(1, a))
}

func (c *Canvas) SetBlendMode(m document.BlendMode) { c.state.blend = m }

func (c *Canvas) Translate(x, y float64) {
	c.state.matrix = c.state.matrix.Multiply(geom.Translate(x, y))
}

func (c *Canvas) Rotate(radians float64) {
	c.state.matrix = c.state.matrix.Multiply(geom.Rotate(radians))
}

func (c *Canvas) Scale(sx, sy float64) {
	c.state.matrix = c.state.matrix.Multiply(geom.Scale(sx, sy))
}

func (c *Canvas) device(x, y float64) geom.Vec2 {
	dx, dy := c.state.matrix.TransformPoint(x, y)
	return geom.Vec2{X: dx, Y: dy}
}

func (c *Canvas) BeginPath()          { c.path.reset() }
func (c *Canvas) MoveTo(x, y float64) { c.path.moveTo(c.device(x, y)) }
func (c *Canvas) LineTo(x, y float64) { c.path.lineTo(c.device(x, y)) }
func (c *Canvas) ClosePath()          { c.path.close() }

func (c *Canvas) BezierCurveTo(c1x, c1y, c2x, c2y, x, y float64) {
	c.path.cubicTo(c.device(c1x, c1y), c.device(c2x, c2y), c.device(x, y))
}

func (c *Canvas) QuadraticCurveTo(cx, cy, x, y float64) {
	c.path.quadTo(c.device(cx, cy), c.device(x, y))
}

func (c *Canvas) Arc(cx, cy, r, start, end float64, anticlockwise bool) {
	c.path.ellipse(c.state.matrix, cx, cy, r, r, 0, start, end, anticlockwise)
}

func (c *Canvas) Ellipse(cx, cy, rx, ry, rotation, start, end float64, anticlockwise bool) {
	c.path.ellipse(c.state.matrix, cx, cy, rx, ry, rotation, start, end, anticlockwise)
}

func (c *Canvas) SetFillStyle(s engine.Style)                 { c.state.fill = s }
func (c *Canvas) SetStrokeStyle(s engine.Style)               { c.state.stroke = s }
func (c *Canvas) SetLineWidth(w float64)                      { c.state.lineWidth = w }
func (c *Canvas) SetLineDash(dash []float64)                  { c.state.dash = slices.Clone(dash) }
func (c *Canvas) SetLineCap(lc document.LineCap)              { c.state.cap = lc }
func (c *Canvas) SetLineJoin(j document.LineJoin)             { c.state.join = j }
func (c *Canvas) SetMiterLimit(limit float64)                 { c.state.miterLimit = limit }
func (c *Canvas) SetShadow(sh engine.Shadow)                  { c.state.shadow = sh }
func (c *Canvas) SetFilter(f engine.FilterChain)              { c.state.filter = slices.Clone(f) }
func (c *Canvas) SetFont(f engine.Font)                       { c.state.font = f }
func (c *Canvas) SupportsGradient(document.GradientType) bool { return true }

func ggFillRule(rule document.FillRule) gg.FillRule {
	if rule == document.FillEvenOdd {
		return gg.FillRuleEvenOdd
	}
	return gg.FillRuleWinding
}

func ggLineCap(lc document.LineCap) gg.LineCap {
	switch lc {
	case document.CapRound:
		return gg.LineCapRound
	case document.CapSquare:
		return gg.LineCapSquare
	}
	return gg.LineCapButt
}

// gg joins are round or bevel. Miter joins are stroked beveled and
// completed by strokePath.
func ggLineJoin(j document.LineJoin) gg.LineJoin {
	if j == document.JoinRound {
		return gg.LineJoinRound
	}
	return gg.LineJoinBevel
}

// simple reports whether drawing can go straight to the target through
// gg with the clip as its mask.
func (c *Canvas) simple() bool {
	st := &c.state
	return st.shadow.IsZero() && len(st.filter) == 0 && st.blend.IsNormal()
}

// render runs draw against the target, or against a scratch layer that
// is then filtered, shadowed and blended in.
func (c *Canvas) render(draw func(dc *gg.Context, alpha float64)) {
	if c.simple() {
		dc := gg.NewContextForRGBA(c.img)
		if c.state.clip != nil {
			_ = dc.SetMask(c.state.clip)
		}
		draw(dc, c.state.alpha)
		return
	}
	layer := image.NewRGBA(c.bounds)
	draw(gg.NewContextForRGBA(layer), 1)
	c.compositeLayer(layer)
}

func (c *Canvas) compositeLayer(layer *image.RGBA) {
	st := &c.state
	sc := st.matrix.ScaleFactor()
	if len(st.filter) > 0 {
		layer = ApplyFilters(layer, st.filter, sc)
	}
	if !st.shadow.IsZero() {
		sh := tint(layer, st.shadow.Color, false)
		sh = gaussian(shift(sh, st.shadow.OffsetX*sc, st.shadow.OffsetY*sc), st.shadow.Blur/2*sc)
		composite(c.img, sh, st.clip, st.alpha, st.blend)
	}
	composite(c.img, layer, st.clip, st.alpha, st.blend)
}

func (c *Canvas) Fill(rule document.FillRule) {
	c.fillPath(&c.path, rule, c.state.fill)
}

func (c *Canvas) fillPath(p *devPath, rule document.FillRule, style engine.Style) {
	if len(p.segs) == 0 {
		return
	}
	m := c.state.matrix
	c.render(func(dc *gg.Context, alpha float64) {
		p.trace(dc)
		dc.SetFillRule(ggFillRule(rule))
		dc.SetFillStyle(patternFor(style, m, alpha))
		dc.Fill()
	})
}

func (c *Canvas) Stroke() {
	c.strokePath(&c.path, c.state.stroke)
}

func (c *Canvas) strokePath(p *devPath, style engine.Style) {
	st := c.state
	if len(p.segs) == 0 || st.lineWidth <= 0 {
		return
	}
	sc := st.matrix.ScaleFactor()
	dash := make([]float64, len(st.dash))
	for i, d := range st.dash {
		dash[i] = d * sc
	}
	c.render(func(dc *gg.Context, alpha float64) {
		p.trace(dc)
		dc.SetLineWidth(st.lineWidth * sc)
		dc.SetDash(dash...)
		dc.SetLineCap(ggLineCap(st.cap))
		dc.SetLineJoin(ggLineJoin(st.join))
		pattern := patternFor(style, st.matrix, alpha)
		dc.SetStrokeStyle(pattern)
		dc.Stroke()

		// Dashed corners may fall in gaps, so dashed miters stay beveled.
		if st.join != document.JoinMiter || len(dash) > 0 {
			return
		}
		wedges := p.miterWedges(st.lineWidth*sc/2, st.miterLimit)
		if len(wedges) == 0 {
			return
		}
		for _, w := range wedges {
			dc.MoveTo(w[0].X, w[0].Y)
			dc.LineTo(w[1].X, w[1].Y)
			dc.LineTo(w[2].X, w[2].Y)
			dc.ClosePath()
		}
		dc.SetFillRule(gg.FillRuleWinding)
		dc.SetFillStyle(pattern)
		dc.Fill()
	})
}

// Clip intersects the clip with the current path's coverage.
func (c *Canvas) Clip(rule document.FillRule) {
	dc := gg.NewContext(c.bounds.Dx(), c.bounds.Dy())
	c.path.trace(dc)
	dc.SetFillRule(ggFillRule(rule))
	dc.SetColor(color.White)
	dc.Fill()
	mask := dc.AsMask()
	if prev := c.state.clip; prev != nil {
		for i := range mask.Pix {
			mask.Pix[i] = uint8(int(mask.Pix[i]) * int(prev.Pix[i]) / 255)
		}
	}
	c.state.clip = mask
}

// DrawImage maps src of the image onto dst in user space. Large
// downscales are pre-resized with a Lanczos filter.
func (c *Canvas) DrawImage(img engine.ImageSource, src, dst geom.Rect) {
	if img.Image == nil || src.IsEmpty() || dst.IsEmpty() {
		return
	}
	r := image.Rect(
		int(math.Floor(src.X)), int(math.Floor(src.Y)),
		int(math.Ceil(src.X+src.Width)), int(math.Ceil(src.Y+src.Height)),
	).Intersect(img.Image.Bounds())
	if r.Empty() {
		return
	}
	sub := imaging.Crop(img.Image, r)
	kx, ky := dst.Width/src.Width, dst.Height/src.Height
	ox := dst.X + (float64(r.Min.X)-src.X)*kx
	oy := dst.Y + (float64(r.Min.Y)-src.Y)*ky

	sc := c.state.matrix.ScaleFactor()
	if w, h := float64(r.Dx())*kx*sc, float64(r.Dy())*ky*sc; w*2 < float64(r.Dx()) && h*2 < float64(r.Dy()) {
		rw, rh := max(1, int(math.Round(w))), max(1, int(math.Round(h)))
		kx *= float64(r.Dx()) / float64(rw)
		ky *= float64(r.Dy()) / float64(rh)
		sub = imaging.Resize(sub, rw, rh, imaging.Lanczos)
	}

	m := c.state.matrix.Multiply(geom.Translate(ox, oy)).Multiply(geom.Scale(kx, ky))
	layer := image.NewRGBA(c.bounds)
	xdraw.BiLinear.Transform(layer, f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}, sub, sub.Bounds(), xdraw.Over, nil)
	c.compositeLayer(layer)
}

func (c *Canvas) face(f engine.Font) (*sfnt.Font, font.Face, bool) {
	if f.Size <= 0 {
		return nil, nil, false
	}
	ff := c.fonts.Lookup(f)
	face, err := c.faces.face(ff, f.Size)
	if err != nil {
		return nil, nil, false
	}
	return ff, face, true
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func (c *Canvas) MeasureText(text string) engine.TextMetrics {
	_, face, ok := c.face(c.state.font)
	if !ok {
		return engine.TextMetrics{}
	}
	m := face.Metrics()
	return engine.TextMetrics{
		Width:   toFloat(font.MeasureString(face, text)),
		Ascent:  toFloat(m.Ascent),
		Descent: toFloat(m.Descent),
	}
}

// textPath builds glyph outlines for text with its baseline origin at
// (x, y) in user space.
func (c *Canvas) textPath(text string, x, y float64) *devPath {
	f, face, ok := c.face(c.state.font)
	if !ok {
		return nil
	}
	ppem := fixed.Int26_6(math.Round(c.state.font.Size * 64))
	p := &devPath{}
	pt := func(v fixed.Point26_6) geom.Vec2 {
		return c.device(x+toFloat(v.X), y+toFloat(v.Y))
	}
	prev := rune(-1)
	for _, r := range text {
		if prev >= 0 {
			x += toFloat(face.Kern(prev, r))
		}
		prev = r
		if idx, err := f.GlyphIndex(&c.buf, r); err == nil && idx != 0 {
			if segs, err := f.LoadGlyph(&c.buf, idx, ppem, nil); err == nil {
				for _, s := range segs {
					switch s.Op {
					case sfnt.SegmentOpMoveTo:
						p.close()
						p.moveTo(pt(s.Args[0]))
					case sfnt.SegmentOpLineTo:
						p.lineTo(pt(s.Args[0]))
					case sfnt.SegmentOpQuadTo:
						p.quadTo(pt(s.Args[0]), pt(s.Args[1]))
					case sfnt.SegmentOpCubeTo:
						p.cubicTo(pt(s.Args[0]), pt(s.Args[1]), pt(s.Args[2]))
					}
				}
				p.close()
				p.hasCurrent = false
			}
		}
		if adv, ok := face.GlyphAdvance(r); ok {
			x += toFloat(adv)
		}
	}
	return p
}

func (c *Canvas) FillText(text string, x, y float64) {
	if p := c.textPath(text, x, y); p != nil {
		c.fillPath(p, document.FillNonZero, c.state.fill)
	}
}

func (c *Canvas) StrokeText(text string, x, y float64) {
	if p := c.textPath(text, x, y); p != nil {
		c.strokePath(p, c.state.stroke)
	}
}

// BeginIsolation redirects drawing to a transparent layer.
func (c *Canvas) BeginIsolation() {
	c.isolations = append(c.isolations, isolation{
		parent: c.img,
		clip:   c.state.clip,
		scale:  c.state.matrix.ScaleFactor(),
	})
	c.img = image.NewRGBA(c.bounds)
}

// EndIsolation applies effects to the layer and composites it into the
// parent through the clip that was current when isolation began.
func (c *Canvas) EndIsolation(effects []document.Effect, blend document.BlendMode) {
	n := len(c.isolations)
	if n == 0 {
		return
	}
	iso := c.isolations[n-1]
	c.isolations = c.isolations[:n-1]
	content := c.img
	for _, e := range effects {
		content = ApplyEffect(content, e, iso.scale)
	}
	c.img = iso.parent
	composite(c.img, content, iso.clip, 1, blend)
}
