package engine

import (
	"image"
	"log/slog"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

// Options tune a render pass. The zero value renders the document's
// visual content at 1:1 with no editor overlays.
type Options struct {
	ShowSelection bool
	ShowGuides    bool
	ShowBleedSafe bool
	// ScaleFactor scales the whole document; 0 means 1.
	ScaleFactor float64
	SkipEffects bool
	// OnlyLayers, when non-nil, restricts rendering to the listed ids.
	// The filter is applied per layer, so a container must be listed for
	// any of its children to be reached.
	OnlyLayers map[string]bool

	Patterns PatternPainter
	Icons    IconDrawer
	// Images resolves image paints. Image layers use their attached
	// element instead.
	Images func(ref string) image.Image
	Logger *slog.Logger
}

// LayerSet builds an OnlyLayers set.
func LayerSet(ids ...string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

type renderer struct {
	s      Surface
	doc    *document.Document
	opts   Options
	alpha  float64
	active map[string]bool
}

func newRenderer(s Surface, doc *document.Document, opts Options) *renderer {
	if opts.Patterns == nil {
		opts.Patterns = DefaultPatterns
	}
	if opts.Icons == nil {
		opts.Icons = DefaultIcons
	}
	return &renderer{s: s, doc: doc, opts: opts, alpha: 1, active: map[string]bool{}}
}

func (r *renderer) debug(msg string, args ...any) {
	if r.opts.Logger != nil {
		r.opts.Logger.Debug(msg, args...)
	}
}

// RenderDocument paints the whole document back to front onto s,
// followed by any requested editor overlays. It never modifies doc.
func RenderDocument(s Surface, doc *document.Document, opts Options) {
	root := doc.Root()
	if root == nil {
		return
	}
	r := newRenderer(s, doc, opts)

	s.Save()
	defer s.Restore()
	if sf := opts.ScaleFactor; sf > 0 && sf != 1 {
		s.Scale(sf, sf)
	}
	r.renderLayer(root)
	r.drawOverlays()
}

// RenderLayer paints one layer and its subtree at full inherited opacity.
func RenderLayer(s Surface, l document.Layer, doc *document.Document, opts Options) {
	if l == nil {
		return
	}
	newRenderer(s, doc, opts).renderLayer(l)
}

func (r *renderer) renderLayer(l document.Layer) {
	b := l.Base()
	if !b.Visible {
		return
	}
	if r.opts.OnlyLayers != nil && !r.opts.OnlyLayers[b.ID] {
		return
	}
	if r.active[b.ID] {
		r.debug("layer cycle skipped", "layer", b.ID)
		return
	}
	r.active[b.ID] = true
	defer delete(r.active, b.ID)

	s := r.s
	if m, ok := s.(LayerMarker); ok {
		m.BeginLayer(b.ID)
		defer m.EndLayer(b.ID)
	}
	s.Save()
	defer s.Restore()

	prev := r.alpha
	r.alpha *= clamp01(b.Opacity)
	defer func() { r.alpha = prev }()

	var post []document.Effect
	if !r.opts.SkipEffects {
		post = document.EnabledEffects(b.Effects, document.PhasePost)
	}
	pixel := pixelEffects(post)
	iso, canIsolate := s.(Isolator)
	isolate := canIsolate && (len(pixel) > 0 || !b.BlendMode.IsNormal())
	if isolate {
		iso.BeginIsolation()
	} else if !b.BlendMode.IsNormal() {
		s.SetBlendMode(b.BlendMode)
	}
	s.SetGlobalAlpha(r.alpha)

	if rot := b.Transform.Rotation; rot != 0 {
		cx, cy := b.Transform.PivotPoint()
		s.Translate(cx, cy)
		s.Rotate(geom.Radians(rot))
		s.Translate(-cx, -cy)
	}

	r.applyClip(l)
	r.applyMask(l)
	if !r.opts.SkipEffects {
		r.applyPreEffects(b.Effects)
	}

	r.paint(l)

	r.applyOutlines(l, post)
	if isolate {
		iso.EndIsolation(pixel, b.BlendMode)
	}
}

func (r *renderer) paint(l document.Layer) {
	switch v := l.(type) {
	case *document.FrameLayer:
		r.paintFrame(v)
	case *document.TextLayer:
		r.paintText(v)
	case *document.ShapeLayer:
		r.paintShape(v)
	case *document.ImageLayer:
		r.paintImage(v)
	case *document.PathLayer:
		r.paintPath(v)
	case *document.IconLayer:
		r.paintIcon(v)
	case *document.GroupLayer:
		r.paintChildren(v.Children)
	case *document.BooleanGroupLayer:
		// Rendered as a union: children draw normally.
		r.paintChildren(v.Children)
	default:
		r.debug("unknown layer type skipped", "layer", l.Base().ID)
	}
}

// paintChildren walks ids in reverse so index 0 lands on top.
func (r *renderer) paintChildren(ids []string) {
	for i := len(ids) - 1; i >= 0; i-- {
		child, ok := r.doc.LayersByID[ids[i]]
		if !ok {
			r.debug("dangling child skipped", "layer", ids[i])
			continue
		}
		r.renderLayer(child)
	}
}

func (r *renderer) paintFrame(l *document.FrameLayer) {
	box := l.Transform.Box()
	p := RoundedRectPath(box, l.CornerRadii)
	for _, f := range l.Fills {
		r.fillPath(p, f, box, document.FillNonZero)
	}
	for _, st := range l.Strokes {
		r.strokePath(p, st, box, document.FillNonZero, true)
	}

	// The frame's shadow belongs to its background only.
	r.s.SetShadow(Shadow{})
	if l.ClipContent {
		r.s.Save()
		defer r.s.Restore()
		p.Trace(r.s)
		r.s.Clip(document.FillNonZero)
	}
	r.paintChildren(l.Children)
}

func (r *renderer) paintShape(l *document.ShapeLayer) {
	box := l.Transform.Box()
	p := ShapePath(l)
	line := l.ShapeType == document.ShapeLine
	if !line {
		for _, f := range l.Fills {
			r.fillPath(p, f, box, document.FillNonZero)
		}
	}
	for _, st := range l.Strokes {
		r.strokePath(p, st, box, document.FillNonZero, !line)
	}
}

func (r *renderer) paintPath(l *document.PathLayer) {
	box := l.Transform.Box()
	p := VectorPath(l)
	rule := fillRule(l.Geometry.FillRule)
	for _, f := range l.Fills {
		r.fillPath(p, f, box, rule)
	}
	closed := len(p) > 0 && p[len(p)-1].Op == OpClose
	for _, st := range l.Strokes {
		r.strokePath(p, st, box, rule, closed)
	}
}

func (r *renderer) paintIcon(l *document.IconLayer) {
	box := l.Transform.Box()
	if box.IsEmpty() {
		return
	}
	size := min(box.Width, box.Height)
	cx, cy := box.Center()
	square := geom.Rect{X: cx - size/2, Y: cy - size/2, Width: size, Height: size}
	if !r.opts.Icons.DrawIcon(r.s, l.IconID, square, l.Color, l.StrokeWidth) {
		r.debug("unknown icon skipped", "layer", l.ID, "icon", l.IconID)
	}
}

func fillRule(rule document.FillRule) document.FillRule {
	if rule == document.FillEvenOdd {
		return rule
	}
	return document.FillNonZero
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
