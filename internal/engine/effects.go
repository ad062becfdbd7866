package engine

import (
	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

// pixelEffects drops outlines, which are drawn as geometry rather than
// handed to an isolating surface.
func pixelEffects(post []document.Effect) []document.Effect {
	var out []document.Effect
	for _, e := range post {
		if e.Kind != document.EffectOutline {
			out = append(out, e)
		}
	}
	return out
}

// applyPreEffects installs the drop shadow. When several are enabled the
// last one wins.
func (r *renderer) applyPreEffects(effects []document.Effect) {
	for _, e := range document.EnabledEffects(effects, document.PhasePre) {
		if e.Kind == document.EffectDropShadow {
			r.s.SetShadow(Shadow{Color: e.Color, Blur: e.Radius, OffsetX: e.OffsetX, OffsetY: e.OffsetY})
		}
	}
}

func (r *renderer) applyOutlines(l document.Layer, post []document.Effect) {
	var box geom.Rect
	var p Path
	for _, e := range post {
		if e.Kind != document.EffectOutline || e.Width <= 0 {
			continue
		}
		if p == nil {
			box = l.Base().Transform.Box()
			p = LayerPath(l)
		}
		r.s.Save()
		r.s.SetShadow(Shadow{})
		r.strokePath(p, document.StrokeSpec{
			Paint: document.SolidPaint(e.Color),
			Width: e.Width,
			Align: document.StrokeOutside,
			Join:  document.JoinRound,
		}, box, layerFillRule(l), true)
		r.s.Restore()
	}
}

func layerFillRule(l document.Layer) document.FillRule {
	if p, ok := l.(*document.PathLayer); ok {
		return fillRule(p.Geometry.FillRule)
	}
	return document.FillNonZero
}

// refPath returns ref's outline in the coordinate space of l, which is
// the current surface space once l's own rotation is applied.
func (r *renderer) refPath(l, ref document.Layer, p Path) Path {
	rel := document.WorldMatrix(r.doc, l.Base().ID).Invert().
		Multiply(document.WorldMatrix(r.doc, ref.Base().ID))
	return p.Transform(rel)
}

func (r *renderer) reference(l document.Layer, id string) (document.Layer, bool) {
	ref, ok := r.doc.LayersByID[id]
	if !ok || id == l.Base().ID {
		r.debug("clip or mask reference skipped", "layer", l.Base().ID, "ref", id)
		return nil, false
	}
	return ref, true
}

func (r *renderer) applyClip(l document.Layer) {
	c := l.Base().Clip
	if c == nil || c.ClipLayerID == "" {
		return
	}
	ref, ok := r.reference(l, c.ClipLayerID)
	if !ok {
		return
	}
	var p Path
	if c.ClipMode == document.ClipStroke {
		p = strokeOutlinePath(ref)
	} else {
		p = LayerPath(ref)
	}
	r.refPath(l, ref, p).Trace(r.s)
	r.s.Clip(layerFillRule(ref))
}

// applyMask clips to the mask layer's geometry. Inverted masks clip to
// the complement within a generous bound around both shapes.
func (r *renderer) applyMask(l document.Layer) {
	m := l.Base().Mask
	if m == nil || m.MaskLayerID == "" {
		return
	}
	ref, ok := r.reference(l, m.MaskLayerID)
	if !ok {
		return
	}
	p := r.refPath(l, ref, LayerPath(ref))
	if !m.Invert {
		p.Trace(r.s)
		r.s.Clip(layerFillRule(ref))
		return
	}
	bounds := l.Base().Transform.Box().Union(p.Bounds())
	pad := max(bounds.Width, bounds.Height) + 1
	RectPath(bounds.Inset(-pad)).Trace(r.s)
	p.Append(r.s)
	r.s.Clip(document.FillEvenOdd)
}

// strokeOutlinePath approximates the area covered by ref's strokes by
// growing its box by half the widest stroke.
func strokeOutlinePath(ref document.Layer) Path {
	var strokes []document.StrokeSpec
	switch v := ref.(type) {
	case *document.ShapeLayer:
		strokes = v.Strokes
	case *document.FrameLayer:
		strokes = v.Strokes
	case *document.PathLayer:
		strokes = v.Strokes
	case *document.ImageLayer:
		strokes = v.Strokes
	}
	w := 0.0
	for _, st := range strokes {
		switch st.Align {
		case document.StrokeOutside:
			w = max(w, st.Width*2)
		case document.StrokeInside:
		default:
			w = max(w, st.Width)
		}
	}
	box := ref.Base().Transform.Box().Inset(-w / 2)
	if s, ok := ref.(*document.ShapeLayer); ok {
		grown := *s
		grown.Transform.Position = geom.Vec2{X: box.X, Y: box.Y}
		grown.Transform.Size = geom.Size{Width: box.Width, Height: box.Height}
		return ShapePath(&grown)
	}
	return RectPath(box)
}
