package engine

import (
	"math"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

var (
	bleedColor     = document.HexToRGBA("#ff3b30", 0.9)
	safeAreaColor  = document.HexToRGBA("#007aff", 0.9)
	guideColor     = document.HexToRGBA("#00c2ff", 0.8)
	selectionColor = document.HexToRGBA("#0d99ff", 1)
)

const (
	handleSize     = 8
	rotateGripGap  = 24
	rotateGripSize = 5
)

// MmToPx converts millimetres to pixels at dpi.
func MmToPx(mm, dpi float64) float64 {
	return mm / 25.4 * dpi
}

func (r *renderer) drawOverlays() {
	o := r.opts
	if !o.ShowBleedSafe && !o.ShowGuides && !o.ShowSelection {
		return
	}
	s := r.s
	s.Save()
	defer s.Restore()
	s.SetGlobalAlpha(1)
	s.SetBlendMode(document.BlendNormal)
	s.SetShadow(Shadow{})
	s.SetFilter(nil)

	// Overlay strokes keep a constant on-screen width.
	unit := 1.0
	if o.ScaleFactor > 0 {
		unit = 1 / o.ScaleFactor
	}

	if o.ShowBleedSafe {
		r.drawBleedSafe(unit)
	}
	if o.ShowGuides {
		r.drawGuides(unit)
	}
	if o.ShowSelection {
		for _, id := range r.doc.Selection.IDs {
			r.drawSelection(id, unit)
		}
	}
}

func (r *renderer) drawBleedSafe(unit float64) {
	root := r.doc.Root()
	dpi := r.doc.Meta.DPI
	if dpi <= 0 {
		dpi = 300
	}
	box := root.Transform.Box()
	w := document.WorldMatrix(r.doc, root.ID)
	dash := []float64{6 * unit, 4 * unit}
	if root.BleedMm > 0 {
		r.strokeOverlay(RectPath(box.Inset(-MmToPx(root.BleedMm, dpi))).Transform(w), bleedColor, unit, dash)
	}
	if root.SafeAreaMm > 0 {
		r.strokeOverlay(RectPath(box.Inset(MmToPx(root.SafeAreaMm, dpi))).Transform(w), safeAreaColor, unit, dash)
	}
}

func (r *renderer) drawGuides(unit float64) {
	for _, id := range append([]string{r.doc.RootFrameID}, document.GetLayerOrder(r.doc, r.doc.RootFrameID)...) {
		f, ok := r.doc.LayersByID[id].(*document.FrameLayer)
		if !ok || !f.Visible || len(f.Guides) == 0 {
			continue
		}
		box := f.Transform.Box()
		var p Path
		for _, g := range f.Guides {
			if g.Orientation == document.GuideVertical {
				p.MoveTo(box.X+g.Position, box.Y)
				p.LineTo(box.X+g.Position, box.Y+box.Height)
			} else {
				p.MoveTo(box.X, box.Y+g.Position)
				p.LineTo(box.X+box.Width, box.Y+g.Position)
			}
		}
		r.strokeOverlay(p.Transform(document.WorldMatrix(r.doc, id)), guideColor, unit, nil)
	}
}

// drawSelection outlines the layer and draws eight resize handles plus a
// rotation grip above the top edge, all turned with the layer.
func (r *renderer) drawSelection(id string, unit float64) {
	l, ok := r.doc.LayersByID[id]
	if !ok {
		return
	}
	box := l.Base().Transform.Box()
	w := document.WorldMatrix(r.doc, id)
	if box.IsEmpty() {
		box = document.LayerBounds(r.doc, id)
		w = geom.Identity()
		if box.IsEmpty() {
			return
		}
	}
	r.strokeOverlay(RectPath(box).Transform(w), selectionColor, unit, nil)

	cx, cy := box.Center()
	hs := handleSize * unit
	var handles Path
	for _, pt := range []geom.Vec2{
		{X: box.X, Y: box.Y}, {X: cx, Y: box.Y}, {X: box.X + box.Width, Y: box.Y},
		{X: box.X + box.Width, Y: cy}, {X: box.X + box.Width, Y: box.Y + box.Height},
		{X: cx, Y: box.Y + box.Height}, {X: box.X, Y: box.Y + box.Height}, {X: box.X, Y: cy},
	} {
		handles = append(handles, RectPath(geom.Rect{X: pt.X - hs/2, Y: pt.Y - hs/2, Width: hs, Height: hs})...)
	}
	gripY := box.Y - rotateGripGap*unit
	handles.MoveTo(cx+rotateGripSize*unit, gripY)
	handles.Arc(cx, gripY, rotateGripSize*unit, 0, 2*math.Pi, false)
	handles = handles.Transform(w)

	var stem Path
	stem.MoveTo(cx, box.Y)
	stem.LineTo(cx, gripY+rotateGripSize*unit)
	r.strokeOverlay(stem.Transform(w), selectionColor, unit, nil)

	r.s.SetFillStyle(SolidStyle(document.White))
	handles.Trace(r.s)
	r.s.Fill(document.FillNonZero)
	r.strokeOverlay(handles, selectionColor, unit, nil)
}

func (r *renderer) strokeOverlay(p Path, c document.RGBA, width float64, dash []float64) {
	if len(p) == 0 {
		return
	}
	s := r.s
	s.SetStrokeStyle(SolidStyle(c))
	s.SetLineWidth(width)
	s.SetLineDash(dash)
	s.SetLineCap(document.CapButt)
	s.SetLineJoin(document.JoinMiter)
	p.Trace(s)
	s.Stroke()
}
