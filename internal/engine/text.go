package engine

import (
	"unicode"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

const ellipsis = '…'

type glyph struct {
	r       rune
	style   document.TextStyle
	font    Font
	width   float64
	advance float64
	ascent  float64
	descent float64
}

// TextLine is one laid-out line of a text layer. Y is the line top
// relative to the first line; Width excludes trailing spaces.
type TextLine struct {
	Text      string
	Paragraph int
	First     bool
	Last      bool
	Width     float64
	Height    float64
	Ascent    float64
	Descent   float64
	Y         float64

	glyphs []glyph
}

// Baseline returns the baseline offset from the line top: the line is
// split into half-leading above and below the font's ascent and descent.
func (ln TextLine) Baseline() float64 {
	return (ln.Height-(ln.Ascent+ln.Descent))/2 + ln.Ascent
}

type glyphKey struct {
	font Font
	r    rune
}

func fontOf(st document.TextStyle) Font {
	w := st.FontWeight
	if w == 0 {
		w = 400
	}
	return Font{Family: st.FontFamily, Size: st.FontSize, Weight: w, Italic: st.Italic}
}

func paragraphStyle(l *document.TextLayer, i int) document.ParagraphStyle {
	var ps document.ParagraphStyle
	if i < len(l.Paragraphs) {
		ps = l.Paragraphs[i]
	}
	if ps.Align == "" {
		ps.Align = l.Align()
	}
	return ps
}

// LayoutText breaks the layer's text into lines using s for measurement.
// Paragraphs split on '\n' and wrap on spaces at the box width; a word
// longer than the line is broken between characters. A non-positive
// width disables wrapping.
func LayoutText(s Surface, l *document.TextLayer) []TextLine {
	s.Save()
	defer s.Restore()

	cache := map[glyphKey]TextMetrics{}
	measure := func(f Font, r rune) TextMetrics {
		k := glyphKey{f, r}
		if m, ok := cache[k]; ok {
			return m
		}
		s.SetFont(f)
		m := s.MeasureText(string(r))
		cache[k] = m
		return m
	}

	var paras [][]glyph
	cur := []glyph{}
	for i, r := range []rune(l.Text) {
		if r == '\n' {
			paras = append(paras, cur)
			cur = []glyph{}
			continue
		}
		st := l.StyleAt(i)
		if st.Uppercase {
			r = unicode.ToUpper(r)
		}
		f := fontOf(st)
		m := measure(f, r)
		cur = append(cur, glyph{
			r: r, style: st, font: f,
			width: m.Width, advance: m.Width + st.LetterSpacing,
			ascent: m.Ascent, descent: m.Descent,
		})
	}
	paras = append(paras, cur)

	maxWidth := l.Transform.Size.Width
	lineHeight := l.DefaultStyle.LineHeight
	if lineHeight <= 0 {
		lineHeight = 1.2
	}
	base := measure(fontOf(l.DefaultStyle), 'M')

	var lines []TextLine
	y := 0.0
	for pi, para := range paras {
		ps := paragraphStyle(l, pi)
		y += ps.SpaceBefore
		start := len(lines)

		emit := func(gs []glyph) {
			ln := newLine(gs, pi, lineHeight, l.DefaultStyle.FontSize, base)
			ln.First = len(lines) == start
			ln.Y = y
			y += ln.Height
			lines = append(lines, ln)
		}

		budget := maxWidth - ps.Indent
		var line []glyph
		width := 0.0
		lastBreak := -1
		for _, g := range para {
			if maxWidth > 0 && width+g.advance > budget && len(line) > 0 && g.r != ' ' {
				if lastBreak > 0 {
					carry := append([]glyph(nil), line[lastBreak:]...)
					emit(line[:lastBreak])
					line = carry
				} else {
					emit(line)
					line = nil
				}
				width = advanceOf(line)
				budget = maxWidth
				lastBreak = -1
			}
			line = append(line, g)
			width += g.advance
			if g.r == ' ' {
				lastBreak = len(line)
			}
		}
		emit(line)
		lines[len(lines)-1].Last = true
		y += ps.SpaceAfter
	}
	return lines
}

func newLine(gs []glyph, para int, lineHeight, defaultSize float64, base TextMetrics) TextLine {
	gs = trimTrailingSpaces(gs)
	ln := TextLine{Paragraph: para, glyphs: gs}
	size := 0.0
	for _, g := range gs {
		size = max(size, g.style.FontSize)
		ln.Ascent = max(ln.Ascent, g.ascent)
		ln.Descent = max(ln.Descent, g.descent)
	}
	if len(gs) == 0 {
		size = defaultSize
		ln.Ascent, ln.Descent = base.Ascent, base.Descent
	}
	ln.Height = lineHeight * size
	ln.Width = advanceOf(gs)
	rs := make([]rune, len(gs))
	for i, g := range gs {
		rs[i] = g.r
	}
	ln.Text = string(rs)
	return ln
}

func trimTrailingSpaces(gs []glyph) []glyph {
	for len(gs) > 0 && gs[len(gs)-1].r == ' ' {
		gs = gs[:len(gs)-1]
	}
	return gs
}

func advanceOf(gs []glyph) float64 {
	w := 0.0
	for _, g := range gs {
		w += g.advance
	}
	return w
}

func textHeight(lines []TextLine) float64 {
	if len(lines) == 0 {
		return 0
	}
	last := lines[len(lines)-1]
	return last.Y + last.Height
}

// truncateWithEllipsis keeps the lines that fit in height (at least one)
// and ends the last kept line with an ellipsis that fits in width.
func truncateWithEllipsis(s Surface, lines []TextLine, width, height float64) []TextLine {
	n := 0
	for n < len(lines) && lines[n].Y+lines[n].Height <= height {
		n++
	}
	n = max(n, 1)
	if n >= len(lines) {
		return lines
	}
	lines = append([]TextLine(nil), lines[:n]...)
	last := &lines[n-1]
	gs := append([]glyph(nil), last.glyphs...)

	var st document.TextStyle
	if len(gs) > 0 {
		st = gs[len(gs)-1].style
	}
	s.Save()
	f := fontOf(st)
	s.SetFont(f)
	m := s.MeasureText(string(ellipsis))
	s.Restore()
	e := glyph{r: ellipsis, style: st, font: f, width: m.Width, advance: m.Width, ascent: m.Ascent, descent: m.Descent}

	for len(gs) > 0 && width > 0 && advanceOf(gs)+e.advance > width {
		gs = trimTrailingSpaces(gs[:len(gs)-1])
	}
	gs = append(gs, e)
	last.glyphs = gs
	last.Width = advanceOf(gs)
	last.Last = true
	rs := make([]rune, len(gs))
	for i, g := range gs {
		rs[i] = g.r
	}
	last.Text = string(rs)
	return lines
}

func (r *renderer) paintText(l *document.TextLayer) {
	s := r.s
	box := l.Transform.Box()
	lines := LayoutText(s, l)

	switch l.Overflow {
	case document.OverflowEllipsis:
		if textHeight(lines) > box.Height {
			lines = truncateWithEllipsis(s, lines, box.Width, box.Height)
		}
	case document.OverflowClip:
		s.Save()
		defer s.Restore()
		RectPath(box).Trace(s)
		s.Clip(document.FillNonZero)
	}

	top := box.Y
	switch free := box.Height - textHeight(lines); l.VerticalAlign {
	case document.VAlignMiddle:
		top += free / 2
	case document.VAlignBottom:
		top += free
	}

	for _, ln := range lines {
		ps := paragraphStyle(l, ln.Paragraph)
		indent := 0.0
		if ln.First {
			indent = ps.Indent
		}
		x := box.X + indent
		free := box.Width - indent - ln.Width
		gap := 0.0
		switch ps.Align {
		case document.AlignCenter:
			x += free / 2
		case document.AlignRight:
			x += free
		case document.AlignJustify:
			if spaces := countSpaces(ln.glyphs); !ln.Last && spaces > 0 && free > 0 {
				gap = free / float64(spaces)
			}
		}
		baseline := top + ln.Y + ln.Baseline()
		for _, g := range ln.glyphs {
			r.drawGlyph(g, x, baseline, box)
			x += g.advance
			if g.r == ' ' {
				x += gap
			}
		}
	}
}

func countSpaces(gs []glyph) int {
	n := 0
	for _, g := range gs {
		if g.r == ' ' {
			n++
		}
	}
	return n
}

func (r *renderer) drawGlyph(g glyph, x, baseline float64, box geom.Rect) {
	s := r.s
	st := g.style
	fill, ok := r.resolveStyle(st.Fill, box)
	if !ok {
		fill = SolidStyle(document.Black)
	}
	s.SetFont(g.font)
	if g.r != ' ' {
		s.SetFillStyle(fill)
		s.FillText(string(g.r), x, baseline)
		if st.Stroke != nil && st.Stroke.Width > 0 {
			if stroke, ok := r.resolveStyle(st.Stroke.Paint, box); ok {
				s.SetStrokeStyle(stroke)
				s.SetLineWidth(st.Stroke.Width)
				s.StrokeText(string(g.r), x, baseline)
			}
		}
	}

	thickness := max(1, st.FontSize/15)
	if st.Underline {
		s.SetFillStyle(fill)
		RectPath(geom.Rect{X: x, Y: baseline + st.FontSize*0.1, Width: g.advance, Height: thickness}).Trace(s)
		s.Fill(document.FillNonZero)
	}
	if st.Strikethrough {
		s.SetFillStyle(fill)
		RectPath(geom.Rect{X: x, Y: baseline - g.ascent*0.35 - thickness/2, Width: g.advance, Height: thickness}).Trace(s)
		s.Fill(document.FillNonZero)
	}
}
