package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/designer/internal/document"
)

func textLayer(text string, w, h float64, mutate func(*document.TextLayer)) *document.TextLayer {
	st := document.DefaultTextStyle()
	st.FontSize = 10
	l := document.NewTextLayer(document.TextOptions{
		LayerOptions: document.LayerOptions{Width: w, Height: h},
		Text:         text,
		Style:        &st,
	})
	if mutate != nil {
		mutate(l)
	}
	return l
}

func lineTexts(lines []TextLine) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.Text
	}
	return out
}

func TestLayoutWrapsOnSpaces(t *testing.T) {
	lines := LayoutText(NewRecorder(), textLayer("hello world foo", 70, 100, nil))
	require.Equal(t, []string{"hello world", "foo"}, lineTexts(lines))
	assert.InDelta(t, 66, lines[0].Width, 1e-9)
	assert.InDelta(t, 12, lines[0].Height, 1e-9)
	assert.InDelta(t, 12, lines[1].Y, 1e-9)
	assert.True(t, lines[1].Last)
	assert.False(t, lines[0].Last)
}

func TestLayoutBreaksLongWords(t *testing.T) {
	lines := LayoutText(NewRecorder(), textLayer("abcdefghij", 30, 100, nil))
	assert.Equal(t, []string{"abcde", "fghij"}, lineTexts(lines))
}

func TestLayoutParagraphs(t *testing.T) {
	l := textLayer("one\n\nthree", 0, 100, func(l *document.TextLayer) {
		l.Paragraphs = []document.ParagraphStyle{{Align: document.AlignCenter, SpaceAfter: 5}}
	})
	lines := LayoutText(NewRecorder(), l)
	require.Len(t, lines, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{lines[0].Paragraph, lines[1].Paragraph, lines[2].Paragraph})
	assert.Equal(t, "", lines[1].Text)
	assert.InDelta(t, 12, lines[1].Height, 1e-9, "empty lines keep the default size")
	assert.InDelta(t, 17, lines[1].Y, 1e-9)
	assert.Equal(t, document.AlignCenter, paragraphStyle(l, 2).Align, "paragraph styles fall back to the first")
}

func TestLayoutAppliesRunsAndUppercase(t *testing.T) {
	big := 20.0
	upper := true
	l := textLayer("abc", 0, 100, func(l *document.TextLayer) {
		l.Runs = []document.TextRun{{Start: 1, End: 2, Style: document.TextStylePatch{FontSize: &big, Uppercase: &upper}}}
	})
	lines := LayoutText(NewRecorder(), l)
	require.Len(t, lines, 1)
	assert.Equal(t, "aBc", lines[0].Text)
	assert.InDelta(t, 6+12+6, lines[0].Width, 1e-9)
	assert.InDelta(t, 24, lines[0].Height, 1e-9, "line height follows the largest size")
}

func TestEllipsisTruncates(t *testing.T) {
	rec := NewRecorder()
	lines := LayoutText(rec, textLayer("hello world foo", 70, 15, nil))
	got := truncateWithEllipsis(rec, lines, 70, 15)
	require.Len(t, got, 1)
	assert.Equal(t, "hello worl…", got[0].Text)
	assert.LessOrEqual(t, got[0].Width, 70.0)
}

func TestRenderTextLayer(t *testing.T) {
	doc := newDoc()
	l := textLayer("Hi there", 200, 40, func(l *document.TextLayer) {
		l.DefaultStyle.Underline = true
		l.Overflow = document.OverflowClip
	})
	doc = document.AddLayer(doc, l, "")

	cmds := CompileDrawCommands(doc, Options{})
	var drawn strings.Builder
	for _, c := range cmds {
		if c.Op == OpFillText && c.ObjectID == l.ID {
			drawn.WriteString(c.Text)
			assert.Equal(t, "normal 400 10px Inter", c.Font)
		}
	}
	assert.Equal(t, "Hithere", drawn.String(), "spaces advance without drawing")
	assert.Equal(t, 8, count(cmds, OpFill, l.ID), "one underline per character")
	assert.Equal(t, 1, count(cmds, OpClip, l.ID))
}

func TestTextVerticalAlignAndJustify(t *testing.T) {
	baselineOf := func(valign document.VerticalAlign) float64 {
		doc := newDoc()
		l := textLayer("x", 100, 100, func(l *document.TextLayer) { l.VerticalAlign = valign })
		doc = document.AddLayer(doc, l, "")
		cmds := CompileDrawCommands(doc, Options{})
		i := find(cmds, OpFillText, l.ID)
		require.GreaterOrEqual(t, i, 0)
		return cmds[i].Y
	}
	// 12px line, 10px font: half leading 1 plus ascent 8.
	assert.InDelta(t, 9, baselineOf(document.VAlignTop), 1e-9)
	assert.InDelta(t, 44+9, baselineOf(document.VAlignMiddle), 1e-9)
	assert.InDelta(t, 88+9, baselineOf(document.VAlignBottom), 1e-9)

	doc := newDoc()
	l := textLayer("aa bb cc", 60, 100, func(l *document.TextLayer) {
		l.Paragraphs = []document.ParagraphStyle{{Align: document.AlignJustify}}
		l.Text = "aa bb cc dd"
	})
	doc = document.AddLayer(doc, l, "")
	var xs []float64
	for _, c := range CompileDrawCommands(doc, Options{}) {
		if c.Op == OpFillText && c.ObjectID == l.ID {
			xs = append(xs, c.X)
		}
	}
	// "aa bb cc" is justified across 60px; "dd" is the last line.
	require.Len(t, xs, 8)
	assert.InDelta(t, 54, xs[5], 1e-9)
	assert.InDelta(t, 0, xs[6], 1e-9)
}
