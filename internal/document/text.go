package document

type TextAlign string

const (
	AlignLeft    TextAlign = "left"
	AlignCenter  TextAlign = "center"
	AlignRight   TextAlign = "right"
	AlignJustify TextAlign = "justify"
)

type TextOverflow string

const (
	OverflowClip     TextOverflow = "clip"
	OverflowEllipsis TextOverflow = "ellipsis"
	OverflowExpand   TextOverflow = "expand"
)

type VerticalAlign string

const (
	VAlignTop    VerticalAlign = "top"
	VAlignMiddle VerticalAlign = "middle"
	VAlignBottom VerticalAlign = "bottom"
)

// TextStyle is a fully specified character style. LineHeight is a
// multiple of FontSize.
type TextStyle struct {
	FontFamily    string      `json:"fontFamily"`
	FontSize      float64     `json:"fontSize"`
	FontWeight    int         `json:"fontWeight"`
	Italic        bool        `json:"italic"`
	Underline     bool        `json:"underline"`
	Strikethrough bool        `json:"strikethrough"`
	LetterSpacing float64     `json:"letterSpacing"`
	LineHeight    float64     `json:"lineHeight"`
	Fill          Paint       `json:"fill"`
	Stroke        *StrokeSpec `json:"stroke,omitempty"`
	Uppercase     bool        `json:"uppercase"`
}

// TextStylePatch is a partial TextStyle; nil fields inherit.
type TextStylePatch struct {
	FontFamily    *string     `json:"fontFamily,omitempty"`
	FontSize      *float64    `json:"fontSize,omitempty"`
	FontWeight    *int        `json:"fontWeight,omitempty"`
	Italic        *bool       `json:"italic,omitempty"`
	Underline     *bool       `json:"underline,omitempty"`
	Strikethrough *bool       `json:"strikethrough,omitempty"`
	LetterSpacing *float64    `json:"letterSpacing,omitempty"`
	Fill          *Paint      `json:"fill,omitempty"`
	Stroke        *StrokeSpec `json:"stroke,omitempty"`
	Uppercase     *bool       `json:"uppercase,omitempty"`
}

// TextRun overrides the style of the rune range [Start, End).
type TextRun struct {
	Start int            `json:"start"`
	End   int            `json:"end"`
	Style TextStylePatch `json:"style"`
}

type ParagraphStyle struct {
	Align       TextAlign `json:"align"`
	Indent      float64   `json:"indent"`
	SpaceBefore float64   `json:"spaceBefore"`
	SpaceAfter  float64   `json:"spaceAfter"`
}

// TextPathBinding lays the text along a path layer.
type TextPathBinding struct {
	PathLayerID string  `json:"pathLayerId"`
	StartOffset float64 `json:"startOffset"`
}

// Apply overlays the non-nil fields of p onto s.
func (s TextStyle) Apply(p TextStylePatch) TextStyle {
	if p.FontFamily != nil {
		s.FontFamily = *p.FontFamily
	}
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.FontWeight != nil {
		s.FontWeight = *p.FontWeight
	}
	if p.Italic != nil {
		s.Italic = *p.Italic
	}
	if p.Underline != nil {
		s.Underline = *p.Underline
	}
	if p.Strikethrough != nil {
		s.Strikethrough = *p.Strikethrough
	}
	if p.LetterSpacing != nil {
		s.LetterSpacing = *p.LetterSpacing
	}
	if p.Fill != nil {
		s.Fill = *p.Fill
	}
	if p.Stroke != nil {
		st := *p.Stroke
		s.Stroke = &st
	}
	if p.Uppercase != nil {
		s.Uppercase = *p.Uppercase
	}
	return s
}

// StyleAt resolves the style of rune i: the default style, then every run
// covering i in list order.
func (l *TextLayer) StyleAt(i int) TextStyle {
	s := l.DefaultStyle
	for _, r := range l.Runs {
		if i >= r.Start && i < r.End {
			s = s.Apply(r.Style)
		}
	}
	return s
}

// Align returns the horizontal alignment of the first paragraph.
func (l *TextLayer) Align() TextAlign {
	if len(l.Paragraphs) == 0 || l.Paragraphs[0].Align == "" {
		return AlignLeft
	}
	return l.Paragraphs[0].Align
}

func (s TextStyle) clone() TextStyle {
	s.Fill = s.Fill.clone()
	if s.Stroke != nil {
		st := s.Stroke.clone()
		s.Stroke = &st
	}
	return s
}

func (r TextRun) clone() TextRun {
	p := &r.Style
	p.FontFamily = clonePtr(p.FontFamily)
	p.FontSize = clonePtr(p.FontSize)
	p.FontWeight = clonePtr(p.FontWeight)
	p.Italic = clonePtr(p.Italic)
	p.Underline = clonePtr(p.Underline)
	p.Strikethrough = clonePtr(p.Strikethrough)
	p.LetterSpacing = clonePtr(p.LetterSpacing)
	p.Uppercase = clonePtr(p.Uppercase)
	if p.Fill != nil {
		f := p.Fill.clone()
		p.Fill = &f
	}
	if p.Stroke != nil {
		st := p.Stroke.clone()
		p.Stroke = &st
	}
	return r
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
