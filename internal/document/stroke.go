package document

type StrokeAlign string

const (
	StrokeCenter  StrokeAlign = "center"
	StrokeInside  StrokeAlign = "inside"
	StrokeOutside StrokeAlign = "outside"
)

type LineCap string

const (
	CapButt   LineCap = "butt"
	CapRound  LineCap = "round"
	CapSquare LineCap = "square"
)

type LineJoin string

const (
	JoinMiter LineJoin = "miter"
	JoinRound LineJoin = "round"
	JoinBevel LineJoin = "bevel"
)

type StrokeSpec struct {
	Paint      Paint       `json:"paint"`
	Width      float64     `json:"width"`
	Align      StrokeAlign `json:"align"`
	Dash       []float64   `json:"dash"`
	Cap        LineCap     `json:"cap"`
	Join       LineJoin    `json:"join"`
	MiterLimit float64     `json:"miterLimit"`
}

// SolidStroke returns a centered solid stroke with default cap and join.
func SolidStroke(c RGBA, width float64) StrokeSpec {
	return StrokeSpec{
		Paint:      SolidPaint(c),
		Width:      width,
		Align:      StrokeCenter,
		Dash:       []float64{},
		Cap:        CapButt,
		Join:       JoinMiter,
		MiterLimit: 10,
	}
}

func (s StrokeSpec) clone() StrokeSpec {
	s.Paint = s.Paint.clone()
	if s.Dash != nil {
		s.Dash = append([]float64(nil), s.Dash...)
	}
	return s
}

func cloneStrokes(ss []StrokeSpec) []StrokeSpec {
	if ss == nil {
		return nil
	}
	out := make([]StrokeSpec, len(ss))
	for i, s := range ss {
		out[i] = s.clone()
	}
	return out
}
