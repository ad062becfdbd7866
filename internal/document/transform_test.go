package document

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inamate/designer/internal/geom"
)

func TestAABBQuarterTurn(t *testing.T) {
	tr := NewTransform(10, 20, 100, 50)
	tr.Rotation = 90

	box := tr.AABB()
	assert.InDelta(t, 50, box.Width, 1e-9)
	assert.InDelta(t, 100, box.Height, 1e-9)

	cx, cy := box.Center()
	wx, wy := tr.Box().Center()
	assert.InDelta(t, wx, cx, 1e-9)
	assert.InDelta(t, wy, cy, 1e-9)
}

func TestToMatrixKeepsPivot(t *testing.T) {
	tr := NewTransform(0, 0, 200, 100)
	tr.Pivot = geom.Vec2{X: 0, Y: 1}
	tr.Rotation = 37
	x, y := tr.ToMatrix().TransformPoint(0, 100)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 100, y, 1e-9)
}

func TestAABBDegenerateSize(t *testing.T) {
	tr := NewTransform(5, 5, 0, -10)
	tr.Rotation = 45
	assert.NotPanics(t, func() { tr.AABB() })
}

func TestGradientAngle(t *testing.T) {
	assert.InDelta(t, 0, LinearGradientPaint(0).GradientAngle(), 1e-9)
	assert.InDelta(t, math.Pi/2, LinearGradientPaint(90).GradientAngle(), 1e-9)
	assert.InDelta(t, 0, Paint{Kind: PaintGradient}.GradientAngle(), 1e-9)
}

func TestStyleAtAppliesRunsInOrder(t *testing.T) {
	l := NewTextLayer(TextOptions{Text: "hello world"})
	big, huge := 30.0, 40.0
	bold := 700
	l.Runs = []TextRun{
		{Start: 0, End: 5, Style: TextStylePatch{FontSize: &big}},
		{Start: 3, End: 8, Style: TextStylePatch{FontSize: &huge, FontWeight: &bold}},
	}

	assert.Equal(t, 30.0, l.StyleAt(0).FontSize)
	assert.Equal(t, 400, l.StyleAt(0).FontWeight)
	assert.Equal(t, 40.0, l.StyleAt(4).FontSize)
	assert.Equal(t, 700, l.StyleAt(7).FontWeight)
	assert.Equal(t, 16.0, l.StyleAt(8).FontSize)
}
