package engine

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

func ops(p Path) []PathOp {
	out := make([]PathOp, len(p))
	for i, c := range p {
		out[i] = c.Op
	}
	return out
}

func TestStarAlternatesRadii(t *testing.T) {
	star := document.NewShapeLayer(document.ShapeOptions{
		LayerOptions:     document.LayerOptions{Width: 100, Height: 100},
		ShapeType:        document.ShapeStar,
		Sides:            5,
		InnerRadiusRatio: 0.5,
	})
	pts := ShapePath(star).Points()
	require.Len(t, pts, 10)
	assert.InDelta(t, 50, pts[0].X, 1e-9)
	assert.InDelta(t, 0, pts[0].Y, 1e-9)
	for i, pt := range pts {
		want := 50.0
		if i%2 == 1 {
			want = 25
		}
		assert.InDelta(t, want, math.Hypot(pt.X-50, pt.Y-50), 1e-9, "vertex %d", i)
	}
}

func TestPolygonPoints(t *testing.T) {
	pts := PolygonPoints(geom.Rect{Width: 200, Height: 100}, 6, 0, false)
	require.Len(t, pts, 6)
	for _, pt := range pts {
		assert.InDelta(t, 50, math.Hypot(pt.X-100, pt.Y-50), 1e-9)
	}
	assert.Len(t, PolygonPoints(geom.Rect{Width: 10, Height: 10}, 1, 0, false), 3)
}

func TestRoundedRectPerCornerRadii(t *testing.T) {
	p := RoundedRectPath(geom.Rect{Width: 100, Height: 60}, document.CornerRadii{20, 0, 20, 0})
	assert.Equal(t, []PathOp{OpMove, OpLine, OpLine, OpArc, OpLine, OpLine, OpArc, OpClose}, ops(p))
	assert.Equal(t, []float64{80, 40, 20, 0, math.Pi / 2, 0}, p[3].Args)
	assert.Equal(t, []float64{20, 20, 20, math.Pi, 3 * math.Pi / 2, 0}, p[6].Args)
}

func TestRoundedRectClampsRadii(t *testing.T) {
	p := RoundedRectPath(geom.Rect{Width: 100, Height: 60}, document.UniformRadii(100))
	for _, c := range p {
		if c.Op == OpArc {
			assert.Equal(t, 30.0, c.Args[2])
		}
	}
	assert.Nil(t, RoundedRectPath(geom.Rect{Width: 0, Height: 10}, document.CornerRadii{}))
}

func TestShapePathFallbacks(t *testing.T) {
	l := document.NewShapeLayer(document.ShapeOptions{LayerOptions: document.LayerOptions{Width: 10, Height: 10}})
	l.ShapeType = "blob"
	assert.Equal(t, ops(RectPath(l.Transform.Box())), ops(ShapePath(l)))

	l.ShapeType = document.ShapeLine
	l.Transform.Size = geom.Size{Width: 10}
	assert.Equal(t, []PathOp{OpMove, OpLine}, ops(ShapePath(l)))
}

func TestVectorPathIsOffsetAndClosed(t *testing.T) {
	l := document.NewPathLayer(document.PathOptions{
		LayerOptions: document.LayerOptions{X: 100, Y: 50, Width: 20, Height: 20},
		Commands: []document.PathCommand{
			document.MoveTo(0, 0),
			document.LineTo(20, 0),
			document.ArcTo(10, 10, 10, 0, 180, false),
		},
		Closed: true,
	})
	p := VectorPath(l)
	assert.Equal(t, []PathOp{OpMove, OpLine, OpArc, OpClose}, ops(p))
	assert.Equal(t, []float64{100, 50}, p[0].Args)
	assert.InDelta(t, math.Pi, p[2].Args[4], 1e-12)
}

func TestPathTransformShiftsArcs(t *testing.T) {
	var p Path
	p.MoveTo(10, 0)
	p.Arc(0, 0, 10, 0, math.Pi, false)
	got := p.Transform(geom.RotateDegrees(90))
	x, y := got[0].Args[0], got[0].Args[1]
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 10, y, 1e-9)
	assert.InDelta(t, math.Pi/2, got[1].Args[3], 1e-9)
	assert.InDelta(t, 3*math.Pi/2, got[1].Args[4], 1e-9)
	assert.Equal(t, 10.0, p[0].Args[0], "source path is untouched")
}

func TestPathMarshalsAsCanvasArrays(t *testing.T) {
	var p Path
	p.MoveTo(1, 2)
	p.Close()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `[["M",1,2],["Z"]]`, string(data))
}

func TestIconsDraw(t *testing.T) {
	for id := range DefaultIcons {
		t.Run(id, func(t *testing.T) {
			rec := NewRecorder()
			ok := DefaultIcons.DrawIcon(rec, id, geom.Rect{Width: 48, Height: 48}, document.Black, 2)
			require.True(t, ok)
			assert.Equal(t, 1, count(rec.Commands(), OpStroke, ""))
		})
	}
	assert.False(t, DefaultIcons.DrawIcon(NewRecorder(), "nope", geom.Rect{Width: 1, Height: 1}, document.Black, 2))
}
