package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tol = 1e-9

func TestMultiplyAppliesRightFirst(t *testing.T) {
	m := Translate(10, 0).Multiply(Scale(2, 2))
	x, y := m.TransformPoint(1, 1)
	assert.InDelta(t, 12, x, tol)
	assert.InDelta(t, 2, y, tol)
}

func TestRotateAboutKeepsPivot(t *testing.T) {
	for _, deg := range []float64{0, 30, 90, 180, 270, -45, 721} {
		m := RotateAbout(deg, 50, 25)
		x, y := m.TransformPoint(50, 25)
		assert.InDelta(t, 50, x, tol, "deg %v", deg)
		assert.InDelta(t, 25, y, tol, "deg %v", deg)
	}
}

func TestRotateAboutMatchesComposition(t *testing.T) {
	want := Translate(30, 40).Multiply(RotateDegrees(35)).Multiply(Translate(-30, -40))
	got := RotateAbout(35, 30, 40)
	for i := range want {
		assert.InDelta(t, want[i], got[i], tol)
	}
}

func TestTransformRectQuarterTurn(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 50}
	got := RotateAbout(90, 50, 25).TransformRect(r)
	assert.InDelta(t, 50, got.Width, tol)
	assert.InDelta(t, 100, got.Height, tol)
	cx, cy := got.Center()
	assert.InDelta(t, 50, cx, tol)
	assert.InDelta(t, 25, cy, tol)
}

func TestInvert(t *testing.T) {
	m := Translate(5, -3).Multiply(RotateDegrees(20)).Multiply(Scale(2, 3))
	id := m.Multiply(m.Invert())
	assert.True(t, id.IsIdentity(), "%v", id)

	assert.Equal(t, Identity(), Scale(0, 1).Invert())
}

func TestRotationAngle(t *testing.T) {
	assert.InDelta(t, math.Pi/2, RotateDegrees(90).RotationAngle(), tol)
	assert.InDelta(t, 0, Identity().RotationAngle(), tol)
	assert.InDelta(t, 2, Scale(2, 2).ScaleFactor(), tol)
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: -5, Width: 10, Height: 10}
	assert.Equal(t, Rect{X: 0, Y: -5, Width: 15, Height: 15}, a.Union(b))
	assert.Equal(t, b, Rect{}.Union(b))
	assert.True(t, a.Contains(10, 10))
	assert.False(t, a.Contains(10.5, 0))
}
