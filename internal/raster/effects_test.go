package raster

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inamate/designer/internal/document"
)

var white = document.White

func isolatedSquare(effects ...document.Effect) *Canvas {
	c := NewCanvas(40, 40)
	c.BeginIsolation()
	fillRect(c, 10, 10, 20, 20, white)
	c.EndIsolation(effects, document.BlendNormal)
	return c
}

func TestInnerShadowStaysInside(t *testing.T) {
	img := isolatedSquare(document.InnerShadow(document.Black, 4, 4, 0)).Image()

	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(11, 11))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(20, 20))
	assert.Zero(t, img.RGBAAt(8, 8).A)
	assert.Zero(t, img.RGBAAt(32, 32).A)
}

func TestOuterGlowSurroundsContent(t *testing.T) {
	img := isolatedSquare(document.Glow(document.GlowOuter, red, 3)).Image()

	halo := img.RGBAAt(8, 20)
	assert.Greater(t, halo.A, uint8(0))
	assert.Greater(t, halo.R, halo.G)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(20, 20))
}

func TestMotionBlurFollowsAngle(t *testing.T) {
	c := NewCanvas(40, 40)
	c.BeginIsolation()
	fillRect(c, 20, 20, 1, 1, white)
	c.EndIsolation([]document.Effect{document.MotionBlur(3, 0)}, document.BlendNormal)

	img := c.Image()
	assert.Greater(t, img.RGBAAt(22, 20).A, uint8(0))
	assert.Greater(t, img.RGBAAt(18, 20).A, uint8(0))
	assert.Zero(t, img.RGBAAt(20, 23).A)
	assert.Less(t, img.RGBAAt(20, 20).A, uint8(255))
}

func TestMonochromeNoiseKeepsCoverage(t *testing.T) {
	img := isolatedSquare(document.Noise(60, true)).Image()

	changed := false
	for y := 10; y < 30; y++ {
		for x := 10; x < 30; x++ {
			px := img.RGBAAt(x, y)
			assert.Equal(t, uint8(255), px.A)
			assert.Equal(t, px.R, px.G)
			assert.Equal(t, px.G, px.B)
			changed = changed || px.R != 255
		}
	}
	assert.True(t, changed, "noise left the content untouched")
	assert.Zero(t, img.RGBAAt(5, 5).A)
}

func TestRadialGradientGrowsFromCenter(t *testing.T) {
	blue := document.RGBA{B: 255, A: 1}
	doc := document.CreateDocument(document.DocumentOptions{Width: 100, Height: 100})
	shape := document.NewShapeLayer(document.ShapeOptions{
		LayerOptions: document.LayerOptions{Width: 100, Height: 100},
		Fills: []document.Paint{document.RadialGradientPaint(
			document.GradientStop{Offset: 0, Color: red},
			document.GradientStop{Offset: 1, Color: blue},
		)},
	})
	img := render(t, document.AddLayer(doc, shape, ""))

	assertPixel(t, img, 50, 50, red, 8)
	assertPixel(t, img, 0, 0, blue, 0)
	assertPixel(t, img, 99, 99, blue, 0)
	assertPixel(t, img, 75, 50, red.Lerp(blue, 0.5), 8)
}

func TestBooleanGroupDrawsChildren(t *testing.T) {
	blue := document.RGBA{B: 255, A: 1}
	doc := document.CreateDocument(document.DocumentOptions{Width: 100, Height: 100})
	group := document.NewBooleanGroupLayer(document.BooleanGroupOptions{
		LayerOptions: document.LayerOptions{Width: 100, Height: 100},
	})
	doc = document.AddLayer(doc, group, "")
	left := document.NewShapeLayer(document.ShapeOptions{
		LayerOptions: document.LayerOptions{X: 0, Y: 0, Width: 40, Height: 40},
		Fills:        []document.Paint{document.SolidPaint(red)},
	})
	right := document.NewShapeLayer(document.ShapeOptions{
		LayerOptions: document.LayerOptions{X: 60, Y: 60, Width: 40, Height: 40},
		Fills:        []document.Paint{document.SolidPaint(blue)},
	})
	doc = document.AddLayer(doc, left, group.ID)
	doc = document.AddLayer(doc, right, group.ID)

	img := render(t, doc)
	assertPixel(t, img, 20, 20, red, 0)
	assertPixel(t, img, 80, 80, blue, 0)
	assertPixel(t, img, 50, 50, white, 0)
}
