package engine

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

func TestFitRects(t *testing.T) {
	img := geom.Size{Width: 100, Height: 50}
	box := geom.Rect{Width: 50, Height: 50}
	center := geom.Vec2{X: 0.5, Y: 0.5}

	tests := []struct {
		name    string
		fit     document.ImageFit
		focal   geom.Vec2
		crop    *geom.Rect
		wantSrc geom.Rect
		wantDst geom.Rect
	}{
		{
			name: "CoverCentered", fit: document.FitCover, focal: center,
			wantSrc: geom.Rect{X: 25, Width: 50, Height: 50}, wantDst: box,
		},
		{
			name: "CoverFocalLeft", fit: document.FitCover, focal: geom.Vec2{X: 0, Y: 0.5},
			wantSrc: geom.Rect{Width: 50, Height: 50}, wantDst: box,
		},
		{
			name: "Contain", fit: document.FitContain, focal: center,
			wantSrc: geom.Rect{Width: 100, Height: 50}, wantDst: geom.Rect{Y: 12.5, Width: 50, Height: 25},
		},
		{
			name: "Stretch", fit: document.FitStretch, focal: center,
			wantSrc: geom.Rect{Width: 100, Height: 50}, wantDst: box,
		},
		{
			name: "CropThenStretch", fit: document.FitFill, focal: center,
			crop:    &geom.Rect{X: 0.5, Width: 0.5, Height: 1},
			wantSrc: geom.Rect{X: 50, Width: 50, Height: 50}, wantDst: box,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := FitRects(img, box, tt.fit, tt.focal, tt.crop)
			assert.Equal(t, tt.wantSrc, src)
			assert.Equal(t, tt.wantDst, dst)
		})
	}
}

func TestFiltersOf(t *testing.T) {
	assert.Empty(t, FiltersOf(document.DefaultImageFilters()))
	assert.Empty(t, FiltersOf(document.ImageFilters{}))

	f := document.DefaultImageFilters()
	f.Brightness = 120
	f.Grayscale = true
	f.Blur = 2
	f.Temperature = 30
	chain := FiltersOf(f)
	require.Len(t, chain, 4)
	assert.Equal(t, "brightness(120%) grayscale(100%) blur(2px)", chain.String())
	assert.Equal(t, "none", FilterChain(nil).String())
}

func TestRenderImageLayer(t *testing.T) {
	doc := newDoc()
	l := document.NewImageLayer(document.ImageOptions{
		LayerOptions: document.LayerOptions{X: 10, Y: 10, Width: 50, Height: 50},
		ImageRef:     "res_photo",
		CornerRadius: 8,
	})
	l.Filters.Saturation = 50
	doc = document.AddLayer(doc, l, "")

	cmds := CompileDrawCommands(doc, Options{})
	assert.Equal(t, -1, find(cmds, OpImage, l.ID), "no element, nothing drawn")

	doc = document.AttachImage(doc, l.ID, image.NewRGBA(image.Rect(0, 0, 100, 50)))
	cmds = CompileDrawCommands(doc, Options{})
	i := find(cmds, OpImage, l.ID)
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "res_photo", cmds[i].ImageRef)
	assert.Equal(t, 100.0, cmds[i].ImageWidth)
	assert.Equal(t, geom.Rect{X: 25, Width: 50, Height: 50}, *cmds[i].Src)
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 50, Height: 50}, *cmds[i].Dst)
	assert.Equal(t, "saturate(50%)", cmds[i].Filter)
	assert.Less(t, find(cmds, OpClip, l.ID), i, "rounded corners clip the image")

	after := find(cmds[i+1:], OpFill, l.ID)
	assert.Equal(t, -1, after, "image layers have no default overlay fill")
}

func TestImagePaintUsesLookup(t *testing.T) {
	doc := newDoc()
	s := document.NewShapeLayer(document.ShapeOptions{
		LayerOptions: document.LayerOptions{Width: 40, Height: 40},
		Fills:        []document.Paint{document.ImagePaint("res_tex", document.FitStretch)},
	})
	doc = document.AddLayer(doc, s, "")

	cmds := CompileDrawCommands(doc, Options{})
	assert.Equal(t, -1, find(cmds, OpImage, s.ID))

	tex := image.NewRGBA(image.Rect(0, 0, 8, 8))
	cmds = CompileDrawCommands(doc, Options{Images: func(ref string) image.Image {
		if ref == "res_tex" {
			return tex
		}
		return nil
	}})
	i := find(cmds, OpImage, s.ID)
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, geom.Rect{Width: 8, Height: 8}, *cmds[i].Src)
}
