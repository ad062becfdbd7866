package raster

import (
	"errors"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/engine"
)

var ErrNoRoot = errors.New("document has no root frame")

// Format is an encoded image format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ParseFormat accepts png, jpg and jpeg.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "png", "":
		return FormatPNG, true
	case "jpg", "jpeg":
		return FormatJPEG, true
	}
	return "", false
}

func (f Format) ContentType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// RenderOffscreen rasterizes doc at scale (0 means 1) into an image the
// size of its root frame. opts.ScaleFactor is overridden.
func RenderOffscreen(doc *document.Document, scale float64, opts engine.Options) (*image.RGBA, error) {
	root := doc.Root()
	if root == nil {
		return nil, ErrNoRoot
	}
	if scale <= 0 {
		scale = 1
	}
	size := root.Transform.Size
	w := max(1, int(math.Ceil(size.Width*scale)))
	h := max(1, int(math.Ceil(size.Height*scale)))

	c := NewCanvas(w, h)
	opts.ScaleFactor = scale
	engine.RenderDocument(c, doc, opts)
	return c.Image(), nil
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// EncodeJPEG flattens img onto white and writes it as JPEG at quality
// (1-100, 0 means 90).
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 {
		quality = 90
	}
	b := img.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1)
	return imaging.Encode(w, flat, imaging.JPEG, imaging.JPEGQuality(min(quality, 100)))
}

// Encode writes img in format.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	if format == FormatJPEG {
		return EncodeJPEG(w, img, quality)
	}
	return EncodePNG(w, img)
}

// Thumbnail renders doc so that its longer side is maxDim pixels. It
// renders at twice the target size and downsamples for smoother edges.
func Thumbnail(doc *document.Document, maxDim int) (image.Image, error) {
	root := doc.Root()
	if root == nil {
		return nil, ErrNoRoot
	}
	if maxDim <= 0 {
		maxDim = 256
	}
	size := root.Transform.Size
	longest := math.Max(size.Width, size.Height)
	if longest <= 0 {
		return nil, ErrNoRoot
	}
	scale := 2 * float64(maxDim) / longest
	img, err := RenderOffscreen(doc, scale, engine.Options{})
	if err != nil {
		return nil, err
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos), nil
}
