// Package export renders documents to PNG or JPEG and caches thumbnails.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inamate/designer/internal/cache"
	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/engine"
	"github.com/inamate/designer/internal/raster"
)

const (
	MaxScale      = 8
	maxPixels     = 64 << 20
	thumbnailTTL  = 7 * 24 * time.Hour
	thumbnailType = raster.FormatPNG
)

var (
	ErrInvalidScale = errors.New("scale must be between 0 and 8")
	ErrTooLarge     = errors.New("export exceeds the pixel limit")
)

// ImageResolver attaches images and registers fonts before rendering.
type ImageResolver interface {
	Resolve(ctx context.Context, doc *document.Document) (*document.Document, error)
}

// Options controls a single export.
type Options struct {
	Format  raster.Format
	Scale   float64
	Quality int
	// BleedSafe draws the bleed and safe-area guides, for proofs.
	BleedSafe bool
}

// Service renders documents. Image resolution failures are logged and
// rendered as placeholders.
type Service struct {
	resolver  ImageResolver
	cache     cache.Cache
	thumbSize int
}

func NewService(resolver ImageResolver, c cache.Cache, thumbSize int) *Service {
	if c == nil {
		c = cache.NewNullCache()
	}
	if thumbSize <= 0 {
		thumbSize = 256
	}
	return &Service{resolver: resolver, cache: c, thumbSize: thumbSize}
}

func (s *Service) resolve(ctx context.Context, doc *document.Document) *document.Document {
	if s.resolver == nil {
		return doc
	}
	resolved, err := s.resolver.Resolve(ctx, doc)
	if err != nil {
		slog.Warn("resolve resources", "error", err, "document", doc.ID)
	}
	return resolved
}

// Render rasterizes doc and returns the encoded image.
func (s *Service) Render(ctx context.Context, doc *document.Document, opts Options) ([]byte, error) {
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	if opts.Scale < 0 || opts.Scale > MaxScale {
		return nil, ErrInvalidScale
	}
	root := doc.Root()
	if root == nil {
		return nil, raster.ErrNoRoot
	}
	size := root.Transform.Size
	if size.Width*opts.Scale*size.Height*opts.Scale > maxPixels {
		return nil, ErrTooLarge
	}

	start := time.Now()
	img, err := raster.RenderOffscreen(s.resolve(ctx, doc), opts.Scale, engine.Options{ShowBleedSafe: opts.BleedSafe})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := raster.Encode(&buf, img, opts.Format, opts.Quality); err != nil {
		return nil, fmt.Errorf("encode %s: %w", opts.Format, err)
	}
	slog.Info("export rendered",
		"document", doc.ID,
		"format", opts.Format,
		"scale", opts.Scale,
		"bytes", buf.Len(),
		"duration", time.Since(start))
	return buf.Bytes(), nil
}

// Thumbnail returns a PNG thumbnail, served from the cache when the
// document content is unchanged.
func (s *Service) Thumbnail(ctx context.Context, doc *document.Document) ([]byte, error) {
	content, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	key := cache.Key("thumb", cache.Hash(content), s.thumbSize)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("thumbnail cache get", "error", err)
	} else if ok {
		return data, nil
	}

	img, err := raster.Thumbnail(s.resolve(ctx, doc), s.thumbSize)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := raster.Encode(&buf, img, thumbnailType, 0); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	if err := s.cache.Set(ctx, key, buf.Bytes(), thumbnailTTL); err != nil {
		slog.Warn("thumbnail cache set", "error", err)
	}
	return buf.Bytes(), nil
}
