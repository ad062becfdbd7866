// Package asset stores uploaded images and fonts and resolves the
// resources a document references.
package asset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/typeid"
)

const maxUploadSize = 10 << 20 // 10MB

var (
	ErrNotFound        = errors.New("asset not found")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large (max 10MB)")
)

// Accepted upload types by extension as reported by filetype.
var accepted = map[string]document.ResourceKind{
	"png":  document.ResourceImage,
	"jpg":  document.ResourceImage,
	"gif":  document.ResourceImage,
	"webp": document.ResourceImage,
	"ttf":  document.ResourceFont,
	"otf":  document.ResourceFont,
	"woff": document.ResourceFont,
}

// Asset describes a stored file.
type Asset struct {
	ID     string                `json:"id"`
	Kind   document.ResourceKind `json:"kind"`
	URL    string                `json:"url"`
	Type   string                `json:"type"`
	MIME   string                `json:"mime"`
	Name   string                `json:"name"`
	Width  int                   `json:"width,omitempty"`
	Height int                   `json:"height,omitempty"`
}

// Resource converts the asset into a document resource entry.
func (a Asset) Resource(family string) document.Resource {
	return document.Resource{ID: a.ID, Kind: a.Kind, URL: a.URL, Name: a.Name, Family: family}
}

// Store keeps assets as flat files named <resource id>.<ext>.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save sniffs the content of r, rejects anything that is not an accepted
// image or font and writes it under a fresh resource id.
func (s *Store) Save(r io.Reader, name string) (Asset, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxUploadSize+1))
	if err != nil {
		return Asset{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxUploadSize {
		return Asset{}, ErrTooLarge
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return Asset{}, ErrUnsupportedType
	}
	rk, ok := accepted[kind.Extension]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrUnsupportedType, kind.MIME.Value)
	}

	a := Asset{
		ID:   typeid.NewResourceID(),
		Kind: rk,
		Type: kind.Extension,
		MIME: kind.MIME.Value,
		Name: name,
	}
	if rk == document.ResourceImage {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return Asset{}, fmt.Errorf("%w: invalid image: %v", ErrUnsupportedType, err)
		}
		a.Width, a.Height = cfg.Width, cfg.Height
	}

	filename := a.ID + "." + kind.Extension
	a.URL = "/assets/" + filename
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return Asset{}, fmt.Errorf("write asset: %w", err)
	}
	return a, nil
}

// path finds the stored file of id. Only well-formed resource ids are
// looked up, so ids cannot escape the directory.
func (s *Store) path(id string) (string, error) {
	if err := typeid.Validate(id, typeid.PrefixResource); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, id+".*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return matches[0], nil
}

// Open returns the bytes of a stored asset by id.
func (s *Store) Open(id string) ([]byte, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// OpenURL reads an asset addressed by its served URL (/assets/<file>).
func (s *Store) OpenURL(u string) ([]byte, error) {
	file, ok := strings.CutPrefix(u, "/assets/")
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	id, _, _ := strings.Cut(file, ".")
	return s.Open(id)
}

// Delete removes an asset file from disk.
func (s *Store) Delete(id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	return os.Remove(p)
}
