package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/engine"
	"github.com/inamate/designer/internal/raster"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.NRGBA{0, 128, 255, 255}), imaging.PNG))
	return buf.Bytes()
}

func TestSaveSniffsImages(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Save(bytes.NewReader(pngBytes(t, 7, 3)), "logo.jpg")
	require.NoError(t, err)
	assert.Equal(t, document.ResourceImage, a.Kind)
	assert.Equal(t, "png", a.Type)
	assert.Equal(t, 7, a.Width)
	assert.Equal(t, 3, a.Height)
	assert.Equal(t, "/assets/"+a.ID+".png", a.URL)

	data, err := store.Open(a.ID)
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t, 7, 3), data)

	viaURL, err := store.OpenURL(a.URL)
	require.NoError(t, err)
	assert.Equal(t, data, viaURL)

	require.NoError(t, store.Delete(a.ID))
	_, err = store.Open(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAcceptsFonts(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Save(bytes.NewReader(gomono.TTF), "mono.ttf")
	require.NoError(t, err)
	assert.Equal(t, document.ResourceFont, a.Kind)
	assert.Zero(t, a.Width)
}

func TestSaveRejectsUnknownContent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(strings.NewReader("#!/bin/sh\necho hi\n"), "script.png")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestOpenRejectsPaths(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"../etc/passwd", "*", "user_01h455vb4pex5vsknk084sn02q"} {
		_, err := store.Open(id)
		assert.ErrorIs(t, err, ErrNotFound, id)
	}
}

func TestResolverAttachesImages(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	stored, err := store.Save(bytes.NewReader(pngBytes(t, 4, 4)), "a.png")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pic.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(pngBytes(t, 5, 5))
	}))
	defer srv.Close()

	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 6, 6))

	doc := document.CreateDocument(document.DocumentOptions{Width: 100, Height: 100})
	doc = document.AddResource(doc, stored.Resource(""))
	refs := map[string]int{stored.ID: 4, srv.URL + "/pic.png": 5, dataURI: 6}
	ids := map[string]string{}
	for ref := range refs {
		l := document.NewImageLayer(document.ImageOptions{ImageRef: ref})
		ids[ref] = l.ID
		doc = document.AddLayer(doc, l, "")
	}
	broken := document.NewImageLayer(document.ImageOptions{ImageRef: srv.URL + "/missing.png"})
	doc = document.AddLayer(doc, broken, "")

	resolver := NewResolver(store, raster.NewFontRegistry()).AllowPrivateNetworks()
	resolved, err := resolver.Resolve(context.Background(), doc)
	assert.Error(t, err)

	for ref, size := range refs {
		l := resolved.LayersByID[ids[ref]].(*document.ImageLayer)
		require.NotNil(t, l.Element, ref)
		assert.Equal(t, size, l.Element.Bounds().Dx(), ref)
	}
	assert.Nil(t, resolved.LayersByID[broken.ID].(*document.ImageLayer).Element)
	assert.Nil(t, doc.LayersByID[ids[stored.ID]].(*document.ImageLayer).Element, "input document must not change")
}

func TestResolverRefusesPrivateAddresses(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write(pngBytes(t, 5, 5))
	}))
	defer srv.Close()

	doc := document.CreateDocument(document.DocumentOptions{Width: 100, Height: 100})
	l := document.NewImageLayer(document.ImageOptions{ImageRef: srv.URL + "/pic.png"})
	doc = document.AddLayer(doc, l, "")

	resolved, err := NewResolver(nil, raster.NewFontRegistry()).Resolve(context.Background(), doc)
	assert.ErrorIs(t, err, ErrBlockedAddress)
	assert.Nil(t, resolved.LayersByID[l.ID].(*document.ImageLayer).Element)
	assert.Zero(t, hits)

	for addr, blocked := range map[string]bool{
		"127.0.0.1:80":         true,
		"10.1.2.3:443":         true,
		"169.254.169.254:80":   true,
		"[::1]:80":             true,
		"[::ffff:10.0.0.1]:80": true,
		"100.64.0.1:80":        true,
		"0.0.0.0:80":           true,
		"93.184.216.34:443":    false,
	} {
		err := publicOnly("tcp", addr, nil)
		if blocked {
			assert.ErrorIs(t, err, ErrBlockedAddress, addr)
		} else {
			assert.NoError(t, err, addr)
		}
	}
}

func TestResolverRegistersFonts(t *testing.T) {
	fonts := raster.NewFontRegistry()
	fallback := fonts.Lookup(engine.Font{Family: "Brand Sans"})

	doc := document.CreateDocument(document.DocumentOptions{Width: 10, Height: 10})
	doc = document.AddResource(doc, document.Resource{
		ID:     "res_font",
		Kind:   document.ResourceFont,
		URL:    "data:font/ttf;base64," + base64.StdEncoding.EncodeToString(gomono.TTF),
		Family: "Brand Sans",
	})

	_, err := NewResolver(nil, fonts).Resolve(context.Background(), doc)
	require.NoError(t, err)
	assert.NotSame(t, fallback, fonts.Lookup(engine.Font{Family: "Brand Sans"}))
}
