package export

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/designer/internal/auth"
	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/project"
	"github.com/inamate/designer/internal/raster"
)

type countingCache struct {
	data       map[string][]byte
	gets, sets int
}

func (c *countingCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.gets++
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *countingCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.sets++
	c.data[key] = data
	return nil
}

func (c *countingCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *countingCache) Close() error { return nil }

type fakeSource struct {
	doc     *document.Document
	members map[string]bool
}

func (f *fakeSource) CheckMember(_ context.Context, _, userID string) error {
	if !f.members[userID] {
		return project.ErrNotMember
	}
	return nil
}

func (f *fakeSource) LatestDocument(context.Context, string) (*document.Document, error) {
	return f.doc, nil
}

func decodeSize(t *testing.T, data []byte) image.Point {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Size()
}

func TestRenderScales(t *testing.T) {
	svc := NewService(nil, nil, 0)
	doc := document.NewSampleDocument("Card")

	data, err := svc.Render(context.Background(), doc, Options{Format: raster.FormatJPEG, Scale: 0.2, Quality: 70})
	require.NoError(t, err)
	assert.Equal(t, image.Pt(210, 120), decodeSize(t, data))

	_, err = svc.Render(context.Background(), doc, Options{Scale: 9})
	assert.ErrorIs(t, err, ErrInvalidScale)
}

func TestThumbnailIsCached(t *testing.T) {
	c := &countingCache{data: map[string][]byte{}}
	svc := NewService(nil, c, 64)
	doc := document.NewSampleDocument("Card")

	first, err := svc.Thumbnail(context.Background(), doc)
	require.NoError(t, err)
	second, err := svc.Thumbnail(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.sets)
	assert.Equal(t, 2, c.gets)
	assert.Equal(t, 64, decodeSize(t, first).X)

	_, err = svc.Thumbnail(context.Background(), document.Rename(doc, "Other"))
	require.NoError(t, err)
	assert.Equal(t, 2, c.sets)
}

func TestExportHandler(t *testing.T) {
	h := NewHandler(NewService(nil, nil, 0), nil, nil)
	docJSON, err := json.Marshal(document.NewSampleDocument("My Card!"))
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]any{"document": json.RawMessage(docJSON), "format": "png", "scale": 0.1})
	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest("POST", "/export", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="My-Card-.png"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, image.Pt(105, 60), decodeSize(t, rec.Body.Bytes()))

	for _, bad := range []string{`{}`, `{"document":{},"format":"gif"}`, `{"document":{"rootFrameId":"x"}}`} {
		rec := httptest.NewRecorder()
		h.Export(rec, httptest.NewRequest("POST", "/export", bytes.NewReader([]byte(bad))))
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestExportProjectRequiresMembership(t *testing.T) {
	src := &fakeSource{doc: document.NewSampleDocument("Card"), members: map[string]bool{"user_a": true}}
	h := NewHandler(NewService(nil, nil, 32), src, nil)

	r := mux.NewRouter()
	r.HandleFunc("/projects/{projectId}/export", h.ExportProject)
	r.HandleFunc("/projects/{projectId}/thumbnail", h.Thumbnail)

	request := func(path, userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, userID))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusForbidden, request("/projects/p1/export", "user_b").Code)
	assert.Equal(t, http.StatusBadRequest, request("/projects/p1/export?quality=0", "user_a").Code)

	rec := request("/projects/p1/export?format=jpg&scale=0.1", "user_a")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))

	rec = request("/projects/p1/thumbnail", "user_a")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 32, decodeSize(t, rec.Body.Bytes()).X)
}
