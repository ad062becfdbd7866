package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/designer/internal/auth"
	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/project"
	"github.com/inamate/designer/internal/raster"
)

const maxUploadSize = 32 << 20 // 32MB

// DocumentSource loads stored project documents.
type DocumentSource interface {
	CheckMember(ctx context.Context, projectID, userID string) error
	LatestDocument(ctx context.Context, projectID string) (*document.Document, error)
}

// LiveDocuments returns the in-memory document of a project being edited.
type LiveDocuments interface {
	Document(projectID string) (*document.Document, bool)
}

type Handler struct {
	service  *Service
	projects DocumentSource
	live     LiveDocuments
}

// NewHandler creates an export handler. live may be nil.
func NewHandler(service *Service, projects DocumentSource, live LiveDocuments) *Handler {
	return &Handler{service: service, projects: projects, live: live}
}

type exportRequest struct {
	Document  json.RawMessage `json:"document"`
	Format    string          `json:"format"`
	Scale     float64         `json:"scale"`
	Quality   int             `json:"quality"`
	BleedSafe bool            `json:"bleedSafe"`
	Name      string          `json:"name"`
}

// Export handles POST /export with a document in the body.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Document) == 0 {
		http.Error(w, "document is required", http.StatusBadRequest)
		return
	}
	format, ok := raster.ParseFormat(req.Format)
	if !ok {
		http.Error(w, "invalid format: must be png or jpeg", http.StatusBadRequest)
		return
	}

	doc, err := document.Parse(req.Document)
	if err == nil {
		err = document.Validate(doc)
	}
	if err != nil {
		http.Error(w, "invalid document: "+err.Error(), http.StatusBadRequest)
		return
	}

	name := req.Name
	if name == "" {
		name = doc.Name
	}
	h.render(w, r, doc, name, Options{
		Format:    format,
		Scale:     req.Scale,
		Quality:   req.Quality,
		BleedSafe: req.BleedSafe,
	})
}

// ExportProject handles GET /api/projects/{projectId}/export.
func (h *Handler) ExportProject(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.projectDocument(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	format, ok := raster.ParseFormat(q.Get("format"))
	if !ok {
		http.Error(w, "invalid format: must be png or jpeg", http.StatusBadRequest)
		return
	}
	opts := Options{Format: format, BleedSafe: q.Get("bleedSafe") == "true"}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "invalid scale", http.StatusBadRequest)
			return
		}
		opts.Scale = scale
	}
	if v := q.Get("quality"); v != "" {
		quality, err := strconv.Atoi(v)
		if err != nil || quality < 1 || quality > 100 {
			http.Error(w, "invalid quality", http.StatusBadRequest)
			return
		}
		opts.Quality = quality
	}

	h.render(w, r, doc, doc.Name, opts)
}

// Thumbnail handles GET /api/projects/{projectId}/thumbnail.
func (h *Handler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.projectDocument(w, r)
	if !ok {
		return
	}
	data, err := h.service.Thumbnail(r.Context(), doc)
	if err != nil {
		slog.Error("render thumbnail", "error", err, "document", doc.ID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", thumbnailType.ContentType())
	w.Header().Set("Cache-Control", "private, max-age=60")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (h *Handler) projectDocument(w http.ResponseWriter, r *http.Request) (*document.Document, bool) {
	userID := auth.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["projectId"]

	if err := h.projects.CheckMember(r.Context(), projectID, userID); err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	if h.live != nil {
		if doc, ok := h.live.Document(projectID); ok {
			return doc, true
		}
	}
	doc, err := h.projects.LatestDocument(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return doc, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, doc *document.Document, name string, opts Options) {
	data, err := h.service.Render(r.Context(), doc, opts)
	switch {
	case errors.Is(err, ErrInvalidScale), errors.Is(err, ErrTooLarge), errors.Is(err, raster.ErrNoRoot):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		slog.Error("export failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	ext := "png"
	if opts.Format == raster.FormatJPEG {
		ext = "jpg"
	}
	w.Header().Set("Content-Type", opts.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, sanitizeName(name), ext))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, project.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, project.ErrNotMember):
		http.Error(w, "not a project member", http.StatusForbidden)
	default:
		slog.Error("load document", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// sanitizeName keeps filenames to ASCII letters, digits, dashes and
// underscores.
func sanitizeName(name string) string {
	if name == "" {
		return "design"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
