package engine

import (
	"encoding/json"
	"image"
	"log/slog"

	"github.com/inamate/designer/internal/document"
)

// HistoryLimit bounds the undo stack.
const HistoryLimit = 100

// Engine is an editing session: it owns the current document, its undo
// history and the retained scene graph. It processes commands from the
// frontend and returns query results.
type Engine struct {
	doc  *document.Document
	undo []*document.Document
	redo []*document.Document

	// Retained scene graph
	sceneGraph *SceneGraph
	dirty      bool

	// Decoded images by layer id, re-attached after history moves.
	images map[string]image.Image

	opts   Options
	logger *slog.Logger
}

// NewEngine creates a new engine instance.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		sceneGraph: NewSceneGraph(),
		images:     make(map[string]image.Image),
		opts:       Options{ShowSelection: true, Logger: logger},
		logger:     logger,
	}
}

// --- Commands (frontend → backend) ---

// LoadDocument loads a document from JSON and clears the history.
func (e *Engine) LoadDocument(jsonData string) error {
	doc, err := document.Parse([]byte(jsonData))
	if err != nil {
		return err
	}
	e.reset(doc)
	return nil
}

// LoadSampleDocument loads the built-in sample document.
func (e *Engine) LoadSampleDocument(name string) {
	e.reset(document.NewSampleDocument(name))
}

// CreateDocument starts a fresh document.
func (e *Engine) CreateDocument(opts document.DocumentOptions) {
	e.reset(document.CreateDocument(opts))
}

func (e *Engine) reset(doc *document.Document) {
	e.doc = doc
	e.undo, e.redo = nil, nil
	clear(e.images)
	e.dirty = true
	e.logger.Debug("document loaded", "document", doc.ID, "layers", len(doc.LayersByID))
}

// Apply runs a document mutation. A mutation that returns the same
// document is a no-op and is not recorded; it reports whether anything
// changed.
func (e *Engine) Apply(fn func(*document.Document) *document.Document) bool {
	if e.doc == nil {
		return false
	}
	next := fn(e.doc)
	if next == nil || next == e.doc {
		return false
	}
	e.commit(next)
	return true
}

// ApplyErr is Apply for mutations that can fail.
func (e *Engine) ApplyErr(fn func(*document.Document) (*document.Document, error)) error {
	if e.doc == nil {
		return nil
	}
	next, err := fn(e.doc)
	if err != nil {
		return err
	}
	if next != nil && next != e.doc {
		e.commit(next)
	}
	return nil
}

func (e *Engine) commit(next *document.Document) {
	e.undo = append(e.undo, e.doc)
	if len(e.undo) > HistoryLimit {
		e.undo = e.undo[len(e.undo)-HistoryLimit:]
	}
	e.redo = nil
	e.setDoc(next)
}

func (e *Engine) setDoc(doc *document.Document) {
	for id, img := range e.images {
		if l, ok := doc.LayersByID[id].(*document.ImageLayer); ok && l.Element != img {
			doc = document.AttachImage(doc, id, img)
		}
	}
	e.doc = doc
	e.dirty = true
}

// Undo steps back one change.
func (e *Engine) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	prev := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, e.doc)
	e.setDoc(prev)
	return true
}

// Redo reapplies the last undone change.
func (e *Engine) Redo() bool {
	if len(e.redo) == 0 {
		return false
	}
	next := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.undo = append(e.undo, e.doc)
	e.setDoc(next)
	return true
}

func (e *Engine) CanUndo() bool { return len(e.undo) > 0 }
func (e *Engine) CanRedo() bool { return len(e.redo) > 0 }

// SetSelection sets the selected layer ids. Selection changes are not
// recorded in the history.
func (e *Engine) SetSelection(ids []string) {
	if e.doc == nil {
		return
	}
	primary := ""
	if len(ids) > 0 {
		primary = ids[0]
	}
	e.doc = document.SetSelection(e.doc, ids, primary)
}

// AttachImage stores a decoded image for an image layer. Attachments are
// runtime state and survive undo and redo.
func (e *Engine) AttachImage(layerID string, img image.Image) {
	if e.doc == nil {
		return
	}
	if _, ok := e.doc.LayersByID[layerID].(*document.ImageLayer); !ok {
		return
	}
	e.images[layerID] = img
	e.setDoc(e.doc)
}

// SetOverlays toggles the editor overlays drawn by Render.
func (e *Engine) SetOverlays(selection, guides, bleedSafe bool) {
	e.opts.ShowSelection = selection
	e.opts.ShowGuides = guides
	e.opts.ShowBleedSafe = bleedSafe
}

// SetScale sets the render scale factor.
func (e *Engine) SetScale(scale float64) {
	e.opts.ScaleFactor = scale
}

// --- Queries (frontend ← backend) ---

// Document returns the current document.
func (e *Engine) Document() *document.Document {
	return e.doc
}

func (e *Engine) scene() *SceneGraph {
	if e.dirty && e.doc != nil {
		e.sceneGraph = BuildSceneGraph(e.doc)
		e.dirty = false
	}
	return e.sceneGraph
}

// Commands renders the current document to draw commands.
func (e *Engine) Commands() []DrawCommand {
	if e.doc == nil {
		return nil
	}
	return CompileDrawCommands(e.doc, e.opts)
}

// Render renders the document and returns draw commands as JSON.
func (e *Engine) Render() string {
	result, err := DrawCommandsToJSON(e.Commands())
	if err != nil {
		e.logger.Error("failed to encode draw commands", "error", err)
	}
	return result
}

// HitTest performs a hit test at the given document coordinates.
// Returns the layer ID of the topmost hit, or empty string.
func (e *Engine) HitTest(x, y float64) string {
	return HitTest(e.scene(), x, y)
}

// GetSelectionBounds returns the bounding box of the current selection as JSON.
func (e *Engine) GetSelectionBounds() string {
	if e.doc == nil {
		return RectToJSON(GetSelectionBounds(nil, nil))
	}
	return RectToJSON(GetSelectionBounds(e.scene(), e.doc.Selection.IDs))
}

// GetDocument returns the full document as JSON.
func (e *Engine) GetDocument() string {
	if e.doc == nil {
		return "{}"
	}
	data, err := json.Marshal(e.doc)
	if err != nil {
		e.logger.Error("failed to encode document", "error", err)
		return "{}"
	}
	return string(data)
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	if e.doc == nil {
		return "[]"
	}
	data, _ := json.Marshal(e.doc.Selection.IDs)
	return string(data)
}
