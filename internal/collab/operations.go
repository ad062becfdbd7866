package collab

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/inamate/designer/internal/document"
)

var (
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrLayerExists      = errors.New("layer id already in use")
	ErrReadOnly         = errors.New("read-only access: operations are not allowed")
)

// DocumentState holds the authoritative document for a room. Operations
// are applied one at a time; documents are values, so readers get a
// consistent snapshot without copying.
type DocumentState struct {
	mu        sync.RWMutex
	doc       *document.Document
	serverSeq int64
	savedSeq  int64
}

// NewDocumentState creates a new document state from an initial document
func NewDocumentState(doc *document.Document) *DocumentState {
	return &DocumentState{doc: doc}
}

// Document returns the current document. Callers must treat it as
// read-only.
func (ds *DocumentState) Document() *document.Document {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.doc
}

// Snapshot returns the current document with the sequence it reflects.
func (ds *DocumentState) Snapshot() (*document.Document, int64) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.doc, ds.serverSeq
}

func (ds *DocumentState) Seq() int64 {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.serverSeq
}

// Dirty reports whether operations were applied since the last MarkSaved.
func (ds *DocumentState) Dirty() bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.serverSeq != ds.savedSeq
}

// MarkSaved records that the document at seq has been persisted.
func (ds *DocumentState) MarkSaved(seq int64) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if seq > ds.savedSeq {
		ds.savedSeq = seq
	}
}

// ApplyOperation applies op and returns the new server sequence. A
// rejected operation leaves the document and sequence unchanged. For
// layer.duplicate the id of the copy is written to op.ResultID.
func (ds *DocumentState) ApplyOperation(op *Operation) (int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	next, err := ds.apply(op)
	if err != nil {
		return ds.serverSeq, err
	}
	ds.doc = next
	ds.serverSeq++
	return ds.serverSeq, nil
}

func (ds *DocumentState) apply(op *Operation) (*document.Document, error) {
	doc := ds.doc
	switch op.Type {
	case OpLayerAdd:
		return applyAdd(doc, op)
	case OpLayerRemove:
		if op.LayerID == doc.RootFrameID {
			return nil, document.ErrRootLayer
		}
		if err := requireLayer(doc, op.LayerID); err != nil {
			return nil, err
		}
		return document.RemoveLayer(doc, op.LayerID), nil
	case OpLayerPatch:
		if len(op.Patch) == 0 {
			return nil, fmt.Errorf("%w: empty patch", ErrInvalidOperation)
		}
		return document.PatchLayer(doc, op.LayerID, op.Patch)
	case OpLayerReorder:
		return applyReorder(doc, op)
	case OpLayerDuplicate:
		if err := requireLayer(doc, op.LayerID); err != nil {
			return nil, err
		}
		next, id := document.DuplicateLayerWithID(doc, op.LayerID)
		if id == "" {
			return nil, fmt.Errorf("%w: %s cannot be duplicated", ErrInvalidOperation, op.LayerID)
		}
		op.ResultID = id
		return next, nil
	case OpLayerMove:
		index := -1
		if op.Index != nil {
			index = *op.Index
		}
		return document.MoveLayer(doc, op.LayerID, op.ParentID, index)
	case OpSelectionSet:
		return document.SetSelection(doc, op.IDs, op.PrimaryID), nil
	case OpDocumentRename:
		if op.Name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidOperation)
		}
		return document.Rename(doc, op.Name), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
	}
}

func requireLayer(doc *document.Document, id string) error {
	if _, ok := document.GetLayer(doc, id); !ok {
		return fmt.Errorf("%w: %s", document.ErrLayerNotFound, id)
	}
	return nil
}

func applyAdd(doc *document.Document, op *Operation) (*document.Document, error) {
	if len(op.Layer) == 0 {
		return nil, fmt.Errorf("%w: missing layer", ErrInvalidOperation)
	}
	l, err := document.DecodeLayer(op.Layer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	id := l.Base().ID
	if id == "" {
		return nil, fmt.Errorf("%w: layer has no id", ErrInvalidOperation)
	}
	if _, taken := document.GetLayer(doc, id); taken {
		return nil, fmt.Errorf("%w: %s", ErrLayerExists, id)
	}

	parentID := op.ParentID
	if parentID == "" {
		parentID = doc.RootFrameID
	}
	parent, ok := document.GetLayer(doc, parentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", document.ErrLayerNotFound, parentID)
	}
	if _, ok := parent.(document.Container); !ok {
		return nil, fmt.Errorf("%w: %s", document.ErrNotContainer, parentID)
	}

	index := 0
	if op.Index != nil {
		index = *op.Index
	}
	op.LayerID = id
	return document.InsertLayer(doc, l, parentID, index), nil
}

func applyReorder(doc *document.Document, op *Operation) (*document.Document, error) {
	dir := document.ReorderDirection(op.Direction)
	switch dir {
	case document.ReorderUp, document.ReorderDown, document.ReorderTop, document.ReorderBottom:
	default:
		return nil, fmt.Errorf("%w: direction %q", ErrInvalidOperation, op.Direction)
	}
	if err := requireLayer(doc, op.LayerID); err != nil {
		return nil, err
	}
	return document.ReorderLayer(doc, op.LayerID, dir), nil
}

// GetServerTimestamp returns the current server timestamp
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
