package document

import (
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion tags documents produced by this package.
const SchemaVersion = "2.0"

type Selection struct {
	IDs       []string `json:"ids"`
	PrimaryID *string  `json:"primaryId"`
}

type ResourceKind string

const (
	ResourceImage ResourceKind = "image"
	ResourceFont  ResourceKind = "font"
)

// Resource is an external asset referenced from layers by id or URL.
type Resource struct {
	ID   string       `json:"id"`
	Kind ResourceKind `json:"kind"`
	URL  string       `json:"url"`
	Name string       `json:"name,omitempty"`
	// Family is the font family a font resource registers.
	Family string `json:"family,omitempty"`
}

type Meta struct {
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	DPI        float64         `json:"dpi"`
	Units      string          `json:"units"`
	ToolConfig json.RawMessage `json:"toolConfig,omitempty"`
}

// Document is a scene graph: one root frame plus a flat id-indexed map of
// every layer. Children lists hold ids only.
//
// Documents are values. The mutation functions in this package never
// modify their input; they return a new *Document sharing unchanged
// layers with the old one.
type Document struct {
	ID          string           `json:"id"`
	Version     string           `json:"version"`
	Name        string           `json:"name"`
	ToolID      string           `json:"toolId"`
	RootFrameID string           `json:"rootFrameId"`
	LayersByID  map[string]Layer `json:"layersById"`
	Selection   Selection        `json:"selection"`
	Resources   []Resource       `json:"resources"`
	Meta        Meta             `json:"meta"`
}

// Root returns the root frame, or nil if the document is malformed.
func (d *Document) Root() *FrameLayer {
	if d == nil {
		return nil
	}
	f, _ := d.LayersByID[d.RootFrameID].(*FrameLayer)
	return f
}

// Resource looks up a resource by id.
func (d *Document) Resource(id string) (Resource, bool) {
	for _, r := range d.Resources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}

func (d *Document) UnmarshalJSON(data []byte) error {
	type alias Document
	var raw struct {
		alias
		LayersByID map[string]json.RawMessage `json:"layersById"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = Document(raw.alias)
	d.LayersByID = make(map[string]Layer, len(raw.LayersByID))
	for id, msg := range raw.LayersByID {
		l, err := DecodeLayer(msg)
		if err != nil {
			return fmt.Errorf("layer %s: %w", id, err)
		}
		d.LayersByID[id] = l
	}
	return nil
}

// DecodeLayer decodes a single layer, dispatching on its type field.
func DecodeLayer(data []byte) (Layer, error) {
	var head struct {
		Type LayerType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	l := newLayerOfType(head.Type)
	if l == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayerType, head.Type)
	}
	if err := json.Unmarshal(data, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Parse decodes a document from JSON.
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &d, nil
}
