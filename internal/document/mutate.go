package document

import (
	"encoding/json"
	"fmt"
	"image"
	"maps"
	"slices"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/inamate/designer/internal/typeid"
)

// DuplicateOffset is how far a duplicate is shifted right and down.
const DuplicateOffset = 10

type ReorderDirection string

const (
	ReorderUp     ReorderDirection = "up"
	ReorderDown   ReorderDirection = "down"
	ReorderTop    ReorderDirection = "top"
	ReorderBottom ReorderDirection = "bottom"
)

// cow returns a copy of d that owns its layer map, selection and resource
// list. Layers themselves are shared until replaced.
func (d *Document) cow() *Document {
	nd := *d
	nd.LayersByID = maps.Clone(d.LayersByID)
	nd.Selection = Selection{
		IDs:       slices.Clone(d.Selection.IDs),
		PrimaryID: clonePtr(d.Selection.PrimaryID),
	}
	nd.Resources = slices.Clone(d.Resources)
	if ts := now(); ts.After(nd.Meta.UpdatedAt) {
		nd.Meta.UpdatedAt = ts
	}
	return &nd
}

func (d *Document) container(id string) (Container, bool) {
	c, ok := d.LayersByID[id].(Container)
	return c, ok
}

// AddLayer inserts layer as the topmost child of parentID ("" means the
// root frame) and sets its parent link. The document is returned unchanged
// if the parent is missing or cannot hold children, or if the id is
// already taken.
func AddLayer(doc *Document, layer Layer, parentID string) *Document {
	return InsertLayer(doc, layer, parentID, 0)
}

// InsertLayer is AddLayer at a given child index. Out-of-range indexes
// are clamped. A container is always inserted empty; its children are
// added afterwards so every child's parent link agrees with its parent's
// child list.
func InsertLayer(doc *Document, layer Layer, parentID string, index int) *Document {
	if doc == nil || layer == nil {
		return doc
	}
	if parentID == "" {
		parentID = doc.RootFrameID
	}
	parent, ok := doc.container(parentID)
	if !ok {
		return doc
	}
	id := layer.Base().ID
	if _, taken := doc.LayersByID[id]; taken || id == "" {
		return doc
	}

	l := layer.Clone()
	pid := parentID
	l.Base().ParentID = &pid
	if c, ok := l.(Container); ok {
		c.SetChildIDs([]string{})
	}

	np := parent.Clone().(Container)
	np.SetChildIDs(insertAt(np.ChildIDs(), id, index))

	nd := doc.cow()
	nd.LayersByID[parentID] = np
	nd.LayersByID[id] = l
	return nd
}

// RemoveLayer deletes id and its whole subtree, detaches it from its
// parent and drops removed ids from the selection. The root frame cannot
// be removed.
func RemoveLayer(doc *Document, id string) *Document {
	if doc == nil || id == doc.RootFrameID {
		return doc
	}
	l, ok := doc.LayersByID[id]
	if !ok {
		return doc
	}

	nd := doc.cow()
	removed := make(map[string]bool)
	for _, sid := range subtreeIDs(doc, id) {
		removed[sid] = true
		delete(nd.LayersByID, sid)
	}

	if parent, ok := doc.container(l.Base().Parent()); ok {
		np := parent.Clone().(Container)
		np.SetChildIDs(slices.DeleteFunc(np.ChildIDs(), func(c string) bool { return c == id }))
		nd.LayersByID[np.Base().ID] = np
	}

	nd.Selection.IDs = slices.DeleteFunc(nd.Selection.IDs, func(s string) bool { return removed[s] })
	if p := nd.Selection.PrimaryID; p != nil && removed[*p] {
		nd.Selection.PrimaryID = nil
		if len(nd.Selection.IDs) > 0 {
			first := nd.Selection.IDs[0]
			nd.Selection.PrimaryID = &first
		}
	}
	return nd
}

// UpdateLayer applies fn to a copy of the layer and stores the copy. The
// id, type, parent link and child list are preserved whatever fn does;
// structure changes go through the dedicated operations.
func UpdateLayer(doc *Document, id string, fn func(Layer)) *Document {
	if doc == nil || fn == nil {
		return doc
	}
	l, ok := doc.LayersByID[id]
	if !ok {
		return doc
	}
	c := l.Clone()
	fn(c)
	preserveIdentity(c, l)

	nd := doc.cow()
	nd.LayersByID[id] = c
	return nd
}

// UpdateAs is UpdateLayer for a known variant. The document is returned
// unchanged if the layer is not a T.
func UpdateAs[T Layer](doc *Document, id string, fn func(T)) *Document {
	if doc == nil {
		return doc
	}
	if _, ok := doc.LayersByID[id].(T); !ok {
		return doc
	}
	return UpdateLayer(doc, id, func(l Layer) { fn(l.(T)) })
}

// PatchLayer applies a JSON merge patch (RFC 7386) to a layer. Unlike
// the other mutations it reports failures, since patches arrive from
// clients.
func PatchLayer(doc *Document, id string, patch []byte) (*Document, error) {
	if doc == nil {
		return doc, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	l, ok := doc.LayersByID[id]
	if !ok {
		return doc, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	cur, err := json.Marshal(l)
	if err != nil {
		return doc, fmt.Errorf("encode layer %s: %w", id, err)
	}
	merged, err := jsonpatch.MergePatch(cur, patch)
	if err != nil {
		return doc, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	nl := newLayerOfType(l.Base().Type)
	if err := json.Unmarshal(merged, nl); err != nil {
		return doc, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	preserveIdentity(nl, l)
	if img, ok := nl.(*ImageLayer); ok {
		if old := l.(*ImageLayer); old.ImageRef == img.ImageRef {
			img.Element = old.Element
		}
	}

	nd := doc.cow()
	nd.LayersByID[id] = nl
	return nd, nil
}

func preserveIdentity(dst, src Layer) {
	b, ob := dst.Base(), src.Base()
	b.ID = ob.ID
	b.Type = ob.Type
	b.ParentID = clonePtr(ob.ParentID)
	if sc, ok := src.(Container); ok {
		dst.(Container).SetChildIDs(slices.Clone(sc.ChildIDs()))
	}
}

// ReorderLayer moves a layer within its parent's children. Up moves it
// toward index 0, which is the top of the stack.
func ReorderLayer(doc *Document, id string, dir ReorderDirection) *Document {
	if doc == nil {
		return doc
	}
	l, ok := doc.LayersByID[id]
	if !ok {
		return doc
	}
	parent, ok := doc.container(l.Base().Parent())
	if !ok {
		return doc
	}
	children := parent.ChildIDs()
	idx := slices.Index(children, id)
	if idx < 0 {
		return doc
	}

	target := idx
	switch dir {
	case ReorderUp:
		target = idx - 1
	case ReorderDown:
		target = idx + 1
	case ReorderTop:
		target = 0
	case ReorderBottom:
		target = len(children) - 1
	}
	target = max(0, min(target, len(children)-1))
	if target == idx {
		return doc
	}

	np := parent.Clone().(Container)
	next := slices.Delete(np.ChildIDs(), idx, idx+1)
	np.SetChildIDs(slices.Insert(next, target, id))

	nd := doc.cow()
	nd.LayersByID[np.Base().ID] = np
	return nd
}

// DuplicateLayer copies a layer and its subtree under fresh ids, shifts
// the copy by DuplicateOffset and places it directly above the original.
func DuplicateLayer(doc *Document, id string) *Document {
	nd, _ := DuplicateLayerWithID(doc, id)
	return nd
}

// DuplicateLayerWithID is DuplicateLayer that also returns the id of the
// copy, or "" if nothing was duplicated.
func DuplicateLayerWithID(doc *Document, id string) (*Document, string) {
	if doc == nil || id == doc.RootFrameID {
		return doc, ""
	}
	l, ok := doc.LayersByID[id]
	if !ok {
		return doc, ""
	}
	parent, ok := doc.container(l.Base().Parent())
	if !ok {
		return doc, ""
	}

	ids := subtreeIDs(doc, id)
	remap := make(map[string]string, len(ids))
	for _, old := range ids {
		remap[old] = typeid.NewLayerID()
	}

	nd := doc.cow()
	for _, old := range ids {
		c := doc.LayersByID[old].Clone()
		b := c.Base()
		b.ID = remap[old]
		b.Transform.Position.X += DuplicateOffset
		b.Transform.Position.Y += DuplicateOffset
		if old == id {
			b.Name += " copy"
		} else if np, ok := remap[b.Parent()]; ok {
			b.ParentID = &np
		}
		if b.Clip != nil {
			if nid, ok := remap[b.Clip.ClipLayerID]; ok {
				b.Clip.ClipLayerID = nid
			}
		}
		if b.Mask != nil {
			if nid, ok := remap[b.Mask.MaskLayerID]; ok {
				b.Mask.MaskLayerID = nid
			}
		}
		if cc, ok := c.(Container); ok {
			var kids []string
			for _, k := range cc.ChildIDs() {
				if nk, ok := remap[k]; ok {
					kids = append(kids, nk)
				}
			}
			cc.SetChildIDs(nonNil(kids))
		}
		nd.LayersByID[b.ID] = c
	}

	np := parent.Clone().(Container)
	children := np.ChildIDs()
	idx := max(slices.Index(children, id), 0)
	np.SetChildIDs(slices.Insert(children, idx, remap[id]))
	nd.LayersByID[np.Base().ID] = np
	return nd, remap[id]
}

// MoveLayer reparents a layer to newParentID at index (clamped; negative
// appends at the bottom of the stack).
func MoveLayer(doc *Document, id, newParentID string, index int) (*Document, error) {
	if doc == nil {
		return doc, ErrLayerNotFound
	}
	if id == doc.RootFrameID {
		return doc, ErrRootLayer
	}
	l, ok := doc.LayersByID[id]
	if !ok {
		return doc, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	if newParentID == "" {
		newParentID = doc.RootFrameID
	}
	if _, ok := doc.LayersByID[newParentID]; !ok {
		return doc, fmt.Errorf("%w: %s", ErrLayerNotFound, newParentID)
	}
	if _, ok := doc.container(newParentID); !ok {
		return doc, fmt.Errorf("%w: %s", ErrNotContainer, newParentID)
	}
	if slices.Contains(subtreeIDs(doc, id), newParentID) {
		return doc, ErrCycle
	}

	nd := doc.cow()
	oldParentID := l.Base().Parent()
	if old, ok := doc.container(oldParentID); ok {
		op := old.Clone().(Container)
		op.SetChildIDs(slices.DeleteFunc(op.ChildIDs(), func(c string) bool { return c == id }))
		nd.LayersByID[oldParentID] = op
	}

	// nd already holds the trimmed list when the parent is unchanged.
	tp := nd.LayersByID[newParentID].Clone().(Container)
	kids := tp.ChildIDs()
	if index < 0 || index > len(kids) {
		index = len(kids)
	}
	tp.SetChildIDs(slices.Insert(kids, index, id))
	nd.LayersByID[newParentID] = tp

	c := l.Clone()
	pid := newParentID
	c.Base().ParentID = &pid
	nd.LayersByID[id] = c
	return nd, nil
}

// SetSelection replaces the selection. Unknown and repeated ids are
// dropped; the primary falls back to the first selected id.
func SetSelection(doc *Document, ids []string, primaryID string) *Document {
	if doc == nil {
		return doc
	}
	sel := Selection{IDs: []string{}}
	for _, id := range ids {
		if _, ok := doc.LayersByID[id]; ok && !slices.Contains(sel.IDs, id) {
			sel.IDs = append(sel.IDs, id)
		}
	}
	switch {
	case slices.Contains(sel.IDs, primaryID):
		sel.PrimaryID = &primaryID
	case len(sel.IDs) > 0:
		first := sel.IDs[0]
		sel.PrimaryID = &first
	}

	nd := doc.cow()
	nd.Selection = sel
	return nd
}

// AddResource registers r, replacing any resource with the same id.
func AddResource(doc *Document, r Resource) *Document {
	if doc == nil || r.ID == "" {
		return doc
	}
	nd := doc.cow()
	if i := slices.IndexFunc(nd.Resources, func(x Resource) bool { return x.ID == r.ID }); i >= 0 {
		nd.Resources[i] = r
	} else {
		nd.Resources = append(nd.Resources, r)
	}
	return nd
}

// Rename sets the document name.
func Rename(doc *Document, name string) *Document {
	if doc == nil || name == "" || name == doc.Name {
		return doc
	}
	nd := doc.cow()
	nd.Name = name
	return nd
}

// AttachImage stores a decoded image on an image layer. Attachments are
// runtime-only and never serialized.
func AttachImage(doc *Document, id string, img image.Image) *Document {
	return UpdateAs(doc, id, func(l *ImageLayer) { l.Element = img })
}

func insertAt(ids []string, id string, index int) []string {
	index = max(0, min(index, len(ids)))
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:index]...)
	out = append(out, id)
	return append(out, ids[index:]...)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
