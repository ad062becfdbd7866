package document

import "github.com/inamate/designer/internal/geom"

func GetLayer(doc *Document, id string) (Layer, bool) {
	if doc == nil {
		return nil, false
	}
	l, ok := doc.LayersByID[id]
	return l, ok
}

// GetChildren returns the live children of a container in list order
// (topmost first). Dangling ids are skipped.
func GetChildren(doc *Document, id string) []Layer {
	if doc == nil {
		return nil
	}
	c, ok := doc.container(id)
	if !ok {
		return nil
	}
	out := make([]Layer, 0, len(c.ChildIDs()))
	for _, cid := range c.ChildIDs() {
		if l, ok := doc.LayersByID[cid]; ok {
			out = append(out, l)
		}
	}
	return out
}

// GetLayerOrder flattens the tree below fromID ("" means the root)
// depth-first, front to back: each layer is followed by its own
// descendants, siblings in list order. fromID itself is not included.
func GetLayerOrder(doc *Document, fromID string) []string {
	if doc == nil {
		return nil
	}
	if fromID == "" {
		fromID = doc.RootFrameID
	}
	var out []string
	seen := map[string]bool{fromID: true}
	stack := childrenReversed(doc, fromID)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		stack = append(stack, childrenReversed(doc, id)...)
	}
	return out
}

// subtreeIDs returns id followed by every live descendant, pre-order.
func subtreeIDs(doc *Document, id string) []string {
	if _, ok := doc.LayersByID[id]; !ok {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		if _, ok := doc.LayersByID[cur]; !ok {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		stack = append(stack, childrenReversed(doc, cur)...)
	}
	return out
}

func childrenReversed(doc *Document, id string) []string {
	c, ok := doc.container(id)
	if !ok {
		return nil
	}
	kids := c.ChildIDs()
	out := make([]string, 0, len(kids))
	for i := len(kids) - 1; i >= 0; i-- {
		if _, ok := doc.LayersByID[kids[i]]; ok {
			out = append(out, kids[i])
		}
	}
	return out
}

// FindByTag returns every layer carrying tag, front to back.
func FindByTag(doc *Document, tag string) []Layer {
	if doc == nil {
		return nil
	}
	var out []Layer
	ids := append([]string{doc.RootFrameID}, GetLayerOrder(doc, "")...)
	for _, id := range ids {
		if l, ok := doc.LayersByID[id]; ok && l.Base().HasTag(tag) {
			out = append(out, l)
		}
	}
	return out
}

// Ancestors returns the parent chain of id, nearest first. Broken or
// cyclic links end the chain.
func Ancestors(doc *Document, id string) []Layer {
	var out []Layer
	l, ok := doc.LayersByID[id]
	seen := map[string]bool{id: true}
	for ok {
		pid := l.Base().Parent()
		if pid == "" || seen[pid] {
			break
		}
		seen[pid] = true
		l, ok = doc.LayersByID[pid]
		if ok {
			out = append(out, l)
		}
	}
	return out
}

// WorldMatrix composes the rotations of every ancestor and the layer
// itself. Positions are already in document space, so containers
// contribute rotation about their pivot but no translation.
func WorldMatrix(doc *Document, id string) geom.Matrix2D {
	l, ok := GetLayer(doc, id)
	if !ok {
		return geom.Identity()
	}
	anc := Ancestors(doc, id)
	m := geom.Identity()
	for i := len(anc) - 1; i >= 0; i-- {
		m = m.Multiply(anc[i].Base().Transform.ToMatrix())
	}
	return m.Multiply(l.Base().Transform.ToMatrix())
}

// WorldAABB is the document-space bounding box of the layer's own box.
func WorldAABB(doc *Document, id string) geom.Rect {
	l, ok := GetLayer(doc, id)
	if !ok {
		return geom.Rect{}
	}
	return WorldMatrix(doc, id).TransformRect(l.Base().Transform.Box())
}

// LayerBounds is WorldAABB, except that containers with an empty box
// (groups) report the union of their children's bounds.
func LayerBounds(doc *Document, id string) geom.Rect {
	l, ok := GetLayer(doc, id)
	if !ok {
		return geom.Rect{}
	}
	if _, isContainer := l.(Container); !isContainer || !l.Base().Transform.Box().IsEmpty() {
		return WorldAABB(doc, id)
	}
	var r geom.Rect
	for _, cid := range GetLayerOrder(doc, id) {
		if c := doc.LayersByID[cid]; c != nil {
			if _, nested := c.(Container); nested && c.Base().Transform.Box().IsEmpty() {
				continue
			}
			r = r.Union(WorldAABB(doc, cid))
		}
	}
	return r
}
