package document

import (
	"errors"
	"fmt"
)

// Validate checks tree consistency: a single frame root with no parent,
// children that exist and point back at their parent, no layer listed
// twice and no layer unreachable from the root. All problems are joined
// into one error.
func Validate(doc *Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	var errs []error
	root, ok := doc.LayersByID[doc.RootFrameID]
	switch {
	case !ok:
		return fmt.Errorf("root frame %q missing", doc.RootFrameID)
	case root.Base().Type != LayerFrame:
		errs = append(errs, fmt.Errorf("root %s is a %s, not a frame", doc.RootFrameID, root.Base().Type))
	case root.Base().ParentID != nil:
		errs = append(errs, fmt.Errorf("root %s has a parent", doc.RootFrameID))
	}

	for id, l := range doc.LayersByID {
		if l.Base().ID != id {
			errs = append(errs, fmt.Errorf("layer keyed %s has id %s", id, l.Base().ID))
		}
	}

	listed := map[string]string{}
	for id, l := range doc.LayersByID {
		c, ok := l.(Container)
		if !ok {
			continue
		}
		for _, cid := range c.ChildIDs() {
			child, ok := doc.LayersByID[cid]
			if !ok {
				errs = append(errs, fmt.Errorf("%s lists missing child %s", id, cid))
				continue
			}
			if prev, dup := listed[cid]; dup {
				errs = append(errs, fmt.Errorf("%s is listed by both %s and %s", cid, prev, id))
			}
			listed[cid] = id
			if child.Base().Parent() != id {
				errs = append(errs, fmt.Errorf("%s is a child of %s but its parent is %q", cid, id, child.Base().Parent()))
			}
		}
	}

	reachable := map[string]bool{doc.RootFrameID: true}
	for _, id := range GetLayerOrder(doc, "") {
		reachable[id] = true
	}
	for id, l := range doc.LayersByID {
		if reachable[id] {
			continue
		}
		errs = append(errs, fmt.Errorf("layer %s is unreachable from the root", id))
		if pid := l.Base().Parent(); pid != "" {
			if _, ok := doc.container(pid); !ok {
				errs = append(errs, fmt.Errorf("layer %s has invalid parent %s", id, pid))
			}
		}
	}
	return errors.Join(errs...)
}
