package engine

import (
	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

// BuildSceneGraph resolves every visible layer reachable from the root.
// Invisible layers and their subtrees are left out; dangling child ids
// and cycles are skipped.
func BuildSceneGraph(doc *document.Document) *SceneGraph {
	sg := NewSceneGraph()
	root := doc.Root()
	if root == nil {
		return sg
	}
	sg.Root = buildNode(doc, root, nil, geom.Identity(), 1, sg)
	return sg
}

func buildNode(
	doc *document.Document,
	l document.Layer,
	parent *SceneNode,
	parentWorld geom.Matrix2D,
	parentOpacity float64,
	sg *SceneGraph,
) *SceneNode {
	b := l.Base()
	if !b.Visible {
		return nil
	}
	if _, seen := sg.NodesByID[b.ID]; seen {
		return nil
	}

	local := b.Transform.ToMatrix()
	world := parentWorld.Multiply(local)
	node := &SceneNode{
		ID:             b.ID,
		Type:           b.Type,
		Name:           b.Name,
		LocalTransform: local,
		WorldTransform: world,
		Opacity:        parentOpacity * clamp01(b.Opacity),
		Locked:         b.Locked,
		Parent:         parent,
		Box:            b.Transform.Box(),
	}
	if f, ok := l.(*document.FrameLayer); ok {
		node.ClipsChildren = f.ClipContent
	}
	if !node.Box.IsEmpty() {
		node.Bounds = world.TransformRect(node.Box)
	}

	// Register node in the lookup map
	sg.NodesByID[b.ID] = node

	c, ok := l.(document.Container)
	if !ok {
		return node
	}
	for _, childID := range c.ChildIDs() {
		child, ok := doc.LayersByID[childID]
		if !ok {
			continue
		}
		if childNode := buildNode(doc, child, node, world, node.Opacity, sg); childNode != nil {
			node.Children = append(node.Children, childNode)
			// Expand bounds to include children
			node.Bounds = node.Bounds.Union(childNode.Bounds)
		}
	}
	return node
}
