package engine

import (
	"encoding/json"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

// SceneGraph is the resolved, hit-testable state of a document.
// It is rebuilt whenever the document changes.
type SceneGraph struct {
	Root      *SceneNode
	NodesByID map[string]*SceneNode
}

// SceneNode is a visible layer with its transforms and bounds resolved.
type SceneNode struct {
	ID   string
	Type document.LayerType
	Name string

	// Transform state
	WorldTransform geom.Matrix2D // parent world * local
	LocalTransform geom.Matrix2D

	// Inherited/resolved properties
	Opacity float64 // inherited * local
	Locked  bool

	// Hierarchy. Children keep document order, so index 0 is on top.
	Parent   *SceneNode
	Children []*SceneNode

	// Box is the layer's own rectangle before its world transform.
	Box geom.Rect
	// ClipsChildren is set for frames that clip their content.
	ClipsChildren bool

	// Bounds is the world-space AABB of the layer and its descendants.
	Bounds geom.Rect
}

// NewSceneGraph creates an empty scene graph.
func NewSceneGraph() *SceneGraph {
	return &SceneGraph{NodesByID: make(map[string]*SceneNode)}
}

// HitTest returns the id of the topmost unlocked layer under (x, y) in
// document space, or "" when nothing but the root is hit.
func HitTest(sg *SceneGraph, x, y float64) string {
	if sg == nil || sg.Root == nil {
		return ""
	}
	return hitTestNode(sg.Root, x, y)
}

// hitTestNode tests children first, front to back, then the node itself.
func hitTestNode(node *SceneNode, x, y float64) string {
	if node.Locked {
		return ""
	}
	lx, ly := node.WorldTransform.Invert().TransformPoint(x, y)
	inside := !node.Box.IsEmpty() && node.Box.Contains(lx, ly)

	if !node.ClipsChildren || inside {
		for _, child := range node.Children {
			if hit := hitTestNode(child, x, y); hit != "" {
				return hit
			}
		}
	}
	if node.Parent != nil && inside {
		return node.ID
	}
	return ""
}

// GetSelectionBounds returns the combined world bounding box of the given layer ids.
func GetSelectionBounds(sg *SceneGraph, ids []string) geom.Rect {
	if sg == nil {
		return geom.Rect{}
	}
	var result geom.Rect
	for _, id := range ids {
		if node, ok := sg.NodesByID[id]; ok {
			result = result.Union(node.Bounds)
		}
	}
	return result
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r geom.Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
