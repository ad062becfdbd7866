package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/geom"
)

func TestHitTestFrontToBack(t *testing.T) {
	doc := newDoc()
	a := rect("A", 10, 10, 100, 100)
	b := rect("B", 50, 50, 100, 100)
	doc = document.AddLayer(doc, a, "")
	doc = document.AddLayer(doc, b, "")

	sg := BuildSceneGraph(doc)
	assert.Equal(t, b.ID, HitTest(sg, 75, 75))
	assert.Equal(t, a.ID, HitTest(sg, 20, 20))
	assert.Equal(t, "", HitTest(sg, 300, 250), "the root is never hit")

	doc = document.UpdateLayer(doc, b.ID, func(l document.Layer) { l.Base().Locked = true })
	assert.Equal(t, a.ID, HitTest(BuildSceneGraph(doc), 75, 75))
}

func TestHitTestRespectsRotation(t *testing.T) {
	doc := newDoc()
	c := rect("C", 200, 100, 100, 20)
	doc = document.AddLayer(doc, c, "")
	doc = document.UpdateLayer(doc, c.ID, func(l document.Layer) { l.Base().Transform.Rotation = 90 })

	sg := BuildSceneGraph(doc)
	assert.Equal(t, c.ID, HitTest(sg, 250, 70))
	assert.Equal(t, "", HitTest(sg, 210, 110))
}

func TestHitTestClippedFrame(t *testing.T) {
	doc := newDoc()
	f := document.NewFrameLayer(document.FrameOptions{
		LayerOptions: document.LayerOptions{X: 0, Y: 0, Width: 100, Height: 100},
		ClipContent:  true,
	})
	child := rect("Child", 50, 50, 200, 200)
	doc = document.AddLayer(doc, f, "")
	doc = document.AddLayer(doc, child, f.ID)

	sg := BuildSceneGraph(doc)
	assert.Equal(t, child.ID, HitTest(sg, 75, 75))
	assert.Equal(t, f.ID, HitTest(sg, 10, 10))
	assert.Equal(t, "", HitTest(sg, 200, 200), "clipped content is not hittable")
}

func TestSceneGraphBoundsAndOpacity(t *testing.T) {
	doc := newDoc()
	g := document.NewGroupLayer(document.LayerOptions{})
	g.Opacity = 0.5
	a := rect("A", 10, 10, 10, 10)
	b := rect("B", 40, 20, 10, 30)
	hidden := rect("Hidden", 300, 300, 10, 10)
	hidden.Visible = false
	doc = document.AddLayer(doc, g, "")
	doc = document.AddLayer(doc, a, g.ID)
	doc = document.AddLayer(doc, b, g.ID)
	doc = document.AddLayer(doc, hidden, g.ID)

	sg := BuildSceneGraph(doc)
	node, ok := sg.NodesByID[g.ID]
	require.True(t, ok)
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 40, Height: 40}, node.Bounds)
	assert.Len(t, node.Children, 2)
	assert.Equal(t, b.ID, node.Children[0].ID)
	assert.InDelta(t, 0.5, sg.NodesByID[a.ID].Opacity, 1e-9)
	assert.NotContains(t, sg.NodesByID, hidden.ID)

	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 40, Height: 40}, GetSelectionBounds(sg, []string{a.ID, b.ID, "missing"}))
	assert.JSONEq(t, `{"x":0,"y":0,"width":0,"height":0}`, RectToJSON(GetSelectionBounds(sg, nil)))
}
