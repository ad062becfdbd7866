package document

import (
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/designer/internal/geom"
)

func newTestDoc() *Document {
	return CreateDocument(DocumentOptions{ToolID: "test", Name: "Test", Width: 100, Height: 100})
}

func TestCreateDocument(t *testing.T) {
	doc := newTestDoc()
	require.Len(t, doc.LayersByID, 1)
	root := doc.Root()
	require.NotNil(t, root)
	assert.Nil(t, root.ParentID)
	assert.Equal(t, 300.0, doc.Meta.DPI)
	require.Len(t, root.Fills, 1)
	assert.Equal(t, White, root.Fills[0].Color)
	assert.NoError(t, Validate(doc))
}

func TestAddLayerPrependsAndLinksParent(t *testing.T) {
	doc := newTestDoc()
	a := NewShapeLayer(ShapeOptions{LayerOptions: LayerOptions{Name: "A"}})
	b := NewShapeLayer(ShapeOptions{LayerOptions: LayerOptions{Name: "B"}})

	d1 := AddLayer(doc, a, "")
	d2 := AddLayer(d1, b, "")

	assert.Equal(t, []string{b.ID, a.ID}, d2.Root().Children)
	assert.Empty(t, doc.Root().Children, "input document must not change")
	assert.Equal(t, doc.RootFrameID, d2.LayersByID[a.ID].Base().Parent())
	assert.Nil(t, a.ParentID, "factory layer must not be aliased into the document")
}

func TestAddLayerRejectsNonContainerParent(t *testing.T) {
	doc := newTestDoc()
	s := NewShapeLayer(ShapeOptions{})
	doc = AddLayer(doc, s, "")

	assert.Same(t, doc, AddLayer(doc, NewShapeLayer(ShapeOptions{}), s.ID))
	assert.Same(t, doc, AddLayer(doc, NewShapeLayer(ShapeOptions{}), "missing"))
	assert.Same(t, doc, AddLayer(doc, s, ""), "duplicate id")
}

func TestInsertContainerDropsClaimedChildren(t *testing.T) {
	doc := newTestDoc()
	s := NewShapeLayer(ShapeOptions{})
	doc = AddLayer(doc, s, "")

	g := NewGroupLayer(LayerOptions{Name: "G"})
	g.Children = []string{s.ID, doc.RootFrameID}
	doc = AddLayer(doc, g, "")

	assert.Empty(t, doc.LayersByID[g.ID].(*GroupLayer).Children)
	assert.Len(t, g.Children, 2, "input layer must not change")
	assert.Equal(t, doc.RootFrameID, doc.LayersByID[s.ID].Base().Parent())
	require.NoError(t, Validate(doc))

	doc = RemoveLayer(doc, g.ID)
	assert.Len(t, doc.LayersByID, 2)
	assert.Equal(t, []string{s.ID}, doc.Root().Children)
	assert.NoError(t, Validate(doc))
}

func TestPatchLayerNilDocument(t *testing.T) {
	out, err := PatchLayer(nil, "x", []byte(`{}`))
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrLayerNotFound)
}

func TestRemoveLayerDropsSubtreeAndSelection(t *testing.T) {
	doc := newTestDoc()
	g := NewGroupLayer(LayerOptions{})
	child := NewShapeLayer(ShapeOptions{})
	other := NewShapeLayer(ShapeOptions{})
	doc = AddLayer(doc, g, "")
	doc = AddLayer(doc, child, g.ID)
	doc = AddLayer(doc, other, "")
	doc = SetSelection(doc, []string{child.ID, other.ID}, child.ID)

	out := RemoveLayer(doc, g.ID)

	assert.NotContains(t, out.LayersByID, g.ID)
	assert.NotContains(t, out.LayersByID, child.ID)
	assert.Equal(t, []string{other.ID}, out.Root().Children)
	assert.Equal(t, []string{other.ID}, out.Selection.IDs)
	require.NotNil(t, out.Selection.PrimaryID)
	assert.Equal(t, other.ID, *out.Selection.PrimaryID)
	assert.NoError(t, Validate(out))

	assert.Contains(t, doc.LayersByID, child.ID)
}

func TestRemoveRootIsNoop(t *testing.T) {
	doc := newTestDoc()
	assert.Same(t, doc, RemoveLayer(doc, doc.RootFrameID))
}

func TestBadIDIsIdentity(t *testing.T) {
	doc := newTestDoc()
	assert.Same(t, doc, UpdateLayer(doc, "nonexistent", func(l Layer) { l.Base().Opacity = 0 }))
	assert.Same(t, doc, RemoveLayer(doc, "nonexistent"))
	assert.Same(t, doc, ReorderLayer(doc, "nonexistent", ReorderUp))
	assert.Same(t, doc, DuplicateLayer(doc, "nonexistent"))

	patched, err := PatchLayer(doc, "nonexistent", []byte(`{"name":"x"}`))
	assert.Same(t, doc, patched)
	assert.ErrorIs(t, err, ErrLayerNotFound)
}

func TestUpdateLayerPreservesIdentity(t *testing.T) {
	doc := newTestDoc()
	s := NewShapeLayer(ShapeOptions{})
	doc = AddLayer(doc, s, "")

	out := UpdateLayer(doc, s.ID, func(l Layer) {
		b := l.Base()
		b.ID = "hijacked"
		b.Type = LayerText
		b.Opacity = 0.25
	})

	got := out.LayersByID[s.ID].Base()
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, LayerShape, got.Type)
	assert.Equal(t, 0.25, got.Opacity)
	assert.Equal(t, 1.0, doc.LayersByID[s.ID].Base().Opacity)
}

func TestUpdateAs(t *testing.T) {
	doc := newTestDoc()
	s := NewShapeLayer(ShapeOptions{ShapeType: ShapePolygon})
	doc = AddLayer(doc, s, "")

	out := UpdateAs(doc, s.ID, func(l *ShapeLayer) { l.Sides = 8 })
	assert.Equal(t, 8, out.LayersByID[s.ID].(*ShapeLayer).Sides)
	assert.Same(t, out, UpdateAs(out, s.ID, func(l *TextLayer) { l.Text = "x" }))
}

func TestUpdatedAtIsMonotonic(t *testing.T) {
	orig := now
	defer func() { now = orig }()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now = func() time.Time { return base }
	doc := newTestDoc()

	now = func() time.Time { return base.Add(-time.Hour) }
	doc2 := AddLayer(doc, NewShapeLayer(ShapeOptions{}), "")
	assert.Equal(t, base, doc2.Meta.UpdatedAt)

	now = func() time.Time { return base.Add(time.Hour) }
	doc3 := AddLayer(doc2, NewShapeLayer(ShapeOptions{}), "")
	assert.Equal(t, base.Add(time.Hour), doc3.Meta.UpdatedAt)
}

func TestReorderLayer(t *testing.T) {
	doc := newTestDoc()
	a := NewShapeLayer(ShapeOptions{})
	b := NewShapeLayer(ShapeOptions{})
	c := NewShapeLayer(ShapeOptions{})
	doc = AddLayer(doc, c, "")
	doc = AddLayer(doc, b, "")
	doc = AddLayer(doc, a, "")
	require.Equal(t, []string{a.ID, b.ID, c.ID}, doc.Root().Children)

	tests := []struct {
		name string
		id   string
		dir  ReorderDirection
		want []string
	}{
		{name: "UpMovesTowardTop", id: b.ID, dir: ReorderUp, want: []string{b.ID, a.ID, c.ID}},
		{name: "DownMovesTowardBottom", id: b.ID, dir: ReorderDown, want: []string{a.ID, c.ID, b.ID}},
		{name: "Top", id: c.ID, dir: ReorderTop, want: []string{c.ID, a.ID, b.ID}},
		{name: "Bottom", id: a.ID, dir: ReorderBottom, want: []string{b.ID, c.ID, a.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ReorderLayer(doc, tt.id, tt.dir)
			assert.Equal(t, tt.want, out.Root().Children)
			assert.Equal(t, []string{a.ID, b.ID, c.ID}, doc.Root().Children)
		})
	}

	assert.Same(t, doc, ReorderLayer(doc, a.ID, ReorderUp), "already on top")
}

func TestDuplicateLayerAssignsFreshIDs(t *testing.T) {
	doc := newTestDoc()
	g := NewGroupLayer(LayerOptions{Name: "G"})
	s1 := NewShapeLayer(ShapeOptions{LayerOptions: LayerOptions{X: 10, Y: 10}})
	s2 := NewTextLayer(TextOptions{Text: "hi"})
	doc = AddLayer(doc, g, "")
	doc = AddLayer(doc, s1, g.ID)
	doc = AddLayer(doc, s2, g.ID)
	s2clip := UpdateLayer(doc, s2.ID, func(l Layer) {
		l.Base().Clip = &ClipSpec{ClipLayerID: s1.ID, ClipMode: ClipContent}
	})

	before := make(map[string]bool)
	for id := range s2clip.LayersByID {
		before[id] = true
	}

	out, copyID := DuplicateLayerWithID(s2clip, g.ID)
	require.NotEmpty(t, copyID)
	require.NoError(t, Validate(out))

	fresh := GetLayerOrder(out, copyID)
	fresh = append(fresh, copyID)
	require.Len(t, fresh, 3)
	for _, id := range fresh {
		assert.False(t, before[id], "id %s reused", id)
	}

	assert.Equal(t, []string{copyID, g.ID}, out.Root().Children)
	cp := out.LayersByID[copyID].(*GroupLayer)
	assert.Equal(t, "G copy", cp.Name)

	kids := GetChildren(out, copyID)
	require.Len(t, kids, 2)
	shapeCopy := kids[1].Base()
	assert.Equal(t, 20.0, shapeCopy.Transform.Position.X)
	assert.Equal(t, copyID, shapeCopy.Parent())
	textCopy := kids[0].Base()
	require.NotNil(t, textCopy.Clip)
	assert.Equal(t, shapeCopy.ID, textCopy.Clip.ClipLayerID)
}

func TestMoveLayer(t *testing.T) {
	doc := newTestDoc()
	g := NewGroupLayer(LayerOptions{})
	inner := NewGroupLayer(LayerOptions{})
	s := NewShapeLayer(ShapeOptions{})
	doc = AddLayer(doc, g, "")
	doc = AddLayer(doc, inner, g.ID)
	doc = AddLayer(doc, s, "")

	out, err := MoveLayer(doc, s.ID, inner.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{s.ID}, out.LayersByID[inner.ID].(*GroupLayer).Children)
	assert.Equal(t, []string{g.ID}, out.Root().Children)
	assert.NoError(t, Validate(out))

	_, err = MoveLayer(doc, g.ID, inner.ID, 0)
	assert.ErrorIs(t, err, ErrCycle)
	_, err = MoveLayer(doc, g.ID, g.ID, 0)
	assert.ErrorIs(t, err, ErrCycle)
	_, err = MoveLayer(doc, doc.RootFrameID, g.ID, 0)
	assert.ErrorIs(t, err, ErrRootLayer)
	_, err = MoveLayer(doc, g.ID, s.ID, 0)
	assert.ErrorIs(t, err, ErrNotContainer)

	same, err := MoveLayer(doc, s.ID, "", -1)
	require.NoError(t, err)
	assert.Equal(t, []string{g.ID, s.ID}, same.Root().Children)
}

func TestPatchLayer(t *testing.T) {
	doc := newTestDoc()
	s := NewShapeLayer(ShapeOptions{})
	doc = AddLayer(doc, s, "")

	out, err := PatchLayer(doc, s.ID, []byte(`{"id":"x","opacity":0.5,"cornerRadii":[4,4,4,4],"transform":{"rotation":45}}`))
	require.NoError(t, err)
	got := out.LayersByID[s.ID].(*ShapeLayer)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, 0.5, got.Opacity)
	assert.Equal(t, UniformRadii(4), got.CornerRadii)
	assert.Equal(t, 45.0, got.Transform.Rotation)
	assert.Equal(t, 100.0, got.Transform.Size.Width, "merge keeps untouched fields")

	_, err = PatchLayer(doc, s.ID, []byte(`{"opacity":"loud"}`))
	assert.ErrorIs(t, err, ErrInvalidPatch)
}

func TestTreeConsistencyUnderRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	doc := newTestDoc()

	pick := func() string {
		ids := GetLayerOrder(doc, "")
		if len(ids) == 0 {
			return ""
		}
		return ids[rng.IntN(len(ids))]
	}
	containers := func() []string {
		out := []string{doc.RootFrameID}
		for _, id := range GetLayerOrder(doc, "") {
			if _, ok := doc.LayersByID[id].(Container); ok {
				out = append(out, id)
			}
		}
		return out
	}

	for step := 0; step < 400; step++ {
		switch rng.IntN(5) {
		case 0, 1:
			cs := containers()
			parent := cs[rng.IntN(len(cs))]
			var l Layer
			switch rng.IntN(3) {
			case 0:
				l = NewGroupLayer(LayerOptions{})
			case 1:
				l = NewFrameLayer(FrameOptions{})
			default:
				l = NewShapeLayer(ShapeOptions{})
			}
			doc = AddLayer(doc, l, parent)
		case 2:
			if id := pick(); id != "" {
				doc = RemoveLayer(doc, id)
			}
		case 3:
			if id := pick(); id != "" {
				dirs := []ReorderDirection{ReorderUp, ReorderDown, ReorderTop, ReorderBottom}
				doc = ReorderLayer(doc, id, dirs[rng.IntN(len(dirs))])
			}
		case 4:
			if id := pick(); id != "" {
				doc = DuplicateLayer(doc, id)
			}
		}
		require.NoError(t, Validate(doc), "step %d", step)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	doc := NewSampleDocument("Card")
	photo := FindByTag(doc, "photo")
	require.Len(t, photo, 1)

	first, err := json.Marshal(doc)
	require.NoError(t, err)

	parsed, err := Parse(first)
	require.NoError(t, err)
	second, err := json.Marshal(parsed)
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.NoError(t, Validate(parsed))
	assert.IsType(t, &ImageLayer{}, parsed.LayersByID[photo[0].Base().ID])
}

func TestParseRejectsUnknownLayerType(t *testing.T) {
	_, err := Parse([]byte(`{"rootFrameId":"a","layersById":{"a":{"id":"a","type":"hologram"}}}`))
	assert.ErrorIs(t, err, ErrUnknownLayerType)
}

func TestGetLayerOrderIsFrontToBack(t *testing.T) {
	doc := newTestDoc()
	g := NewGroupLayer(LayerOptions{})
	a := NewShapeLayer(ShapeOptions{})
	b := NewShapeLayer(ShapeOptions{})
	c := NewShapeLayer(ShapeOptions{})
	doc = AddLayer(doc, c, "")
	doc = AddLayer(doc, g, "")
	doc = AddLayer(doc, b, g.ID)
	doc = AddLayer(doc, a, g.ID)

	assert.Equal(t, []string{g.ID, a.ID, b.ID, c.ID}, GetLayerOrder(doc, ""))
	assert.Equal(t, []string{a.ID, b.ID}, GetLayerOrder(doc, g.ID))
}

func TestWorldAABBComposesContainerRotation(t *testing.T) {
	doc := newTestDoc()
	g := NewFrameLayer(FrameOptions{LayerOptions: LayerOptions{X: 0, Y: 0, Width: 100, Height: 100}})
	g.Transform.Rotation = 90
	s := NewShapeLayer(ShapeOptions{LayerOptions: LayerOptions{X: 0, Y: 0, Width: 50, Height: 10}})
	doc = AddLayer(doc, g, "")
	doc = AddLayer(doc, s, g.ID)

	box := WorldAABB(doc, s.ID)
	assert.InDelta(t, 90, box.X, 1e-9)
	assert.InDelta(t, 0, box.Y, 1e-9)
	assert.InDelta(t, 10, box.Width, 1e-9)
	assert.InDelta(t, 50, box.Height, 1e-9)
}

func TestPositionsAreDocumentSpace(t *testing.T) {
	doc := newTestDoc()
	f := NewFrameLayer(FrameOptions{LayerOptions: LayerOptions{X: 40, Y: 40, Width: 50, Height: 50}})
	s := NewShapeLayer(ShapeOptions{LayerOptions: LayerOptions{X: 50, Y: 60, Width: 10, Height: 10}})
	doc = AddLayer(doc, f, "")
	doc = AddLayer(doc, s, f.ID)

	want := geom.Rect{X: 50, Y: 60, Width: 10, Height: 10}
	assert.Equal(t, want, WorldAABB(doc, s.ID), "parent position is not added")

	moved, err := MoveLayer(doc, s.ID, "", 0)
	require.NoError(t, err)
	assert.Equal(t, want, WorldAABB(moved, s.ID))
	assert.Equal(t, 50.0, moved.LayersByID[s.ID].Base().Transform.Position.X)

	back, err := MoveLayer(moved, s.ID, f.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, want, WorldAABB(back, s.ID))
	assert.NoError(t, Validate(back))
}
