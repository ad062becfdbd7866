package collab

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/designer/internal/document"
)

func newState(t *testing.T) (*DocumentState, *document.ShapeLayer) {
	t.Helper()
	doc := document.CreateDocument(document.DocumentOptions{Name: "Card", Width: 200, Height: 100})
	shape := document.NewShapeLayer(document.ShapeOptions{LayerOptions: document.LayerOptions{Name: "Box"}})
	return NewDocumentState(document.AddLayer(doc, shape, "")), shape
}

func layerJSON(t *testing.T, l document.Layer) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(l)
	require.NoError(t, err)
	return data
}

func TestApplyAddLayer(t *testing.T) {
	ds, shape := newState(t)
	added := document.NewShapeLayer(document.ShapeOptions{LayerOptions: document.LayerOptions{Name: "New"}})
	index := 1

	op := &Operation{ID: "op1", Type: OpLayerAdd, Layer: layerJSON(t, added), Index: &index}
	seq, err := ds.ApplyOperation(op)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
	assert.Equal(t, added.ID, op.LayerID)

	doc := ds.Document()
	assert.Equal(t, []string{shape.ID, added.ID}, doc.Root().Children)
	assert.NoError(t, document.Validate(doc))
	assert.True(t, ds.Dirty())
}

func TestApplyAddRejectsDuplicateID(t *testing.T) {
	ds, shape := newState(t)
	before := ds.Document()

	seq, err := ds.ApplyOperation(&Operation{Type: OpLayerAdd, Layer: layerJSON(t, shape)})
	assert.ErrorIs(t, err, ErrLayerExists)
	assert.Zero(t, seq)
	assert.Same(t, before, ds.Document())
	assert.False(t, ds.Dirty())
}

func TestApplyAddGroupCannotAdoptExistingLayers(t *testing.T) {
	ds, shape := newState(t)
	rootID := ds.Document().RootFrameID
	group := document.NewGroupLayer(document.LayerOptions{Name: "Thief"})
	group.Children = []string{rootID, shape.ID}

	_, err := ds.ApplyOperation(&Operation{Type: OpLayerAdd, Layer: layerJSON(t, group)})
	require.NoError(t, err)
	require.NoError(t, document.Validate(ds.Document()))

	_, err = ds.ApplyOperation(&Operation{Type: OpLayerRemove, LayerID: group.ID})
	require.NoError(t, err)

	doc := ds.Document()
	assert.Len(t, doc.LayersByID, 2)
	assert.Equal(t, []string{shape.ID}, doc.Root().Children)
	assert.NoError(t, document.Validate(doc))
}

func TestApplyAddRejectsLeafParent(t *testing.T) {
	ds, shape := newState(t)
	added := document.NewShapeLayer(document.ShapeOptions{})

	_, err := ds.ApplyOperation(&Operation{Type: OpLayerAdd, Layer: layerJSON(t, added), ParentID: shape.ID})
	assert.ErrorIs(t, err, document.ErrNotContainer)
}

func TestApplyPatch(t *testing.T) {
	ds, shape := newState(t)

	_, err := ds.ApplyOperation(&Operation{
		Type:    OpLayerPatch,
		LayerID: shape.ID,
		Patch:   json.RawMessage(`{"name":"Renamed","opacity":0.5}`),
	})
	require.NoError(t, err)

	l, ok := document.GetLayer(ds.Document(), shape.ID)
	require.True(t, ok)
	assert.Equal(t, "Renamed", l.Base().Name)
	assert.Equal(t, 0.5, l.Base().Opacity)
}

func TestApplyRemoveAndRoot(t *testing.T) {
	ds, shape := newState(t)

	_, err := ds.ApplyOperation(&Operation{Type: OpLayerRemove, LayerID: ds.Document().RootFrameID})
	assert.ErrorIs(t, err, document.ErrRootLayer)

	_, err = ds.ApplyOperation(&Operation{Type: OpLayerRemove, LayerID: shape.ID})
	require.NoError(t, err)
	assert.Empty(t, ds.Document().Root().Children)

	_, err = ds.ApplyOperation(&Operation{Type: OpLayerRemove, LayerID: shape.ID})
	assert.ErrorIs(t, err, document.ErrLayerNotFound)
	assert.Equal(t, int64(1), ds.Seq())
}

func TestApplyDuplicateReportsResultID(t *testing.T) {
	ds, shape := newState(t)

	op := &Operation{Type: OpLayerDuplicate, LayerID: shape.ID}
	_, err := ds.ApplyOperation(op)
	require.NoError(t, err)
	require.NotEmpty(t, op.ResultID)
	assert.NotEqual(t, shape.ID, op.ResultID)
	assert.Equal(t, []string{op.ResultID, shape.ID}, ds.Document().Root().Children)
}

func TestApplyMoveAndReorder(t *testing.T) {
	ds, shape := newState(t)
	group := document.NewGroupLayer(document.LayerOptions{Name: "Group"})
	_, err := ds.ApplyOperation(&Operation{Type: OpLayerAdd, Layer: layerJSON(t, group)})
	require.NoError(t, err)

	_, err = ds.ApplyOperation(&Operation{Type: OpLayerReorder, LayerID: shape.ID, Direction: "top"})
	require.NoError(t, err)
	assert.Equal(t, []string{shape.ID, group.ID}, ds.Document().Root().Children)

	_, err = ds.ApplyOperation(&Operation{Type: OpLayerReorder, LayerID: shape.ID, Direction: "sideways"})
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = ds.ApplyOperation(&Operation{Type: OpLayerMove, LayerID: shape.ID, ParentID: group.ID})
	require.NoError(t, err)
	doc := ds.Document()
	assert.Equal(t, []string{group.ID}, doc.Root().Children)
	assert.Equal(t, group.ID, doc.LayersByID[shape.ID].Base().Parent())

	_, err = ds.ApplyOperation(&Operation{Type: OpLayerMove, LayerID: group.ID, ParentID: shape.ID})
	assert.Error(t, err)
}

func TestApplySelectionAndRename(t *testing.T) {
	ds, shape := newState(t)

	_, err := ds.ApplyOperation(&Operation{Type: OpSelectionSet, IDs: []string{shape.ID, "missing"}})
	require.NoError(t, err)
	assert.Equal(t, []string{shape.ID}, ds.Document().Selection.IDs)

	_, err = ds.ApplyOperation(&Operation{Type: OpDocumentRename, Name: "Front"})
	require.NoError(t, err)
	assert.Equal(t, "Front", ds.Document().Name)

	_, err = ds.ApplyOperation(&Operation{Type: OpDocumentRename})
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestApplyUnknownOperation(t *testing.T) {
	ds, _ := newState(t)
	_, err := ds.ApplyOperation(&Operation{Type: "object.transform"})
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestMarkSaved(t *testing.T) {
	ds, _ := newState(t)
	_, err := ds.ApplyOperation(&Operation{Type: OpDocumentRename, Name: "Saved"})
	require.NoError(t, err)

	_, seq := ds.Snapshot()
	ds.MarkSaved(seq)
	assert.False(t, ds.Dirty())

	ds.MarkSaved(0)
	assert.False(t, ds.Dirty())
}
