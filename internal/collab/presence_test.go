package collab

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/designer/internal/document"
)

func TestPresenceKeyedByClient(t *testing.T) {
	pm := NewPresenceManager()
	tab1 := &Client{UserID: "user_a", DisplayName: "Ada", ClientID: "c1"}
	tab2 := &Client{UserID: "user_a", DisplayName: "Ada", ClientID: "c2"}
	pm.Join(tab1)
	pm.Join(tab2)

	require.NotNil(t, pm.Update("c1", &CursorPos{X: 1, Y: 2}, []string{"layer_1"}))
	assert.Nil(t, pm.Update("c9", nil, nil))

	pm.Remove("c2")
	state := pm.State()
	require.Len(t, state.Presences, 1)
	p := state.Presences["c1"]
	assert.Equal(t, "Ada", p.DisplayName)
	assert.Equal(t, []string{"layer_1"}, p.Selection)
	assert.Equal(t, UserColor("user_a"), p.Color)
}

func TestPresencePrune(t *testing.T) {
	doc := document.CreateDocument(document.DocumentOptions{})
	pm := NewPresenceManager()
	pm.Join(&Client{UserID: "u", ClientID: "c1"})
	pm.Join(&Client{UserID: "v", ClientID: "c2"})
	pm.Update("c1", nil, []string{doc.RootFrameID, "layer_gone"})
	pm.Update("c2", nil, []string{doc.RootFrameID})

	before := pm.State()
	assert.True(t, pm.Prune(doc))
	assert.Equal(t, []string{doc.RootFrameID}, pm.State().Presences["c1"].Selection)
	assert.Len(t, before.Presences["c1"].Selection, 2, "earlier snapshots are not modified")
	assert.False(t, pm.Prune(doc))
}

func TestUserColor(t *testing.T) {
	c := UserColor("user_a")
	assert.Regexp(t, regexp.MustCompile(`^#[0-9a-f]{6}$`), c)
	assert.Equal(t, c, UserColor("user_a"))
}
