package collab

import (
	"hash/fnv"
	"maps"
	"slices"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/designer/internal/document"
)

// PresenceManager tracks the cursor and selection of every connection in
// a room. Entries are keyed by client id so two tabs of the same user do
// not overwrite each other.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

// Join creates the entry for a new connection and returns it.
func (pm *PresenceManager) Join(c *Client) *PresencePayload {
	p := &PresencePayload{
		ClientID:    c.ClientID,
		UserID:      c.UserID,
		DisplayName: c.DisplayName,
		Color:       UserColor(c.UserID),
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[c.ClientID] = p
	return p
}

// Update replaces the cursor and selection of a connection. Identity
// fields are kept from the joined entry. It returns the stored copy, or
// nil for an unknown client.
func (pm *PresenceManager) Update(clientID string, cursor *CursorPos, selection []string) *PresencePayload {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	cur, ok := pm.presences[clientID]
	if !ok {
		return nil
	}
	next := *cur
	next.Cursor = cursor
	next.Selection = slices.Clone(selection)
	pm.presences[clientID] = &next
	return &next
}

func (pm *PresenceManager) Remove(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, clientID)
}

// Prune drops selected ids that no longer exist in doc and reports
// whether any entry changed.
func (pm *PresenceManager) Prune(doc *document.Document) bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	changed := false
	for id, p := range pm.presences {
		kept := slices.DeleteFunc(slices.Clone(p.Selection), func(lid string) bool {
			_, ok := doc.LayersByID[lid]
			return !ok
		})
		if len(kept) == len(p.Selection) {
			continue
		}
		next := *p
		next.Selection = kept
		pm.presences[id] = &next
		changed = true
	}
	return changed
}

// State returns a copy of every entry.
func (pm *PresenceManager) State() PresenceStatePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return PresenceStatePayload{Presences: maps.Clone(pm.presences)}
}

// UserColor picks a stable, saturated cursor color for a user.
func UserColor(userID string) string {
	h := fnv.New32a()
	h.Write([]byte(userID))
	hue := float64(h.Sum32() % 360)
	return colorful.Hsv(hue, 0.65, 0.9).Hex()
}
