package collab

import (
	"encoding/json"

	"github.com/inamate/designer/internal/document"
)

type Message struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// PresencePayload is one connection's presence. Clients send only the
// cursor and selection; the server fills in the rest.
type PresencePayload struct {
	ClientID    string     `json:"clientId,omitempty"`
	UserID      string     `json:"userId,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	Color       string     `json:"color,omitempty"`
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
}

// CursorPos is in document coordinates.
type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PresenceStatePayload maps client ids to presences.
type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync    = "doc.sync"
	TypeDocRequest = "doc.request"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// --- Operation Types ---

// Operation types understood by DocumentState.
const (
	OpLayerAdd       = "layer.add"
	OpLayerRemove    = "layer.remove"
	OpLayerPatch     = "layer.patch"
	OpLayerReorder   = "layer.reorder"
	OpLayerDuplicate = "layer.duplicate"
	OpLayerMove      = "layer.move"
	OpSelectionSet   = "selection.set"
	OpDocumentRename = "document.rename"
)

// Operation represents a document mutation
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`
	LayerID   string `json:"layerId,omitempty"`

	// For layer.add
	Layer    json.RawMessage `json:"layer,omitempty"`
	ParentID string          `json:"parentId,omitempty"`
	Index    *int            `json:"index,omitempty"`

	// For layer.patch: an RFC 7386 merge patch
	Patch json.RawMessage `json:"patch,omitempty"`

	// For layer.reorder
	Direction string `json:"direction,omitempty"`

	// For layer.duplicate, filled in by the server
	ResultID string `json:"resultId,omitempty"`

	// For selection.set
	IDs       []string `json:"ids,omitempty"`
	PrimaryID string   `json:"primaryId,omitempty"`

	// For document.rename
	Name string `json:"name,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
	ResultID        string `json:"resultId,omitempty"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
	ServerSeq   int64  `json:"serverSeq"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}

// WelcomePayload is sent first on every connection.
type WelcomePayload struct {
	ClientID  string `json:"clientId"`
	UserID    string `json:"userId"`
	ServerSeq int64  `json:"serverSeq"`
}

// DocSyncPayload carries the full authoritative document.
type DocSyncPayload struct {
	Document  *document.Document `json:"document"`
	ServerSeq int64              `json:"serverSeq"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Message string `json:"message"`
}
