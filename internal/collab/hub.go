package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/designer/internal/document"
)

const (
	defaultSaveInterval = 30 * time.Second
	saveTimeout         = 10 * time.Second
)

// DocumentLoader fetches the stored document of a project when its room
// opens.
type DocumentLoader func(ctx context.Context, projectID string) (*document.Document, error)

// DocumentSaver persists a room's document. It is called periodically
// while the room has unsaved operations, when the last client leaves
// and on Stop.
type DocumentSaver func(ctx context.Context, projectID string, doc *document.Document) error

type Room struct {
	projectID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	state     *DocumentState

	// opMu keeps apply and fan-out in server sequence order.
	opMu sync.Mutex
}

func NewRoom(projectID string, doc *document.Document) *Room {
	return &Room{
		projectID: projectID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		state:     NewDocumentState(doc),
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // projectID -> room
	register   chan *Client
	unregister chan *Client

	load         DocumentLoader
	save         DocumentSaver
	saveInterval time.Duration

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub. A nil loader opens rooms on a blank business card
// document; a nil saver keeps documents in memory only.
func NewHub(load DocumentLoader, save DocumentSaver) *Hub {
	return &Hub{
		rooms:        make(map[string]*Room),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		load:         load,
		save:         save,
		saveInterval: defaultSaveInterval,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// SetSaveInterval changes the autosave period. Call before Run.
func (h *Hub) SetSaveInterval(d time.Duration) {
	if d > 0 {
		h.saveInterval = d
	}
}

func (h *Hub) Run() {
	ticker := time.NewTicker(h.saveInterval)
	defer func() {
		ticker.Stop()
		close(h.done)
	}()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ticker.C:
			h.saveAll()
		case <-h.stop:
			h.saveAll()
			return
		}
	}
}

// Stop saves every dirty room and waits for Run to return.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

func (h *Hub) openDocument(projectID string) (*document.Document, error) {
	if h.load == nil {
		return document.CreateDocument(document.DocumentOptions{
			Name:   "Untitled",
			Width:  1050,
			Height: 600,
		}), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return h.load(ctx, projectID)
}

func (h *Hub) addClient(client *Client) {
	h.mu.RLock()
	room, ok := h.rooms[client.ProjectID]
	h.mu.RUnlock()

	if !ok {
		doc, err := h.openDocument(client.ProjectID)
		if err != nil {
			slog.Error("load document", "error", err, "project", client.ProjectID)
			client.Send(errorMessage("document could not be loaded"))
			client.closeSend()
			return
		}
		room = NewRoom(client.ProjectID, doc)
		h.mu.Lock()
		h.rooms[client.ProjectID] = room
		h.mu.Unlock()
	}

	h.mu.Lock()
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	doc, seq := room.state.Snapshot()
	client.Send(newMessage(TypeWelcome, WelcomePayload{
		ClientID:  client.ClientID,
		UserID:    client.UserID,
		ServerSeq: seq,
	}))
	client.Send(newMessage(TypeDocSync, DocSyncPayload{Document: doc, ServerSeq: seq}))

	// The new client sees everyone, itself included.
	joined := room.presence.Join(client)
	client.Send(newMessage(TypePresenceState, room.presence.State()))

	joinMsg := newMessage(TypePresenceJoin, joined)
	joinMsg.UserID = client.UserID
	h.broadcastToRoom(client.ProjectID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "project", client.ProjectID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.ProjectID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()
	room.presence.Remove(client.ClientID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.ProjectID)
	}
	h.mu.Unlock()

	if empty {
		h.saveRoom(room)
		slog.Info("room closed", "project", client.ProjectID)
		return
	}

	// Broadcast leave to remaining clients
	leaveMsg := newMessage(TypePresenceLeave, PresenceLeavePayload{
		ClientID: client.ClientID,
		UserID:   client.UserID,
	})
	leaveMsg.UserID = client.UserID
	h.broadcastToRoom(client.ProjectID, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "project", client.ProjectID)
}

func (h *Hub) saveAll() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	for _, r := range rooms {
		h.saveRoom(r)
	}
}

func (h *Hub) saveRoom(room *Room) {
	if h.save == nil || !room.state.Dirty() {
		return
	}
	doc, seq := room.state.Snapshot()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := h.save(ctx, room.projectID, doc); err != nil {
		slog.Error("save document", "error", err, "project", room.projectID, "seq", seq)
		return
	}
	room.state.MarkSaved(seq)
	slog.Debug("document saved", "project", room.projectID, "seq", seq)
}

func (h *Hub) room(projectID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[projectID]
	return room, ok
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOperation(sender, msg)
	case TypeDocRequest:
		h.handleDocRequest(sender)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	room, ok := h.room(sender.ProjectID)
	if !ok {
		return
	}

	stored := room.presence.Update(sender.ClientID, presence.Cursor, presence.Selection)
	if stored == nil {
		return
	}

	outMsg := newMessage(TypePresenceUpdate, stored)
	outMsg.UserID = sender.UserID
	h.broadcastToRoom(sender.ProjectID, outMsg, sender.ClientID)
}

func (h *Hub) handleOperation(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid operation payload", "error", err, "user", sender.UserID)
		sender.Send(errorMessage("invalid operation payload"))
		return
	}
	op := submit.Operation

	room, ok := h.room(sender.ProjectID)
	if !ok {
		return
	}

	if sender.ReadOnly {
		slog.Warn("operation from read-only client", "op", op.Type, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{
			OperationID: op.ID,
			Reason:      ErrReadOnly.Error(),
			ServerSeq:   room.state.Seq(),
		}))
		return
	}

	room.opMu.Lock()
	defer room.opMu.Unlock()

	seq, err := room.state.ApplyOperation(&op)
	if err != nil {
		slog.Debug("operation rejected", "error", err, "op", op.Type, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
			ServerSeq:   seq,
		}))
		return
	}

	sender.Send(newMessage(TypeOpAck, OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       seq,
		ServerTimestamp: GetServerTimestamp(),
		ResultID:        op.ResultID,
	}))

	out := newMessage(TypeOpBroadcast, OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: seq,
	})
	out.Seq = seq
	h.broadcastToRoom(sender.ProjectID, out, sender.ClientID)

	// Selections may point at layers that were just removed.
	if op.Type == OpLayerRemove && room.presence.Prune(room.state.Document()) {
		h.broadcastToRoom(sender.ProjectID, newMessage(TypePresenceState, room.presence.State()), "")
	}

	// Duplicated subtrees get server-assigned ids that clients cannot
	// derive from the broadcast, so everyone resyncs.
	if op.Type == OpLayerDuplicate {
		h.broadcastToRoom(sender.ProjectID, newMessage(TypeDocSync, DocSyncPayload{
			Document:  room.state.Document(),
			ServerSeq: seq,
		}), "")
	}
}

func (h *Hub) handleDocRequest(sender *Client) {
	room, ok := h.room(sender.ProjectID)
	if !ok {
		return
	}
	doc, seq := room.state.Snapshot()
	sender.Send(newMessage(TypeDocSync, DocSyncPayload{Document: doc, ServerSeq: seq}))
}

func (h *Hub) broadcastToRoom(projectID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[projectID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err, "type", msg.Type)
		return
	}
	for _, c := range clients {
		c.enqueue(data)
	}
}

// Document returns the live document of an open room.
func (h *Hub) Document(projectID string) (*document.Document, bool) {
	room, ok := h.room(projectID)
	if !ok {
		return nil, false
	}
	return room.state.Document(), true
}

func newMessage(typ string, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "error", err, "type", typ)
		data = []byte("null")
	}
	return &Message{Type: typ, Payload: data}
}

func errorMessage(text string) *Message {
	return newMessage(TypeError, ErrorPayload{Message: text})
}
