package session

import (
	"encoding/json"
	"sync"
	"time"

	"livedocs/internal/models"
)

// Room holds the in-memory session state for one document: the owner
// anchor, the latest relayed snapshot, and the live participants. All
// mutation for a document funnels through its Room's mutex, which is the
// per-document serialization the hub relies on.
type Room struct {
	ID string

	mu       sync.Mutex
	loaded   bool
	closed   bool
	ownerID  string
	lastSave time.Time
	snapshot json.RawMessage
	presence *presence
	clients  map[string]*Client
}

func NewRoom(id string) *Room {
	return &Room{
		ID:       id,
		presence: newPresence(),
		clients:  make(map[string]*Client),
	}
}

// InitSession anchors the session to the persisted document. The owner id
// comes from the stored document, never from whoever happens to join first,
// so a returning owner is recognized by identity. Idempotent: only the
// first call takes effect.
func (r *Room) InitSession(doc *models.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded || r.closed {
		return
	}
	if doc.Owner != nil {
		r.ownerID = doc.Owner.ID
	}
	r.snapshot = doc.Content
	r.lastSave = time.Now()
	r.loaded = true
}

func (r *Room) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

func (r *Room) OwnerID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ownerID
}

// Join registers the connection, assigns the first free palette color and
// computes the owner flag once. The updated participant list is broadcast
// to every other member before the lock is released, so concurrent joins
// observe consistent presence. Returns ok=false if the room was already
// torn down.
func (r *Room) Join(c *Client, ident models.Identity, isGuest bool) (models.Participant, []models.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return models.Participant{}, nil, false
	}
	part := &models.Participant{
		UserID:       ident.ID,
		DisplayName:  ident.DisplayName,
		Color:        nextColor(r.presence.usedColors()),
		IsGuest:      isGuest,
		IsOwner:      ident.ID != "" && ident.ID == r.ownerID,
		ConnectionID: c.ID,
		JoinedAt:     time.Now(),
	}
	r.presence.register(c.ID, part)
	r.clients[c.ID] = c
	active := r.presence.list()
	r.broadcastLocked(c.ID, models.WSFrame{Type: "presence-changed", Data: active})
	return *part, active, true
}

// Leave removes the connection from the room. For a non-owner with peers
// remaining the updated presence list is broadcast; an empty room keeps its
// session record (only the owner's departure tears a session down).
func (r *Room) Leave(connID string) (models.Participant, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	part, ok := r.presence.unregister(connID)
	if !ok {
		return models.Participant{}, r.presence.size(), false
	}
	delete(r.clients, connID)
	remaining := r.presence.size()
	if !part.IsOwner && remaining > 0 {
		r.broadcastLocked("", models.WSFrame{Type: "presence-changed", Data: r.presence.list()})
	}
	return *part, remaining, true
}

func (r *Room) Lookup(connID string) (models.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	part, ok := r.presence.get(connID)
	if !ok {
		return models.Participant{}, false
	}
	return *part, true
}

func (r *Room) Participants() []models.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presence.list()
}

// RelayEdit records the delta as the session's latest snapshot and fans it
// out to every member except the sender. The delta is opaque; nothing here
// interprets or transforms it.
func (r *Room) RelayEdit(connID string, delta json.RawMessage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	part, ok := r.presence.get(connID)
	if !ok {
		return false
	}
	r.snapshot = delta
	r.broadcastLocked(connID, models.WSFrame{Type: "edit-relayed", Data: models.EditBroadcast{
		Delta:       delta,
		UserID:      part.UserID,
		DisplayName: part.DisplayName,
		Color:       part.Color,
	}})
	return true
}

// RelayCursor fans a cursor/selection range out to every member except the
// sender. No state is retained.
func (r *Room) RelayCursor(connID string, rng json.RawMessage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	part, ok := r.presence.get(connID)
	if !ok {
		return false
	}
	r.broadcastLocked(connID, models.WSFrame{Type: "cursor-relayed", Data: models.CursorBroadcast{
		UserID:      part.UserID,
		DisplayName: part.DisplayName,
		Color:       part.Color,
		Range:       rng,
	}})
	return true
}

func (r *Room) Snapshot() json.RawMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot
}

// MarkSaved records a successful persistence. A save that completes after
// the room was torn down must not resurrect it, hence the closed check.
func (r *Room) MarkSaved(content json.RawMessage, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.snapshot = content
	r.lastSave = at
}

func (r *Room) LastSaveAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSave
}

// Close ends the session: every remaining member is told the owner left,
// then presence and clients are cleared. Returns how many connections were
// notified. Subsequent Join and MarkSaved calls are rejected.
func (r *Room) Close() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	r.closed = true
	notified := len(r.clients)
	r.broadcastLocked("", models.WSFrame{Type: "owner-session-ended"})
	r.presence = newPresence()
	r.clients = make(map[string]*Client)
	return notified
}

func (r *Room) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Room) broadcastLocked(exceptConnID string, frame models.WSFrame) {
	for id, c := range r.clients {
		if id == exceptConnID {
			continue
		}
		c.Send(frame)
	}
}
