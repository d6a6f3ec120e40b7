package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"livedocs/internal/models"
	"livedocs/internal/store"
	"livedocs/internal/utils"
)

// ErrNoSession signals an operation referencing a document with no active
// session. The connection gets a generic error notice; the condition is a
// bug signal, not a user error.
var ErrNoSession = errors.New("no active session for document")

// Notifier receives session lifecycle events. Implementations must be safe
// for concurrent use; a nil Notifier disables publishing.
type Notifier interface {
	PublishSessionEnded(ctx context.Context, event models.SessionEndedEvent) error
}

// Hub owns every document collaboration session in this process. It is the
// single registry rooms are looked up through: rooms are created on first
// join and removed when the document owner disconnects. Cross-document
// operations are independent; same-document operations serialize on the
// room's mutex.
type Hub struct {
	log      *utils.Logger
	store    store.DocumentStore
	notifier Notifier

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewHub(log *utils.Logger, docs store.DocumentStore, notifier Notifier) *Hub {
	return &Hub{
		log:      log,
		store:    docs,
		notifier: notifier,
		rooms:    make(map[string]*Room),
	}
}

// Join loads or creates the persisted document, anchors the session record
// to its owner, and registers the connection. The returned state goes to
// the joining connection only; everyone else gets a presence-changed
// broadcast. A nil identity joins as a synthesized guest (and, when the
// join creates the document, leaves it ownerless).
func (h *Hub) Join(ctx context.Context, docID string, client *Client, identity *models.Identity) (*models.JoinedResponse, error) {
	doc, err := h.store.LoadOrCreate(ctx, docID, identity)
	if err != nil {
		h.log.Error("failed to load document", "documentId", docID, "error", err)
		return nil, err
	}

	ident, isGuest := resolveIdentity(identity, client.ID)

	for {
		room := h.getOrCreate(docID)
		room.InitSession(doc)
		part, active, ok := room.Join(client, ident, isGuest)
		if !ok {
			// Lost a race with owner teardown; take a fresh room.
			continue
		}
		h.log.Info("participant joined",
			"documentId", docID, "userId", part.UserID, "color", part.Color, "participants", len(active))
		return &models.JoinedResponse{
			Content:            doc.Content,
			Owner:              doc.Owner,
			LastEditedBy:       doc.LastEditedBy,
			Color:              part.Color,
			ActiveParticipants: active,
		}, nil
	}
}

// RelayEdit stores the delta as the session's latest snapshot and fans it
// out to the sender's peers.
func (h *Hub) RelayEdit(docID, connID string, delta json.RawMessage) error {
	room := h.get(docID)
	if room == nil || !room.RelayEdit(connID, delta) {
		h.log.Error("edit without active session", "documentId", docID, "connectionId", connID)
		return ErrNoSession
	}
	return nil
}

// RelayCursor fans a cursor range out to the sender's peers.
func (h *Hub) RelayCursor(docID, connID string, rng json.RawMessage) error {
	room := h.get(docID)
	if room == nil || !room.RelayCursor(connID, rng) {
		h.log.Error("cursor without active session", "documentId", docID, "connectionId", connID)
		return ErrNoSession
	}
	return nil
}

// Save persists the client-provided snapshot with last-editor attribution.
// Failures are reported to the caller and logged; the session continues
// degraded and no retry is scheduled.
func (h *Hub) Save(ctx context.Context, docID, connID string, content json.RawMessage) error {
	room := h.get(docID)
	if room == nil {
		h.log.Error("save without active session", "documentId", docID, "connectionId", connID)
		return ErrNoSession
	}
	part, ok := room.Lookup(connID)
	if !ok {
		h.log.Error("save from unregistered connection", "documentId", docID, "connectionId", connID)
		return ErrNoSession
	}
	editedBy := models.EditedBy{
		UserID:      part.UserID,
		DisplayName: part.DisplayName,
		Timestamp:   time.Now().UTC(),
	}
	if err := h.store.Save(ctx, docID, content, editedBy); err != nil {
		h.log.Error("failed to save document", "documentId", docID, "userId", part.UserID, "error", err)
		return err
	}
	room.MarkSaved(content, editedBy.Timestamp)
	return nil
}

// Leave removes the connection. A departing owner tears the whole session
// down; a departing non-owner only updates presence, and an emptied room
// keeps its session record for a returning owner.
func (h *Hub) Leave(ctx context.Context, docID, connID string) {
	room := h.get(docID)
	if room == nil {
		return
	}
	part, remaining, ok := room.Leave(connID)
	if !ok {
		return
	}
	if part.IsOwner {
		h.terminate(ctx, room, part)
		return
	}
	h.log.Info("participant left", "documentId", docID, "userId", part.UserID, "remaining", remaining)
}

// ActiveParticipants lists the live participants of a document, reporting
// false when no session exists in this process.
func (h *Hub) ActiveParticipants(docID string) ([]models.Participant, bool) {
	room := h.get(docID)
	if room == nil {
		return nil, false
	}
	return room.Participants(), true
}

func (h *Hub) terminate(ctx context.Context, room *Room, owner models.Participant) {
	if snapshot := room.Snapshot(); len(snapshot) > 0 {
		editedBy := models.EditedBy{
			UserID:      owner.UserID,
			DisplayName: owner.DisplayName,
			Timestamp:   time.Now().UTC(),
		}
		if err := h.store.Save(ctx, room.ID, snapshot, editedBy); err != nil {
			h.log.Error("failed to persist final snapshot", "documentId", room.ID, "error", err)
		}
	}

	notified := room.Close()
	h.delete(room)
	h.log.Info("owner ended session", "documentId", room.ID, "ownerId", owner.UserID, "notified", notified)

	if h.notifier == nil {
		return
	}
	event := models.SessionEndedEvent{
		DocumentID:   room.ID,
		OwnerID:      owner.UserID,
		EndedAt:      time.Now().UTC().Format(time.RFC3339),
		Participants: notified,
	}
	if err := h.notifier.PublishSessionEnded(ctx, event); err != nil {
		h.log.Warn("failed to publish session-ended event", "documentId", room.ID, "error", err)
	}
}

func (h *Hub) get(id string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[id]
}

func (h *Hub) getOrCreate(id string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[id]; ok && !r.isClosed() {
		return r
	}
	r := NewRoom(id)
	h.rooms[id] = r
	return r
}

// delete removes the room from the registry only while it is still the
// registered one. A join racing with teardown may already have replaced the
// closed room with a fresh session; that session must survive the
// teardown's cleanup.
func (h *Hub) delete(room *Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room.ID] == room {
		delete(h.rooms, room.ID)
	}
}

func resolveIdentity(identity *models.Identity, connID string) (models.Identity, bool) {
	if identity != nil && identity.ID != "" {
		return *identity, false
	}
	return models.Identity{
		ID:          "guest-" + connID,
		DisplayName: fmt.Sprintf("Guest-%d", rand.Intn(1000)),
		IsAnonymous: true,
	}, true
}
