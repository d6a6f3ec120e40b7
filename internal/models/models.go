package models

import (
	"encoding/json"
	"time"
)

// Identity is the authenticated user descriptor attached to a connection.
// It is issued by the auth layer (or synthesized as a guest); the server
// never validates it beyond the optional token signature and trusts it for
// the lifetime of the connection.
type Identity struct {
	ID          string `json:"id" bson:"id"`
	DisplayName string `json:"displayName" bson:"displayName"`
	Email       string `json:"email,omitempty" bson:"email,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty" bson:"photoURL,omitempty"`
	IsAnonymous bool   `json:"isAnonymous" bson:"isAnonymous"`
	ProviderID  string `json:"providerId,omitempty" bson:"providerId,omitempty"`
}

// EditedBy records who last wrote a document and when.
type EditedBy struct {
	UserID      string    `json:"userId" bson:"userId"`
	DisplayName string    `json:"displayName" bson:"displayName"`
	Email       string    `json:"email,omitempty" bson:"email,omitempty"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}

// Document is the persisted record. Content is an opaque editor payload;
// the server stores and relays it without interpreting it.
type Document struct {
	ID           string          `json:"id" bson:"_id"`
	Content      json.RawMessage `json:"content,omitempty" bson:"content,omitempty"`
	Owner        *Identity       `json:"owner,omitempty" bson:"owner,omitempty"`
	LastEditedBy *EditedBy       `json:"lastEditedBy,omitempty" bson:"lastEditedBy,omitempty"`
}

// Participant is one live connection's presence entry within a document.
// The same identity connected twice yields two participants.
type Participant struct {
	UserID       string    `json:"userId"`
	DisplayName  string    `json:"displayName"`
	Color        string    `json:"color"`
	IsGuest      bool      `json:"isGuest"`
	IsOwner      bool      `json:"isOwner"`
	ConnectionID string    `json:"connectionId"`
	JoinedAt     time.Time `json:"joinedAt"`
}

/*** WebSocket frames ***/

// WSFrame is an outbound frame. Types: "joined", "presence-changed",
// "edit-relayed", "cursor-relayed", "owner-session-ended", "operation-error".
type WSFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// InboundFrame keeps the payload raw so opaque deltas/ranges pass through
// untouched. Types: "join", "edit", "cursor", "save".
type InboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type JoinRequest struct {
	Identity *Identity `json:"identity,omitempty"`
}

// JoinedResponse is sent to the joining connection only.
type JoinedResponse struct {
	Content            json.RawMessage `json:"content"`
	Owner              *Identity       `json:"owner,omitempty"`
	LastEditedBy       *EditedBy       `json:"lastEditedBy,omitempty"`
	Color              string          `json:"color"`
	ActiveParticipants []Participant   `json:"activeParticipants"`
}

type EditBroadcast struct {
	Delta       json.RawMessage `json:"delta"`
	UserID      string          `json:"userId"`
	DisplayName string          `json:"displayName"`
	Color       string          `json:"color"`
}

type CursorBroadcast struct {
	UserID      string          `json:"userId"`
	DisplayName string          `json:"displayName"`
	Color       string          `json:"color"`
	Range       json.RawMessage `json:"range"`
}

// SessionEndedEvent is published when a document session is torn down by
// its owner leaving.
type SessionEndedEvent struct {
	DocumentID   string `json:"documentId"`
	OwnerID      string `json:"ownerId"`
	EndedAt      string `json:"endedAt"`
	Participants int    `json:"participants"` // connections notified of the teardown
}
