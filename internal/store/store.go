package store

import (
	"context"
	"encoding/json"
	"errors"

	"livedocs/internal/models"
)

// ErrUnavailable marks transient storage failures. Callers report them to
// the originating connection and carry on; they never tear a session down.
var ErrUnavailable = errors.New("document store unavailable")

// DocumentStore is the hub's only path to durable storage.
type DocumentStore interface {
	// LoadOrCreate returns the document with the given id, creating it with
	// the creator as owner when it does not exist yet. Creation is atomic:
	// concurrent calls for the same unseen id yield exactly one document.
	// A nil creator produces an ownerless document.
	LoadOrCreate(ctx context.Context, id string, creator *models.Identity) (*models.Document, error)

	// Save upserts the document content and last-editor attribution.
	Save(ctx context.Context, id string, content json.RawMessage, editedBy models.EditedBy) error
}
