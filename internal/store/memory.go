package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"livedocs/internal/models"
)

// MemoryStore is a process-local DocumentStore for development and tests.
// It honors the same contract as the Mongo store: find-or-insert is atomic
// under its mutex.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]*models.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*models.Document)}
}

func (s *MemoryStore) LoadOrCreate(_ context.Context, id string, creator *models.Identity) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[id]; ok {
		return copyDoc(doc), nil
	}
	doc := &models.Document{ID: id}
	if creator != nil {
		owner := *creator
		doc.Owner = &owner
		doc.LastEditedBy = &models.EditedBy{
			UserID:      creator.ID,
			DisplayName: creator.DisplayName,
			Email:       creator.Email,
			Timestamp:   time.Now().UTC(),
		}
	}
	s.docs[id] = doc
	return copyDoc(doc), nil
}

func (s *MemoryStore) Save(_ context.Context, id string, content json.RawMessage, editedBy models.EditedBy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		doc = &models.Document{ID: id}
		s.docs[id] = doc
	}
	doc.Content = append(json.RawMessage(nil), content...)
	edited := editedBy
	doc.LastEditedBy = &edited
	return nil
}

// Len reports how many documents exist (test helper).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func copyDoc(doc *models.Document) *models.Document {
	out := &models.Document{
		ID:      doc.ID,
		Content: append(json.RawMessage(nil), doc.Content...),
	}
	if doc.Owner != nil {
		owner := *doc.Owner
		out.Owner = &owner
	}
	if doc.LastEditedBy != nil {
		edited := *doc.LastEditedBy
		out.LastEditedBy = &edited
	}
	return out
}
