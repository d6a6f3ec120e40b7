package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"livedocs/internal/models"
)

func TestMemoryStoreCreateThenLoad(t *testing.T) {
	s := NewMemoryStore()
	creator := &models.Identity{ID: "alice", DisplayName: "Alice", Email: "a@example.com"}

	doc, err := s.LoadOrCreate(context.Background(), "doc1", creator)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.Owner == nil || doc.Owner.ID != "alice" {
		t.Fatalf("expected creator as owner, got %#v", doc.Owner)
	}
	if doc.LastEditedBy == nil || doc.LastEditedBy.UserID != "alice" {
		t.Fatalf("expected creation attribution, got %#v", doc.LastEditedBy)
	}

	// A second load with a different identity must not re-own the document.
	again, err := s.LoadOrCreate(context.Background(), "doc1", &models.Identity{ID: "bob"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if again.Owner == nil || again.Owner.ID != "alice" {
		t.Fatalf("owner changed: %#v", again.Owner)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 document, got %d", s.Len())
	}
}

func TestMemoryStoreNilCreator(t *testing.T) {
	s := NewMemoryStore()
	doc, err := s.LoadOrCreate(context.Background(), "doc1", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.Owner != nil || doc.LastEditedBy != nil {
		t.Fatalf("expected ownerless document, got %#v", doc)
	}
}

func TestMemoryStoreSaveUpserts(t *testing.T) {
	s := NewMemoryStore()
	content := json.RawMessage(`{"ops":[{"insert":"x"}]}`)
	editedBy := models.EditedBy{UserID: "alice", DisplayName: "Alice", Timestamp: time.Now().UTC()}

	if err := s.Save(context.Background(), "doc1", content, editedBy); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc, err := s.LoadOrCreate(context.Background(), "doc1", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Content) != string(content) || doc.LastEditedBy.UserID != "alice" {
		t.Fatalf("unexpected document %#v", doc)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	doc, _ := s.LoadOrCreate(context.Background(), "doc1", &models.Identity{ID: "alice"})
	doc.Owner.ID = "mallory"

	reloaded, _ := s.LoadOrCreate(context.Background(), "doc1", nil)
	if reloaded.Owner.ID != "alice" {
		t.Fatalf("caller mutation leaked into the store")
	}
}

func TestMemoryStoreConcurrentFirstLoadCreatesOnce(t *testing.T) {
	s := NewMemoryStore()
	const n = 16

	var wg sync.WaitGroup
	owners := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := s.LoadOrCreate(context.Background(), "doc1", &models.Identity{ID: "alice"})
			if err != nil {
				t.Errorf("load %d: %v", i, err)
				return
			}
			if doc.Owner != nil {
				owners[i] = doc.Owner.ID
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 1 {
		t.Fatalf("expected a single document, got %d", s.Len())
	}
	for i, owner := range owners {
		if owner != "alice" {
			t.Fatalf("call %d saw owner %q", i, owner)
		}
	}
}
