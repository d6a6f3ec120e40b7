package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"livedocs/internal/models"
)

func setupNotifier(t *testing.T) (*RedisNotifier, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	notifier := NewRedisNotifier(mr.Addr())
	t.Cleanup(func() { _ = notifier.Close() })
	return notifier, mr
}

func TestPublishSessionEnded(t *testing.T) {
	notifier, mr := setupNotifier(t)

	subscriber := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = subscriber.Close() })
	sub := subscriber.Subscribe(context.Background(), SessionChannel)
	t.Cleanup(func() { _ = sub.Close() })
	if _, err := sub.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	event := models.SessionEndedEvent{
		DocumentID:   "doc1",
		OwnerID:      "alice",
		EndedAt:      time.Now().UTC().Format(time.RFC3339),
		Participants: 2,
	}
	if err := notifier.PublishSessionEnded(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got models.SessionEndedEvent
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if got.DocumentID != "doc1" || got.OwnerID != "alice" || got.Participants != 2 {
			t.Fatalf("unexpected event %#v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a session-ended message")
	}

	if status := mr.HGet("session:doc1", "status"); status != "ended" {
		t.Fatalf("expected ended marker, got %q", status)
	}
	if ttl := mr.TTL("session:doc1"); ttl <= 0 || ttl > markerTTL {
		t.Fatalf("unexpected marker TTL %v", ttl)
	}
}

func TestPublishSessionEndedRedisDown(t *testing.T) {
	notifier, mr := setupNotifier(t)
	mr.Close()

	err := notifier.PublishSessionEnded(context.Background(), models.SessionEndedEvent{DocumentID: "doc1"})
	if err == nil {
		t.Fatalf("expected publish to fail with redis down")
	}
}
