package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"livedocs/internal/models"
)

// SessionChannel carries session lifecycle events to sibling services
// (activity feeds, document history).
const SessionChannel = "document-sessions"

// How long the ended-session marker stays queryable.
const markerTTL = 24 * time.Hour

// RedisNotifier publishes session-ended events and leaves a short-lived
// marker hash so late lookups can tell "ended" apart from "never existed".
type RedisNotifier struct {
	rdb *redis.Client
}

func NewRedisNotifier(addr string) *RedisNotifier {
	return &RedisNotifier{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func (n *RedisNotifier) PublishSessionEnded(ctx context.Context, event models.SessionEndedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}
	if err := n.rdb.Publish(ctx, SessionChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish session event: %w", err)
	}

	key := "session:" + event.DocumentID
	n.rdb.HSet(ctx, key, map[string]interface{}{
		"documentId": event.DocumentID,
		"ownerId":    event.OwnerID,
		"status":     "ended",
		"endedAt":    event.EndedAt,
	})
	n.rdb.Expire(ctx, key, markerTTL)
	return nil
}

func (n *RedisNotifier) Close() error { return n.rdb.Close() }
