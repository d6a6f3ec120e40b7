package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livedocs/internal/models"
)

const documentsCollection = "documents"

// MongoStore persists documents in a MongoDB collection keyed by document
// id, matching the denormalized record shape the editor frontend expects.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &MongoStore{coll: client.Database(database).Collection(documentsCollection)}, nil
}

// LoadOrCreate relies on an upserting FindOneAndUpdate with $setOnInsert:
// MongoDB makes the find-or-insert atomic, so concurrent first joins to an
// unseen id cannot create duplicates.
func (s *MongoStore) LoadOrCreate(ctx context.Context, id string, creator *models.Identity) (*models.Document, error) {
	onInsert := bson.M{"_id": id}
	if creator != nil {
		onInsert["owner"] = creator
		onInsert["lastEditedBy"] = models.EditedBy{
			UserID:      creator.ID,
			DisplayName: creator.DisplayName,
			Email:       creator.Email,
			Timestamp:   time.Now().UTC(),
		}
	}

	res := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$setOnInsert": onInsert},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	var doc models.Document
	if err := res.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: load document %q: %v", ErrUnavailable, id, err)
	}
	return &doc, nil
}

func (s *MongoStore) Save(ctx context.Context, id string, content json.RawMessage, editedBy models.EditedBy) error {
	update := bson.M{"$set": bson.M{"content": content, "lastEditedBy": editedBy}}
	if _, err := s.coll.UpdateByID(ctx, id, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("%w: save document %q: %v", ErrUnavailable, id, err)
	}
	return nil
}
