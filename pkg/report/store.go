package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists run reports.
type Store interface {
	Save(ctx context.Context, r *Report) error
	Close(ctx context.Context) error
}

// FileStore writes each report as pretty-printed JSON at Path.
type FileStore struct {
	Path string
}

func (s FileStore) Save(ctx context.Context, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	return os.WriteFile(s.Path, data, 0o644)
}

func (FileStore) Close(ctx context.Context) error { return nil }

// MongoStore archives reports in a collection, upserting on run_id so
// a rerun replaces its previous record.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and uses db/collection as archive.
func NewMongoStore(ctx context.Context, uri, db, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(db).Collection(collection),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, r *Report) error {
	filter := bson.M{"run_id": r.RunID}
	_, err := s.coll.ReplaceOne(ctx, filter, r, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store report %s: %w", r.RunID, err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var (
	_ Store = FileStore{}
	_ Store = (*MongoStore)(nil)
)
