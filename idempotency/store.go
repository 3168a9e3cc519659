package idempotency

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// EnsureIndexes creates the unique key index and the TTL index that
// expires old records.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.M{"key": 1},
			Options: options.Index().SetUnique(true).SetName("unique_key"),
		},
		{
			Keys:    bson.M{"expiresAt": 1},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at"),
		},
	})
	return err
}

func (s *MongoStore) Reserve(ctx context.Context, rec Record) (*Record, error) {
	_, err := s.coll.InsertOne(ctx, rec)
	if err == nil {
		return nil, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, err
	}

	var existing Record
	if err := s.coll.FindOne(ctx, bson.M{"key": rec.Key}).Decode(&existing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// expired between insert and read; treat as in progress
			log.Debug().Str("key", rec.Key).Msg("idempotency record vanished")
			return &Record{RequestHash: rec.RequestHash}, ErrExists
		}
		return nil, err
	}
	return &existing, ErrExists
}

func (s *MongoStore) Complete(ctx context.Context, key string, status int, body []byte) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{"done": true, "status": status, "body": body}},
	)
	return err
}

func (s *MongoStore) Release(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"key": key, "done": false})
	return err
}

// MemoryStore keeps records in process. Expiry is not enforced.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]Record)}
}

func (s *MemoryStore) Reserve(_ context.Context, rec Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.recs[rec.Key]; ok {
		existing.Body = slices.Clone(existing.Body)
		return &existing, ErrExists
	}
	s.recs[rec.Key] = rec
	return nil, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, status int, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[key]
	if !ok {
		return nil
	}
	rec.Done = true
	rec.Status = status
	rec.Body = slices.Clone(body)
	s.recs[key] = rec
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.recs[key]; ok && !rec.Done {
		delete(s.recs, key)
	}
	return nil
}
