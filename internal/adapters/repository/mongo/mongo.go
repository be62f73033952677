// Package mongo implements the document storage backend.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/akarpov/telescout/internal/domain"
	"github.com/akarpov/telescout/internal/ports"
)

// Store persists collected records in MongoDB. Collections are created
// lazily by the server on first write, so schema provisioning is a no-op;
// the collection naming mirrors the relational layout: one "services" and
// one "communications" collection, one collection per metric target, and
// one "<containerName>-containerinfo" collection per container.
type Store struct {
	db  *mongo.Database
	log *zap.Logger
}

var _ ports.Storage = (*Store)(nil)

// New wraps an existing database handle.
func New(db *mongo.Database, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}
}

// Connect establishes the client and verifies the connection. On ping
// failure it still returns a usable Store together with a wrapped
// domain.ErrConnection so the caller can keep running degraded.
func Connect(ctx context.Context, uri, dbName string, log *zap.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	s := New(client.Database(dbName), log)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return s, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	return s, nil
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return s.db.Client().Ping(ctx, nil)
}

// EnsureMetricsSchema is a no-op: the document store infers schema per
// collection on first insert.
func (s *Store) EnsureMetricsSchema(context.Context, string) error {
	return nil
}

// UpsertService inserts the service document unless one with the same
// microservice name exists.
func (s *Store) UpsertService(ctx context.Context, svc domain.Service) error {
	_, err := s.db.Collection("services").UpdateOne(ctx,
		bson.M{"microservice": svc.Microservice},
		bson.M{"$setOnInsert": newServiceDoc(svc)},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: upsert service %q: %v", domain.ErrWrite, svc.Microservice, err)
	}
	return nil
}

// InsertCommunication appends one completed-request document.
func (s *Store) InsertCommunication(ctx context.Context, rec domain.CommunicationRecord) error {
	if _, err := s.db.Collection("communications").InsertOne(ctx, newCommunicationDoc(rec)); err != nil {
		return fmt.Errorf("%w: insert communication: %v", domain.ErrWrite, err)
	}
	return nil
}

// InsertHealthBatch appends one tick's host samples into the collection
// named for the target microservice.
func (s *Store) InsertHealthBatch(ctx context.Context, target string, recs []domain.HealthRecord) error {
	if len(recs) == 0 {
		return nil
	}
	docs := make([]any, 0, len(recs))
	for _, rec := range recs {
		docs = append(docs, sampleDoc{Metric: rec.Metric, Value: rec.Value, Category: rec.Category, Time: rec.Time})
	}
	if _, err := s.db.Collection(target).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("%w: insert batch into %q: %v", domain.ErrWrite, target, err)
	}
	return nil
}

// InsertMetricBatch appends one tick's broker metrics.
func (s *Store) InsertMetricBatch(ctx context.Context, target string, recs []domain.MetricRecord) error {
	if len(recs) == 0 {
		return nil
	}
	docs := make([]any, 0, len(recs))
	for _, rec := range recs {
		docs = append(docs, sampleDoc{Metric: rec.Metric, Value: rec.Value, Category: rec.Category, Time: rec.Time})
	}
	if _, err := s.db.Collection(target).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("%w: insert batch into %q: %v", domain.ErrWrite, target, err)
	}
	return nil
}

// InsertContainerRecord appends one container stats document into the
// container's own collection.
func (s *Store) InsertContainerRecord(ctx context.Context, rec domain.ContainerRecord) error {
	coll := containerCollection(rec.ContainerName)
	if _, err := s.db.Collection(coll).InsertOne(ctx, newContainerDoc(rec)); err != nil {
		return fmt.Errorf("%w: insert container record: %v", domain.ErrWrite, err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}
