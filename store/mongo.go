// Package store is the persistence collaborator for the analytics engine.
// It fetches clinical records from MongoDB, pushing the compiled filter
// constraints down to the server, and hands the engine an already-filtered
// in-memory slice. No aggregation happens here.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/residlog-org/residlog/engine"
)

const recordsCollectionName = "clinicalRecords"

// Store wraps the clinical-record collection.
type Store struct {
	collection *mongo.Collection
	logger     zerolog.Logger
}

// New creates a Store and ensures the query indexes exist.
func New(ctx context.Context, db *mongo.Database, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		collection: db.Collection(recordsCollectionName),
		logger:     logger,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("creating record indexes: %w", err)
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetName("RecordDate"),
		},
		{
			Keys:    bson.D{{Key: "location", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetName("RecordLocationType"),
		},
		{
			Keys:    bson.D{{Key: "programYear", Value: 1}},
			Options: options.Index().SetName("RecordProgramYear"),
		},
	})
	return err
}

// Find returns the records matching the filter spec, applying the compiled
// query constraints server-side. Results are ordered by date so that engine
// output is stable across calls.
func (s *Store) Find(ctx context.Context, spec engine.FilterSpec) ([]engine.ClinicalRecord, error) {
	query := spec.Query()
	s.logger.Debug().Interface("query", query).Msg("finding clinical records")

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("finding records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []engine.ClinicalRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}

	s.logger.Debug().Int("count", len(records)).Msg("records fetched")
	return records, nil
}

// Insert stores a record, assigning an id when none is set, and returns the
// id used.
func (s *Store) Insert(ctx context.Context, record engine.ClinicalRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if _, err := s.collection.InsertOne(ctx, record); err != nil {
		return "", fmt.Errorf("inserting record %s: %w", record.ID, err)
	}
	return record.ID, nil
}

// Count returns the number of records matching the filter spec.
func (s *Store) Count(ctx context.Context, spec engine.FilterSpec) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, spec.Query())
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}
