package store

import (
	"context"
	"time"

	"civicreport-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// History wraps the append-only status-history collection. Entries are never
// updated or deleted.
type History struct {
	col *mongo.Collection
}

// Append records one state transition.
func (s *History) Append(ctx context.Context, entry models.StatusHistory) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now()
	}

	_, err := s.col.InsertOne(ctx, entry)
	return err
}

// LatestActor returns the most recent entry on an issue that was made by an
// admin (changedBy non-null), or nil if every transition so far was
// system-driven.
func (s *History) LatestActor(ctx context.Context, issueID primitive.ObjectID) (*models.StatusHistory, error) {
	filter := bson.M{"issueID": issueID, "changedBy": bson.M{"$ne": nil}}
	opts := options.FindOne().SetSort(bson.D{{Key: "changedAt", Value: -1}})

	var entry models.StatusHistory
	err := s.col.FindOne(ctx, filter, opts).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ByIssue returns an issue's transitions, newest first.
func (s *History) ByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.StatusHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "changedAt", Value: -1}})

	cursor, err := s.col.Find(ctx, bson.M{"issueID": issueID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.StatusHistory
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
