package store

import (
	"context"
	"time"

	"civicreport-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Media wraps the media collection.
type Media struct {
	col *mongo.Collection
}

// Insert stores one attachment row.
func (s *Media) Insert(ctx context.Context, m *models.Media) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt = time.Now()

	_, err := s.col.InsertOne(ctx, m)
	return err
}

// HashesByIssue returns the stored perceptual hashes of an issue's image
// attachments. Videos and unhashed images are skipped.
func (s *Media) HashesByIssue(ctx context.Context, issueID primitive.ObjectID) ([]string, error) {
	filter := bson.M{
		"issueID":  issueID,
		"fileType": models.MediaImage,
		"phash":    bson.M{"$exists": true, "$nin": bson.A{nil, ""}},
	}

	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var hashes []string
	for cursor.Next(ctx) {
		var m models.Media
		if err := cursor.Decode(&m); err != nil {
			return nil, err
		}
		if m.Phash != nil {
			hashes = append(hashes, *m.Phash)
		}
	}
	return hashes, cursor.Err()
}

// ByIssue returns all attachments of an issue.
func (s *Media) ByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.Media, error) {
	cursor, err := s.col.Find(ctx, bson.M{"issueID": issueID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var media []models.Media
	if err := cursor.All(ctx, &media); err != nil {
		return nil, err
	}
	return media, nil
}

// DeleteByIssue removes all attachments of an issue.
func (s *Media) DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"issueID": issueID})
	return err
}

// MissingHashes opens a forward-only cursor over image attachments without a
// stored hash, for the one-shot backfill.
func (s *Media) MissingHashes(ctx context.Context) (*mongo.Cursor, error) {
	filter := bson.M{
		"fileType": models.MediaImage,
		"$or": bson.A{
			bson.M{"phash": bson.M{"$exists": false}},
			bson.M{"phash": nil},
		},
	}
	return s.col.Find(ctx, filter)
}

// SetPhash fills in a hash that was missing at ingestion time.
func (s *Media) SetPhash(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"phash": hash}})
	return err
}
