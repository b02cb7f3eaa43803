package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the hot queries rely on: the candidate
// bounding-box pre-filter, media-by-issue lookups, the audit-trail sort, and
// unique account emails.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := db.Collection("issues").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "issueType", Value: 1},
			{Key: "status", Value: 1},
			{Key: "createdAt", Value: -1},
			{Key: "location.latitude", Value: 1},
			{Key: "location.longitude", Value: 1},
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("media").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "issueID", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("issue_status_history").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "issueID", Value: 1}, {Key: "changedAt", Value: -1}},
	})
	if err != nil {
		return err
	}

	for _, name := range []string{"citizens", "admins"} {
		_, err = db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
