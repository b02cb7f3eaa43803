package store

import (
	"context"
	"errors"
	"time"

	"civicreport-be/dedup"
	"civicreport-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoIssue is returned when a referenced issue does not exist.
var ErrNoIssue = errors.New("issue not found")

// Issues wraps the issues collection.
type Issues struct {
	col *mongo.Collection
}

// FindCandidates returns the open issues inside the query's bounding box, in
// store order.
func (s *Issues) FindCandidates(ctx context.Context, q dedup.CandidateQuery) ([]models.Issue, error) {
	cursor, err := s.col.Find(ctx, q.Filter())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// Insert stores a new issue, assigning its ID and timestamps.
func (s *Issues) Insert(ctx context.Context, issue *models.Issue) error {
	now := time.Now()
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	issue.CreatedAt = now
	issue.UpdatedAt = now

	_, err := s.col.InsertOne(ctx, issue)
	return err
}

// Merge folds one more report into an existing issue: reportCount is
// incremented and, when the reporter is known, added to the reporter set
// without duplicates. A single atomic update, so concurrent merges into the
// same issue never lose counts.
func (s *Issues) Merge(ctx context.Context, id primitive.ObjectID, reporter *primitive.ObjectID) (*models.Issue, error) {
	update := bson.M{
		"$inc": bson.M{"reportCount": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	if reporter != nil {
		update["$addToSet"] = bson.M{"reporters": *reporter}
	}

	var issue models.Issue
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoIssue
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// ByID fetches one issue.
func (s *Issues) ByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoIssue
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// FindStale returns open issues not updated since cutoff.
func (s *Issues) FindStale(ctx context.Context, cutoff time.Time) ([]models.Issue, error) {
	filter := bson.M{
		"status":    bson.M{"$in": models.OpenStatuses},
		"updatedAt": bson.M{"$lte": cutoff},
	}

	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// Escalate raises the issue one level, parks it as Pending and clears the
// handler references. A maxLevel > 0 makes the update conditional on the
// current level being below it; the guard lives in the filter so re-runs
// cannot double-escalate. ErrNoIssue is returned when nothing was updated,
// whether the issue is missing or already at the cap.
func (s *Issues) Escalate(ctx context.Context, id primitive.ObjectID, maxLevel int) (*models.Issue, error) {
	filter := bson.M{"_id": id}
	if maxLevel > 0 {
		filter["escalationLevel"] = bson.M{"$lt": maxLevel}
	}

	update := bson.M{
		"$inc":   bson.M{"escalationLevel": 1},
		"$set":   bson.M{"status": models.Pending, "updatedAt": time.Now()},
		"$unset": bson.M{"handledBy": "", "escalatedTo": ""},
	}

	var issue models.Issue
	err := s.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoIssue
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// Assign hands the issue to an admin and marks it in progress.
func (s *Issues) Assign(ctx context.Context, id, adminID primitive.ObjectID) (*models.Issue, error) {
	update := bson.M{
		"$set": bson.M{
			"handledBy":   adminID,
			"escalatedTo": adminID,
			"status":      models.InProgress,
			"updatedAt":   time.Now(),
		},
	}

	var issue models.Issue
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoIssue
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// SetStatus updates the status field.
func (s *Issues) SetStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus) (*models.Issue, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}

	var issue models.Issue
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoIssue
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// Delete removes an issue document. The boolean reports whether a document
// was actually deleted.
func (s *Issues) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
