package store

import (
	"context"
	"errors"

	"civicreport-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNoAdmin is returned when a referenced admin does not exist.
var ErrNoAdmin = errors.New("admin not found")

// Admins wraps the admins collection.
type Admins struct {
	col *mongo.Collection
}

// ByID fetches one admin.
func (s *Admins) ByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var admin models.Admin
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoAdmin
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}
