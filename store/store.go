// Package store holds the MongoDB-backed implementations of the narrow store
// interfaces the reporting and triage services consume.
package store

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// Stores bundles the per-collection stores over one database handle.
type Stores struct {
	Issues  *Issues
	Media   *Media
	History *History
	Admins  *Admins
}

func New(db *mongo.Database) *Stores {
	return &Stores{
		Issues:  &Issues{col: db.Collection("issues")},
		Media:   &Media{col: db.Collection("media")},
		History: &History{col: db.Collection("issue_status_history")},
		Admins:  &Admins{col: db.Collection("admins")},
	}
}
