package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusHistory is an immutable audit record of one state transition on an
// issue. ChangedBy is nil when the transition was made by the escalation
// sweeper rather than an admin; that is the only way the two are told apart.
type StatusHistory struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	IssueID   primitive.ObjectID  `bson:"issueID" json:"issueID"`
	Status    IssueStatus         `bson:"status" json:"status"`
	HandledBy *primitive.ObjectID `bson:"handledBy" json:"handledBy"`
	ChangedBy *primitive.ObjectID `bson:"changedBy" json:"changedBy"`
	ChangedAt time.Time           `bson:"changedAt" json:"changedAt"`
}
