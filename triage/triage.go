// Package triage covers what happens to an issue after it is filed: admins
// claiming and resolving it, manual escalation, and the background sweeper
// that escalates issues nobody has touched. Every transition lands in the
// append-only status history.
package triage

import (
	"context"
	"errors"
	"time"

	"civicreport-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInsufficientAccess means the admin's access level is below the
	// issue's escalation level.
	ErrInsufficientAccess = errors.New("insufficient admin level to take this issue")
	// ErrInvalidStatus means the requested status is not one of the enum.
	ErrInvalidStatus = errors.New("invalid status value")
)

// IssueStore is the slice of the issue store triage needs. Escalate with
// maxLevel <= 0 is uncapped; with a positive maxLevel the store applies the
// level guard atomically and reports no-document when it does not hold.
type IssueStore interface {
	ByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	FindStale(ctx context.Context, cutoff time.Time) ([]models.Issue, error)
	Escalate(ctx context.Context, id primitive.ObjectID, maxLevel int) (*models.Issue, error)
	Assign(ctx context.Context, id, adminID primitive.ObjectID) (*models.Issue, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus) (*models.Issue, error)
}

// AdminStore resolves admins for the access-level check.
type AdminStore interface {
	ByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
}

// HistoryStore appends audit entries.
type HistoryStore interface {
	Append(ctx context.Context, entry models.StatusHistory) error
}
