package triage

import (
	"context"

	"civicreport-be/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actions are the admin-driven issue transitions.
type Actions struct {
	issues  IssueStore
	admins  AdminStore
	history HistoryStore
	log     zerolog.Logger
}

func NewActions(issues IssueStore, admins AdminStore, history HistoryStore, log zerolog.Logger) *Actions {
	return &Actions{issues: issues, admins: admins, history: history, log: log}
}

// Assign lets an admin claim an issue. Rejected with ErrInsufficientAccess
// when the admin's access level is below the issue's escalation level.
func (a *Actions) Assign(ctx context.Context, issueID, adminID primitive.ObjectID) (*models.Issue, error) {
	admin, err := a.admins.ByID(ctx, adminID)
	if err != nil {
		return nil, err
	}

	issue, err := a.issues.ByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if admin.AccessLevel < issue.EscalationLevel {
		return nil, ErrInsufficientAccess
	}

	updated, err := a.issues.Assign(ctx, issueID, adminID)
	if err != nil {
		return nil, err
	}

	a.appendHistory(ctx, models.StatusHistory{
		IssueID:   issueID,
		Status:    models.InProgress,
		HandledBy: &adminID,
		ChangedBy: &adminID,
	})
	a.log.Info().Str("issue", issueID.Hex()).Str("admin", adminID.Hex()).Msg("issue assigned")
	return updated, nil
}

// Escalate raises the issue one level at an admin's request. Unlike the
// sweeper this path is not capped by the maximum level.
func (a *Actions) Escalate(ctx context.Context, issueID, adminID primitive.ObjectID) (*models.Issue, error) {
	updated, err := a.issues.Escalate(ctx, issueID, 0)
	if err != nil {
		return nil, err
	}

	a.appendHistory(ctx, models.StatusHistory{
		IssueID:   issueID,
		Status:    models.Pending,
		HandledBy: nil,
		ChangedBy: &adminID,
	})
	a.log.Info().Str("issue", issueID.Hex()).Int("level", updated.EscalationLevel).
		Str("admin", adminID.Hex()).Msg("issue escalated manually")
	return updated, nil
}

// UpdateStatus sets the issue's status after validating it against the enum.
func (a *Actions) UpdateStatus(ctx context.Context, issueID, adminID primitive.ObjectID, status string) (*models.Issue, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	updated, err := a.issues.SetStatus(ctx, issueID, models.IssueStatus(status))
	if err != nil {
		return nil, err
	}

	a.appendHistory(ctx, models.StatusHistory{
		IssueID:   issueID,
		Status:    models.IssueStatus(status),
		HandledBy: &adminID,
		ChangedBy: &adminID,
	})
	return updated, nil
}

// History writes are audit side effects of an already-landed transition, so a
// failure is logged rather than surfaced.
func (a *Actions) appendHistory(ctx context.Context, entry models.StatusHistory) {
	if err := a.history.Append(ctx, entry); err != nil {
		a.log.Error().Err(err).Str("issue", entry.IssueID.Hex()).Msg("failed to append status history")
	}
}
