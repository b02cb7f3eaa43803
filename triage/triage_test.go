package triage

import (
	"context"
	"errors"
	"testing"
	"time"

	"civicreport-be/config"
	"civicreport-be/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errNotFound = errors.New("issue not found")

type fakeIssueStore struct {
	issues map[primitive.ObjectID]*models.Issue
}

func newFakeIssueStore(issues ...*models.Issue) *fakeIssueStore {
	f := &fakeIssueStore{issues: make(map[primitive.ObjectID]*models.Issue)}
	for _, issue := range issues {
		if issue.ID.IsZero() {
			issue.ID = primitive.NewObjectID()
		}
		f.issues[issue.ID] = issue
	}
	return f
}

func (f *fakeIssueStore) ByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	issue, ok := f.issues[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *issue
	return &copied, nil
}

func (f *fakeIssueStore) FindStale(_ context.Context, cutoff time.Time) ([]models.Issue, error) {
	var out []models.Issue
	for _, issue := range f.issues {
		open := false
		for _, s := range models.OpenStatuses {
			if string(issue.Status) == s {
				open = true
				break
			}
		}
		if open && !issue.UpdatedAt.After(cutoff) {
			out = append(out, *issue)
		}
	}
	return out, nil
}

func (f *fakeIssueStore) Escalate(_ context.Context, id primitive.ObjectID, maxLevel int) (*models.Issue, error) {
	issue, ok := f.issues[id]
	if !ok {
		return nil, errNotFound
	}
	if maxLevel > 0 && issue.EscalationLevel >= maxLevel {
		return nil, errNotFound
	}
	issue.EscalationLevel++
	issue.Status = models.Pending
	issue.HandledBy = nil
	issue.EscalatedTo = nil
	issue.UpdatedAt = time.Now()
	copied := *issue
	return &copied, nil
}

func (f *fakeIssueStore) Assign(_ context.Context, id, adminID primitive.ObjectID) (*models.Issue, error) {
	issue, ok := f.issues[id]
	if !ok {
		return nil, errNotFound
	}
	issue.HandledBy = &adminID
	issue.Status = models.InProgress
	issue.UpdatedAt = time.Now()
	copied := *issue
	return &copied, nil
}

func (f *fakeIssueStore) SetStatus(_ context.Context, id primitive.ObjectID, status models.IssueStatus) (*models.Issue, error) {
	issue, ok := f.issues[id]
	if !ok {
		return nil, errNotFound
	}
	issue.Status = status
	issue.UpdatedAt = time.Now()
	copied := *issue
	return &copied, nil
}

type fakeAdminStore struct {
	admins map[primitive.ObjectID]*models.Admin
}

func newFakeAdminStore(admins ...*models.Admin) *fakeAdminStore {
	f := &fakeAdminStore{admins: make(map[primitive.ObjectID]*models.Admin)}
	for _, a := range admins {
		if a.ID.IsZero() {
			a.ID = primitive.NewObjectID()
		}
		f.admins[a.ID] = a
	}
	return f
}

func (f *fakeAdminStore) ByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	admin, ok := f.admins[id]
	if !ok {
		return nil, errors.New("admin not found")
	}
	return admin, nil
}

type fakeHistoryStore struct {
	entries []models.StatusHistory
}

func (f *fakeHistoryStore) Append(_ context.Context, entry models.StatusHistory) error {
	f.entries = append(f.entries, entry)
	return nil
}

func sweeperSettings() config.Settings {
	return config.Settings{
		EscalationDays:     7,
		MaxEscalationLevel: 2,
		SweepInterval:      24 * time.Hour,
	}
}

func openIssue(level int, age time.Duration) *models.Issue {
	return &models.Issue{
		ID:              primitive.NewObjectID(),
		Category:        models.Road,
		Title:           "streetlight out",
		Status:          models.Reported,
		EscalationLevel: level,
		ReportCount:     1,
		CreatedAt:       time.Now().Add(-age),
		UpdatedAt:       time.Now().Add(-age),
	}
}

func TestSweepEscalatesStaleIssue(t *testing.T) {
	issue := openIssue(1, 8*24*time.Hour)
	issues := newFakeIssueStore(issue)
	history := &fakeHistoryStore{}

	sw := NewSweeper(issues, history, sweeperSettings(), zerolog.Nop())
	require.NoError(t, sw.Sweep(context.Background()))

	got := issues.issues[issue.ID]
	assert.Equal(t, 2, got.EscalationLevel)
	assert.Equal(t, models.Pending, got.Status)
	assert.Nil(t, got.HandledBy)
	assert.Nil(t, got.EscalatedTo)

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.Equal(t, issue.ID, entry.IssueID)
	assert.Equal(t, models.Pending, entry.Status)
	assert.Nil(t, entry.ChangedBy)
	assert.Nil(t, entry.HandledBy)
}

func TestSweepSkipsMaxLevelIssue(t *testing.T) {
	issue := openIssue(2, 30*24*time.Hour)
	issues := newFakeIssueStore(issue)
	history := &fakeHistoryStore{}

	sw := NewSweeper(issues, history, sweeperSettings(), zerolog.Nop())
	require.NoError(t, sw.Sweep(context.Background()))

	assert.Equal(t, 2, issues.issues[issue.ID].EscalationLevel)
	assert.Equal(t, models.Reported, issues.issues[issue.ID].Status)
	assert.Empty(t, history.entries)
}

func TestSweepSkipsFreshAndClosedIssues(t *testing.T) {
	fresh := openIssue(1, 2*24*time.Hour)
	resolved := openIssue(1, 30*24*time.Hour)
	resolved.Status = models.Resolved
	issues := newFakeIssueStore(fresh, resolved)
	history := &fakeHistoryStore{}

	sw := NewSweeper(issues, history, sweeperSettings(), zerolog.Nop())
	require.NoError(t, sw.Sweep(context.Background()))

	assert.Equal(t, 1, issues.issues[fresh.ID].EscalationLevel)
	assert.Equal(t, 1, issues.issues[resolved.ID].EscalationLevel)
	assert.Empty(t, history.entries)
}

func TestSweepEscalatesOncePerIssue(t *testing.T) {
	issue := openIssue(1, 8*24*time.Hour)
	issues := newFakeIssueStore(issue)
	history := &fakeHistoryStore{}

	sw := NewSweeper(issues, history, sweeperSettings(), zerolog.Nop())
	frozen := time.Now()
	sw.now = func() time.Time { return frozen }

	require.NoError(t, sw.Sweep(context.Background()))
	require.NoError(t, sw.Sweep(context.Background()))

	assert.Equal(t, 2, issues.issues[issue.ID].EscalationLevel)
	assert.Len(t, history.entries, 1)
}

func TestAssignRejectsLowerAccessLevel(t *testing.T) {
	issue := openIssue(2, time.Hour)
	issues := newFakeIssueStore(issue)
	admin := &models.Admin{AccessLevel: 1}
	admins := newFakeAdminStore(admin)
	history := &fakeHistoryStore{}

	actions := NewActions(issues, admins, history, zerolog.Nop())
	_, err := actions.Assign(context.Background(), issue.ID, admin.ID)

	assert.ErrorIs(t, err, ErrInsufficientAccess)
	assert.Nil(t, issues.issues[issue.ID].HandledBy)
	assert.Empty(t, history.entries)
}

func TestAssignRecordsHandlerAndHistory(t *testing.T) {
	issue := openIssue(2, time.Hour)
	issues := newFakeIssueStore(issue)
	admin := &models.Admin{AccessLevel: 2}
	admins := newFakeAdminStore(admin)
	history := &fakeHistoryStore{}

	actions := NewActions(issues, admins, history, zerolog.Nop())
	updated, err := actions.Assign(context.Background(), issue.ID, admin.ID)
	require.NoError(t, err)

	assert.Equal(t, models.InProgress, updated.Status)
	require.NotNil(t, updated.HandledBy)
	assert.Equal(t, admin.ID, *updated.HandledBy)

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.Equal(t, models.InProgress, entry.Status)
	require.NotNil(t, entry.ChangedBy)
	assert.Equal(t, admin.ID, *entry.ChangedBy)
	require.NotNil(t, entry.HandledBy)
	assert.Equal(t, admin.ID, *entry.HandledBy)
}

func TestManualEscalateIsNotCapped(t *testing.T) {
	issue := openIssue(2, time.Hour)
	issues := newFakeIssueStore(issue)
	admin := &models.Admin{AccessLevel: 2}
	admins := newFakeAdminStore(admin)
	history := &fakeHistoryStore{}

	actions := NewActions(issues, admins, history, zerolog.Nop())
	updated, err := actions.Escalate(context.Background(), issue.ID, admin.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, updated.EscalationLevel)
	assert.Equal(t, models.Pending, updated.Status)
	assert.Nil(t, updated.HandledBy)

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.Equal(t, models.Pending, entry.Status)
	require.NotNil(t, entry.ChangedBy)
	assert.Equal(t, admin.ID, *entry.ChangedBy)
	assert.Nil(t, entry.HandledBy)
}

func TestUpdateStatusValidatesEnum(t *testing.T) {
	issue := openIssue(1, time.Hour)
	issues := newFakeIssueStore(issue)
	admin := &models.Admin{AccessLevel: 1}
	admins := newFakeAdminStore(admin)
	history := &fakeHistoryStore{}

	actions := NewActions(issues, admins, history, zerolog.Nop())

	_, err := actions.UpdateStatus(context.Background(), issue.ID, admin.ID, "Closed")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, history.entries)

	updated, err := actions.UpdateStatus(context.Background(), issue.ID, admin.ID, string(models.Resolved))
	require.NoError(t, err)
	assert.Equal(t, models.Resolved, updated.Status)
	require.Len(t, history.entries, 1)
	assert.Equal(t, models.Resolved, history.entries[0].Status)
}
