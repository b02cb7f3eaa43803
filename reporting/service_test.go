package reporting

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"civicreport-be/config"
	"civicreport-be/dedup"
	"civicreport-be/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeIssueStore struct {
	issues map[primitive.ObjectID]*models.Issue
}

func newFakeIssueStore() *fakeIssueStore {
	return &fakeIssueStore{issues: make(map[primitive.ObjectID]*models.Issue)}
}

func (f *fakeIssueStore) FindCandidates(_ context.Context, _ dedup.CandidateQuery) ([]models.Issue, error) {
	var out []models.Issue
	for _, issue := range f.issues {
		out = append(out, *issue)
	}
	return out, nil
}

func (f *fakeIssueStore) Insert(_ context.Context, issue *models.Issue) error {
	issue.ID = primitive.NewObjectID()
	f.issues[issue.ID] = issue
	return nil
}

func (f *fakeIssueStore) Merge(_ context.Context, id primitive.ObjectID, reporter *primitive.ObjectID) (*models.Issue, error) {
	issue, ok := f.issues[id]
	if !ok {
		return nil, errors.New("issue not found")
	}
	issue.ReportCount++
	if reporter != nil {
		present := false
		for _, r := range issue.Reporters {
			if r == *reporter {
				present = true
				break
			}
		}
		if !present {
			issue.Reporters = append(issue.Reporters, *reporter)
		}
	}
	return issue, nil
}

type fakeMediaStore struct {
	rows       []models.Media
	insertErr  error
	hashErrors error
}

func (f *fakeMediaStore) Insert(_ context.Context, m *models.Media) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	m.ID = primitive.NewObjectID()
	f.rows = append(f.rows, *m)
	return nil
}

func (f *fakeMediaStore) HashesByIssue(_ context.Context, issueID primitive.ObjectID) ([]string, error) {
	if f.hashErrors != nil {
		return nil, f.hashErrors
	}
	var hashes []string
	for _, m := range f.rows {
		if m.IssueID == issueID && m.FileType == models.MediaImage && m.Phash != nil {
			hashes = append(hashes, *m.Phash)
		}
	}
	return hashes, nil
}

func testSettings() config.Settings {
	return config.Settings{
		DuplicateRadiusMeters:   50,
		PhashHammingThreshold:   10,
		DuplicateWindowDays:     30,
		TextSimilarityThreshold: 0.6,
	}
}

func newTestService(issues *fakeIssueStore, media *fakeMediaStore, hash Hasher) *Service {
	if hash == nil {
		hash = func(string) (string, error) { return "", errors.New("no hasher") }
	}
	return NewService(issues, media, hash, testSettings(), zerolog.Nop())
}

func submission(reporter *primitive.ObjectID) Submission {
	return Submission{
		Category:    models.Road,
		Title:       "pothole on main street",
		Description: "deep pothole near the school",
		Location:    models.Location{Latitude: 12.9716, Longitude: 77.5946},
		Reporter:    reporter,
	}
}

func TestSubmitCreatesNewIssue(t *testing.T) {
	issues := newFakeIssueStore()
	media := &fakeMediaStore{}
	svc := newTestService(issues, media, nil)

	reporter := primitive.NewObjectID()
	result, err := svc.Submit(context.Background(), submission(&reporter))
	require.NoError(t, err)

	assert.False(t, result.Merged)
	assert.Equal(t, models.Reported, result.Issue.Status)
	assert.Equal(t, 1, result.Issue.ReportCount)
	assert.Equal(t, 1, result.Issue.EscalationLevel)
	assert.Equal(t, []primitive.ObjectID{reporter}, result.Issue.Reporters)
}

func TestSubmitAnonymousIssueHasNoReporters(t *testing.T) {
	issues := newFakeIssueStore()
	svc := newTestService(issues, &fakeMediaStore{}, nil)

	result, err := svc.Submit(context.Background(), submission(nil))
	require.NoError(t, err)

	assert.Nil(t, result.Issue.CitizenID)
	assert.Empty(t, result.Issue.Reporters)
	assert.Equal(t, 1, result.Issue.ReportCount)
}

func TestSubmitMergesTextDuplicate(t *testing.T) {
	issues := newFakeIssueStore()
	media := &fakeMediaStore{}
	svc := newTestService(issues, media, nil)

	first := primitive.NewObjectID()
	r1, err := svc.Submit(context.Background(), submission(&first))
	require.NoError(t, err)
	require.False(t, r1.Merged)

	second := primitive.NewObjectID()
	r2, err := svc.Submit(context.Background(), submission(&second))
	require.NoError(t, err)

	assert.True(t, r2.Merged)
	assert.Equal(t, r1.Issue.ID, r2.Issue.ID)
	assert.Equal(t, 2, r2.Issue.ReportCount)
	assert.ElementsMatch(t, []primitive.ObjectID{first, second}, r2.Issue.Reporters)
	assert.Len(t, issues.issues, 1)
}

func TestSubmitSameReporterNotDuplicated(t *testing.T) {
	issues := newFakeIssueStore()
	svc := newTestService(issues, &fakeMediaStore{}, nil)

	reporter := primitive.NewObjectID()
	_, err := svc.Submit(context.Background(), submission(&reporter))
	require.NoError(t, err)

	r2, err := svc.Submit(context.Background(), submission(&reporter))
	require.NoError(t, err)

	assert.True(t, r2.Merged)
	assert.Equal(t, 2, r2.Issue.ReportCount)
	assert.Equal(t, []primitive.ObjectID{reporter}, r2.Issue.Reporters)
}

func TestSubmitMergesOnImageHash(t *testing.T) {
	issues := newFakeIssueStore()
	media := &fakeMediaStore{}

	hash := "ff00ff00ff00ff00"
	svc := newTestService(issues, media, func(string) (string, error) { return hash, nil })

	sub := submission(nil)
	sub.Uploads = []Upload{{Path: "/tmp/a.jpg", Filename: "a.jpg", MimeType: "image/jpeg"}}
	r1, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.False(t, r1.Merged)
	require.Len(t, r1.Media, 1)
	require.NotNil(t, r1.Media[0].Phash)

	// Second report: unrelated text, same photo.
	sub2 := sub
	sub2.Title = "something else entirely"
	sub2.Description = "different words here"
	r2, err := svc.Submit(context.Background(), sub2)
	require.NoError(t, err)

	assert.True(t, r2.Merged)
	assert.Equal(t, r1.Issue.ID, r2.Issue.ID)
}

func TestSubmitHashFailureTolerated(t *testing.T) {
	issues := newFakeIssueStore()
	media := &fakeMediaStore{}
	svc := newTestService(issues, media, func(string) (string, error) {
		return "", errors.New("corrupt image")
	})

	sub := submission(nil)
	sub.Uploads = []Upload{{Path: "/tmp/bad.jpg", Filename: "bad.jpg", MimeType: "image/jpeg"}}

	result, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)

	require.Len(t, result.Media, 1)
	assert.Nil(t, result.Media[0].Phash)
}

func TestSubmitVideosAreNeverHashed(t *testing.T) {
	issues := newFakeIssueStore()
	media := &fakeMediaStore{}

	var calls int32
	svc := newTestService(issues, media, func(string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "ff00ff00ff00ff00", nil
	})

	sub := submission(nil)
	sub.Uploads = []Upload{
		{Path: "/tmp/clip.mp4", Filename: "clip.mp4", MimeType: "video/mp4"},
		{Path: "/tmp/a.jpg", Filename: "a.jpg", MimeType: "image/jpeg"},
	}

	result, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.Len(t, result.Media, 2)
	assert.Equal(t, models.MediaVideo, result.Media[0].FileType)
	assert.Nil(t, result.Media[0].Phash)
	assert.Equal(t, models.MediaImage, result.Media[1].FileType)
	assert.NotNil(t, result.Media[1].Phash)
}

func TestSubmitHashesComputedOncePerUpload(t *testing.T) {
	issues := newFakeIssueStore()
	media := &fakeMediaStore{}

	var calls int32
	svc := newTestService(issues, media, func(string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "ff00ff00ff00ff00", nil
	})

	sub := submission(nil)
	sub.Uploads = []Upload{{Path: "/tmp/a.jpg", Filename: "a.jpg", MimeType: "image/jpeg"}}
	_, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)

	// Merge path: the hash from resolution is reused for the media row.
	_, err = svc.Submit(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSubmitMediaFailureDoesNotFailSubmission(t *testing.T) {
	issues := newFakeIssueStore()
	media := &fakeMediaStore{insertErr: errors.New("disk full")}
	svc := newTestService(issues, media, nil)

	sub := submission(nil)
	sub.Uploads = []Upload{{Path: "/tmp/clip.mp4", Filename: "clip.mp4", MimeType: "video/mp4"}}

	result, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)

	assert.NotNil(t, result.Issue)
	assert.Empty(t, result.Media)
	assert.Len(t, issues.issues, 1)
}
