// Package reporting orchestrates report ingestion: hash the uploaded images,
// look for an already-open duplicate, then either fold the report into the
// matched issue or create a new one with its attachments.
package reporting

import (
	"context"
	"time"

	"civicreport-be/config"
	"civicreport-be/dedup"
	"civicreport-be/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// IssueStore is the slice of the issue store ingestion needs.
type IssueStore interface {
	FindCandidates(ctx context.Context, q dedup.CandidateQuery) ([]models.Issue, error)
	Insert(ctx context.Context, issue *models.Issue) error
	Merge(ctx context.Context, id primitive.ObjectID, reporter *primitive.ObjectID) (*models.Issue, error)
}

// MediaStore persists attachments and serves stored hashes to the resolver.
type MediaStore interface {
	Insert(ctx context.Context, m *models.Media) error
	HashesByIssue(ctx context.Context, issueID primitive.ObjectID) ([]string, error)
}

// Hasher is the perceptual hash provider: image file path in, hex hash out.
// An error means the file was unreadable or corrupt; ingestion records the
// hash as absent and carries on.
type Hasher func(path string) (string, error)

// Upload is one file received with a submission, already staged on disk.
type Upload struct {
	Path     string
	Filename string
	MimeType string
}

// Submission is a validated report ready for ingestion.
type Submission struct {
	Category    models.IssueCategory
	Title       string
	Description string
	Location    models.Location
	Reporter    *primitive.ObjectID
	Uploads     []Upload
}

// Result is the outcome of one submission.
type Result struct {
	Issue  *models.Issue
	Media  []models.Media
	Merged bool
}

// Service wires the duplicate resolver between the stores.
type Service struct {
	issues IssueStore
	media  MediaStore
	hash   Hasher
	cfg    config.Settings
	log    zerolog.Logger
}

func NewService(issues IssueStore, media MediaStore, hash Hasher, cfg config.Settings, log zerolog.Logger) *Service {
	return &Service{issues: issues, media: media, hash: hash, cfg: cfg, log: log}
}

// Submit ingests one report. The issue write is the primary effect: if it
// fails the submission fails. Attachment writes are lenient; a failed media
// row is logged and dropped rather than rolling back the issue.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Result, error) {
	hashes := s.computeHashes(ctx, sub.Uploads)

	candidates, err := s.issues.FindCandidates(ctx, dedup.CandidateQuery{
		Category:     sub.Category,
		Latitude:     sub.Location.Latitude,
		Longitude:    sub.Location.Longitude,
		RadiusMeters: s.cfg.DuplicateRadiusMeters,
		Since:        time.Now().Add(-s.cfg.DuplicateWindow()),
	})
	if err != nil {
		return nil, err
	}

	resolver := &dedup.Resolver{
		RadiusMeters:    s.cfg.DuplicateRadiusMeters,
		HammingMax:      s.cfg.PhashHammingThreshold,
		TextThreshold:   s.cfg.TextSimilarityThreshold,
		CandidateHashes: s.media.HashesByIssue,
	}

	matched, err := resolver.Resolve(ctx, dedup.Incoming{
		Latitude:    sub.Location.Latitude,
		Longitude:   sub.Location.Longitude,
		Title:       sub.Title,
		Description: sub.Description,
		Hashes:      hashes,
	}, candidates)
	if err != nil {
		return nil, err
	}

	if matched != nil {
		issue, err := s.issues.Merge(ctx, matched.ID, sub.Reporter)
		if err != nil {
			return nil, err
		}
		media := s.attachMedia(ctx, issue.ID, sub.Uploads, hashes)
		s.log.Info().Str("issue", issue.ID.Hex()).Int("reportCount", issue.ReportCount).
			Msg("report merged into existing issue")
		return &Result{Issue: issue, Media: media, Merged: true}, nil
	}

	issue := &models.Issue{
		CitizenID:       sub.Reporter,
		Category:        sub.Category,
		Title:           sub.Title,
		Description:     sub.Description,
		Location:        sub.Location,
		Status:          models.Reported,
		EscalationLevel: 1,
		ReportCount:     1,
		Reporters:       []primitive.ObjectID{},
	}
	if sub.Reporter != nil {
		issue.Reporters = []primitive.ObjectID{*sub.Reporter}
	}

	if err := s.issues.Insert(ctx, issue); err != nil {
		return nil, err
	}
	media := s.attachMedia(ctx, issue.ID, sub.Uploads, hashes)
	s.log.Info().Str("issue", issue.ID.Hex()).Msg("issue created")
	return &Result{Issue: issue, Media: media, Merged: false}, nil
}

// computeHashes hashes every image upload concurrently. The result maps back
// to the uploads positionally; a nil entry is a video or a failed hash.
func (s *Service) computeHashes(ctx context.Context, uploads []Upload) []*string {
	hashes := make([]*string, len(uploads))

	g, _ := errgroup.WithContext(ctx)
	for i, up := range uploads {
		if models.MediaTypeFor(up.MimeType) != models.MediaImage {
			continue
		}
		i, up := i, up
		g.Go(func() error {
			h, err := s.hash(up.Path)
			if err != nil {
				s.log.Warn().Err(err).Str("file", up.Filename).Msg("phash failed, storing without hash")
				return nil
			}
			hashes[i] = &h
			return nil
		})
	}
	_ = g.Wait()
	return hashes
}

// attachMedia persists one row per upload, reusing the hashes already
// computed for resolution instead of recomputing them.
func (s *Service) attachMedia(ctx context.Context, issueID primitive.ObjectID, uploads []Upload, hashes []*string) []models.Media {
	var saved []models.Media
	for i, up := range uploads {
		m := models.Media{
			IssueID:  issueID,
			FileType: models.MediaTypeFor(up.MimeType),
			URL:      up.Path,
			Filename: up.Filename,
		}
		if m.FileType == models.MediaImage {
			m.Phash = hashes[i]
		}

		if err := s.media.Insert(ctx, &m); err != nil {
			s.log.Error().Err(err).Str("issue", issueID.Hex()).Str("file", up.Filename).
				Msg("failed to persist attachment")
			continue
		}
		saved = append(saved, m)
	}
	return saved
}
