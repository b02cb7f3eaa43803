package dedup

import (
	"context"

	"civicreport-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaHashes returns the stored perceptual hashes of a candidate's image
// attachments. Unhashed and video attachments are not included.
type MediaHashes func(ctx context.Context, issueID primitive.ObjectID) ([]string, error)

// Incoming is the part of a submission the resolver compares against
// candidates. Hashes holds one entry per incoming image; a nil entry means
// hashing failed and the image cannot match anything.
type Incoming struct {
	Latitude    float64
	Longitude   float64
	Title       string
	Description string
	Hashes      []*string
}

// Resolver applies the tiered duplicate policy to a candidate sequence.
type Resolver struct {
	RadiusMeters    float64
	HammingMax      int
	TextThreshold   float64
	CandidateHashes MediaHashes
}

// Resolve walks the candidates in store order and returns the first one that
// matches, or nil. Per candidate: a precise distance gate first, then any
// image-hash pair within the hamming budget, then the combined title and
// description text similarity as a fallback. There is no global best-match
// search; the first satisfying candidate wins.
func (r *Resolver) Resolve(ctx context.Context, in Incoming, candidates []models.Issue) (*models.Issue, error) {
	for i := range candidates {
		cand := &candidates[i]

		dist := HaversineMeters(in.Latitude, in.Longitude, cand.Location.Latitude, cand.Location.Longitude)
		if dist > r.RadiusMeters {
			// Bounding-box corner outside the true circle.
			continue
		}

		match, err := r.imageMatch(ctx, in.Hashes, cand.ID)
		if err != nil {
			return nil, err
		}
		if match {
			return cand, nil
		}

		inText := in.Title + " " + in.Description
		candText := cand.Title + " " + cand.Description
		if TokenJaccard(inText, candText) >= r.TextThreshold {
			return cand, nil
		}
	}
	return nil, nil
}

func (r *Resolver) imageMatch(ctx context.Context, incoming []*string, candID primitive.ObjectID) (bool, error) {
	usable := false
	for _, h := range incoming {
		if h != nil {
			usable = true
			break
		}
	}
	if !usable {
		return false, nil
	}

	stored, err := r.CandidateHashes(ctx, candID)
	if err != nil {
		return false, err
	}

	for _, candHash := range stored {
		for _, inHash := range incoming {
			if inHash == nil {
				continue
			}
			if HammingDistance(candHash, *inHash) <= r.HammingMax {
				return true, nil
			}
		}
	}
	return false, nil
}
