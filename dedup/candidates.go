package dedup

import (
	"math"
	"time"

	"civicreport-be/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Meters of latitude per degree, and the basis for longitude degrees before
// the cosine correction.
const metersPerDegree = 111320

// CandidateQuery bounds the candidate set before any expensive comparison:
// same category, still open, recent, and inside a bounding box around the
// incoming point.
type CandidateQuery struct {
	Category     models.IssueCategory
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	Since        time.Time
}

// Filter renders the query as a store filter. The box is a square superset of
// the true radius; candidates in its corners are removed later by the precise
// haversine check.
func (q CandidateQuery) Filter() bson.M {
	deltaLat := q.RadiusMeters / metersPerDegree
	deltaLon := q.RadiusMeters / (metersPerDegree * cosDeg(q.Latitude))

	return bson.M{
		"issueType": q.Category,
		"status":    bson.M{"$nin": []string{string(models.Resolved), string(models.Rejected)}},
		"createdAt": bson.M{"$gte": q.Since},
		"location.latitude": bson.M{
			"$gte": q.Latitude - deltaLat,
			"$lte": q.Latitude + deltaLat,
		},
		"location.longitude": bson.M{
			"$gte": q.Longitude - deltaLon,
			"$lte": q.Longitude + deltaLon,
		},
	}
}

func cosDeg(deg float64) float64 {
	return math.Cos(deg * math.Pi / 180)
}
