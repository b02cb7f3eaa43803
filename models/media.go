package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaType enum
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// MediaTypeFor classifies an upload by its MIME type. Anything that is not a
// video is stored as an image, mirroring how uploads are hashed.
func MediaTypeFor(mimeType string) MediaType {
	if strings.HasPrefix(mimeType, "video") {
		return MediaVideo
	}
	return MediaImage
}

// Media is one uploaded asset bound to exactly one issue. Phash is present
// only for images; it is computed once at ingestion and never changes, except
// for the one-shot backfill that fills historically missing hashes.
type Media struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueID   primitive.ObjectID `bson:"issueID" json:"issueID"`
	FileType  MediaType          `bson:"fileType" json:"fileType"`
	URL       string             `bson:"url" json:"url"`
	Filename  string             `bson:"filename" json:"filename"`
	Phash     *string            `bson:"phash,omitempty" json:"phash,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
