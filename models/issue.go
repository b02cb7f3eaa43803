package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Road        IssueCategory = "Road"
	Water       IssueCategory = "Water"
	Sanitation  IssueCategory = "Sanitation"
	Electricity IssueCategory = "Electricity"
	Other       IssueCategory = "Other"
)

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	switch IssueCategory(c) {
	case Road, Water, Sanitation, Electricity, Other:
		return true
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	Reported   IssueStatus = "Reported"
	InProgress IssueStatus = "In Progress"
	Resolved   IssueStatus = "Resolved"
	Rejected   IssueStatus = "Rejected"
	Pending    IssueStatus = "Pending"
)

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s string) bool {
	switch IssueStatus(s) {
	case Reported, InProgress, Resolved, Rejected, Pending:
		return true
	}
	return false
}

// OpenStatuses are the statuses the escalation sweeper and the duplicate
// matcher treat as still actionable. Resolved and Rejected are terminal.
var OpenStatuses = []string{string(Reported), string(InProgress), string(Pending)}

// Location is the embedded geolocation of an issue.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Address   string  `bson:"address,omitempty" json:"address,omitempty"`
}

// Issue represents a civic incident. Duplicate submissions fold into one
// document: reportCount grows and reporters collects the distinct citizens.
type Issue struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CitizenID       *primitive.ObjectID  `bson:"citizenId,omitempty" json:"citizenId,omitempty"`
	Category        IssueCategory        `bson:"issueType" json:"issueType"`
	Title           string               `bson:"title" json:"title"`
	Description     string               `bson:"description" json:"description"`
	Location        Location             `bson:"location" json:"location"`
	Status          IssueStatus          `bson:"status" json:"status"`
	EscalationLevel int                  `bson:"escalationLevel" json:"escalationLevel"`
	ReportCount     int                  `bson:"reportCount" json:"reportCount"`
	Reporters       []primitive.ObjectID `bson:"reporters" json:"reporters"`
	HandledBy       *primitive.ObjectID  `bson:"handledBy,omitempty" json:"handledBy,omitempty"`
	EscalatedTo     *primitive.ObjectID  `bson:"escalatedTo,omitempty" json:"escalatedTo,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}
