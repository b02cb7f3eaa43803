package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"civicreport-be/config"
	"civicreport-be/models"
	"civicreport-be/store"
	"civicreport-be/triage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func adminIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return primitive.NilObjectID, false
	}
	objID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return objID, true
}

// GetAdminProfile returns the logged-in admin's own profile
func GetAdminProfile(c *gin.Context) {
	adminID, ok := adminIDFromContext(c)
	if !ok {
		return
	}

	if c.Param("id") != adminID.Hex() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorised access"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, err := stores.Admins.ByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, store.ErrNoAdmin) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, admin)
}

// UpdateAdminProfile updates the admin's profile fields
func UpdateAdminProfile(c *gin.Context) {
	adminID, ok := adminIDFromContext(c)
	if !ok {
		return
	}

	if c.Param("id") != adminID.Hex() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorised access"})
		return
	}

	var input struct {
		FullName    string `json:"fullName" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		PhoneNumber string `json:"phonenumber" binding:"required"`
		Department  string `json:"department" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adminCollection := config.GetCollection("admins")
	update := bson.M{"$set": bson.M{
		"fullName":    input.FullName,
		"email":       input.Email,
		"phonenumber": input.PhoneNumber,
		"department":  input.Department,
		"updatedAt":   time.Now(),
	}}

	res, err := adminCollection.UpdateOne(ctx, bson.M{"_id": adminID}, update)
	if err != nil {
		logger.Error().Err(err).Msg("error updating admin profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// UpdateIssueStatus sets an issue's status and records the change
func UpdateIssueStatus(c *gin.Context) {
	adminID, ok := adminIDFromContext(c)
	if !ok {
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("issueid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID format"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := triageSvc.UpdateStatus(ctx, issueID, adminID, input.Status)
	if err != nil {
		switch {
		case errors.Is(err, triage.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
		case errors.Is(err, store.ErrNoIssue):
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		default:
			logger.Error().Err(err).Msg("error updating status")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue updated successfully", "issue": issue})
}

// AssignIssue lets an admin claim an issue if their access level allows it
func AssignIssue(c *gin.Context) {
	adminID, ok := adminIDFromContext(c)
	if !ok {
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("issueid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID format"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := triageSvc.Assign(ctx, issueID, adminID)
	if err != nil {
		switch {
		case errors.Is(err, triage.ErrInsufficientAccess):
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient admin level to take this issue"})
		case errors.Is(err, store.ErrNoAdmin):
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		case errors.Is(err, store.ErrNoIssue):
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		default:
			logger.Error().Err(err).Msg("error assigning issue")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Issue assigned to you", "issue": issue})
}

// EscalateIssue raises an issue's escalation level at an admin's request
func EscalateIssue(c *gin.Context) {
	adminID, ok := adminIDFromContext(c)
	if !ok {
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("issueid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID format"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := triageSvc.Escalate(ctx, issueID, adminID)
	if err != nil {
		if errors.Is(err, store.ErrNoIssue) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			logger.Error().Err(err).Msg("error escalating issue")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Issue escalated", "issue": issue})
}

// GetEscalatedIssues returns open issues at escalation level 2 or above,
// together with the admin who escalated them when the escalation was manual
func GetEscalatedIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issueCollection := config.GetCollection("issues")
	adminCollection := config.GetCollection("admins")

	filter := bson.M{
		"escalationLevel": bson.M{"$gte": 2},
		"status":          bson.M{"$in": models.OpenStatuses},
	}

	cursor, err := issueCollection.Find(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server Error"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server Error"})
		return
	}

	type escalatedView struct {
		models.Issue
		EscalatedBy *models.Admin `json:"escalatedBy"`
	}

	views := make([]escalatedView, 0, len(issues))
	for _, issue := range issues {
		view := escalatedView{Issue: issue}

		// Most recent admin-made transition; nil means the sweeper did it.
		if entry, err := stores.History.LatestActor(ctx, issue.ID); err == nil && entry != nil && entry.ChangedBy != nil {
			var admin models.Admin
			if err := adminCollection.FindOne(ctx, bson.M{"_id": *entry.ChangedBy}).Decode(&admin); err == nil {
				admin.Password = ""
				view.EscalatedBy = &admin
			}
		}

		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "issues": views})
}

// GetEscalatedIssuesCount counts open issues at escalation level 2 or above
func GetEscalatedIssuesCount(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issueCollection := config.GetCollection("issues")

	count, err := issueCollection.CountDocuments(ctx, bson.M{
		"escalationLevel": bson.M{"$gte": 2},
		"status":          bson.M{"$in": models.OpenStatuses},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// GetHandledIssues returns the issues whose latest admin-made transition was
// made by the logged-in admin
func GetHandledIssues(c *gin.Context) {
	adminID, ok := adminIDFromContext(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	historyCollection := config.GetCollection("issue_status_history")
	issueCollection := config.GetCollection("issues")

	cursor, err := historyCollection.Find(ctx,
		bson.M{"handledBy": adminID},
		options.Find().SetSort(bson.D{{Key: "changedAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server Error"})
		return
	}
	defer cursor.Close(ctx)

	var entries []models.StatusHistory
	if err := cursor.All(ctx, &entries); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server Error"})
		return
	}

	// Newest entry per issue wins.
	latest := make(map[primitive.ObjectID]models.StatusHistory)
	for _, entry := range entries {
		if _, seen := latest[entry.IssueID]; !seen {
			latest[entry.IssueID] = entry
		}
	}

	type handledView struct {
		models.Issue
		LastStatus  models.IssueStatus `json:"lastStatus"`
		LastUpdated time.Time          `json:"lastUpdated"`
		IsRejected  bool               `json:"isRejected"`
	}

	views := make([]handledView, 0, len(latest))
	for issueID, entry := range latest {
		var issue models.Issue
		if err := issueCollection.FindOne(ctx, bson.M{"_id": issueID}).Decode(&issue); err != nil {
			continue
		}
		views = append(views, handledView{
			Issue:       issue,
			LastStatus:  entry.Status,
			LastUpdated: entry.ChangedAt,
			IsRejected:  entry.Status == models.Rejected,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "issues": views})
}
