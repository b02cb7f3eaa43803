package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"civicreport-be/config"
	"civicreport-be/models"
	"civicreport-be/reporting"
	"civicreport-be/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIssue accepts a multipart report submission: title, description,
// issueType, a JSON-encoded location and any number of media files. The
// reporter identity is attached when the request carries a valid token;
// anonymous reports are accepted.
func CreateIssue(c *gin.Context) {
	title := c.PostForm("title")
	description := c.PostForm("description")
	issueType := c.PostForm("issueType")
	locationRaw := c.PostForm("location")

	if title == "" || description == "" || issueType == "" || locationRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill all the required fields"})
		return
	}
	if !models.ValidCategory(issueType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	var location models.Location
	if err := json.Unmarshal([]byte(locationRaw), &location); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location JSON format"})
		return
	}
	if location.Latitude == 0 || location.Longitude == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill all the required fields"})
		return
	}

	var reporter *primitive.ObjectID
	if userID, exists := c.Get("user_id"); exists {
		if objID, err := primitive.ObjectIDFromHex(userID.(string)); err == nil {
			reporter = &objID
		}
	}

	uploads, err := stageUploads(c)
	if err != nil {
		logger.Error().Err(err).Msg("failed to store uploaded files")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded files"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := reportSvc.Submit(ctx, reporting.Submission{
		Category:    models.IssueCategory(issueType),
		Title:       title,
		Description: description,
		Location:    location,
		Reporter:    reporter,
		Uploads:     uploads,
	})
	if err != nil {
		logger.Error().Err(err).Msg("error creating issue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if result.Merged {
		c.JSON(http.StatusOK, gin.H{
			"message": "Report aggregated into existing issue",
			"issue":   result.Issue,
			"media":   result.Media,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Issue created",
		"issue":   result.Issue,
		"media":   result.Media,
	})
}

// stageUploads writes the request's media files into the upload directory
// and returns their staged paths.
func stageUploads(c *gin.Context) ([]reporting.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No files attached.
		return nil, nil
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, err
	}

	var uploads []reporting.Upload
	for _, file := range form.File["media"] {
		dst := filepath.Join(uploadDir, primitive.NewObjectID().Hex()+"_"+filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, dst); err != nil {
			return nil, err
		}
		uploads = append(uploads, reporting.Upload{
			Path:     dst,
			Filename: file.Filename,
			MimeType: file.Header.Get("Content-Type"),
		})
	}
	return uploads, nil
}

// GetIssues returns every issue with its reporter name and first media URL,
// for the admin dashboard.
func GetIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issueCollection := config.GetCollection("issues")
	citizenCollection := config.GetCollection("citizens")

	cursor, err := issueCollection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode issues"})
		return
	}

	type issueView struct {
		ID              primitive.ObjectID   `json:"id"`
		Title           string               `json:"title"`
		Description     string               `json:"description"`
		Type            models.IssueCategory `json:"type"`
		Location        models.Location      `json:"location"`
		ReportedBy      string               `json:"reportedBy"`
		ReportedAt      time.Time            `json:"reportedAt"`
		Image           *string              `json:"image"`
		Status          models.IssueStatus   `json:"status"`
		EscalationLevel int                  `json:"escalationLevel"`
		ReportCount     int                  `json:"reportCount"`
		EscalatedTo     *primitive.ObjectID  `json:"escalatedTo"`
		HandledBy       *primitive.ObjectID  `json:"handledBy"`
	}

	views := make([]issueView, 0, len(issues))
	for _, issue := range issues {
		view := issueView{
			ID:              issue.ID,
			Title:           issue.Title,
			Description:     issue.Description,
			Type:            issue.Category,
			Location:        issue.Location,
			ReportedBy:      "Anonymous",
			ReportedAt:      issue.CreatedAt,
			Status:          issue.Status,
			EscalationLevel: issue.EscalationLevel,
			ReportCount:     issue.ReportCount,
			EscalatedTo:     issue.EscalatedTo,
			HandledBy:       issue.HandledBy,
		}

		if issue.CitizenID != nil {
			var citizen models.Citizen
			if err := citizenCollection.FindOne(ctx, bson.M{"_id": *issue.CitizenID}).Decode(&citizen); err == nil {
				view.ReportedBy = citizen.FullName
			}
		}

		if media, err := stores.Media.ByIssue(ctx, issue.ID); err == nil && len(media) > 0 {
			view.Image = &media[0].URL
		}

		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"issues": views})
}

// GetIssue retrieves one issue with its attachments.
func GetIssue(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issue, err := stores.Issues.ByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, store.ErrNoIssue) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		}
		return
	}

	media, err := stores.Media.ByIssue(ctx, issueID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve media"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"issue": issue, "media": media})
}

// GetIssueHistory returns an issue's audit trail, newest first.
func GetIssueHistory(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("issueid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := stores.History.ByIssue(ctx, issueID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// RecentIssues returns the most recent geotagged issues for the public map
func RecentIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	limit := 19

	issueCollection := config.GetCollection("issues")

	projection := bson.M{
		"_id":       1,
		"title":     1,
		"location":  1,
		"issueType": 1,
		"status":    1,
		"createdAt": 1,
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(projection)

	cursor, err := issueCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recent issues"})
		return
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode recent issues"})
		return
	}

	type mapPoint struct {
		ID        string               `json:"id"`
		Title     string               `json:"title"`
		Latitude  float64              `json:"latitude"`
		Longitude float64              `json:"longitude"`
		Address   string               `json:"address,omitempty"`
		Category  models.IssueCategory `json:"category,omitempty"`
		Status    models.IssueStatus   `json:"status"`
		CreatedAt time.Time            `json:"createdAt,omitempty"`
	}

	response := make([]mapPoint, 0, len(issues))
	for _, issue := range issues {
		response = append(response, mapPoint{
			ID:        issue.ID.Hex(),
			Title:     issue.Title,
			Latitude:  issue.Location.Latitude,
			Longitude: issue.Location.Longitude,
			Address:   issue.Location.Address,
			Category:  issue.Category,
			Status:    issue.Status,
			CreatedAt: issue.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetIssueAnalytics returns analytical data about issues
func GetIssueAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	issueCollection := config.GetCollection("issues")

	// Issues by category using aggregation
	categoryPipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$issueType",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	categoryCursor, err := issueCollection.Aggregate(ctx, categoryPipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get category analytics"})
		return
	}
	defer categoryCursor.Close(ctx)

	var issuesByCategory []bson.M
	if err := categoryCursor.All(ctx, &issuesByCategory); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode category analytics"})
		return
	}

	// Last 7 days submission counts
	var last7Days []gin.H
	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

		nextDate := date.AddDate(0, 0, 1)

		count, err := issueCollection.CountDocuments(ctx, bson.M{
			"createdAt": bson.M{
				"$gte": date,
				"$lt":  nextDate,
			},
		})
		if err != nil {
			count = 0
		}

		last7Days = append(last7Days, gin.H{
			"date":  date.Format("2006-01-02"),
			"count": count,
		})
	}

	totalIssues, err := issueCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		totalIssues = 0
	}

	openIssues, err := issueCollection.CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": models.OpenStatuses},
	})
	if err != nil {
		openIssues = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"issuesByCategory": issuesByCategory,
		"last7Days":        last7Days,
		"totalIssues":      totalIssues,
		"openIssues":       openIssues,
	})
}

// DeleteIssueByAdmin removes an issue and its attachments
func DeleteIssueByAdmin(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("issueid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID format"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deleted, err := stores.Issues.Delete(ctx, issueID)
	if err != nil {
		logger.Error().Err(err).Msg("error deleting issue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	if err := stores.Media.DeleteByIssue(ctx, issueID); err != nil {
		logger.Error().Err(err).Str("issue", issueID.Hex()).Msg("failed to delete issue media")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted Successfully!"})
}
