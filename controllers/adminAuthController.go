package controllers

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"civicreport-be/config"
	"civicreport-be/models"
	authUtils "civicreport-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminSignup registers an admin account. Creating a level-2 admin requires
// the invite code configured in ADMIN_INVITE_CODE.
func AdminSignup(c *gin.Context) {
	var input struct {
		FullName        string `json:"fullName" binding:"required"`
		Email           string `json:"email" binding:"required,email"`
		Password        string `json:"password" binding:"required,min=8"`
		PhoneNumber     string `json:"phonenumber" binding:"required,len=10"`
		Department      string `json:"department" binding:"required"`
		AdminAccessCode int    `json:"adminAccessCode" binding:"required,min=1000"`
		AccessLevel     *int   `json:"accessLevel,omitempty"`
		InviteCode      string `json:"inviteCode,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Level 2 is gated on the invite code; a bare invite code also promotes.
	accessLevel := 1
	wantsLevel2 := (input.AccessLevel != nil && *input.AccessLevel == 2) || input.InviteCode != ""
	if wantsLevel2 {
		envCode := os.Getenv("ADMIN_INVITE_CODE")
		if envCode == "" || input.InviteCode != envCode {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid invite code"})
			return
		}
		accessLevel = 2
	}

	adminCollection := config.GetCollection("admins")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := strings.ToLower(input.Email)
	count, err := adminCollection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		logger.Error().Err(err).Msg("error checking existing admin")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
		return
	}

	admin := models.Admin{
		FullName:        input.FullName,
		Email:           email,
		Password:        input.Password,
		PhoneNumber:     input.PhoneNumber,
		Department:      input.Department,
		AdminAccessCode: input.AdminAccessCode,
		AccessLevel:     accessLevel,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := admin.HashPassword(); err != nil {
		logger.Error().Err(err).Msg("error hashing password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	result, err := adminCollection.InsertOne(ctx, admin)
	if err != nil {
		logger.Error().Err(err).Msg("error inserting admin")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	token, err := authUtils.GenerateAndSetToken(result.InsertedID.(primitive.ObjectID).Hex(), "admin")
	if err != nil {
		logger.Error().Err(err).Msg("error generating token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	setAuthCookie(c, token)

	c.JSON(http.StatusCreated, gin.H{
		"id":          result.InsertedID,
		"fullName":    admin.FullName,
		"email":       admin.Email,
		"accessLevel": admin.AccessLevel,
	})
}

// AdminSignin handles admin login
func AdminSignin(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminCollection := config.GetCollection("admins")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var admin models.Admin
	err := adminCollection.FindOne(ctx, bson.M{"email": strings.ToLower(input.Email)}).Decode(&admin)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !admin.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := authUtils.GenerateAndSetToken(admin.ID.Hex(), "admin")
	if err != nil {
		logger.Error().Err(err).Msg("error generating token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	setAuthCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"id":          admin.ID,
		"fullName":    admin.FullName,
		"email":       admin.Email,
		"department":  admin.Department,
		"accessLevel": admin.AccessLevel,
	})
}
