package controllers

import (
	"context"
	"net/http"
	"os"
	"time"

	"civicreport-be/config"
	"civicreport-be/models"
	authUtils "civicreport-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegisterCitizen handles citizen registration
func RegisterCitizen(c *gin.Context) {
	var input struct {
		FullName string `json:"fullName" binding:"required,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	citizenCollection := config.GetCollection("citizens")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := citizenCollection.CountDocuments(ctx, bson.M{"email": input.Email})
	if err != nil {
		logger.Error().Err(err).Msg("error checking existing citizen")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
		return
	}

	citizen := models.Citizen{
		FullName:  input.FullName,
		Email:     input.Email,
		Password:  input.Password,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := citizen.HashPassword(); err != nil {
		logger.Error().Err(err).Msg("error hashing password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	result, err := citizenCollection.InsertOne(ctx, citizen)
	if err != nil {
		logger.Error().Err(err).Msg("error inserting citizen")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        result.InsertedID,
		"fullName":  citizen.FullName,
		"email":     citizen.Email,
		"createdAt": citizen.CreatedAt,
	})
}

// LoginCitizen handles citizen login
func LoginCitizen(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	citizenCollection := config.GetCollection("citizens")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var citizen models.Citizen
	err := citizenCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&citizen)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !citizen.ComparePassword(input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := authUtils.GenerateAndSetToken(citizen.ID.Hex(), "citizen")
	if err != nil {
		logger.Error().Err(err).Msg("error generating token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}
	setAuthCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"id":        citizen.ID,
		"fullName":  citizen.FullName,
		"email":     citizen.Email,
		"createdAt": citizen.CreatedAt,
	})
}

// GetMe retrieves the authenticated citizen's information
func GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	objectID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	citizenCollection := config.GetCollection("citizens")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var citizen models.Citizen
	err = citizenCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&citizen)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        citizen.ID,
		"fullName":  citizen.FullName,
		"email":     citizen.Email,
		"createdAt": citizen.CreatedAt,
	})
}

// Logout clears the auth_token cookie
func Logout(c *gin.Context) {
	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	c.SetCookie("auth_token", "", -1, "/", domain, environment == "production", true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

func setAuthCookie(c *gin.Context, token string) {
	environment := os.Getenv("GO_ENV")
	domain := os.Getenv("DOMAIN")

	// For production, don't set domain to allow cross-origin cookies
	if environment == "production" {
		domain = ""
	}

	cookie := &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		MaxAge:   3600 * 72,
		Path:     "/",
		Domain:   domain,
		Secure:   environment == "production",
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	}
	http.SetCookie(c.Writer, cookie)
}
