package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"civicreport-be/config"
	"civicreport-be/controllers"
	"civicreport-be/imagehash"
	"civicreport-be/reporting"
	"civicreport-be/routes"
	"civicreport-be/store"
	"civicreport-be/triage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	logger := config.NewLogger()

	settings, err := config.LoadSettings()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	db := config.ConnectDB()
	if db == nil {
		logger.Fatal().Msg("Failed to connect to MongoDB")
	}
	logger.Info().Msg("MongoDB connection established")

	if err := store.EnsureIndexes(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	config.ConnectRedis()
	logger.Info().Msg("Redis connection established")

	stores := store.New(db)
	reportSvc := reporting.NewService(stores.Issues, stores.Media, imagehash.Compute, settings, logger)
	triageSvc := triage.NewActions(stores.Issues, stores.Admins, stores.History, logger)
	controllers.Init(reportSvc, triageSvc, stores, logger)

	// The sweeper lives for the whole process; cancelling ctx stops it.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper := triage.NewSweeper(stores.Issues, stores.History, settings, logger)
	go sweeper.Start(ctx)

	r := gin.Default()

	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin != "" {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = []string{corsOrigin}
		corsConfig.AllowCredentials = true
		r.Use(cors.New(corsConfig))
	}

	routes.CitizenRoutes(r)
	routes.AdminRoutes(r)
	routes.IssueRoutes(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
