// Command backfill fills in perceptual hashes for image attachments stored
// before hashing existed. One forward pass over the media collection; a file
// that cannot be hashed is skipped and left for a later run.
package main

import (
	"context"

	"civicreport-be/config"
	"civicreport-be/imagehash"
	"civicreport-be/models"
	"civicreport-be/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logger := config.NewLogger()

	db := config.ConnectDB()
	if db == nil {
		logger.Fatal().Msg("Failed to connect to MongoDB")
	}

	stores := store.New(db)
	ctx := context.Background()

	logger.Info().Msg("starting phash backfill")

	cursor, err := stores.Media.MissingHashes(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open media cursor")
	}
	defer cursor.Close(ctx)

	updated := 0
	for cursor.Next(ctx) {
		var m models.Media
		if err := cursor.Decode(&m); err != nil {
			logger.Error().Err(err).Msg("failed to decode media document")
			continue
		}

		hash, err := imagehash.Compute(m.URL)
		if err != nil {
			logger.Warn().Err(err).Str("media", m.ID.Hex()).Str("url", m.URL).Msg("phash failed, skipping")
			continue
		}

		if err := stores.Media.SetPhash(ctx, m.ID, hash); err != nil {
			logger.Error().Err(err).Str("media", m.ID.Hex()).Msg("failed to store phash")
			continue
		}
		updated++
	}
	if err := cursor.Err(); err != nil {
		logger.Error().Err(err).Msg("cursor error during backfill")
	}

	logger.Info().Int("updated", updated).Msg("backfill completed")
}
