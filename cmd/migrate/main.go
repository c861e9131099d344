// Command migrate imports the legacy MongoDB mini-game data into the
// PostgreSQL schema. It is safe to re-run; inserts are idempotent.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/projectklase/comunika-cards/cardengine"
	"github.com/projectklase/comunika-cards/cardengine/database"
	"github.com/projectklase/comunika-cards/cardengine/logger"
	"github.com/projectklase/comunika-cards/cardengine/migration"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	path := flag.String("config", "config.toml", "path to config")
	batchSize := flag.Int("batch-size", 1000, "rows per insert batch")
	flag.Parse()

	cfg, err := cardengine.LoadConfig(*path)
	if err != nil {
		logger.LogError("Failed to load configuration", err)
		os.Exit(-1)
	}
	customHandler.SetLevel(cfg.Log.Level)

	if cfg.Mongo.URI == "" || cfg.Mongo.Database == "" {
		slog.Error("Migration requires mongo.uri and mongo.database in the config")
		os.Exit(-1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		logger.LogError("Failed to connect to database", err)
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		logger.LogError("Failed to initialize database schema", err)
		os.Exit(-1)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.LogError("Failed to connect to MongoDB", err)
		os.Exit(-1)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.LogError("Failed to disconnect from MongoDB", err)
		}
	}()

	migrator := migration.NewMigrator(db.BunDB(), client, cfg.Mongo.Database)
	migrator.SetBatchSize(*batchSize)

	start := time.Now()
	if err := migrator.MigrateAll(ctx); err != nil {
		logger.LogError("Migration failed", err,
			slog.Duration("took", time.Since(start)))
		os.Exit(-1)
	}

	logger.LogSystem("Migration completed successfully",
		slog.Duration("took", time.Since(start)))
}
