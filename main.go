// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"bus-booking/cmd"
	"bus-booking/internal/data/repository"
	"bus-booking/internal/wire"
	"bus-booking/pkg/database"
	"bus-booking/pkg/feed"
	"bus-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Change feed consumer (reconnects on its own; resync drives refetch)
	consumer := feed.NewConsumer(config.Feed, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, consumer, config, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One reconciliation task drains the feed into the cache
	go func() {
		if err := app.Reconcile.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Reconciliation loop stopped", zap.Error(err))
		}
	}()

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(ctx, app.Router, config.App.Port)
}
