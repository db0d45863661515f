// main.go
package main

import (
	"fmt"
	"log"
	"time"

	"artist-booking/cmd"
	"artist-booking/internal/data/repository"
	"artist-booking/internal/wire"
	"artist-booking/pkg/database"
	"artist-booking/pkg/lock"
	"artist-booking/pkg/notification"
	"artist-booking/pkg/payment"
	"artist-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
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

	// Connect to redis for the scheduling locks
	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
	})
	defer redisClient.Close()

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// External collaborators
	gateway := payment.NewStripeClient(
		config.Stripe.SecretKey,
		time.Duration(config.Stripe.TimeoutSeconds)*time.Second,
		logger,
	)
	locker := lock.NewArtistLocker(redisClient, 30*time.Second, logger)
	notifier := notification.NewHTTPNotifier(config.Notification.Endpoint, config.Notification.APIKey, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, gateway, locker, notifier, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port, logger)
}
