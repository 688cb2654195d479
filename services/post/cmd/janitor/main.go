package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"blop-post/pkg/config"
	"blop-post/pkg/logger"
	"blop-post/pkg/queue"
	app "blop-post/services/post/internal/app"
	"blop-post/services/post/internal/usecase"
)

// The janitor removes stored images that no post references any more after
// a post is deleted or its image replaced.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewWithOptions(logger.Options{
		Level:      cfg.LogLevel,
		Path:       cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}).With("component", "janitor")
	defer log.Sync()

	if !cfg.QueueEnabled() {
		log.Error("RABBITMQ_HOST is not set, nothing to consume")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open post store: %v", err)
		panic(err)
	}
	defer store.Close()

	media, _, err := app.OpenMediaStorage(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open media storage: %v", err)
		panic(err)
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		panic(err)
	}
	defer queueClient.Close()

	if err := queueClient.DeclareMediaCleanupQueue(); err != nil {
		log.Error("Failed to declare %s: %v", queue.MediaCleanupQueueName, err)
		panic(err)
	}

	janitor := usecase.NewJanitorUseCase(store.Posts, media, log)

	if err := queueClient.ConsumePostEvents(ctx, queue.MediaCleanupQueueName, janitor.HandleEvent); err != nil {
		log.Error("Janitor stopped: %v", err)
		panic(err)
	}

	log.Info("Janitor exited")
}
