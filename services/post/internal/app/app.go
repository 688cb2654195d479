package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blop-post/pkg/cache"
	"blop-post/pkg/config"
	"blop-post/pkg/jwt"
	"blop-post/pkg/logger"
	"blop-post/pkg/queue"
	"blop-post/services/post/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	store       *Store
	media       usecase.MediaStorage
	uploadRoot  string
	redisClient *redis.Client
	queueClient *queue.Client
	jwtService  *jwt.Service
	httpServer  *http.Server
}

func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	gin.SetMode(cfg.GinMode)
	ctx := context.Background()

	store, err := OpenStore(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open post store: %v", err)
		return nil, err
	}

	media, uploadRoot, err := OpenMediaStorage(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open media storage: %v", err)
		_ = store.Close()
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = cache.NewRedisClient(ctx, cfg)
		if err != nil {
			// Redis is optional: no cache and per-process rate limiting
			log.Warn("Failed to connect to redis: %v (continuing without cache)", err)
			redisClient = nil
		}
	}

	var queueClient *queue.Client
	if cfg.QueueEnabled() {
		queueClient, err = queue.NewRabbitMQClient(cfg, log)
		if err != nil {
			log.Warn("Failed to connect to RabbitMQ: %v (continuing without events)", err)
			queueClient = nil
		}
	}

	var jwtService *jwt.Service
	if cfg.JWTSecret != "" {
		jwtService = jwt.NewService(cfg.JWTSecret)
	}

	return &App{
		cfg:         cfg,
		log:         log,
		store:       store,
		media:       media,
		uploadRoot:  uploadRoot,
		redisClient: redisClient,
		queueClient: queueClient,
		jwtService:  jwtService,
	}, nil
}

func (a *App) Run() error {
	deps := Dependencies{
		PostRepo:    a.store.Posts,
		Media:       a.media,
		UploadRoot:  a.uploadRoot,
		RedisClient: a.redisClient,
		JWTService:  a.jwtService,
		Logger:      a.log,
	}
	if a.queueClient != nil {
		deps.Events = a.queueClient
	}

	// Create HTTP server
	a.httpServer = &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           NewRouter(a.cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.RequestTimeout + 15*time.Second,
		WriteTimeout:      a.cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Post service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down post service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.log.Error("Server forced to shutdown: %v", err)
			shutdownErr = err
		}
	}

	if err := a.store.Close(); err != nil {
		a.log.Error("Error closing post store: %v", err)
	}

	// Close Redis connection
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	// Close RabbitMQ connection
	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	a.log.Info("Post service exited")
	return shutdownErr
}
