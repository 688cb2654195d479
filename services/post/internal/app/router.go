package internal

import (
	"net/http"
	"time"

	"blop-post/pkg/cache"
	"blop-post/pkg/config"
	"blop-post/pkg/filestore"
	"blop-post/pkg/jwt"
	"blop-post/pkg/logger"
	"blop-post/pkg/middleware"
	postHTTP "blop-post/services/post/internal/controller/http"
	"blop-post/services/post/internal/repo/persistent"
	"blop-post/services/post/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "blop-post/services/post/docs" // Swagger docs
)

// Dependencies are the collaborators the router is built from. RedisClient,
// Events and JWTService may be nil.
type Dependencies struct {
	PostRepo    persistent.PostRepository
	Media       usecase.MediaStorage
	UploadRoot  string
	RedisClient *redis.Client
	Events      usecase.EventPublisher
	JWTService  *jwt.Service
	Logger      *logger.Logger
}

func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	log := deps.Logger

	var postCache *cache.Cache
	if deps.RedisClient != nil {
		postCache = cache.New(deps.RedisClient, "post", cfg.CacheTTL)
	}

	// Initialize use cases
	postUseCase := usecase.NewPostUseCase(deps.PostRepo, postCache, deps.Events, log)
	mediaUseCase := usecase.NewMediaUseCase(deps.Media, cfg.UploadMaxBytes, log)

	// Initialize HTTP handlers
	postHandler := postHTTP.NewPostHandler(postUseCase, log)
	mediaHandler := postHTTP.NewMediaHandler(mediaUseCase, cfg.UploadMaxBytes, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: !allowsAnyOrigin(cfg.CORSAllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if deps.UploadRoot != "" {
		r.Static(filestore.URLPrefix, deps.UploadRoot)
	}

	var rateLimit gin.HandlerFunc
	if deps.RedisClient != nil {
		rateLimit = middleware.RateLimitMiddleware(deps.RedisClient, cfg.RateLimitPerMinute, time.Minute)
	} else {
		rateLimit = middleware.LocalRateLimitMiddleware(middleware.NewLocalRateLimiter(cfg.RateLimitPerMinute))
	}

	var auth gin.HandlerFunc
	if cfg.AuthRequired {
		auth = middleware.AuthMiddleware(deps.JWTService)
	} else {
		auth = middleware.OptionalAuthMiddleware(deps.JWTService)
	}

	api := r.Group("")
	api.Use(middleware.Timeout(cfg.RequestTimeout))
	{
		reads := api.Group("")
		reads.Use(rateLimit)
		{
			reads.GET("/posts", postHandler.ListPosts)
			reads.GET("/posts/:id", postHandler.GetPost)
		}

		// auth runs first so writers are limited per user id.
		writes := api.Group("")
		writes.Use(auth, rateLimit)
		{
			writes.POST("/posts", postHandler.CreatePosts)
			writes.PUT("/posts/:id", postHandler.UpdatePost)
			writes.PATCH("/posts/:id", postHandler.ChangeLikeCount)
			writes.DELETE("/posts/:id", postHandler.DeletePost)
			writes.DELETE("/posts", postHandler.DeleteAllPosts)
			writes.POST("/upload/:category", mediaHandler.Upload)
		}
	}

	return r
}

// Browsers refuse credentials together with a wildcard origin.
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
