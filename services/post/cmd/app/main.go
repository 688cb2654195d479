package main

import (
	"blop-post/pkg/config"
	"blop-post/pkg/logger"
	app "blop-post/services/post/internal/app"

	_ "blop-post/services/post/docs" // Swagger docs
)

// @title           Blog Post Service API
// @version         1.0
// @description     Blog posts, likes and image uploads
// @termsOfService  http://swagger.io/terms/

// @host      localhost:5000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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
	})
	defer log.Sync()

	application, err := app.NewApp(cfg, log)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}
