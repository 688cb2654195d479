package internal

import (
	"context"
	"fmt"

	"blop-post/pkg/config"
	"blop-post/pkg/database"
	"blop-post/pkg/filestore"
	"blop-post/pkg/logger"
	"blop-post/pkg/s3"
	"blop-post/services/post/internal/model"
	"blop-post/services/post/internal/repo/persistent"
	"blop-post/services/post/internal/usecase"

	"gorm.io/gorm"
)

// Store is the post repository selected by STORE_DRIVER together with the
// handle that has to be closed on shutdown.
type Store struct {
	Posts persistent.PostRepository
	close func() error
}

func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore connects to the configured post store.
func OpenStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := database.NewMongoDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := persistent.EnsureMongoIndexes(ctx, db, cfg.MongoCollection); err != nil {
			log.Warn("Failed to create mongo indexes: %v", err)
		}
		log.Info("Using mongo store %s/%s", cfg.MongoDatabase, cfg.MongoCollection)
		return &Store{
			Posts: persistent.NewMongoPostRepository(db, cfg.MongoCollection),
			close: func() error { return client.Disconnect(context.Background()) },
		}, nil

	case config.StorePostgres, config.StoreMySQL:
		var (
			db  *gorm.DB
			err error
		)
		if cfg.StoreDriver == config.StorePostgres {
			db, err = database.NewPostgresDB(cfg)
		} else {
			db, err = database.NewMySQLDB(cfg)
		}
		if err != nil {
			return nil, err
		}
		// Postgres schemas normally come from goose, see cmd/migrate.
		if cfg.DBAutoMigrate {
			if err := db.AutoMigrate(&model.PostModel{}); err != nil {
				return nil, fmt.Errorf("failed to migrate posts table: %w", err)
			}
		}
		log.Info("Using %s store %s@%s", cfg.StoreDriver, cfg.DBName, cfg.DBHost)
		return &Store{
			Posts: persistent.NewPostRepository(db),
			close: func() error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}, nil

	case config.StoreBadger:
		db, err := database.NewBadgerDB(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		log.Info("Using badger store at %q", cfg.BadgerPath)
		return &Store{
			Posts: persistent.NewBadgerPostRepository(db),
			close: db.Close,
		}, nil
	}

	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// OpenMediaStorage returns the configured media backend. uploadRoot is the
// directory to serve under /uploads, empty when files live in S3.
func OpenMediaStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage usecase.MediaStorage, uploadRoot string, err error) {
	switch cfg.MediaDriver {
	case config.MediaS3:
		client, err := s3.NewClient(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		log.Info("Storing media in bucket %s", cfg.S3BucketName)
		return client, "", nil

	case config.MediaLocal:
		store, err := filestore.New(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		log.Info("Storing media in %s", store.Root())
		return store, store.Root(), nil
	}

	return nil, "", fmt.Errorf("unsupported media driver %q", cfg.MediaDriver)
}
