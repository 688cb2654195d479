package usecase

import (
	"context"
	"fmt"
	"strings"

	"blop-post/pkg/logger"
	"blop-post/pkg/queue"
	"blop-post/services/post/internal/entity"
	"blop-post/services/post/internal/repo/persistent"
)

// JanitorUseCase removes stored post images that no post references any
// more. Avatars under user/ are never touched; nothing records which users
// still point at them.
type JanitorUseCase interface {
	HandleEvent(ctx context.Context, event queue.PostEvent) error
}

type janitorUseCase struct {
	postRepo persistent.PostRepository
	storage  MediaStorage
	logger   *logger.Logger
}

func NewJanitorUseCase(postRepo persistent.PostRepository, storage MediaStorage, logger *logger.Logger) JanitorUseCase {
	return &janitorUseCase{
		postRepo: postRepo,
		storage:  storage,
		logger:   logger,
	}
}

func (uc *janitorUseCase) HandleEvent(ctx context.Context, event queue.PostEvent) error {
	image := event.ReleasedImage()
	if image == "" || image == entity.DefaultImageURL {
		return nil
	}

	key, ok := uc.storage.KeyFromURL(image)
	if !ok {
		uc.logger.Debug("Skipping external image %s of post %s", image, event.PostID)
		return nil
	}

	if !strings.HasPrefix(key, string(entity.MediaCategoryPost)+"/") {
		uc.logger.Debug("Skipping non-post image %s of post %s", key, event.PostID)
		return nil
	}

	count, err := uc.postRepo.CountImageReferences(ctx, image)
	if err != nil {
		return fmt.Errorf("failed to count references to %s: %w", image, err)
	}
	if count > 0 {
		uc.logger.Debug("Image %s still used by %d post(s)", image, count)
		return nil
	}

	if err := uc.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	uc.logger.Info("Deleted orphaned image %s after %s of post %s", key, event.Type, event.PostID)
	return nil
}
