package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blop-post/pkg/cache"
	"blop-post/pkg/logger"
	"blop-post/pkg/queue"
	"blop-post/services/post/internal/entity"
	"blop-post/services/post/internal/repo/persistent"
)

type PostUseCase interface {
	CreatePosts(ctx context.Context, inputs []entity.PostInput, author *entity.Author) ([]*entity.Post, error)
	ListPosts(ctx context.Context) ([]*entity.Post, error)
	GetPost(ctx context.Context, postID string) (*entity.Post, error)
	UpdatePost(ctx context.Context, postID string, patch entity.PostPatch) (*entity.Post, error)
	ChangeLikeCount(ctx context.Context, postID string, delta int) (*entity.Post, error)
	DeletePost(ctx context.Context, postID string) (*entity.Post, error)
	DeleteAllPosts(ctx context.Context) (int64, error)
}

type postUseCase struct {
	postRepo  persistent.PostRepository
	postCache *cache.Cache
	events    EventPublisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewPostUseCase wires the post flows. postCache and events may be nil.
func NewPostUseCase(
	postRepo persistent.PostRepository,
	postCache *cache.Cache,
	events EventPublisher,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:  postRepo,
		postCache: postCache,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *postUseCase) CreatePosts(ctx context.Context, inputs []entity.PostInput, author *entity.Author) ([]*entity.Post, error) {
	now := uc.now()
	posts := make([]*entity.Post, len(inputs))
	for i, in := range inputs {
		posts[i] = entity.NewPost(in, now, author)
	}

	created, err := uc.postRepo.InsertMany(ctx, posts)
	if err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}

	for _, post := range created {
		uc.publish(ctx, queue.PostEvent{Type: queue.EventPostCreated, PostID: post.ID, Image: post.Image})
	}

	return created, nil
}

func (uc *postUseCase) ListPosts(ctx context.Context) ([]*entity.Post, error) {
	posts, err := uc.postRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (uc *postUseCase) GetPost(ctx context.Context, postID string) (*entity.Post, error) {
	var cached entity.Post
	found, err := uc.postCache.Get(ctx, postID, &cached)
	if err != nil {
		uc.logger.Warn("Failed to read post %s from cache: %v", postID, err)
	}
	if found {
		return &cached, nil
	}

	post, err := uc.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, wrapUnlessNotFound(err, "failed to get post")
	}

	// A write that committed after FindByID has already invalidated the
	// key, so this fill is refused rather than caching the older row.
	if _, err := uc.postCache.Fill(ctx, postID, post); err != nil {
		uc.logger.Warn("Failed to cache post %s: %v", postID, err)
	}
	return post, nil
}

func (uc *postUseCase) UpdatePost(ctx context.Context, postID string, patch entity.PostPatch) (*entity.Post, error) {
	var previousImage string
	if patch.Image != nil {
		current, err := uc.postRepo.FindByID(ctx, postID)
		if err != nil {
			return nil, wrapUnlessNotFound(err, "failed to update post")
		}
		previousImage = current.Image
	}

	post, err := uc.postRepo.Update(ctx, postID, patch)
	if err != nil {
		return nil, wrapUnlessNotFound(err, "failed to update post")
	}
	uc.evict(ctx, postID)

	if patch.Image != nil && previousImage != post.Image {
		uc.publish(ctx, queue.PostEvent{
			Type:          queue.EventPostImageReplaced,
			PostID:        post.ID,
			Image:         post.Image,
			PreviousImage: previousImage,
		})
	}

	return post, nil
}

// ChangeLikeCount applies a +1 or -1 step to the like counter. The liked
// flag is left alone.
func (uc *postUseCase) ChangeLikeCount(ctx context.Context, postID string, delta int) (*entity.Post, error) {
	if delta != 1 && delta != -1 {
		return nil, entity.ErrInvalidLikeDelta
	}

	post, err := uc.postRepo.IncrementLikeCount(ctx, postID, delta)
	if err != nil {
		return nil, wrapUnlessNotFound(err, "failed to update like")
	}
	uc.evict(ctx, postID)

	return post, nil
}

func (uc *postUseCase) DeletePost(ctx context.Context, postID string) (*entity.Post, error) {
	post, err := uc.postRepo.DeleteByID(ctx, postID)
	if err != nil {
		return nil, wrapUnlessNotFound(err, "failed to delete post")
	}
	uc.evict(ctx, postID)

	uc.publish(ctx, queue.PostEvent{Type: queue.EventPostDeleted, PostID: post.ID, Image: post.Image})
	return post, nil
}

// DeleteAllPosts wipes the collection. No per-post events are sent, so media
// referenced by the removed posts stays in storage. A read that loaded a post
// before the wipe may still fill the cache; that entry lives for one TTL.
func (uc *postUseCase) DeleteAllPosts(ctx context.Context) (int64, error) {
	count, err := uc.postRepo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete all posts: %w", err)
	}

	if err := uc.postCache.Flush(ctx); err != nil {
		uc.logger.Warn("Failed to flush post cache: %v", err)
	}
	return count, nil
}

func (uc *postUseCase) evict(ctx context.Context, postID string) {
	if err := uc.postCache.Invalidate(ctx, postID); err != nil {
		uc.logger.Warn("Failed to evict post %s from cache: %v", postID, err)
	}
}

func (uc *postUseCase) publish(ctx context.Context, event queue.PostEvent) {
	if uc.events == nil {
		return
	}
	event.OccurredAt = uc.now().UTC()
	if err := uc.events.PublishPostEvent(ctx, event); err != nil {
		uc.logger.Error("Failed to publish %s for post %s: %v", event.Type, event.PostID, err)
	}
}

func wrapUnlessNotFound(err error, msg string) error {
	if errors.Is(err, entity.ErrPostNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
