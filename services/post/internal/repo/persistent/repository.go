package persistent

import (
	"context"

	"blop-post/services/post/internal/entity"
)

// PostRepository is implemented once per storage backend. Lookups of an id
// the backend cannot parse report entity.ErrPostNotFound.
type PostRepository interface {
	// InsertMany assigns ids and stores all posts or none of them.
	InsertMany(ctx context.Context, posts []*entity.Post) ([]*entity.Post, error)
	// FindAll returns every post in insertion order.
	FindAll(ctx context.Context) ([]*entity.Post, error)
	FindByID(ctx context.Context, id string) (*entity.Post, error)
	Update(ctx context.Context, id string, patch entity.PostPatch) (*entity.Post, error)
	// IncrementLikeCount adds delta to like.count atomically and leaves
	// like.isliked untouched.
	IncrementLikeCount(ctx context.Context, id string, delta int) (*entity.Post, error)
	DeleteByID(ctx context.Context, id string) (*entity.Post, error)
	DeleteAll(ctx context.Context) (int64, error)
	// CountImageReferences reports how many posts use the URL as their
	// image or as their author's avatar.
	CountImageReferences(ctx context.Context, url string) (int64, error)
}
