package usecase

import (
	"context"
	"io"

	"blop-post/pkg/queue"
)

// MediaStorage persists uploaded images. Implemented by pkg/filestore and pkg/s3.
type MediaStorage interface {
	Save(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// EventPublisher is implemented by pkg/queue.Client.
type EventPublisher interface {
	PublishPostEvent(ctx context.Context, event queue.PostEvent) error
}
