package usecase

import (
	"context"
	"io"

	"blop-post/pkg/queue"
	"blop-post/services/post/internal/entity"
	"blop-post/services/post/internal/repo/persistent"

	"github.com/stretchr/testify/mock"
)

type MockPostRepository struct {
	mock.Mock
}

var _ persistent.PostRepository = (*MockPostRepository)(nil)

func (m *MockPostRepository) InsertMany(ctx context.Context, posts []*entity.Post) ([]*entity.Post, error) {
	args := m.Called(ctx, posts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostRepository) FindAll(ctx context.Context) ([]*entity.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostRepository) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, id string, patch entity.PostPatch) (*entity.Post, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostRepository) IncrementLikeCount(ctx context.Context, id string, delta int) (*entity.Post, error) {
	args := m.Called(ctx, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostRepository) DeleteByID(ctx context.Context, id string) (*entity.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostRepository) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) CountImageReferences(ctx context.Context, url string) (int64, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(int64), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

var _ EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) PublishPostEvent(ctx context.Context, event queue.PostEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockMediaStorage struct {
	mock.Mock
}

var _ MediaStorage = (*MockMediaStorage)(nil)

func (m *MockMediaStorage) Save(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockMediaStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockMediaStorage) KeyFromURL(url string) (string, bool) {
	args := m.Called(url)
	return args.String(0), args.Bool(1)
}
