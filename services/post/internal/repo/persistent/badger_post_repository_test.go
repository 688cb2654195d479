package persistent

import (
	"context"
	"sync"
	"testing"

	"blop-post/pkg/database"
	"blop-post/services/post/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBadgerRepo(t *testing.T) PostRepository {
	t.Helper()
	db, err := database.NewBadgerDB("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBadgerPostRepository(db)
}

func samplePosts(titles ...string) []*entity.Post {
	posts := make([]*entity.Post, len(titles))
	for i, title := range titles {
		posts[i] = &entity.Post{
			Title:    title,
			Image:    entity.DefaultImageURL,
			Category: "Technology",
			Author:   entity.Author{Name: "John Doe", Img: "https://i.pravatar.cc/150?img=3"},
			Like:     entity.Like{Count: 0, IsLiked: false},
			ReadTime: "1 min read",
		}
	}
	return posts
}

func TestBadgerPostRepository_InsertManyAssignsOrderedIDs(t *testing.T) {
	repo := newBadgerRepo(t)
	ctx := context.Background()

	created, err := repo.InsertMany(ctx, samplePosts("first", "second"))
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "0000000000000001", created[0].ID)
	assert.Equal(t, "0000000000000002", created[1].ID)

	more, err := repo.InsertMany(ctx, samplePosts("third"))
	require.NoError(t, err)
	assert.Equal(t, "0000000000000003", more[0].ID)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{all[0].Title, all[1].Title, all[2].Title})
}

func TestBadgerPostRepository_FindAllEmpty(t *testing.T) {
	repo := newBadgerRepo(t)

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestBadgerPostRepository_FindByID(t *testing.T) {
	repo := newBadgerRepo(t)
	ctx := context.Background()

	created, err := repo.InsertMany(ctx, samplePosts("hello"))
	require.NoError(t, err)

	first, err := repo.FindByID(ctx, created[0].ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, created[0], first)

	_, err = repo.FindByID(ctx, "00000000000000ff")
	assert.ErrorIs(t, err, entity.ErrPostNotFound)

	_, err = repo.FindByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, entity.ErrPostNotFound)
}

func TestBadgerPostRepository_Update(t *testing.T) {
	repo := newBadgerRepo(t)
	ctx := context.Background()

	created, err := repo.InsertMany(ctx, samplePosts("before"))
	require.NoError(t, err)
	id := created[0].ID

	title := "after"
	updated, err := repo.Update(ctx, id, entity.PostPatch{
		Title: &title,
		Like:  &entity.Like{Count: 3, IsLiked: true},
	})
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, entity.Like{Count: 3, IsLiked: true}, updated.Like)
	assert.Equal(t, "John Doe", updated.Author.Name)

	stored, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)

	_, err = repo.Update(ctx, "00000000000000ff", entity.PostPatch{Title: &title})
	assert.ErrorIs(t, err, entity.ErrPostNotFound)
}

func TestBadgerPostRepository_IncrementLikeCount(t *testing.T) {
	repo := newBadgerRepo(t)
	ctx := context.Background()

	posts := samplePosts("liked")
	posts[0].Like = entity.Like{Count: 5, IsLiked: true}
	created, err := repo.InsertMany(ctx, posts)
	require.NoError(t, err)
	id := created[0].ID

	post, err := repo.IncrementLikeCount(ctx, id, 1)
	require.NoError(t, err)
	post, err = repo.IncrementLikeCount(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, post.Like.Count)
	assert.True(t, post.Like.IsLiked)

	post, err = repo.IncrementLikeCount(ctx, id, -1)
	require.NoError(t, err)
	assert.Equal(t, 6, post.Like.Count)

	_, err = repo.IncrementLikeCount(ctx, "00000000000000ff", 1)
	assert.ErrorIs(t, err, entity.ErrPostNotFound)
}

func TestBadgerPostRepository_IncrementLikeCountConcurrent(t *testing.T) {
	repo := newBadgerRepo(t)
	ctx := context.Background()

	created, err := repo.InsertMany(ctx, samplePosts("popular"))
	require.NoError(t, err)
	id := created[0].ID

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementLikeCount(ctx, id, 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	post, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, workers, post.Like.Count)
	assert.False(t, post.Like.IsLiked)
}

func TestBadgerPostRepository_DeleteByID(t *testing.T) {
	repo := newBadgerRepo(t)
	ctx := context.Background()

	created, err := repo.InsertMany(ctx, samplePosts("keep", "drop"))
	require.NoError(t, err)

	deleted, err := repo.DeleteByID(ctx, created[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "drop", deleted.Title)

	_, err = repo.DeleteByID(ctx, created[1].ID)
	assert.ErrorIs(t, err, entity.ErrPostNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, created[0].ID, all[0].ID)
}

func TestBadgerPostRepository_DeleteAll(t *testing.T) {
	repo := newBadgerRepo(t)
	ctx := context.Background()

	_, err := repo.InsertMany(ctx, samplePosts("a", "b", "c"))
	require.NoError(t, err)

	count, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	count, err = repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Ids keep increasing after a wipe.
	created, err := repo.InsertMany(ctx, samplePosts("d"))
	require.NoError(t, err)
	assert.Equal(t, "0000000000000004", created[0].ID)
}

func TestBadgerPostRepository_CountImageReferences(t *testing.T) {
	repo := newBadgerRepo(t)
	ctx := context.Background()

	posts := samplePosts("a", "b", "c")
	posts[0].Image = "http://localhost:5000/uploads/post/1.png"
	posts[1].Image = "http://localhost:5000/uploads/post/1.png"
	posts[2].Author.Img = "http://localhost:5000/uploads/post/1.png"
	_, err := repo.InsertMany(ctx, posts)
	require.NoError(t, err)

	count, err := repo.CountImageReferences(ctx, "http://localhost:5000/uploads/post/1.png")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = repo.CountImageReferences(ctx, "http://localhost:5000/uploads/post/2.png")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestBadgerPostRepository_CanceledContext(t *testing.T) {
	repo := newBadgerRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.InsertMany(ctx, samplePosts("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
