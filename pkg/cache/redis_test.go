package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, "post", time.Minute), mr
}

func TestCache_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()

	for _, c := range []*Cache{nil, New(nil, "post", time.Minute)} {
		assert.False(t, c.Enabled())

		var dest map[string]string
		found, err := c.Get(ctx, "1", &dest)
		require.NoError(t, err)
		assert.False(t, found)

		stored, err := c.Fill(ctx, "1", map[string]string{"a": "b"})
		assert.NoError(t, err)
		assert.False(t, stored)
		assert.NoError(t, c.Invalidate(ctx, "1"))
		assert.NoError(t, c.Flush(ctx))
	}
}

func TestCache_Key(t *testing.T) {
	c := New(nil, "post", time.Minute)
	assert.Equal(t, "post:abc", c.Key("abc"))
}

func TestCache_FillThenGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got item
	found, err := c.Get(ctx, "1", &got)
	require.NoError(t, err)
	assert.False(t, found)

	stored, err := c.Fill(ctx, "1", item{Title: "a", Count: 1})
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, time.Minute, mr.TTL("post:1"))

	found, err = c.Get(ctx, "1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, item{Title: "a", Count: 1}, got)
}

func TestCache_FillKeepsExistingValue(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.Fill(ctx, "1", item{Title: "first"})
	require.NoError(t, err)

	stored, err := c.Fill(ctx, "1", item{Title: "second"})
	require.NoError(t, err)
	assert.False(t, stored)

	var got item
	_, err = c.Get(ctx, "1", &got)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
}

func TestCache_InvalidateBlocksLateFill(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, err := c.Fill(ctx, "1", item{Count: 0})
	require.NoError(t, err)

	// A writer commits and invalidates; a reader that loaded the old row
	// before the write then tries to fill.
	require.NoError(t, c.Invalidate(ctx, "1", "2"))
	stored, err := c.Fill(ctx, "1", item{Count: 0})
	require.NoError(t, err)
	assert.False(t, stored)

	var got item
	found, err := c.Get(ctx, "1", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, time.Minute, mr.TTL("post:2"))

	// Once the marker expires the key can be filled again.
	mr.FastForward(time.Minute + time.Second)
	stored, err = c.Fill(ctx, "1", item{Count: 1})
	require.NoError(t, err)
	assert.True(t, stored)

	found, err = c.Get(ctx, "1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, got.Count)
}

func TestCache_GetCorruptValue(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("post:1", "{not json"))

	var got item
	found, err := c.Get(context.Background(), "1", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestCache_FlushOnlyTouchesPrefix(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, err := c.Fill(ctx, "1", item{Title: "a"})
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "2"))
	require.NoError(t, mr.Set("rate_limit:/posts:1.2.3.4", "3"))

	require.NoError(t, c.Flush(ctx))

	assert.False(t, mr.Exists("post:1"))
	assert.False(t, mr.Exists("post:2"))
	assert.True(t, mr.Exists("rate_limit:/posts:1.2.3.4"))

	// Flushing an empty prefix is fine.
	assert.NoError(t, c.Flush(ctx))
}

func TestCache_Unavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	var got item
	_, err := c.Get(context.Background(), "1", &got)
	assert.Error(t, err)
}
