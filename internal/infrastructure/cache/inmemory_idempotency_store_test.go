package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark wins, second is rejected", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		first, err := store.MarkProcessed(ctx, "transfer:abc", time.Minute)
		require.NoError(t, err)
		assert.True(t, first)

		second, err := store.MarkProcessed(ctx, "transfer:abc", time.Minute)
		require.NoError(t, err)
		assert.False(t, second)
	})

	t.Run("expired keys can be marked again", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.MarkProcessed(ctx, "transfer:xyz", time.Millisecond)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "transfer:xyz")
		require.NoError(t, err)
		assert.False(t, processed)

		again, err := store.MarkProcessed(ctx, "transfer:xyz", time.Minute)
		require.NoError(t, err)
		assert.True(t, again)
	})

	t.Run("remove forgets the key", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		defer store.Close()

		_, err := store.MarkProcessed(ctx, "transfer:gone", time.Minute)
		require.NoError(t, err)
		require.NoError(t, store.Remove(ctx, "transfer:gone"))

		processed, err := store.IsProcessed(ctx, "transfer:gone")
		require.NoError(t, err)
		assert.False(t, processed)
		assert.Equal(t, 0, store.Size())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore()
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())
	})
}
