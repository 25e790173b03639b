package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/procurement/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Reserve(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	pending := shared.IdempotencyRecord{InProgress: true, BodyHash: "h1"}

	t.Run("claims a new key", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "key-1", pending, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("refuses a live key", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "key-2", pending, time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = store.Reserve(ctx, "key-2", pending, time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("reclaims an expired key", func(t *testing.T) {
		base := time.Now()
		store.now = func() time.Time { return base }
		defer func() { store.now = time.Now }()

		ok, err := store.Reserve(ctx, "key-3", pending, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		store.now = func() time.Time { return base.Add(2 * time.Minute) }
		ok, err = store.Reserve(ctx, "key-3", pending, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInMemoryIdempotencyStore_ConcurrentReserve(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Reserve(context.Background(), "same", shared.IdempotencyRecord{InProgress: true}, time.Hour)
			if err == nil && ok {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners)
}

func TestInMemoryIdempotencyStore_LoadCompleteRelease(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("unknown key loads nil", func(t *testing.T) {
		record, err := store.Load(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("completed response is replayed", func(t *testing.T) {
		_, err := store.Reserve(ctx, "k", shared.IdempotencyRecord{InProgress: true}, time.Hour)
		require.NoError(t, err)

		done := shared.IdempotencyRecord{StatusCode: 201, Body: []byte(`{"ok":true}`), ContentType: "application/json"}
		require.NoError(t, store.Complete(ctx, "k", done, time.Hour))

		record, err := store.Load(ctx, "k")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.False(t, record.InProgress)
		assert.Equal(t, 201, record.StatusCode)
		assert.JSONEq(t, `{"ok":true}`, string(record.Body))
	})

	t.Run("released key can be reserved again", func(t *testing.T) {
		require.NoError(t, store.Release(ctx, "k"))

		record, err := store.Load(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, record)

		ok, err := store.Reserve(ctx, "k", shared.IdempotencyRecord{InProgress: true}, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	base := time.Now()
	store.now = func() time.Time { return base }
	ctx := context.Background()

	_, _ = store.Reserve(ctx, "short", shared.IdempotencyRecord{}, time.Second)
	_, _ = store.Reserve(ctx, "long", shared.IdempotencyRecord{}, time.Hour)
	require.Equal(t, 2, store.Size())

	store.now = func() time.Time { return base.Add(time.Minute) }
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	require.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
