//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/procurement/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisIdempotencyStore(t *testing.T) {
	store := NewRedisIdempotencyStoreWithClient(startRedis(t), "test:")
	defer store.Close()
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "k1", shared.IdempotencyRecord{InProgress: true, BodyHash: "abc"}, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "k1", shared.IdempotencyRecord{InProgress: true}, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	record, err := store.Load(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.InProgress)
	assert.Equal(t, "abc", record.BodyHash)

	require.NoError(t, store.Complete(ctx, "k1", shared.IdempotencyRecord{StatusCode: 201, Body: []byte("{}")}, time.Minute))
	record, err = store.Load(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, 201, record.StatusCode)

	require.NoError(t, store.Release(ctx, "k1"))
	record, err = store.Load(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, record)
}
