package cache

import (
	"context"
	"testing"

	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Port 1 is reserved and refuses connections on test hosts.
var unreachableRedis = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

func TestIdempotencyStoreFactory_CreateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("uses memory when redis is disabled", func(t *testing.T) {
		factory := NewIdempotencyStoreFactory(config.RedisConfig{Enabled: false})

		store, err := factory.CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("falls back to memory when redis is unreachable", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		factory := NewIdempotencyStoreFactory(unreachableRedis, WithLogger(zap.New(core)))

		store, err := factory.CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
		assert.Equal(t, 1, logs.FilterMessageSnippet("falling back").Len())

		isNew, err := store.MarkProcessed(ctx, "complete:MO-0001:retry", 0)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("fails when fallback is disabled", func(t *testing.T) {
		factory := NewIdempotencyStoreFactory(unreachableRedis, WithInMemoryFallback(false))

		store, err := factory.CreateStore(ctx)
		require.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "redis required")
	})
}
