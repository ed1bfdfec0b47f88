//go:build integration

package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapview/internal/platform/config"
	"mapview/pkg/testutil/containers"
)

func TestNew(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	t.Run("empty url disables redis", func(t *testing.T) {
		client, err := New(ctx, config.RedisConfig{})
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("connects and reports health", func(t *testing.T) {
		rc := containers.NewRedisContainer(t)
		client, err := New(ctx, rc.Config())
		require.NoError(t, err)
		require.NotNil(t, client)
		t.Cleanup(func() { _ = client.Close() })

		assert.NoError(t, client.Health(ctx))
		assert.Equal(t, 2, client.Options().PoolSize)
	})

	t.Run("publishes to subscribers", func(t *testing.T) {
		rc := containers.NewRedisContainer(t)
		client, err := New(ctx, rc.Config())
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		sub := rc.Client.Subscribe(ctx, "mapview:render:test")
		t.Cleanup(func() { _ = sub.Close() })
		_, err = sub.Receive(ctx)
		require.NoError(t, err)

		require.NoError(t, client.Publish(ctx, "mapview:render:test", "ping").Err())
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ping", msg.Payload)
	})

	t.Run("health fails once closed", func(t *testing.T) {
		rc := containers.NewRedisContainer(t)
		client, err := New(ctx, rc.Config())
		require.NoError(t, err)
		require.NoError(t, client.Close())

		err = client.Health(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis health")
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := New(ctx, config.RedisConfig{URL: "not a url"})
		assert.Error(t, err)
	})
}
