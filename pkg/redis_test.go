package pkg

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), &config.Config{
		RedisURL:          "redis://" + server.Addr(),
		RedisPoolSize:     3,
		RedisConnectTries: 1,
	})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 3, client.Options().PoolSize)
	require.NoError(t, client.Set(context.Background(), "quiz:bank:q1", "cached", 0).Err())
	assert.True(t, server.Exists("quiz:bank:q1"))
}

func TestNewRedisClient_Failures(t *testing.T) {
	_, err := NewRedisClient(context.Background(), &config.Config{RedisURL: "mysql://nope"})
	assert.ErrorContains(t, err, "invalid redis url")

	server := miniredis.NewMiniRedis()
	require.NoError(t, server.Start())
	addr := server.Addr()
	server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewRedisClient(ctx, &config.Config{RedisURL: "redis://" + addr, RedisConnectTries: 3})
	assert.Error(t, err)
}
