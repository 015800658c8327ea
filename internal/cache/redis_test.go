package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRedis_UnreachableBackendIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedis(client, "courses:", time.Minute, zap.NewNop())
	ctx := context.Background()

	c.Set(ctx, Key(10, ""), []byte(`{"courses":[]}`))
	_, ok := c.Get(ctx, Key(10, ""))
	assert.False(t, ok)
}
