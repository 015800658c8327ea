// Package cache holds serialized course listings keyed by query shape.
package cache

import (
	"context"
	"encoding/json"
)

// Store caches response payloads. Implementations expire entries after their
// configured TTL; a Get after expiry is a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

type keyShape struct {
	Limit  int    `json:"limit"`
	Search string `json:"search"`
}

// Key builds the cache key for a normalized (limit, search) pair.
func Key(limit int, search string) string {
	b, _ := json.Marshal(keyShape{Limit: limit, Search: search})
	return string(b)
}
