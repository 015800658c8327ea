package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is a process-local cache bounded by both entry count and TTL.
type Memory struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemory returns a cache holding at most size entries, each for ttl.
func NewMemory(size int, ttl time.Duration) *Memory {
	return &Memory{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	return m.lru.Get(key)
}

func (m *Memory) Set(_ context.Context, key string, value []byte) {
	m.lru.Add(key, value)
}

func (m *Memory) Len() int {
	return m.lru.Len()
}
