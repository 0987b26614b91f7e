// Package cache is a small TTL cache for upstream API responses.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type ResponseCache struct {
	lru *expirable.LRU[string, json.RawMessage]
}

// New builds a cache holding up to size entries for ttl each.
func New(size int, ttl time.Duration) *ResponseCache {
	return &ResponseCache{lru: expirable.NewLRU[string, json.RawMessage](size, nil, ttl)}
}

// Key builds a stable cache key from an endpoint and its parameters.
func Key(endpoint string, params ...string) string {
	key := endpoint
	for _, p := range params {
		key = fmt.Sprintf("%s:%s", key, p)
	}
	return key
}

func (c *ResponseCache) Get(key string) (json.RawMessage, bool) {
	return c.lru.Get(key)
}

func (c *ResponseCache) Set(key string, data json.RawMessage) {
	c.lru.Add(key, data)
}

func (c *ResponseCache) Len() int {
	return c.lru.Len()
}
