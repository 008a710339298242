// Package rescache provides response caches for the Last.fm transport.
//
// The transport stores raw API response payloads keyed by the request's
// method and parameters, so repeated reads of the same resource are served
// without a network round trip. Two implementations are provided: an
// in-memory TTL cache backed by sturdyc, and a persistent SQLite cache for
// processes that want responses to survive restarts.
package rescache

import (
	"time"

	"github.com/viccon/sturdyc"
)

// DefaultTTL is how long a cached response is considered fresh.
const DefaultTTL = 10 * time.Minute

// Memory is an in-memory response cache with TTL-based expiry.
type Memory struct {
	client *sturdyc.Client[[]byte]
}

// MemoryConfig configures a Memory cache. Zero values fall back to defaults.
type MemoryConfig struct {
	Capacity  int           // max entries (default 4096)
	NumShards int           // shard count for concurrent access (default 64)
	TTL       time.Duration // entry lifetime (default DefaultTTL)
}

// NewMemory creates an in-memory response cache.
func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 4096
	}
	if cfg.NumShards <= 0 {
		cfg.NumShards = 64
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Memory{
		// Evict 10% of a shard when it fills up.
		client: sturdyc.New[[]byte](cfg.Capacity, cfg.NumShards, cfg.TTL, 10),
	}
}

// Get returns the cached response body for key, if present and fresh.
func (m *Memory) Get(key string) ([]byte, bool) {
	return m.client.Get(key)
}

// Set stores a response body under key.
func (m *Memory) Set(key string, body []byte) {
	m.client.Set(key, body)
}
