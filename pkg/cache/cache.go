// Package cache stores expensive intermediate artifacts between runs.
//
// The pipeline caches composed tile images keyed by the inputs that
// produced them, so re-running over an unchanged manifest skips image
// decoding and composition entirely. Backends share one Cache
// interface; the file backend suits CLI usage, the Redis backend suits
// the serve mode where several workers share one store.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry TTL. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Keyer builds cache keys for composed tiles. Keys must change
// whenever any input that affects the tile changes.
type Keyer interface {
	// TileKey identifies a composed tile: the member image sources
	// and the composition options.
	TileKey(groupID string, sources []string, opts any) string
}

// DefaultKeyer hashes all key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) TileKey(groupID string, sources []string, opts any) string {
	return hashKey("tile", groupID, sources, opts)
}
