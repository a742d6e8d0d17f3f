// Package cache stores augmented samples so repeated runs over the same
// inputs, config and seed can skip recomputation.
//
// Entries are opaque byte slices addressed by string keys. A [Keyer]
// derives keys from everything that determines a result: the input bytes,
// the pipeline config, the seed and the sample's index in the batch. Change
// any of those and the key changes with it.
//
// Two backends are provided: [FileCache] for the CLI (one JSON file per
// entry under the user cache directory) and [NullCache], which stores
// nothing and is used for --no-cache.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the cache.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// SampleKey identifies one augmented sample.
	SampleKey(inputHash, configHash string, seed uint64, index int) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SampleKey hashes every component into a "sample:<sha256>" key.
func (DefaultKeyer) SampleKey(inputHash, configHash string, seed uint64, index int) string {
	return hashKey("sample", inputHash, configHash, seed, index)
}
