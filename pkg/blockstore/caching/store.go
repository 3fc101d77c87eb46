// Package caching wraps a block store with an in-memory LRU cache.
//
// The cache is write-through: every Store delegates to the inner store
// before the cache is updated, so the inner store is always the source
// of truth and an evicted or lost cache only costs warm-up latency,
// never data.
package caching

import (
	"context"
	"fmt"

	"github.com/docker/go-units"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/vaultfs/vaultfs/pkg/blockstore"
	"github.com/vaultfs/vaultfs/pkg/metrics"
)

// DefaultCacheSize sets the default target size of the block cache in bytes
const DefaultCacheSize = 32 * units.MiB

// Option to configure the caching store
type Option func(*Store)

// CacheSize sets the target size of the LRU block cache in bytes
func CacheSize(size int64) Option {
	return func(s *Store) {
		if size < 1 {
			size = DefaultCacheSize
		}
		s.cacheBytes = size
	}
}

// Logger sets a logger for this store
func Logger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.l = l
		}
	}
}

// New wraps inner with an LRU cache. The wrapper owns inner exclusively.
func New(inner blockstore.Store, opts ...Option) (*Store, error) {
	s := &Store{
		inner:      inner,
		cacheBytes: DefaultCacheSize,
		l:          zap.NewNop(),
	}
	for _, apply := range opts {
		apply(s)
	}

	entries := int(s.cacheBytes / int64(inner.BlockSize()))
	if entries < 1 {
		entries = 1
	}
	cache, err := lru.New(entries)
	if err != nil {
		return nil, err
	}
	s.cache = cache
	s.l.Debug("block cache sized", zap.Int("entries", entries), zap.Uint32("blocksize", inner.BlockSize()))
	return s, nil
}

// Store serves recently used blocks from memory
type Store struct {
	inner      blockstore.Store
	cache      *lru.Cache
	cacheBytes int64
	locks      keyLocks
	l          *zap.Logger
}

var _ blockstore.Store = &Store{}

func (s *Store) String() string {
	return fmt.Sprintf("caching(%s)", s.inner.String())
}

// BlockSize delegates to the inner store: caching adds no overhead
func (s *Store) BlockSize() uint32 {
	return s.inner.BlockSize()
}

// Has answers from the cache when possible
func (s *Store) Has(ctx context.Context, key blockstore.Key) (bool, error) {
	if s.cache.Contains(key) {
		return true, nil
	}
	return s.inner.Has(ctx, key)
}

// Load returns the cached copy if present; otherwise it fetches from
// the inner store and populates the cache. Lookups of distinct keys do
// not serialize against each other.
func (s *Store) Load(ctx context.Context, key blockstore.Key) ([]byte, error) {
	if data, ok := s.cached(key); ok {
		metrics.Inc(metrics.BlockCacheHits)
		return data, nil
	}

	mu := s.locks.lock(key)
	mu.Lock()
	defer mu.Unlock()

	// another goroutine may have populated the entry while we waited
	if data, ok := s.cached(key); ok {
		metrics.Inc(metrics.BlockCacheHits)
		return data, nil
	}
	metrics.Inc(metrics.BlockCacheMisses)

	data, err := s.inner.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, copyBytes(data))
	return data, nil
}

// Store writes through: the inner store is updated first, then the cache
func (s *Store) Store(ctx context.Context, key blockstore.Key, data []byte) error {
	mu := s.locks.lock(key)
	mu.Lock()
	defer mu.Unlock()

	if err := s.inner.Store(ctx, key, data); err != nil {
		return err
	}
	metrics.Inc(metrics.BlocksStored)
	s.cache.Add(key, copyBytes(data))
	return nil
}

// Remove evicts from the cache and delegates
func (s *Store) Remove(ctx context.Context, key blockstore.Key) error {
	mu := s.locks.lock(key)
	mu.Lock()
	defer mu.Unlock()

	s.cache.Remove(key)
	return s.inner.Remove(ctx, key)
}

// CreateKey delegates to the inner store
func (s *Store) CreateKey(ctx context.Context) (blockstore.Key, error) {
	return s.inner.CreateKey(ctx)
}

func (s *Store) cached(key blockstore.Key) ([]byte, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	return copyBytes(v.([]byte)), true
}

func copyBytes(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
