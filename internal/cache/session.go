package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

// SessionCache is an in-memory cache that lives as long as the session.
// Values are compressed with zstd; eviction is FIFO by insertion time.
type SessionCache struct {
	capacity int64
	size     int64

	items map[string]*sessionCacheEntry

	startTime time.Time
	nextSeq   uint64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu    sync.Mutex
	stats CacheStats
}

type sessionCacheEntry struct {
	value        []byte // compressed
	originalSize int64
	seq          uint64 // insertion order
	timestamp    time.Time
	hits         int64
}

// NewSessionCache creates a session cache holding at most capacity
// compressed bytes.
func NewSessionCache(capacity int64) (*SessionCache, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &SessionCache{
		capacity:  capacity,
		items:     make(map[string]*sessionCacheEntry),
		startTime: time.Now(),
		encoder:   enc,
		decoder:   dec,
		stats: CacheStats{
			Capacity: capacity,
		},
	}, nil
}

// Get retrieves and decompresses a value from the cache.
func (sc *SessionCache) Get(key string) ([]byte, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	entry, ok := sc.items[key]
	if !ok {
		sc.stats.Misses++
		return nil, false
	}

	data, err := sc.decoder.DecodeAll(entry.value, nil)
	if err != nil {
		log.Warn("dropping corrupted cache entry", "key", key, "error", err)
		sc.remove(key)
		sc.stats.Misses++
		return nil, false
	}

	entry.hits++
	sc.stats.Hits++
	sc.stats.LastAccess = time.Now()

	return data, true
}

// Put compresses and stores a value in the cache.
func (sc *SessionCache) Put(key string, value []byte) error {
	compressed := sc.encoder.EncodeAll(value, nil)
	size := int64(len(compressed))

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if size > sc.capacity {
		return ErrItemTooLarge
	}

	if _, ok := sc.items[key]; ok {
		sc.remove(key)
	}

	for sc.size+size > sc.capacity && len(sc.items) > 0 {
		sc.evictOldest()
	}

	sc.items[key] = &sessionCacheEntry{
		value:        compressed,
		originalSize: int64(len(value)),
		seq:          sc.nextSeq,
		timestamp:    time.Now(),
	}
	sc.nextSeq++
	sc.size += size

	return nil
}

// Delete removes an entry from the cache.
func (sc *SessionCache) Delete(key string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.remove(key)
}

// Clear removes all entries from the cache.
func (sc *SessionCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.items = make(map[string]*sessionCacheEntry)
	sc.size = 0
}

// Contains checks if a key exists in the cache.
func (sc *SessionCache) Contains(key string) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	_, ok := sc.items[key]
	return ok
}

// Size returns the current compressed size in bytes.
func (sc *SessionCache) Size() int64 {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.size
}

// Uptime returns how long the session cache has existed.
func (sc *SessionCache) Uptime() time.Duration {
	return time.Since(sc.startTime)
}

// Stats returns cache statistics.
func (sc *SessionCache) Stats() CacheStats {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	stats := sc.stats
	stats.Size = sc.size
	stats.ItemCount = int64(len(sc.items))
	for _, e := range sc.items {
		stats.OriginalSize += e.originalSize
	}

	if stats.Hits+stats.Misses > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}

	return stats
}

// Close releases the compression resources.
func (sc *SessionCache) Close() error {
	sc.decoder.Close()
	return sc.encoder.Close()
}

func (sc *SessionCache) remove(key string) {
	entry, ok := sc.items[key]
	if !ok {
		return
	}
	delete(sc.items, key)
	sc.size -= int64(len(entry.value))
}

func (sc *SessionCache) evictOldest() {
	var oldestKey string
	var oldestSeq uint64

	for key, entry := range sc.items {
		if oldestKey == "" || entry.seq < oldestSeq {
			oldestKey = key
			oldestSeq = entry.seq
		}
	}

	if oldestKey != "" {
		sc.remove(oldestKey)
		sc.stats.Evictions++
		sc.stats.LastEvict = time.Now()
	}
}
