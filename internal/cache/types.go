package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheCorrupted is returned when a stored entry cannot be decompressed
	ErrCacheCorrupted = errors.New("cache data corrupted")
)

// DefaultCapacity is the session cache budget in compressed bytes.
const DefaultCapacity = 8 * 1024 * 1024

// CacheStats holds cache performance metrics
type CacheStats struct {
	Capacity int64 // Maximum capacity in bytes

	Size         int64 // Current compressed size in bytes
	OriginalSize int64 // Size before compression
	ItemCount    int64

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // hits / (hits + misses)

	LastAccess time.Time
	LastEvict  time.Time
}

// Key derives a cache key from the parts of an input that affect the
// generated content.
func Key(topic, explanation string, flashcards int) string {
	h := sha256.New()
	h.Write([]byte(topic))
	h.Write([]byte{0})
	h.Write([]byte(explanation))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(flashcards)))
	return hex.EncodeToString(h.Sum(nil))
}
