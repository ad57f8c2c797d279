package cachecore

// Base is the thin substrate wrapper every domain cache embeds. It owns
// one ConcurrentCache and exposes only the lifecycle surface common to
// all domain caches; key-shaped read/write operations belong to the
// embedding type, not here.
type Base[K comparable, V any] struct {
	Cache *ConcurrentCache[K, V]
}

// NewBase constructs a Base wrapping a freshly built ConcurrentCache.
func NewBase[K comparable, V any](cfg Config) Base[K, V] {
	return Base[K, V]{Cache: New[K, V](cfg)}
}

// Size returns the number of unexpired entries.
func (b Base[K, V]) Size() int {
	return len(b.Cache.Keys())
}

// IsEmpty reports whether the cache holds no unexpired entries.
func (b Base[K, V]) IsEmpty() bool {
	return b.Size() == 0
}

// Stats returns the embedded cache's stats snapshot.
func (b Base[K, V]) Stats() Stats {
	return b.Cache.GetStats()
}

// ResetStats zeroes the embedded cache's counters.
func (b Base[K, V]) ResetStats() {
	b.Cache.ResetStats()
}

// Clear removes every entry from the embedded cache.
func (b Base[K, V]) Clear() {
	b.Cache.Clear()
}

// Dispose stops the embedded cache's background cleanup goroutine.
func (b Base[K, V]) Dispose() {
	b.Cache.Dispose()
}
