package cachecore

import (
	"time"

	"github.com/aristath/reconcache/internal/domain"
)

// NeverExpire is the TTL sentinel meaning "this entry never expires".
const NeverExpire int64 = -1

// entry is the internal envelope wrapping every cached value.
type entry[V any] struct {
	value          V
	createdAt      time.Time
	lastAccessedAt time.Time
	accessCount    int64
	ttlMs          int64
	priority       domain.CachePriority
}

// isExpired implements invariant: isExpired iff ttlMs != -1
// and now - createdAt > ttlMs.
func (e *entry[V]) isExpired(now time.Time) bool {
	if e.ttlMs == NeverExpire {
		return false
	}
	return now.Sub(e.createdAt) > time.Duration(e.ttlMs)*time.Millisecond
}
