// Package ratelimit implements the rate-limit cache: per-(instance,
// client) exchange rate-limit snapshots, with a window-boundary reset
// estimator and a collapsed cross-client summary.
package ratelimit

import (
	"time"

	"github.com/aristath/reconcache/internal/cachecore"
	"github.com/aristath/reconcache/internal/domain"
)

// defaultRequestWeightLimit and defaultOrdersLimit are the fallback
// limits getRateLimits reports when no snapshot has arrived yet.
const (
	defaultRequestWeightLimit = 2400
	defaultOrdersLimit        = 300
)

// Entry is the per-(instance, client) record Cache stores.
type Entry struct {
	RateLimits  []domain.RateLimitRecord
	LastUpdated time.Time
	Source      string
}

// Cache stores rate-limit snapshots keyed by (instanceKey, client).
type Cache struct {
	base cachecore.Base[domain.RateLimitKey, Entry]
}

// New constructs a Cache with no TTL (snapshots are overwritten on every
// push, not expired on a clock).
func New() *Cache {
	cfg := cachecore.DefaultConfig("rate_limit_cache")
	cfg.DefaultTTLMs = cachecore.NeverExpire
	cfg.MaxEntries = 0
	return &Cache{base: cachecore.NewBase[domain.RateLimitKey, Entry](cfg)}
}

// Update stores a fresh rate-limit snapshot for (instanceKey, client).
// source is "websocket" when client is userdata, else it echoes client.
func (c *Cache) Update(instanceKey domain.InstanceKey, client domain.RateLimitClient, limits []domain.RateLimitRecord) {
	source := string(client)
	if client == domain.RateLimitClientUserData {
		source = "websocket"
	}
	key := domain.RateLimitKey{Instance: instanceKey, Client: client}
	c.base.Cache.Set(key, Entry{
		RateLimits:  limits,
		LastUpdated: time.Now(),
		Source:      source,
	}, cachecore.EntryOptions{})
}

// LimitSummary is one rate-limit record's remaining headroom and
// time-to-reset.
type LimitSummary struct {
	Record    domain.RateLimitRecord
	Remaining int
	ResetInMs int64
}

// GetSummary returns per-limit remaining/resetIn for (instanceKey,
// client), or nil if nothing has been recorded.
func (c *Cache) GetSummary(instanceKey domain.InstanceKey, client domain.RateLimitClient) []LimitSummary {
	key := domain.RateLimitKey{Instance: instanceKey, Client: client}
	entry, ok := c.base.Cache.Get(key)
	if !ok {
		return nil
	}
	now := time.Now()
	summaries := make([]LimitSummary, 0, len(entry.RateLimits))
	for _, record := range entry.RateLimits {
		summaries = append(summaries, LimitSummary{
			Record:    record,
			Remaining: record.Remaining(),
			ResetInMs: msUntilNextWindowBoundary(now, record.Interval, record.IntervalNum),
		})
	}
	return summaries
}

// msUntilNextWindowBoundary estimates milliseconds until the current
// rate-limit window resets.
func msUntilNextWindowBoundary(now time.Time, interval domain.RateLimitInterval, intervalNum int) int64 {
	switch interval {
	case domain.RateLimitIntervalSecond:
		if intervalNum <= 0 {
			return 0
		}
		windowMs := int64(intervalNum) * 1000
		return nextMultiple(now, windowMs)
	case domain.RateLimitIntervalMinute:
		if intervalNum <= 0 {
			return 0
		}
		windowMs := int64(intervalNum) * 60000
		return nextMultiple(now, windowMs)
	case domain.RateLimitIntervalDay:
		midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		return midnight.Sub(now).Milliseconds()
	default:
		return 0
	}
}

func nextMultiple(now time.Time, windowMs int64) int64 {
	if windowMs <= 0 {
		return 0
	}
	nowMs := now.UnixMilli()
	remainder := nowMs % windowMs
	if remainder == 0 {
		return 0
	}
	return windowMs - remainder
}

// AggregateSnapshot is GetRateLimits' collapsed cross-client view.
type AggregateSnapshot struct {
	RequestWeight LimitUsage
	Orders        LimitUsage
}

// LimitUsage is a used/limit pair for one rate-limit type.
type LimitUsage struct {
	Used  int
	Limit int
}

// GetRateLimits collapses every client's snapshot for instanceKey into a
// single {requestWeight, orders} view, defaulting to the fallback limits
// above when no snapshot exists for a type.
func (c *Cache) GetRateLimits(instanceKey domain.InstanceKey) AggregateSnapshot {
	snapshot := AggregateSnapshot{
		RequestWeight: LimitUsage{Used: 0, Limit: defaultRequestWeightLimit},
		Orders:        LimitUsage{Used: 0, Limit: defaultOrdersLimit},
	}

	for _, client := range []domain.RateLimitClient{domain.RateLimitClientREST, domain.RateLimitClientWebSocket, domain.RateLimitClientUserData} {
		key := domain.RateLimitKey{Instance: instanceKey, Client: client}
		entry, ok := c.base.Cache.Get(key)
		if !ok {
			continue
		}
		for _, record := range entry.RateLimits {
			switch record.RateLimitType {
			case domain.RateLimitTypeRequestWeight:
				snapshot.RequestWeight = LimitUsage{Used: record.Count, Limit: record.Limit}
			case domain.RateLimitTypeOrders:
				snapshot.Orders = LimitUsage{Used: record.Count, Limit: record.Limit}
			}
		}
	}
	return snapshot
}

// Dispose stops the substrate.
func (c *Cache) Dispose() {
	c.base.Dispose()
}
