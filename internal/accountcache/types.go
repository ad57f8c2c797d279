// Package accountcache implements the account-balance cache and updater:
// per-instance balance snapshots, staleness-aware updates, and
// auto-refresh scheduling built on robfig/cron/v3.
package accountcache

import (
	"time"

	"github.com/aristath/reconcache/internal/domain"
)

// Config configures an AccountCache.
type Config struct {
	// RefreshIntervalMs is the auto-refresh period applied to every
	// instance unless overridden via SetRefreshInterval.
	RefreshIntervalMs int64
}

// DefaultConfig mirrors AccountCacheConfig default.
func DefaultConfig() Config {
	return Config{RefreshIntervalMs: 5000}
}

// Entry is the per-instance state AccountCache stores.
type Entry struct {
	Balance         domain.AccountBalance
	LastFetch       time.Time
	NextRefresh     time.Time
	FetchCount      int64
	Errors          int64
	TransactionTime int64 // 0 means unset
}

// BalanceResult is the uniform read envelope GetBalance returns.
type BalanceResult struct {
	Success   bool
	Data      domain.AccountBalance
	Error     string
	LatencyMs float64
	Timestamp time.Time
	StaleMs   *float64
}
