// Package registry composes the five domain caches and their updaters into
// one unit per tenant, following the single-struct-holds-every-dependency
// composition-root pattern — scaled down from "one container for the whole
// process" to "one registry per instanceKey".
package registry

import (
	"sync"

	"github.com/aristath/reconcache/internal/accountcache"
	"github.com/aristath/reconcache/internal/domain"
	"github.com/aristath/reconcache/internal/ordercache"
	"github.com/aristath/reconcache/internal/positioncache"
	"github.com/aristath/reconcache/internal/ratelimit"
	"github.com/aristath/reconcache/internal/symbolinfo"
	"github.com/rs/zerolog"
)

// Instance holds every cache and updater scoped to one tenant. Symbols are
// exchange-wide, not tenant-scoped, so Instance carries a shared pointer to
// the process-wide symbolinfo.Cache rather than its own copy.
type Instance struct {
	Key domain.InstanceKey

	Account        *accountcache.AccountCache
	AccountUpdater *accountcache.Updater

	Positions       *positioncache.Cache
	PositionUpdater *positioncache.Updater

	Orders       *ordercache.Cache
	OrderUpdater *ordercache.Updater

	RateLimits *ratelimit.Cache
	Symbols    *symbolinfo.Cache
}

// Dispose stops every cache owned exclusively by this instance. Symbols is
// shared with the registry and is not disposed here.
func (i *Instance) Dispose() {
	i.Account.Dispose()
	i.Positions.Dispose()
	i.Orders.Dispose()
	i.RateLimits.Dispose()
}

// Registry is the composition root: it mints and holds one Instance per
// tenant, plus the process-wide symbol-info cache every tenant shares.
type Registry struct {
	mu  sync.RWMutex
	log zerolog.Logger

	symbols   *symbolinfo.Cache
	instances map[domain.InstanceKey]*Instance
}

// New constructs an empty Registry.
func New(log zerolog.Logger) *Registry {
	return &Registry{
		log:       log.With().Str("component", "cache_registry").Logger(),
		symbols:   symbolinfo.New(),
		instances: make(map[domain.InstanceKey]*Instance),
	}
}

// Symbols returns the process-wide symbol-info cache.
func (r *Registry) Symbols() *symbolinfo.Cache { return r.symbols }

// GetOrCreate returns the Instance for key, wiring one on first use.
func (r *Registry) GetOrCreate(key domain.InstanceKey) *Instance {
	r.mu.RLock()
	inst, ok := r.instances[key]
	r.mu.RUnlock()
	if ok {
		return inst
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.instances[key]; ok {
		return inst
	}

	accounts := accountcache.New(accountcache.DefaultConfig(), r.log)
	positions := positioncache.New(r.log)
	orders := ordercache.New()

	inst = &Instance{
		Key:             key,
		Account:         accounts,
		AccountUpdater:  accountcache.NewUpdater(key, accounts, r.log),
		Positions:       positions,
		PositionUpdater: positioncache.NewUpdater(key, positions),
		Orders:          orders,
		OrderUpdater:    ordercache.NewUpdater(key, orders, r.log),
		RateLimits:      ratelimit.New(),
		Symbols:         r.symbols,
	}
	r.instances[key] = inst
	r.log.Info().Str("instance", string(key)).Msg("wired cache instance")
	return inst
}

// Get returns the Instance for key if it has already been created.
func (r *Registry) Get(key domain.InstanceKey) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[key]
	return inst, ok
}

// Keys returns every instance key currently wired.
func (r *Registry) Keys() []domain.InstanceKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]domain.InstanceKey, 0, len(r.instances))
	for k := range r.instances {
		keys = append(keys, k)
	}
	return keys
}

// Remove disposes and forgets the Instance for key, if any.
func (r *Registry) Remove(key domain.InstanceKey) {
	r.mu.Lock()
	inst, ok := r.instances[key]
	if ok {
		delete(r.instances, key)
	}
	r.mu.Unlock()
	if ok {
		inst.Dispose()
	}
}

// Dispose tears down every wired instance and the shared symbol cache.
func (r *Registry) Dispose() {
	r.mu.Lock()
	instances := r.instances
	r.instances = make(map[domain.InstanceKey]*Instance)
	r.mu.Unlock()

	for _, inst := range instances {
		inst.Dispose()
	}
	r.symbols.Dispose()
}
