package ordercache

import (
	"sync"

	"github.com/aristath/reconcache/internal/domain"
	"github.com/aristath/reconcache/internal/events"
	"github.com/rs/zerolog"
)

// Updater serializes writes to one Cache for one instance and emits its
// lifecycle event taxonomy. The mutex is held only across each
// compute-then-apply critical section, mirroring positioncache's Updater.
type Updater struct {
	instanceKey domain.InstanceKey
	cache       *Cache
	comparator  Comparator
	events      *events.Manager
	mu          sync.Mutex
}

// NewUpdater constructs an Updater for instanceKey over cache.
func NewUpdater(instanceKey domain.InstanceKey, cache *Cache, log zerolog.Logger) *Updater {
	return &Updater{
		instanceKey: instanceKey,
		cache:       cache,
		events:      events.NewManager(log),
	}
}

// Events exposes the updater's event registry.
func (u *Updater) Events() *events.Manager { return u.events }

// RefreshFromSnapshot computes a delta against source under lock, then
// releases the lock before applying it.
func (u *Updater) RefreshFromSnapshot(source []domain.OrderUpdate) {
	u.mu.Lock()
	active := u.cache.GetActiveOrders(u.instanceKey).Data
	delta := u.comparator.Compare(active, source)
	u.mu.Unlock()

	u.ApplyDelta(delta)
}

// ApplyDelta applies a precomputed delta under lock. toDelete items are
// treated as terminal-by-absence and emit orderFilled — an explicitly
// flagged ambiguity: the snapshot gave no reason for the order's
// disappearance from the active set, and "filled" is the most common
// real cause, so it is the one this implementation assumes.
func (u *Updater) ApplyDelta(delta Delta) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, key := range delta.ToDelete {
		order, ok := u.cache.regular.Cache.Get(key)
		if !ok {
			continue
		}
		order.OrderStatus = domain.OrderStatusFilled
		u.cache.Update(u.instanceKey, order)
		u.events.Emit(orderEvent(OrderFilled, order), nil)
	}
	for _, order := range delta.ToUpdate {
		u.cache.Update(u.instanceKey, order)
		u.events.Emit(orderEvent(OrderUpdated, order), nil)
	}
	for _, order := range delta.ToCreate {
		u.cache.Update(u.instanceKey, order)
		u.events.Emit(orderEvent(OrderCreated, order), nil)
	}
}

// UpdateFromWsEvent stores event and emits the lifecycle event its
// executionType/orderStatus pair selects via regularDispatch's table.
// The cache update always runs before event emission.
func (u *Updater) UpdateFromWsEvent(event domain.OrderUpdate) {
	u.mu.Lock()
	defer u.mu.Unlock()

	event.Instance = u.instanceKey
	u.cache.Update(u.instanceKey, event)

	name, ok := regularDispatch(event.ExecutionType, event.OrderStatus)
	if !ok {
		return
	}
	u.events.Emit(orderEvent(name, event), nil)
}

// UpdateAlgoFromWsEvent is UpdateFromWsEvent's analog for algo orders,
// dispatching directly from AlgoOrderStatus.
func (u *Updater) UpdateAlgoFromWsEvent(event domain.AlgoOrderUpdate) {
	u.mu.Lock()
	defer u.mu.Unlock()

	event.Instance = u.instanceKey
	u.cache.UpdateAlgoOrder(u.instanceKey, event)

	name, ok := algoDispatch(event.Status)
	if !ok {
		return
	}
	u.events.Emit(algoOrderEvent(name, event), nil)
}

func regularDispatch(exec domain.ExecutionType, status domain.OrderStatus) (events.Name, bool) {
	switch exec {
	case domain.ExecutionTypeNew:
		return OrderCreated, true
	case domain.ExecutionTypeTrade:
		switch status {
		case domain.OrderStatusFilled:
			return OrderFilled, true
		case domain.OrderStatusPartiallyFilled:
			return OrderPartiallyFilled, true
		default:
			return "", false
		}
	case domain.ExecutionTypeCanceled:
		return OrderCancelled, true
	case domain.ExecutionTypeExpired:
		return OrderExpired, true
	case domain.ExecutionTypeAmendment:
		return OrderUpdated, true
	case domain.ExecutionTypeCalculated:
		return OrderFilled, true
	default:
		return "", false
	}
}

func algoDispatch(status domain.AlgoOrderStatus) (events.Name, bool) {
	switch status {
	case domain.AlgoOrderStatusNew:
		return AlgoOrderCreated, true
	case domain.AlgoOrderStatusTriggering:
		return AlgoOrderTriggering, true
	case domain.AlgoOrderStatusTriggered:
		return AlgoOrderTriggered, true
	case domain.AlgoOrderStatusFinished, domain.AlgoOrderStatusExecuted:
		return AlgoOrderFinished, true
	case domain.AlgoOrderStatusRejected:
		return AlgoOrderRejected, true
	case domain.AlgoOrderStatusCancelled:
		return AlgoOrderCancelled, true
	case domain.AlgoOrderStatusExpired:
		return AlgoOrderExpired, true
	default:
		return "", false
	}
}
