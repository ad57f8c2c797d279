package ordercache

import (
	"testing"
	"time"

	"github.com/aristath/reconcache/internal/domain"
	"github.com/aristath/reconcache/internal/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInstance domain.InstanceKey = "inst-1"

func TestCache_Update_RejectsStaleTransactionTime(t *testing.T) {
	cache := New()
	defer cache.Dispose()

	now := time.Now()
	applied := cache.Update(testInstance, domain.OrderUpdate{OrderID: 7, TransactionTime: now, OrderStatus: domain.OrderStatusNew})
	require.True(t, applied)

	applied = cache.Update(testInstance, domain.OrderUpdate{OrderID: 7, TransactionTime: now.Add(-time.Second), OrderStatus: domain.OrderStatusCanceled})
	assert.False(t, applied, "older transactionTime must be rejected")

	result := cache.GetOrdersByStatus(testInstance, domain.OrderStatusNew)
	require.Len(t, result.Data, 1)
}

func TestCache_Update_StaleRejectionKeepsEarlierStatus(t *testing.T) {
	cache := New()
	defer cache.Dispose()

	applied := cache.Update(testInstance, domain.OrderUpdate{
		Instance: testInstance, OrderID: 7,
		TransactionTime: time.UnixMilli(100), OrderStatus: domain.OrderStatusNew,
	})
	require.True(t, applied)

	applied = cache.Update(testInstance, domain.OrderUpdate{
		Instance: testInstance, OrderID: 7,
		TransactionTime: time.UnixMilli(90), OrderStatus: domain.OrderStatusCanceled,
	})
	assert.False(t, applied)

	active := cache.GetActiveOrders(testInstance)
	require.Len(t, active.Data, 1)
	assert.Equal(t, domain.OrderStatusNew, active.Data[0].OrderStatus)
}

func TestCache_Update_MaintainsActiveIndex(t *testing.T) {
	cache := New()
	defer cache.Dispose()
	now := time.Now()

	cache.Update(testInstance, domain.OrderUpdate{OrderID: 1, TransactionTime: now, OrderStatus: domain.OrderStatusNew})
	cache.Update(testInstance, domain.OrderUpdate{OrderID: 2, TransactionTime: now, OrderStatus: domain.OrderStatusPartiallyFilled})
	cache.Update(testInstance, domain.OrderUpdate{OrderID: 3, TransactionTime: now, OrderStatus: domain.OrderStatusFilled})

	active := cache.GetActiveOrders(testInstance)
	assert.Len(t, active.Data, 2)

	cache.Update(testInstance, domain.OrderUpdate{OrderID: 1, TransactionTime: now.Add(time.Second), OrderStatus: domain.OrderStatusFilled})
	active = cache.GetActiveOrders(testInstance)
	assert.Len(t, active.Data, 1)
}

func TestCache_UpdateAlgoOrder_UsesNarrowActiveSet(t *testing.T) {
	cache := New()
	defer cache.Dispose()
	now := time.Now()

	cache.UpdateAlgoOrder(testInstance, domain.AlgoOrderUpdate{AlgoID: 1, TransactionTime: now, Status: domain.AlgoOrderStatusNew})
	cache.UpdateAlgoOrder(testInstance, domain.AlgoOrderUpdate{AlgoID: 2, TransactionTime: now, Status: domain.AlgoOrderStatusTriggering})
	cache.UpdateAlgoOrder(testInstance, domain.AlgoOrderUpdate{AlgoID: 3, TransactionTime: now, Status: domain.AlgoOrderStatusTriggered})

	cache.mu.RLock()
	active := len(cache.activeAlgo[testInstance])
	cache.mu.RUnlock()
	assert.Equal(t, 2, active, "TRIGGERED is active per the domain enum but excluded from the narrower active-order index")
}

func TestComparator_Compare(t *testing.T) {
	now := time.Now()
	cached := []domain.OrderUpdate{
		{OrderID: 1, OrderStatus: domain.OrderStatusNew, TransactionTime: now},
		{OrderID: 2, OrderStatus: domain.OrderStatusPartiallyFilled, TransactionTime: now},
	}
	source := []domain.OrderUpdate{
		{OrderID: 1, OrderStatus: domain.OrderStatusPartiallyFilled, TransactionTime: now},
		{OrderID: 3, OrderStatus: domain.OrderStatusNew, TransactionTime: now},
	}

	delta := Comparator{}.Compare(cached, source)
	require.Len(t, delta.ToCreate, 1)
	assert.Equal(t, int64(3), delta.ToCreate[0].OrderID)
	require.Len(t, delta.ToUpdate, 1)
	assert.Equal(t, int64(1), delta.ToUpdate[0].OrderID)
	require.Len(t, delta.ToDelete, 1)
	assert.Equal(t, int64(2), delta.ToDelete[0].OrderID)
}

func TestShouldUpdateCache_Decisions(t *testing.T) {
	now := time.Now()
	cached := domain.OrderUpdate{OrderID: 1, OrderStatus: domain.OrderStatusNew, TransactionTime: now}

	d := ShouldUpdateCache(domain.OrderUpdate{OrderID: 1, OrderStatus: domain.OrderStatusNew, TransactionTime: now}, nil)
	assert.Equal(t, ActionCreate, d.Action)

	stale := ShouldUpdateCache(domain.OrderUpdate{OrderID: 1, TransactionTime: now.Add(-time.Second)}, &cached)
	assert.Equal(t, ActionIgnore, stale.Action)

	changed := ShouldUpdateCache(domain.OrderUpdate{OrderID: 1, OrderStatus: domain.OrderStatusPartiallyFilled, TransactionTime: now}, &cached)
	assert.Equal(t, ActionUpdate, changed.Action)

	unchanged := ShouldUpdateCache(cached, &cached)
	assert.Equal(t, ActionIgnore, unchanged.Action)
}

func TestUpdater_UpdateFromWsEvent_DispatchesByExecutionType(t *testing.T) {
	cache := New()
	defer cache.Dispose()
	updater := NewUpdater(testInstance, cache, zerolog.Nop())

	var fired []events.Name
	for _, name := range []events.Name{OrderCreated, OrderFilled, OrderPartiallyFilled, OrderCancelled, OrderExpired, OrderUpdated} {
		name := name
		_, err := updater.Events().Register(events.Registration{
			EventName: name,
			Handler: func(data events.Data, ctx events.Context) error {
				fired = append(fired, name)
				return nil
			},
		})
		require.NoError(t, err)
	}

	now := time.Now()
	updater.UpdateFromWsEvent(domain.OrderUpdate{OrderID: 1, TransactionTime: now, ExecutionType: domain.ExecutionTypeNew, OrderStatus: domain.OrderStatusNew})
	updater.UpdateFromWsEvent(domain.OrderUpdate{OrderID: 1, TransactionTime: now.Add(time.Second), ExecutionType: domain.ExecutionTypeTrade, OrderStatus: domain.OrderStatusPartiallyFilled})
	updater.UpdateFromWsEvent(domain.OrderUpdate{OrderID: 1, TransactionTime: now.Add(2 * time.Second), ExecutionType: domain.ExecutionTypeTrade, OrderStatus: domain.OrderStatusFilled})

	require.Equal(t, []events.Name{OrderCreated, OrderPartiallyFilled, OrderFilled}, fired)
}

func TestUpdater_ApplyDelta_SnapshotReconciliationEmitsAllThreeKinds(t *testing.T) {
	cache := New()
	defer cache.Dispose()
	updater := NewUpdater(testInstance, cache, zerolog.Nop())
	now := time.Now()

	cache.Update(testInstance, domain.OrderUpdate{Instance: testInstance, OrderID: 1, OrderStatus: domain.OrderStatusNew, TransactionTime: now})
	cache.Update(testInstance, domain.OrderUpdate{Instance: testInstance, OrderID: 2, OrderStatus: domain.OrderStatusPartiallyFilled, TransactionTime: now})

	source := []domain.OrderUpdate{
		{Instance: testInstance, OrderID: 1, OrderStatus: domain.OrderStatusPartiallyFilled, TransactionTime: now.Add(time.Second)},
		{Instance: testInstance, OrderID: 3, OrderStatus: domain.OrderStatusNew, TransactionTime: now.Add(time.Second)},
	}
	delta := Comparator{}.Compare(cache.ordersForInstance(testInstance), source)
	require.Len(t, delta.ToCreate, 1)
	require.Len(t, delta.ToUpdate, 1)
	require.Len(t, delta.ToDelete, 1)

	var fired []events.Name
	for _, name := range []events.Name{OrderUpdated, OrderCreated, OrderFilled} {
		name := name
		_, err := updater.Events().Register(events.Registration{
			EventName: name,
			Handler: func(data events.Data, ctx events.Context) error {
				fired = append(fired, name)
				return nil
			},
		})
		require.NoError(t, err)
	}

	updater.ApplyDelta(delta)

	assert.ElementsMatch(t, []events.Name{OrderUpdated, OrderCreated, OrderFilled}, fired)
	active := cache.GetActiveOrders(testInstance)
	ids := make([]int64, 0, len(active.Data))
	for _, o := range active.Data {
		ids = append(ids, o.OrderID)
	}
	assert.ElementsMatch(t, []int64{1, 3}, ids)
}

func TestUpdater_ApplyDelta_ToDeleteEmitsOrderFilled(t *testing.T) {
	cache := New()
	defer cache.Dispose()
	updater := NewUpdater(testInstance, cache, zerolog.Nop())
	now := time.Now()
	cache.Update(testInstance, domain.OrderUpdate{OrderID: 5, TransactionTime: now, OrderStatus: domain.OrderStatusNew})

	var filled bool
	_, err := updater.Events().Register(events.Registration{
		EventName: OrderFilled,
		Handler: func(data events.Data, ctx events.Context) error {
			filled = true
			return nil
		},
	})
	require.NoError(t, err)

	updater.ApplyDelta(Delta{ToDelete: []domain.OrderKey{{Instance: testInstance, OrderID: 5}}})
	assert.True(t, filled)
}
