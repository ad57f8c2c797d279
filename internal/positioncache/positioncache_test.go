package positioncache

import (
	"testing"
	"time"

	"github.com/aristath/reconcache/internal/domain"
	"github.com/aristath/reconcache/internal/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Update_ZeroAmountRemovesAndEmitsClosed(t *testing.T) {
	cache := New(zerolog.Nop())
	defer cache.Dispose()

	var closed []PositionClosedData
	_, err := cache.Events().Register(events.Registration{
		EventName: PositionClosed,
		Handler: func(data events.Data, ctx events.Context) error {
			closed = append(closed, data.(PositionClosedData))
			return nil
		},
	})
	require.NoError(t, err)

	cache.Update(domain.Position{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 1, UpdateTime: time.Now()})
	cache.Update(domain.Position{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 0, UpdateTime: time.Now()})

	require.Len(t, closed, 1)
	assert.Equal(t, "BTCUSDT", closed[0].Symbol)
	assert.Empty(t, cache.GetActivePositions())
}

func TestCache_Update_RejectsStaleUpdateTime(t *testing.T) {
	cache := New(zerolog.Nop())
	defer cache.Dispose()

	now := time.Now()
	cache.Update(domain.Position{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 1, EntryPrice: 100, UpdateTime: now})
	cache.Update(domain.Position{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 2, EntryPrice: 200, UpdateTime: now.Add(-time.Second)})

	positions := cache.GetBySymbol("BTCUSDT")
	require.Len(t, positions, 1)
	assert.Equal(t, 1.0, positions[0].PositionAmt)
}

func TestComparator_Compare(t *testing.T) {
	cached := []domain.Position{
		{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 1, EntryPrice: 100, RealizedProfit: 5},
		{Symbol: "ETHUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 2, EntryPrice: 10},
	}
	source := []domain.Position{
		{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 1.5, EntryPrice: 0},
		{Symbol: "SOLUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 3, EntryPrice: 20},
	}

	delta := Comparator{}.Compare(cached, source)

	require.Len(t, delta.ToUpdate, 1)
	assert.Equal(t, 100.0, delta.ToUpdate[0].EntryPrice, "source's zero entryPrice should fall back to cache")
	assert.Equal(t, 5.0, delta.ToUpdate[0].RealizedProfit, "realizedProfit always preserved from cache")

	require.Len(t, delta.ToCreate, 1)
	assert.Equal(t, "SOLUSDT", delta.ToCreate[0].Symbol)

	require.Len(t, delta.ToDelete, 1)
	assert.Equal(t, "ETHUSDT", delta.ToDelete[0].Symbol)
}

func TestComparator_ZeroedSourcePositionDeletesNonZeroCache(t *testing.T) {
	cached := []domain.Position{
		{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 1},
	}
	source := []domain.Position{
		{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 0},
	}
	delta := Comparator{}.Compare(cached, source)
	require.Len(t, delta.ToDelete, 1)
	assert.Empty(t, delta.ToCreate)
	assert.Empty(t, delta.ToUpdate)
}

func TestUpdater_UpdateFromWsEvent_ClassifiesStateTransitions(t *testing.T) {
	cache := New(zerolog.Nop())
	defer cache.Dispose()
	updater := NewUpdater(domain.InstanceKey("inst"), cache)

	opened := updater.UpdateFromWsEvent(domain.Position{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 1, EntryPrice: 100})
	assert.Equal(t, StateOpened, opened.StateChange)

	updated := updater.UpdateFromWsEvent(domain.Position{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 2, EntryPrice: 0})
	assert.Equal(t, StateUpdated, updated.StateChange)

	positions := cache.GetBySymbol("BTCUSDT")
	require.Len(t, positions, 1)
	assert.Equal(t, 100.0, positions[0].EntryPrice, "entryPrice preserved when incoming reports 0")

	reversed := updater.UpdateFromWsEvent(domain.Position{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: -1, EntryPrice: 90})
	assert.Equal(t, StateReversed, reversed.StateChange)

	closed := updater.UpdateFromWsEvent(domain.Position{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 0})
	assert.Equal(t, StateClosed, closed.StateChange)

	unchanged := updater.UpdateFromWsEvent(domain.Position{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 0})
	assert.Equal(t, StateUnchanged, unchanged.StateChange)
}

func TestUpdater_UpdateFromWsEvent_ReversalReportsPriorPosition(t *testing.T) {
	cache := New(zerolog.Nop())
	defer cache.Dispose()
	updater := NewUpdater(domain.InstanceKey("inst"), cache)

	base := time.Unix(0, 10*int64(time.Millisecond))
	updater.UpdateFromWsEvent(domain.Position{
		Symbol: "BTCUSDT", PositionSide: domain.PositionSideBoth,
		PositionAmt: 1, EntryPrice: 100, UpdateTime: base,
	})

	result := updater.UpdateFromWsEvent(domain.Position{
		Symbol: "BTCUSDT", PositionSide: domain.PositionSideBoth,
		PositionAmt: -2, EntryPrice: 110, UpdateTime: time.Unix(0, 20*int64(time.Millisecond)),
	})

	require.Equal(t, StateReversed, result.StateChange)
	require.NotNil(t, result.ExistingPosition)
	assert.Equal(t, 1.0, result.ExistingPosition.PositionAmt)

	positions := cache.GetBySymbol("BTCUSDT")
	require.Len(t, positions, 1)
	assert.Equal(t, -2.0, positions[0].PositionAmt)
	assert.Equal(t, 110.0, positions[0].EntryPrice)
}

func TestUpdater_ApplyDelta_EmitsReconciled(t *testing.T) {
	cache := New(zerolog.Nop())
	defer cache.Dispose()
	updater := NewUpdater(domain.InstanceKey("inst"), cache)

	var reconciled []ReconciledData
	_, err := cache.Events().Register(events.Registration{
		EventName: Reconciled,
		Handler: func(data events.Data, ctx events.Context) error {
			reconciled = append(reconciled, data.(ReconciledData))
			return nil
		},
	})
	require.NoError(t, err)

	updater.ApplyDelta(Delta{
		ToCreate: []domain.Position{{Symbol: "BTCUSDT", PositionSide: domain.PositionSideLong, PositionAmt: 1}},
	})

	require.Len(t, reconciled, 1)
	assert.Equal(t, 1, reconciled[0].Created)
}
