package accountcache

import (
	"time"

	"github.com/aristath/reconcache/internal/domain"
	"github.com/aristath/reconcache/internal/events"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// balanceChangeTolerance is 1e-7 emission threshold for
// balanceUpdated.
const balanceChangeTolerance = 1e-7

// Updater wraps one AccountCache for one instance, diffing incoming
// balances against the previous snapshot and emitting lifecycle events.
type Updater struct {
	instanceKey domain.InstanceKey
	cache       *AccountCache
	events      *events.Manager
	log         zerolog.Logger
}

// NewUpdater constructs an Updater for instanceKey over cache.
func NewUpdater(instanceKey domain.InstanceKey, cache *AccountCache, log zerolog.Logger) *Updater {
	return &Updater{
		instanceKey: instanceKey,
		cache:       cache,
		events:      events.NewManager(log),
		log:         log.With().Str("component", "account_updater").Str("instance", string(instanceKey)).Logger(),
	}
}

// Events exposes the updater's event registry so callers may subscribe.
func (u *Updater) Events() *events.Manager { return u.events }

// RefreshFromSnapshot diffs balance's wallet balances against the
// previously cached balance, emits BalanceUpdated per changed asset
// beyond tolerance, stores the new snapshot, then emits AccountSynced.
func (u *Updater) RefreshFromSnapshot(balance domain.AccountBalance) {
	now := time.Now()
	previous := u.cache.GetBalance(u.instanceKey)

	for asset, incoming := range balance.Assets {
		var prevWallet float64
		if previous.Success {
			if prevAsset, ok := previous.Data.Assets[asset]; ok {
				prevWallet = prevAsset.WalletBalance
			}
		}
		change := incoming.WalletBalance - prevWallet
		if !floats.EqualWithinAbs(change, 0, balanceChangeTolerance) {
			u.events.Emit(BalanceUpdatedData{
				Asset:           asset,
				PreviousBalance: prevWallet,
				NewBalance:      incoming.WalletBalance,
				Change:          change,
				Timestamp:       now,
				InstanceKey:     u.instanceKey,
			}, nil)
		}
	}

	u.cache.Update(u.instanceKey, balance, balance.LastUpdate.UnixMilli())

	u.events.Emit(AccountSyncedData{
		InstanceKey: u.instanceKey,
		AssetCount:  len(balance.Assets),
		Timestamp:   now,
	}, nil)
}

// UpdateFromWsEvent merges a batch of asset deltas from a user-data-stream
// push into the cached balance.
func (u *Updater) UpdateFromWsEvent(deltas []domain.AssetDelta, transactionTime int64) {
	now := time.Now()
	previous := u.cache.GetBalance(u.instanceKey)

	var balance domain.AccountBalance
	if previous.Success {
		balance = previous.Data
		balance.Assets = cloneAssets(balance.Assets)
	} else {
		balance = domain.AccountBalance{Assets: make(map[string]domain.AssetBalance)}
	}

	for _, delta := range deltas {
		existing, ok := balance.Assets[delta.Asset]
		previousWallet := existing.WalletBalance
		if !ok {
			existing = domain.AssetBalance{
				Asset:              delta.Asset,
				WalletBalance:      delta.WalletBalance,
				CrossWalletBalance: delta.CrossWalletBalance,
				AvailableBalance:   delta.WalletBalance,
				MarginBalance:      delta.WalletBalance,
			}
		} else {
			existing.WalletBalance = delta.WalletBalance
			existing.CrossWalletBalance = delta.CrossWalletBalance
		}
		balance.Assets[delta.Asset] = existing

		if !floats.EqualWithinAbs(delta.BalanceChange, 0, balanceChangeTolerance) {
			u.events.Emit(BalanceUpdatedData{
				Asset:           delta.Asset,
				PreviousBalance: previousWallet,
				NewBalance:      existing.WalletBalance,
				Change:          delta.BalanceChange,
				Timestamp:       now,
				InstanceKey:     u.instanceKey,
			}, nil)
		}
	}

	var total float64
	for _, a := range balance.Assets {
		total += a.WalletBalance
	}
	balance.TotalWalletBalance = total
	balance.LastUpdate = now

	u.cache.Update(u.instanceKey, balance, transactionTime)
}

func cloneAssets(in map[string]domain.AssetBalance) map[string]domain.AssetBalance {
	out := make(map[string]domain.AssetBalance, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
