package ordercache

import (
	"github.com/aristath/reconcache/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// Comparator computes the reconciliation delta between a cached
// active-order set and a fresh REST snapshot.
type Comparator struct{}

// Compare diffs cached (the active set) against source.
func (Comparator) Compare(cached []domain.OrderUpdate, source []domain.OrderUpdate) Delta {
	cacheByKey := make(map[domain.OrderKey]domain.OrderUpdate, len(cached))
	for _, o := range cached {
		cacheByKey[o.Key()] = o
	}

	seen := make(map[domain.OrderKey]struct{}, len(source))
	var delta Delta

	for _, src := range source {
		key := src.Key()
		seen[key] = struct{}{}

		cachedOrder, inCache := cacheByKey[key]
		if !inCache {
			delta.ToCreate = append(delta.ToCreate, src)
			continue
		}
		if ordersDiffer(cachedOrder, src) {
			delta.ToUpdate = append(delta.ToUpdate, src)
		}
	}

	for key := range cacheByKey {
		if _, ok := seen[key]; !ok {
			delta.ToDelete = append(delta.ToDelete, key)
		}
	}

	return delta
}

func ordersDiffer(a, b domain.OrderUpdate) bool {
	return a.OrderStatus != b.OrderStatus ||
		!floats.EqualWithinAbs(a.FilledQuantity, b.FilledQuantity, orderTolerance) ||
		!floats.EqualWithinAbs(a.AveragePrice, b.AveragePrice, orderTolerance) ||
		!floats.EqualWithinAbs(a.OriginalPrice, b.OriginalPrice, orderTolerance) ||
		!floats.EqualWithinAbs(a.OriginalQuantity, b.OriginalQuantity, orderTolerance)
}

// ShouldUpdateCache recommends a WS-dispatch action for an incoming order
// against its (possibly absent) cached counterpart.
//
// DELETE is never returned here: a single WS order event carries no
// out-of-band removal signal — only snapshot absence does, and that path
// already flows through Compare's ToDelete. The Action is kept in this
// type's domain so a future removal signal (if the exchange ever adds
// one) has somewhere to go without changing the return shape.
func ShouldUpdateCache(ws domain.OrderUpdate, cached *domain.OrderUpdate) Decision {
	if cached == nil {
		return Decision{Action: ActionCreate, Reason: "no cached order for key"}
	}
	if ws.TransactionTime.Before(cached.TransactionTime) {
		return Decision{Action: ActionIgnore, Reason: "incoming transactionTime older than cached"}
	}
	if ws.OrderStatus.IsTerminal() && cached.OrderStatus.IsTerminal() {
		return Decision{Action: ActionIgnore, Reason: "both terminal, no further change expected"}
	}
	if ordersDiffer(*cached, ws) {
		return Decision{Action: ActionUpdate, Reason: "fields changed"}
	}
	return Decision{Action: ActionIgnore, Reason: "no change"}
}
