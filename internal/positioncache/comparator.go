package positioncache

import (
	"github.com/aristath/reconcache/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// Comparator computes the reconciliation delta between a cached position
// book and a fresh REST snapshot.
type Comparator struct{}

// Compare diffs cached against source, both keyed by Position.Key().
func (Comparator) Compare(cached []domain.Position, source []domain.Position) Delta {
	cacheByKey := make(map[domain.PositionKey]domain.Position, len(cached))
	for _, p := range cached {
		cacheByKey[p.Key()] = p
	}

	seen := make(map[domain.PositionKey]struct{}, len(source))
	var delta Delta

	for _, src := range source {
		key := src.Key()
		seen[key] = struct{}{}

		cachedPos, inCache := cacheByKey[key]

		if src.IsFlat() {
			if inCache && !cachedPos.IsFlat() {
				delta.ToDelete = append(delta.ToDelete, key)
			}
			continue
		}

		if !inCache {
			delta.ToCreate = append(delta.ToCreate, src)
			continue
		}

		if positionsEqual(cachedPos, src) {
			continue
		}

		delta.ToUpdate = append(delta.ToUpdate, mergePosition(cachedPos, src))
	}

	for key := range cacheByKey {
		if _, ok := seen[key]; !ok {
			delta.ToDelete = append(delta.ToDelete, key)
		}
	}

	return delta
}

func positionsEqual(a, b domain.Position) bool {
	return floats.EqualWithinAbs(a.PositionAmt, b.PositionAmt, positionTolerance) &&
		floats.EqualWithinAbs(a.EntryPrice, b.EntryPrice, positionTolerance) &&
		floats.EqualWithinAbs(a.MarkPrice, b.MarkPrice, positionTolerance) &&
		floats.EqualWithinAbs(a.UnrealizedProfit, b.UnrealizedProfit, positionTolerance) &&
		a.MarginType == b.MarginType &&
		a.Leverage == b.Leverage &&
		floats.EqualWithinAbs(a.LiquidationPrice, b.LiquidationPrice, positionTolerance) &&
		floats.EqualWithinAbs(a.IsolatedWallet, b.IsolatedWallet, positionTolerance)
}

// mergePosition produces the merged-update object: source wins except
// for entryPrice/markPrice when source reports 0 and cache has a usable
// value, and realizedProfit which is always preserved from the cache
// (the REST snapshot never carries it).
func mergePosition(cached, source domain.Position) domain.Position {
	merged := source
	if source.EntryPrice == 0 && cached.EntryPrice > 0 {
		merged.EntryPrice = cached.EntryPrice
	}
	if source.MarkPrice == 0 {
		merged.MarkPrice = cached.MarkPrice
	}
	merged.RealizedProfit = cached.RealizedProfit
	return merged
}
