// Package symbolinfo implements the symbol trading-rules cache: exchange
// filters keyed by symbol, with tolerance-aware validators and tick/step
// rounding helpers. It carries no TTL since exchange trading rules change
// only on redeploy, not on a clock.
package symbolinfo

import (
	"math"

	"github.com/aristath/reconcache/internal/cachecore"
	"github.com/aristath/reconcache/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// tolerance is 1e-8 tick/step modulus tolerance.
const tolerance = 1e-8

// Cache stores one SymbolInfo per symbol, with no TTL.
type Cache struct {
	base cachecore.Base[string, domain.SymbolInfo]
}

// New constructs a Cache.
func New() *Cache {
	cfg := cachecore.DefaultConfig("symbol_info_cache")
	cfg.DefaultTTLMs = cachecore.NeverExpire
	cfg.MaxEntries = 0
	return &Cache{base: cachecore.NewBase[string, domain.SymbolInfo](cfg)}
}

// UpdateFromExchangeInfo bulk-loads every symbol's trading rules.
func (c *Cache) UpdateFromExchangeInfo(symbols []domain.SymbolInfo) {
	for _, s := range symbols {
		c.base.Cache.Set(s.Symbol, s, cachecore.EntryOptions{})
	}
}

// Get returns the cached SymbolInfo for symbol, if any.
func (c *Cache) Get(symbol string) (domain.SymbolInfo, bool) {
	return c.base.Cache.Get(symbol)
}

// ValidatePrice checks price against symbol's PRICE_FILTER: bounds and
// tick-size quantization. A missing filter is permissive (accepts).
func (c *Cache) ValidatePrice(symbol string, price float64) bool {
	info, ok := c.base.Cache.Get(symbol)
	if !ok || info.PriceFilter == nil {
		return true
	}
	f := info.PriceFilter
	if price < f.MinPrice || price > f.MaxPrice {
		return false
	}
	return isMultiple(price-f.MinPrice, f.TickSize)
}

// ValidateQuantity checks quantity against symbol's LOT_SIZE filter:
// bounds and step-size quantization. A missing filter is permissive.
func (c *Cache) ValidateQuantity(symbol string, quantity float64) bool {
	info, ok := c.base.Cache.Get(symbol)
	if !ok || info.LotSizeFilter == nil {
		return true
	}
	f := info.LotSizeFilter
	if quantity < f.MinQty || quantity > f.MaxQty {
		return false
	}
	return isMultiple(quantity-f.MinQty, f.StepSize)
}

// ValidateNotional checks price*quantity clears symbol's MIN_NOTIONAL
// floor. A missing filter is permissive.
func (c *Cache) ValidateNotional(symbol string, price, quantity float64) bool {
	info, ok := c.base.Cache.Get(symbol)
	if !ok || info.MinNotional == nil {
		return true
	}
	return price*quantity >= info.MinNotional.Notional-tolerance
}

// RoundPrice floors price to symbol's tick size. Returns price unchanged
// if no PRICE_FILTER is cached.
func (c *Cache) RoundPrice(symbol string, price float64) float64 {
	info, ok := c.base.Cache.Get(symbol)
	if !ok || info.PriceFilter == nil || info.PriceFilter.TickSize == 0 {
		return price
	}
	return floorToStep(price, info.PriceFilter.TickSize)
}

// RoundQuantity floors quantity to symbol's step size. Returns quantity
// unchanged if no LOT_SIZE filter is cached.
func (c *Cache) RoundQuantity(symbol string, quantity float64) float64 {
	info, ok := c.base.Cache.Get(symbol)
	if !ok || info.LotSizeFilter == nil || info.LotSizeFilter.StepSize == 0 {
		return quantity
	}
	return floorToStep(quantity, info.LotSizeFilter.StepSize)
}

func isMultiple(value, step float64) bool {
	if step == 0 {
		return true
	}
	remainder := math.Mod(value, step)
	return floats.EqualWithinAbs(remainder, 0, tolerance) || floats.EqualWithinAbs(remainder, step, tolerance)
}

func floorToStep(value, step float64) float64 {
	return math.Floor(value/step) * step
}

// Dispose stops the substrate.
func (c *Cache) Dispose() {
	c.base.Dispose()
}
