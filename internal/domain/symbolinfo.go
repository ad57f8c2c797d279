package domain

// PriceFilter bounds and quantizes the price an order may be placed at.
type PriceFilter struct {
	MinPrice float64
	MaxPrice float64
	TickSize float64
}

// LotSizeFilter bounds and quantizes order quantity. The same shape backs
// both the LOT_SIZE and MARKET_LOT_SIZE exchange filters.
type LotSizeFilter struct {
	MinQty   float64
	MaxQty   float64
	StepSize float64
}

// MinNotionalFilter requires price*quantity to clear a floor.
type MinNotionalFilter struct {
	Notional float64
}

// SymbolInfo holds a symbol's exchange trading rules. It is treated as
// near-permanent: no TTL is applied to symbol-info cache entries.
type SymbolInfo struct {
	Symbol        string
	Status        string
	PriceFilter   *PriceFilter
	LotSizeFilter *LotSizeFilter
	MarketLotSize *LotSizeFilter
	MinNotional   *MinNotionalFilter
}
