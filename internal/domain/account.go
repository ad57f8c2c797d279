package domain

import "time"

// AssetBalance holds the per-asset fields of an account balance snapshot.
type AssetBalance struct {
	Asset              string
	WalletBalance      float64
	CrossWalletBalance float64
	AvailableBalance   float64
	UnrealizedProfit   float64
	// MarginBalance and InitialMargin round out the margin-account fields
	// without enumerating every exchange-specific variant.
	MarginBalance float64
	InitialMargin float64
	MaintMargin   float64
}

// AccountBalance is a mapping from asset symbol to per-asset fields, plus a
// duplicated (and allowed-to-be-stale) list of open positions and the
// totals derived from the balances.
type AccountBalance struct {
	Assets             map[string]AssetBalance
	Positions          []Position
	TotalWalletBalance float64
	TotalUnrealizedPnL float64
	TotalMarginBalance float64
	// LastUpdate is sourced from the remote transaction time and trusted
	// as-is for stale-update detection; a production host should verify
	// monotonicity upstream.
	LastUpdate time.Time
}

// AssetDelta is a single per-asset balance change carried by a WS user-data
// account event.
type AssetDelta struct {
	Asset              string
	WalletBalance      float64
	CrossWalletBalance float64
	BalanceChange      float64
}
