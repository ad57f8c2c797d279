// Package domain holds the shared value types that flow through every
// cache and updater in the reconciliation core: instance identity, the
// account/position/order/symbol/rate-limit records, and the enumerations
// that classify them.
package domain

// InstanceKey identifies a tenant (API credential + environment) within the
// owning process. It scopes every cache entry; the cache substrate itself
// is not multi-tenant aware, so domain caches embed InstanceKey in their
// composite keys.
type InstanceKey string

// PositionKey identifies a position within a single instance.
type PositionKey struct {
	Symbol       string
	PositionSide PositionSide
}

// OrderKey identifies a regular order within a single instance.
type OrderKey struct {
	Instance InstanceKey
	OrderID  int64
}

// AlgoOrderKey identifies an algo order within a single instance.
type AlgoOrderKey struct {
	Instance InstanceKey
	AlgoID   int64
}

// RateLimitClient identifies which API surface a rate-limit snapshot came
// from.
type RateLimitClient string

const (
	RateLimitClientREST      RateLimitClient = "rest"
	RateLimitClientWebSocket RateLimitClient = "websocket"
	RateLimitClientUserData  RateLimitClient = "userdata"
)

// RateLimitKey identifies a rate-limit record within a single instance.
type RateLimitKey struct {
	Instance InstanceKey
	Client   RateLimitClient
}
