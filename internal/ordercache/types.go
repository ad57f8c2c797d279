// Package ordercache implements the order cache, delta comparator, and
// updater for both regular and algo orders. The regular/algo keyspace
// separation keeps openOrders and openAlgoOrders as distinct maps since
// an orderId and an algoId can collide.
package ordercache

import (
	"time"

	"github.com/aristath/reconcache/internal/domain"
)

// orderTolerance is the numeric tolerance applied to quantity/price
// comparisons, consistent with position tolerance.
const orderTolerance = 1e-8

// Delta is the result of comparing a cached active-order set against a
// source snapshot.
type Delta struct {
	ToCreate []domain.OrderUpdate
	ToUpdate []domain.OrderUpdate
	ToDelete []domain.OrderKey
}

// Action is shouldUpdateCache's WS-dispatch recommendation.
type Action int

const (
	ActionIgnore Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "CREATE"
	case ActionUpdate:
		return "UPDATE"
	case ActionDelete:
		return "DELETE"
	default:
		return "IGNORE"
	}
}

// Decision is shouldUpdateCache's return value.
type Decision struct {
	Action Action
	Reason string
}

// Stats summarizes one instance's order book.
type Stats struct {
	Total  int
	Active int
}

// OrdersResult is the uniform read envelope every order-list query
// returns.
type OrdersResult struct {
	Success   bool
	Data      []domain.OrderUpdate
	Error     string
	LatencyMs float64
	Timestamp time.Time
}

// StatsResult is the uniform read envelope GetOrderStats returns.
type StatsResult struct {
	Success   bool
	Data      Stats
	Error     string
	LatencyMs float64
	Timestamp time.Time
}
