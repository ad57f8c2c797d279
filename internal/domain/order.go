package domain

import "time"

// OrderUpdate is a regular (matching-engine) order, identified by
// (instance, OrderID).
type OrderUpdate struct {
	Instance         InstanceKey
	OrderID          int64
	Symbol           string
	Side             OrderSide
	OrderType        OrderType
	OriginalQuantity float64
	FilledQuantity   float64
	OriginalPrice    float64
	AveragePrice     float64
	StopPrice        float64
	ExecutionType    ExecutionType
	OrderStatus      OrderStatus
	EventTime        time.Time
	TransactionTime  time.Time
	TradeTime        time.Time
}

// Key returns the composite key ordercache indexes this order under.
func (o OrderUpdate) Key() OrderKey {
	return OrderKey{Instance: o.Instance, OrderID: o.OrderID}
}

// IsActive reports whether the order can still receive fills.
func (o OrderUpdate) IsActive() bool { return o.OrderStatus.IsActive() }

// IsTerminal reports whether the order will never change again.
func (o OrderUpdate) IsTerminal() bool { return o.OrderStatus.IsTerminal() }

// AlgoOrderUpdate is a conditional (stop/take-profit/trailing) order managed
// by the exchange's algo service, identified by (instance, AlgoID).
// OrderID is populated once the algo fires and a child live order is
// placed; until then it is the zero value.
type AlgoOrderUpdate struct {
	Instance        InstanceKey
	AlgoID          int64
	ClientAlgoID    string
	OrderID         int64
	HasOrderID      bool
	Symbol          string
	Side            OrderSide
	OrderType       OrderType
	Quantity        float64
	Price           float64
	StopPrice       float64
	Status          AlgoOrderStatus
	EventTime       time.Time
	TransactionTime time.Time
}

// Key returns the composite key ordercache indexes this algo order under.
func (a AlgoOrderUpdate) Key() AlgoOrderKey {
	return AlgoOrderKey{Instance: a.Instance, AlgoID: a.AlgoID}
}

// IsActive reports whether the algo order is still being watched for
// trigger conditions.
func (a AlgoOrderUpdate) IsActive() bool { return a.Status.IsActive() }

// IsTerminal reports whether the algo order will never change again.
func (a AlgoOrderUpdate) IsTerminal() bool { return a.Status.IsTerminal() }
