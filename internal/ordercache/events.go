package ordercache

import (
	"time"

	"github.com/aristath/reconcache/internal/domain"
	"github.com/aristath/reconcache/internal/events"
)

// Regular order lifecycle events.
const (
	OrderCreated         events.Name = "orderCreated"
	OrderUpdated         events.Name = "orderUpdated"
	OrderFilled          events.Name = "orderFilled"
	OrderPartiallyFilled events.Name = "orderPartiallyFilled"
	OrderCancelled       events.Name = "orderCancelled"
	OrderExpired         events.Name = "orderExpired"
)

// Algo order lifecycle events.
const (
	AlgoOrderCreated    events.Name = "algoOrderCreated"
	AlgoOrderTriggering events.Name = "algoOrderTriggering"
	AlgoOrderTriggered  events.Name = "algoOrderTriggered"
	AlgoOrderFinished   events.Name = "algoOrderFinished"
	AlgoOrderRejected   events.Name = "algoOrderRejected"
	AlgoOrderCancelled  events.Name = "algoOrderCancelled"
	AlgoOrderExpired    events.Name = "algoOrderExpired"
)

// OrderEventData is the payload shared by every regular-order lifecycle
// event.
type OrderEventData struct {
	Order     domain.OrderUpdate
	Timestamp time.Time
	name      events.Name
}

func (d OrderEventData) EventName() events.Name { return d.name }

func orderEvent(name events.Name, order domain.OrderUpdate) OrderEventData {
	return OrderEventData{Order: order, Timestamp: time.Now(), name: name}
}

// AlgoOrderEventData is the payload shared by every algo-order lifecycle
// event.
type AlgoOrderEventData struct {
	Order     domain.AlgoOrderUpdate
	Timestamp time.Time
	name      events.Name
}

func (d AlgoOrderEventData) EventName() events.Name { return d.name }

func algoOrderEvent(name events.Name, order domain.AlgoOrderUpdate) AlgoOrderEventData {
	return AlgoOrderEventData{Order: order, Timestamp: time.Now(), name: name}
}
