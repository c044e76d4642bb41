package domain

import "time"

type EventKind string

const (
	EventOrderPlaced        EventKind = "order_placed"
	EventOrderConfirmed     EventKind = "order_confirmed"
	EventOrderCancelled     EventKind = "order_cancelled"
	EventInvestmentAdjusted EventKind = "investment_adjusted"
	EventFundsReleased      EventKind = "funds_released"
)

// Event is one entry of the append-only, ordered log emitted by the
// core. Seq is assigned by the store; fields not carried by a given
// kind are left zero.
type Event struct {
	Seq        int64
	Kind       EventKind
	ProjectID  int64
	OrderID    int64
	Buyer      Principal
	Seller     Principal
	Amount     int64
	OccurredAt time.Time
}
