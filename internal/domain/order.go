package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a single buyer's monetary commitment toward a project.
// Amount is in minor currency units and stays positive while the order
// is pending or confirmed; withdrawal zeroes it on cancellation.
type Order struct {
	ID        int64
	ProjectID int64
	Buyer     Principal
	Seller    Principal
	Amount    int64
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
