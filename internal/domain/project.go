package domain

import "time"

// DefaultPoolThreshold is assigned when a project is first referenced
// by an order and no administrator has configured a threshold yet.
const DefaultPoolThreshold int64 = 100

// Project aggregates committed funds from many orders. TotalInvestment
// is maintained incrementally in lockstep with every order mutation and
// equals the sum of amounts over pending and confirmed orders.
// InvestorCount counts placements and never decreases.
type Project struct {
	ID              int64
	TotalInvestment int64
	PoolThreshold   int64
	Recipient       Principal
	FundsReleased   bool
	InvestorCount   int64
	CreatedAt       time.Time
}
