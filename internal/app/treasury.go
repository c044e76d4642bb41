package app

import (
	"context"

	"github.com/cimillas/funding-pool/internal/domain"
)

// Treasury executes external monetary transfers. Calls are fallible and
// irreversible, so services invoke them as the final step of a
// transaction: a returned error aborts the whole unit and rolls back
// every bookkeeping mutation made before it.
type Treasury interface {
	// Collect takes possession of funds attached by a principal
	// (order placement, investment increase).
	Collect(ctx context.Context, from domain.Principal, projectID, orderID, amount int64) error
	// Payout sends pooled funds back out (refunds, threshold release).
	Payout(ctx context.Context, to domain.Principal, projectID, orderID, amount int64) error
}
