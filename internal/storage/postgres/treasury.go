package postgres

import (
	"context"
	"fmt"

	"github.com/cimillas/funding-pool/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerTreasury records every monetary movement as a row in the
// transfers table, inside the transaction of the invoking operation.
// A real payment gateway replaces it behind the same app.Treasury
// interface; the transactional placement is what gives operations
// their all-or-nothing contract.
type LedgerTreasury struct {
	pool *pgxpool.Pool
}

func NewLedgerTreasury(pool *pgxpool.Pool) *LedgerTreasury {
	return &LedgerTreasury{pool: pool}
}

func (t *LedgerTreasury) Collect(ctx context.Context, from domain.Principal, projectID, orderID, amount int64) error {
	return t.record(ctx, "collect", from, projectID, orderID, amount)
}

func (t *LedgerTreasury) Payout(ctx context.Context, to domain.Principal, projectID, orderID, amount int64) error {
	return t.record(ctx, "payout", to, projectID, orderID, amount)
}

func (t *LedgerTreasury) record(ctx context.Context, direction string, principal domain.Principal, projectID, orderID, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	const stmt = `
INSERT INTO transfers (reference, direction, principal, project_id, order_id, amount)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := db(ctx, t.pool).Exec(ctx, stmt,
		uuid.NewString(), direction, string(principal), projectID, orderID, amount)
	if err != nil {
		return fmt.Errorf("record transfer: %w", err)
	}
	return nil
}
