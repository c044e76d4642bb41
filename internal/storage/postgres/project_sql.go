package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cimillas/funding-pool/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Project and event statements shared by the order and pool
// repositories; both sides of every operation touch the same rows.

func ensureProject(ctx context.Context, q dbtx, projectID, defaultThreshold int64, now time.Time) (domain.Project, error) {
	const stmt = `
INSERT INTO projects (id, pool_threshold, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO NOTHING`

	if _, err := q.Exec(ctx, stmt, projectID, defaultThreshold, now); err != nil {
		return domain.Project{}, fmt.Errorf("ensure project: %w", err)
	}
	return getProject(ctx, q, projectID, true)
}

func getProject(ctx context.Context, q dbtx, projectID int64, forUpdate bool) (domain.Project, error) {
	query := `
SELECT id, total_investment, pool_threshold, recipient, funds_released, investor_count, created_at
FROM projects
WHERE id = $1`
	if forUpdate {
		query += `
FOR UPDATE`
	}

	var p domain.Project
	var recipient string
	err := q.QueryRow(ctx, query, projectID).
		Scan(&p.ID, &p.TotalInvestment, &p.PoolThreshold, &recipient, &p.FundsReleased, &p.InvestorCount, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Project{}, domain.ErrProjectNotFound
		}
		return domain.Project{}, fmt.Errorf("get project: %w", err)
	}
	p.Recipient = domain.Principal(recipient)
	return p, nil
}

func applyInvestment(ctx context.Context, q dbtx, projectID, delta, investors int64) error {
	const stmt = `
UPDATE projects
SET total_investment = total_investment + $2,
    investor_count = investor_count + $3
WHERE id = $1`

	tag, err := q.Exec(ctx, stmt, projectID, delta, investors)
	if err != nil {
		return fmt.Errorf("apply investment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func appendEvent(ctx context.Context, q dbtx, ev domain.Event) error {
	const stmt = `
INSERT INTO events (kind, project_id, order_id, buyer, seller, amount, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := q.Exec(ctx, stmt,
		string(ev.Kind), ev.ProjectID, ev.OrderID, string(ev.Buyer), string(ev.Seller), ev.Amount, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}
