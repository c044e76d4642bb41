package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cimillas/funding-pool/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolRepository struct {
	pool *pgxpool.Pool
}

func NewPoolRepository(pool *pgxpool.Pool) *PoolRepository {
	return &PoolRepository{pool: pool}
}

func (r *PoolRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *PoolRepository) GetProject(ctx context.Context, projectID int64) (domain.Project, error) {
	return getProject(ctx, db(ctx, r.pool), projectID, false)
}

func (r *PoolRepository) GetProjectForUpdate(ctx context.Context, projectID int64) (domain.Project, error) {
	return getProject(ctx, db(ctx, r.pool), projectID, true)
}

func (r *PoolRepository) EnsureProject(ctx context.Context, projectID, defaultThreshold int64, now time.Time) (domain.Project, error) {
	return ensureProject(ctx, db(ctx, r.pool), projectID, defaultThreshold, now)
}

func (r *PoolRepository) SetProjectDetails(ctx context.Context, projectID int64, recipient domain.Principal, threshold int64) error {
	const stmt = `
UPDATE projects
SET recipient = $2, pool_threshold = $3
WHERE id = $1`

	tag, err := db(ctx, r.pool).Exec(ctx, stmt, projectID, string(recipient), threshold)
	if err != nil {
		return fmt.Errorf("set project details: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *PoolRepository) MarkReleased(ctx context.Context, projectID int64) error {
	const stmt = `
UPDATE projects
SET funds_released = TRUE
WHERE id = $1 AND funds_released = FALSE`

	tag, err := db(ctx, r.pool).Exec(ctx, stmt, projectID)
	if err != nil {
		return fmt.Errorf("mark released: %w", err)
	}
	// The service checks the latch under FOR UPDATE first; zero rows
	// here means the project vanished or a latch bug upstream.
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyReleased
	}
	return nil
}

func (r *PoolRepository) AppendEvent(ctx context.Context, ev domain.Event) error {
	return appendEvent(ctx, db(ctx, r.pool), ev)
}

func (r *PoolRepository) ListProjectEvents(ctx context.Context, projectID int64) ([]domain.Event, error) {
	const query = `
SELECT seq, kind, project_id, order_id, buyer, seller, amount, occurred_at
FROM events
WHERE project_id = $1
ORDER BY seq ASC`

	rows, err := db(ctx, r.pool).Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var ev domain.Event
		var kind, buyer, seller string
		if err := rows.Scan(&ev.Seq, &kind, &ev.ProjectID, &ev.OrderID, &buyer, &seller, &ev.Amount, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = domain.EventKind(kind)
		ev.Buyer = domain.Principal(buyer)
		ev.Seller = domain.Principal(seller)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
