package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cimillas/funding-pool/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) (int64, error) {
	const stmt = `
INSERT INTO orders (project_id, buyer, seller, amount, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

	var id int64
	err := db(ctx, r.pool).QueryRow(ctx, stmt,
		order.ProjectID, string(order.Buyer), string(order.Seller), order.Amount,
		string(order.Status), order.CreatedAt, order.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}
	return id, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	return r.getOrder(ctx, orderID, false)
}

func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, orderID int64) (domain.Order, error) {
	return r.getOrder(ctx, orderID, true)
}

func (r *OrderRepository) getOrder(ctx context.Context, orderID int64, forUpdate bool) (domain.Order, error) {
	query := `
SELECT id, project_id, buyer, seller, amount, status, created_at, updated_at
FROM orders
WHERE id = $1`
	if forUpdate {
		query += `
FOR UPDATE`
	}

	var o domain.Order
	var buyer, seller, status string
	err := db(ctx, r.pool).QueryRow(ctx, query, orderID).
		Scan(&o.ID, &o.ProjectID, &buyer, &seller, &o.Amount, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	o.Buyer = domain.Principal(buyer)
	o.Seller = domain.Principal(seller)
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func (r *OrderRepository) UpdateOrder(ctx context.Context, orderID, amount int64, status domain.OrderStatus, now time.Time) error {
	const stmt = `
UPDATE orders
SET amount = $2, status = $3, updated_at = $4
WHERE id = $1`

	tag, err := db(ctx, r.pool).Exec(ctx, stmt, orderID, amount, string(status), now)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) EnsureProject(ctx context.Context, projectID, defaultThreshold int64, now time.Time) (domain.Project, error) {
	return ensureProject(ctx, db(ctx, r.pool), projectID, defaultThreshold, now)
}

func (r *OrderRepository) GetProjectForUpdate(ctx context.Context, projectID int64) (domain.Project, error) {
	return getProject(ctx, db(ctx, r.pool), projectID, true)
}

func (r *OrderRepository) ApplyInvestment(ctx context.Context, projectID, delta, investors int64) error {
	return applyInvestment(ctx, db(ctx, r.pool), projectID, delta, investors)
}

func (r *OrderRepository) AppendEvent(ctx context.Context, ev domain.Event) error {
	return appendEvent(ctx, db(ctx, r.pool), ev)
}
