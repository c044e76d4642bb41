package app

import (
	"context"
	"time"

	"github.com/cimillas/funding-pool/internal/clock"
	"github.com/cimillas/funding-pool/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateOrder(ctx context.Context, order domain.Order) (int64, error)
	GetOrder(ctx context.Context, orderID int64) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID int64) (domain.Order, error)
	UpdateOrder(ctx context.Context, orderID, amount int64, status domain.OrderStatus, now time.Time) error
	// EnsureProject creates the project with defaults when it does not
	// exist yet, then returns it locked for the rest of the transaction.
	EnsureProject(ctx context.Context, projectID, defaultThreshold int64, now time.Time) (domain.Project, error)
	GetProjectForUpdate(ctx context.Context, projectID int64) (domain.Project, error)
	// ApplyInvestment shifts the project pool by delta and bumps the
	// placement counter by investors.
	ApplyInvestment(ctx context.Context, projectID, delta, investors int64) error
	AppendEvent(ctx context.Context, ev domain.Event) error
}

type OrderService struct {
	repo             OrderRepository
	treasury         Treasury
	clock            clock.Clock
	defaultThreshold int64
}

func NewOrderService(repo OrderRepository, treasury Treasury, clk clock.Clock, opts ...OrderServiceOption) *OrderService {
	svc := &OrderService{
		repo:             repo,
		treasury:         treasury,
		clock:            clk,
		defaultThreshold: domain.DefaultPoolThreshold,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type OrderServiceOption func(*OrderService)

// WithDefaultThreshold overrides the release threshold assigned to
// projects created lazily on first placement.
func WithDefaultThreshold(threshold int64) OrderServiceOption {
	return func(s *OrderService) {
		if threshold > 0 {
			s.defaultThreshold = threshold
		}
	}
}

type PlaceOrderInput struct {
	ProjectID int64
	Seller    domain.Principal
	Amount    int64
	Buyer     domain.Principal
}

// PlaceOrder commits attached funds into the project pool and opens a
// pending order owned by the buyer. The project is created on first
// reference. The fund collection is the last step of the transaction;
// if it fails nothing is recorded.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (int64, error) {
	if in.Amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	var orderID int64

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		project, err := s.repo.EnsureProject(txCtx, in.ProjectID, s.defaultThreshold, now)
		if err != nil {
			return err
		}
		if project.FundsReleased {
			return domain.ErrProjectReleased
		}

		orderID, err = s.repo.CreateOrder(txCtx, domain.Order{
			ProjectID: in.ProjectID,
			Buyer:     in.Buyer,
			Seller:    in.Seller,
			Amount:    in.Amount,
			Status:    domain.OrderStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		if err := s.repo.ApplyInvestment(txCtx, in.ProjectID, in.Amount, 1); err != nil {
			return err
		}
		if err := s.repo.AppendEvent(txCtx, domain.Event{
			Kind:       domain.EventOrderPlaced,
			ProjectID:  in.ProjectID,
			OrderID:    orderID,
			Buyer:      in.Buyer,
			Seller:     in.Seller,
			Amount:     in.Amount,
			OccurredAt: now,
		}); err != nil {
			return err
		}
		return s.treasury.Collect(txCtx, in.Buyer, in.ProjectID, orderID, in.Amount)
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// ConfirmOrder moves a pending order to its positive terminal state.
// No funds move: the commitment is already held in the pool.
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID int64, caller domain.Principal) error {
	now := s.clock.Now()

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.Buyer != caller {
			return domain.ErrUnauthorized
		}
		if order.Status != domain.OrderStatusPending {
			return domain.ErrInvalidState
		}

		if err := s.repo.UpdateOrder(txCtx, orderID, order.Amount, domain.OrderStatusConfirmed, now); err != nil {
			return err
		}
		return s.repo.AppendEvent(txCtx, domain.Event{
			Kind:       domain.EventOrderConfirmed,
			ProjectID:  order.ProjectID,
			OrderID:    orderID,
			Buyer:      order.Buyer,
			OccurredAt: now,
		})
	})
}

// CancelOrder moves a pending order to its negative terminal state and
// refunds the full committed amount to the buyer.
func (s *OrderService) CancelOrder(ctx context.Context, orderID int64, caller domain.Principal) error {
	now := s.clock.Now()

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.Buyer != caller {
			return domain.ErrUnauthorized
		}
		if order.Status != domain.OrderStatusPending {
			return domain.ErrInvalidState
		}

		project, err := s.repo.GetProjectForUpdate(txCtx, order.ProjectID)
		if err != nil {
			return err
		}
		if project.FundsReleased {
			return domain.ErrProjectReleased
		}

		if err := s.repo.UpdateOrder(txCtx, orderID, order.Amount, domain.OrderStatusCancelled, now); err != nil {
			return err
		}
		if err := s.repo.ApplyInvestment(txCtx, order.ProjectID, -order.Amount, 0); err != nil {
			return err
		}
		if err := s.repo.AppendEvent(txCtx, domain.Event{
			Kind:       domain.EventOrderCancelled,
			ProjectID:  order.ProjectID,
			OrderID:    orderID,
			Buyer:      order.Buyer,
			OccurredAt: now,
		}); err != nil {
			return err
		}
		if order.Amount == 0 {
			return nil
		}
		return s.treasury.Payout(txCtx, order.Buyer, order.ProjectID, orderID, order.Amount)
	})
}

type AdjustInvestmentInput struct {
	OrderID       int64
	NewAmount     int64
	SuppliedFunds int64
	Caller        domain.Principal
}

// AdjustInvestment resizes a pending order's commitment. An increase
// must be accompanied by exactly the delta in supplied funds; a
// decrease (or no-op) must attach nothing and refunds the difference.
// NewAmount zero is legal and leaves the order pending.
func (s *OrderService) AdjustInvestment(ctx context.Context, in AdjustInvestmentInput) error {
	if in.NewAmount < 0 {
		return domain.ErrInvalidAmount
	}

	now := s.clock.Now()

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, in.OrderID)
		if err != nil {
			return err
		}
		if order.Buyer != in.Caller {
			return domain.ErrUnauthorized
		}
		if order.Status != domain.OrderStatusPending {
			return domain.ErrInvalidState
		}

		project, err := s.repo.GetProjectForUpdate(txCtx, order.ProjectID)
		if err != nil {
			return err
		}
		if project.FundsReleased {
			return domain.ErrProjectReleased
		}

		delta := in.NewAmount - order.Amount
		if delta > 0 {
			if in.SuppliedFunds != delta {
				return domain.ErrAmountMismatch
			}
		} else if in.SuppliedFunds != 0 {
			return domain.ErrAmountMismatch
		}

		if err := s.repo.UpdateOrder(txCtx, in.OrderID, in.NewAmount, order.Status, now); err != nil {
			return err
		}
		if delta != 0 {
			if err := s.repo.ApplyInvestment(txCtx, order.ProjectID, delta, 0); err != nil {
				return err
			}
		}
		if err := s.repo.AppendEvent(txCtx, domain.Event{
			Kind:       domain.EventInvestmentAdjusted,
			ProjectID:  order.ProjectID,
			OrderID:    in.OrderID,
			Buyer:      order.Buyer,
			Amount:     in.NewAmount,
			OccurredAt: now,
		}); err != nil {
			return err
		}

		switch {
		case delta > 0:
			return s.treasury.Collect(txCtx, order.Buyer, order.ProjectID, in.OrderID, delta)
		case delta < 0:
			return s.treasury.Payout(txCtx, order.Buyer, order.ProjectID, in.OrderID, -delta)
		default:
			return nil
		}
	})
}

// WithdrawInvestment refunds the full commitment, zeroes the order
// amount and cancels the order. A second call fails because the order
// has left the pending state.
func (s *OrderService) WithdrawInvestment(ctx context.Context, orderID int64, caller domain.Principal) error {
	now := s.clock.Now()

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.Buyer != caller {
			return domain.ErrUnauthorized
		}
		if order.Status != domain.OrderStatusPending {
			return domain.ErrInvalidState
		}

		project, err := s.repo.GetProjectForUpdate(txCtx, order.ProjectID)
		if err != nil {
			return err
		}
		if project.FundsReleased {
			return domain.ErrProjectReleased
		}

		if err := s.repo.UpdateOrder(txCtx, orderID, 0, domain.OrderStatusCancelled, now); err != nil {
			return err
		}
		if err := s.repo.ApplyInvestment(txCtx, order.ProjectID, -order.Amount, 0); err != nil {
			return err
		}
		if err := s.repo.AppendEvent(txCtx, domain.Event{
			Kind:       domain.EventOrderCancelled,
			ProjectID:  order.ProjectID,
			OrderID:    orderID,
			Buyer:      order.Buyer,
			OccurredAt: now,
		}); err != nil {
			return err
		}
		if order.Amount == 0 {
			return nil
		}
		return s.treasury.Payout(txCtx, order.Buyer, order.ProjectID, orderID, order.Amount)
	})
}

// GetOrder returns the current state of a single order.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}
