package app

import (
	"context"
	"errors"
	"time"

	"github.com/cimillas/funding-pool/internal/domain"
)

// fakeStore implements OrderRepository and PoolRepository in memory.
// WithTx snapshots state and restores it when the closure fails, so
// tests can assert the all-or-nothing contract.
type fakeStore struct {
	orders   map[int64]domain.Order
	projects map[int64]domain.Project
	events   []domain.Event
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   make(map[int64]domain.Order),
		projects: make(map[int64]domain.Project),
	}
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	orders := make(map[int64]domain.Order, len(f.orders))
	for k, v := range f.orders {
		orders[k] = v
	}
	projects := make(map[int64]domain.Project, len(f.projects))
	for k, v := range f.projects {
		projects[k] = v
	}
	events := append([]domain.Event(nil), f.events...)
	nextID := f.nextID

	if err := fn(ctx); err != nil {
		f.orders = orders
		f.projects = projects
		f.events = events
		f.nextID = nextID
		return err
	}
	return nil
}

func (f *fakeStore) CreateOrder(_ context.Context, order domain.Order) (int64, error) {
	f.nextID++
	order.ID = f.nextID
	f.orders[order.ID] = order
	return order.ID, nil
}

func (f *fakeStore) GetOrder(_ context.Context, orderID int64) (domain.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeStore) GetOrderForUpdate(ctx context.Context, orderID int64) (domain.Order, error) {
	return f.GetOrder(ctx, orderID)
}

func (f *fakeStore) UpdateOrder(_ context.Context, orderID, amount int64, status domain.OrderStatus, now time.Time) error {
	order, ok := f.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Amount = amount
	order.Status = status
	order.UpdatedAt = now
	f.orders[orderID] = order
	return nil
}

func (f *fakeStore) EnsureProject(_ context.Context, projectID, defaultThreshold int64, now time.Time) (domain.Project, error) {
	project, ok := f.projects[projectID]
	if !ok {
		project = domain.Project{
			ID:            projectID,
			PoolThreshold: defaultThreshold,
			CreatedAt:     now,
		}
		f.projects[projectID] = project
	}
	return project, nil
}

func (f *fakeStore) GetProject(_ context.Context, projectID int64) (domain.Project, error) {
	project, ok := f.projects[projectID]
	if !ok {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	return project, nil
}

func (f *fakeStore) GetProjectForUpdate(ctx context.Context, projectID int64) (domain.Project, error) {
	return f.GetProject(ctx, projectID)
}

func (f *fakeStore) ApplyInvestment(_ context.Context, projectID, delta, investors int64) error {
	project, ok := f.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	project.TotalInvestment += delta
	project.InvestorCount += investors
	f.projects[projectID] = project
	return nil
}

func (f *fakeStore) SetProjectDetails(_ context.Context, projectID int64, recipient domain.Principal, threshold int64) error {
	project, ok := f.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	project.Recipient = recipient
	project.PoolThreshold = threshold
	f.projects[projectID] = project
	return nil
}

func (f *fakeStore) MarkReleased(_ context.Context, projectID int64) error {
	project, ok := f.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	project.FundsReleased = true
	f.projects[projectID] = project
	return nil
}

func (f *fakeStore) AppendEvent(_ context.Context, ev domain.Event) error {
	ev.Seq = int64(len(f.events) + 1)
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeStore) ListProjectEvents(_ context.Context, projectID int64) ([]domain.Event, error) {
	var out []domain.Event
	for _, ev := range f.events {
		if ev.ProjectID == projectID {
			out = append(out, ev)
		}
	}
	return out, nil
}

// sumActive recomputes the accounting invariant from scratch.
func (f *fakeStore) sumActive(projectID int64) int64 {
	var sum int64
	for _, order := range f.orders {
		if order.ProjectID != projectID {
			continue
		}
		if order.Status == domain.OrderStatusPending || order.Status == domain.OrderStatusConfirmed {
			sum += order.Amount
		}
	}
	return sum
}

var errTransferRefused = errors.New("transfer refused")

type transfer struct {
	kind      string
	principal domain.Principal
	projectID int64
	orderID   int64
	amount    int64
}

type fakeTreasury struct {
	transfers []transfer
	fail      bool
}

func (f *fakeTreasury) Collect(_ context.Context, from domain.Principal, projectID, orderID, amount int64) error {
	if f.fail {
		return errTransferRefused
	}
	f.transfers = append(f.transfers, transfer{"collect", from, projectID, orderID, amount})
	return nil
}

func (f *fakeTreasury) Payout(_ context.Context, to domain.Principal, projectID, orderID, amount int64) error {
	if f.fail {
		return errTransferRefused
	}
	f.transfers = append(f.transfers, transfer{"payout", to, projectID, orderID, amount})
	return nil
}

func (f *fakeTreasury) last() transfer {
	if len(f.transfers) == 0 {
		return transfer{}
	}
	return f.transfers[len(f.transfers)-1]
}
