package app

import (
	"context"
	"time"

	"github.com/cimillas/funding-pool/internal/clock"
	"github.com/cimillas/funding-pool/internal/domain"
)

type PoolRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetProject(ctx context.Context, projectID int64) (domain.Project, error)
	GetProjectForUpdate(ctx context.Context, projectID int64) (domain.Project, error)
	EnsureProject(ctx context.Context, projectID, defaultThreshold int64, now time.Time) (domain.Project, error)
	SetProjectDetails(ctx context.Context, projectID int64, recipient domain.Principal, threshold int64) error
	MarkReleased(ctx context.Context, projectID int64) error
	AppendEvent(ctx context.Context, ev domain.Event) error
	ListProjectEvents(ctx context.Context, projectID int64) ([]domain.Event, error)
}

// DetailsLockPolicy controls when administrative updates to a project's
// recipient and threshold stop being accepted. Upstream behavior allows
// them unconditionally, so LockNever is the default.
type DetailsLockPolicy int

const (
	LockNever DetailsLockPolicy = iota
	LockAfterRelease
	LockAfterFirstInvestment
)

type PoolService struct {
	repo             PoolRepository
	treasury         Treasury
	clock            clock.Clock
	lockPolicy       DetailsLockPolicy
	defaultThreshold int64
}

func NewPoolService(repo PoolRepository, treasury Treasury, clk clock.Clock, opts ...PoolServiceOption) *PoolService {
	svc := &PoolService{
		repo:             repo,
		treasury:         treasury,
		clock:            clk,
		lockPolicy:       LockNever,
		defaultThreshold: domain.DefaultPoolThreshold,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type PoolServiceOption func(*PoolService)

// WithDetailsLockPolicy selects when SetProjectDetails is refused.
func WithDetailsLockPolicy(p DetailsLockPolicy) PoolServiceOption {
	return func(s *PoolService) {
		s.lockPolicy = p
	}
}

// WithPoolDefaultThreshold overrides the threshold assigned to projects
// created lazily by an administrative update.
func WithPoolDefaultThreshold(threshold int64) PoolServiceOption {
	return func(s *PoolService) {
		if threshold > 0 {
			s.defaultThreshold = threshold
		}
	}
}

type SetProjectDetailsInput struct {
	ProjectID int64
	Recipient domain.Principal
	Threshold int64
	Caller    domain.Principal
}

// SetProjectDetails records the release recipient and threshold for a
// project, creating it if it has no orders yet. Administrative
// authorization is enforced by the integrating environment; the core
// only records the values, subject to the configured lock policy.
func (s *PoolService) SetProjectDetails(ctx context.Context, in SetProjectDetailsInput) error {
	if in.Threshold < 0 {
		return domain.ErrInvalidAmount
	}

	now := s.clock.Now()

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		project, err := s.repo.EnsureProject(txCtx, in.ProjectID, s.defaultThreshold, now)
		if err != nil {
			return err
		}

		switch s.lockPolicy {
		case LockAfterRelease:
			if project.FundsReleased {
				return domain.ErrProjectReleased
			}
		case LockAfterFirstInvestment:
			if project.InvestorCount > 0 {
				return domain.ErrInvalidState
			}
		}

		return s.repo.SetProjectDetails(txCtx, in.ProjectID, in.Recipient, in.Threshold)
	})
}

// ReleaseFunds drains the entire accumulated pool to the configured
// recipient once the threshold is met. The released latch is committed
// before the transfer; a failed transfer rolls the latch back with the
// rest of the transaction, so release happens exactly once.
func (s *PoolService) ReleaseFunds(ctx context.Context, projectID int64, caller domain.Principal) (int64, error) {
	now := s.clock.Now()
	var released int64

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		project, err := s.repo.GetProjectForUpdate(txCtx, projectID)
		if err != nil {
			return err
		}
		if project.TotalInvestment < project.PoolThreshold {
			return domain.ErrInsufficientPool
		}
		if project.FundsReleased {
			return domain.ErrAlreadyReleased
		}
		if project.Recipient.Zero() {
			return domain.ErrRecipientUnset
		}

		if err := s.repo.MarkReleased(txCtx, projectID); err != nil {
			return err
		}
		if err := s.repo.AppendEvent(txCtx, domain.Event{
			Kind:       domain.EventFundsReleased,
			ProjectID:  projectID,
			Amount:     project.TotalInvestment,
			OccurredAt: now,
		}); err != nil {
			return err
		}

		released = project.TotalInvestment
		// A zero threshold makes an empty pool releasable; the latch
		// still flips but there is nothing to transfer.
		if project.TotalInvestment == 0 {
			return nil
		}
		return s.treasury.Payout(txCtx, project.Recipient, projectID, 0, project.TotalInvestment)
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

// GetProject returns the current aggregate state of a project.
func (s *PoolService) GetProject(ctx context.Context, projectID int64) (domain.Project, error) {
	return s.repo.GetProject(ctx, projectID)
}

// ListProjectEvents returns the project's emitted events in append order.
func (s *PoolService) ListProjectEvents(ctx context.Context, projectID int64) ([]domain.Event, error) {
	return s.repo.ListProjectEvents(ctx, projectID)
}
