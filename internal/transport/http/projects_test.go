package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cimillas/funding-pool/internal/app"
	"github.com/cimillas/funding-pool/internal/domain"
)

type stubPoolService struct {
	detailsErr error
	details    *app.SetProjectDetailsInput
	releaseErr error
	released   int64
	project    domain.Project
	getErr     error
	events     []domain.Event
	listErr    error
}

func (s *stubPoolService) SetProjectDetails(_ context.Context, in app.SetProjectDetailsInput) error {
	s.details = &in
	return s.detailsErr
}

func (s *stubPoolService) ReleaseFunds(_ context.Context, _ int64, _ domain.Principal) (int64, error) {
	if s.releaseErr != nil {
		return 0, s.releaseErr
	}
	return s.released, nil
}

func (s *stubPoolService) GetProject(_ context.Context, _ int64) (domain.Project, error) {
	return s.project, s.getErr
}

func (s *stubPoolService) ListProjectEvents(_ context.Context, _ int64) ([]domain.Event, error) {
	return s.events, s.listErr
}

func TestHandleProject_Details(t *testing.T) {
	t.Parallel()

	project := domain.Project{ID: 2, TotalInvestment: 120, PoolThreshold: 100, Recipient: "founder"}

	t.Run("get project", func(t *testing.T) {
		handler := HandleProject(&stubPoolService{project: project})

		req := httptest.NewRequest(http.MethodGet, "/projects/2", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"total_investment":120`) {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("put records recipient and threshold", func(t *testing.T) {
		svc := &stubPoolService{project: project}
		handler := HandleProject(svc)

		req := httptest.NewRequest(http.MethodPut, "/projects/2",
			strings.NewReader(`{"recipient":"founder","threshold":250}`))
		req.Header.Set(principalHeader, "admin")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if svc.details == nil || svc.details.Recipient != "founder" || svc.details.Threshold != 250 {
			t.Fatalf("unexpected details input: %+v", svc.details)
		}
		if svc.details.Caller != "admin" {
			t.Fatalf("expected caller admin, got %s", svc.details.Caller)
		}
	})

	t.Run("put without principal", func(t *testing.T) {
		handler := HandleProject(&stubPoolService{project: project})

		req := httptest.NewRequest(http.MethodPut, "/projects/2",
			strings.NewReader(`{"recipient":"founder","threshold":250}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("locked details map to 409", func(t *testing.T) {
		handler := HandleProject(&stubPoolService{project: project, detailsErr: domain.ErrProjectReleased})

		req := httptest.NewRequest(http.MethodPut, "/projects/2",
			strings.NewReader(`{"recipient":"other","threshold":10}`))
		req.Header.Set(principalHeader, "admin")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestHandleProject_Release(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			expectedStatus: http.StatusOK,
			expectedSubstr: `"released":120`,
		},
		{
			name:           "below threshold",
			serviceErr:     domain.ErrInsufficientPool,
			expectedStatus: http.StatusConflict,
			expectedSubstr: codeInsufficientPool,
		},
		{
			name:           "already released",
			serviceErr:     domain.ErrAlreadyReleased,
			expectedStatus: http.StatusConflict,
			expectedSubstr: codeAlreadyReleased,
		},
		{
			name:           "recipient unset",
			serviceErr:     domain.ErrRecipientUnset,
			expectedStatus: http.StatusConflict,
			expectedSubstr: codeRecipientUnset,
		},
		{
			name:           "missing project",
			serviceErr:     domain.ErrProjectNotFound,
			expectedStatus: http.StatusNotFound,
			expectedSubstr: codeProjectNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := HandleProject(&stubPoolService{released: 120, releaseErr: tc.serviceErr})

			req := httptest.NewRequest(http.MethodPost, "/projects/2/release", nil)
			req.Header.Set(principalHeader, "anyone")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d (%s)", tc.expectedStatus, rec.Code, rec.Body.String())
			}
			if tc.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tc.expectedSubstr) {
				t.Fatalf("expected body to contain %q, got %s", tc.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleProject_Events(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	events := []domain.Event{
		{Seq: 1, Kind: domain.EventOrderPlaced, ProjectID: 2, OrderID: 1, Buyer: "alice", Seller: "s", Amount: 60, OccurredAt: now},
		{Seq: 2, Kind: domain.EventFundsReleased, ProjectID: 2, Amount: 120, OccurredAt: now},
	}

	handler := HandleProject(&stubPoolService{events: events})

	req := httptest.NewRequest(http.MethodGet, "/projects/2/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"kind":"order_placed"`) || !strings.Contains(body, `"kind":"funds_released"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestHandleProject_BadPaths(t *testing.T) {
	t.Parallel()

	handler := HandleProject(&stubPoolService{})
	for _, path := range []string{"/projects/abc", "/projects/0", "/projects/2/unknown", "/projects/2/release/extra"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}
