package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cimillas/funding-pool/internal/app"
	"github.com/cimillas/funding-pool/internal/domain"
)

// PoolAdmin covers project aggregate reads, administrative updates and
// the threshold release.
type PoolAdmin interface {
	SetProjectDetails(ctx context.Context, in app.SetProjectDetailsInput) error
	ReleaseFunds(ctx context.Context, projectID int64, caller domain.Principal) (int64, error)
	GetProject(ctx context.Context, projectID int64) (domain.Project, error)
	ListProjectEvents(ctx context.Context, projectID int64) ([]domain.Event, error)
}

// HandleProject routes GET/PUT /projects/{id}, POST
// /projects/{id}/release and GET /projects/{id}/events. Administrative
// authorization for PUT is enforced upstream; release is callable by
// any principal and gated entirely on aggregate state.
func HandleProject(svc PoolAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, sub, ok := parseProjectPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch sub {
		case "":
			switch r.Method {
			case http.MethodGet:
				project, err := svc.GetProject(r.Context(), projectID)
				if err != nil {
					writeDomainError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, newProjectResponse(project))
			case http.MethodPut:
				caller, ok := requirePrincipal(w, r)
				if !ok {
					return
				}
				var req setProjectDetailsRequest
				dec := json.NewDecoder(r.Body)
				dec.DisallowUnknownFields()
				if err := dec.Decode(&req); err != nil {
					writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
					return
				}
				err := svc.SetProjectDetails(r.Context(), app.SetProjectDetailsInput{
					ProjectID: projectID,
					Recipient: domain.Principal(req.Recipient),
					Threshold: req.Threshold,
					Caller:    caller,
				})
				if err != nil {
					writeDomainError(w, err)
					return
				}
				project, err := svc.GetProject(r.Context(), projectID)
				if err != nil {
					writeDomainError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, newProjectResponse(project))
			default:
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			}

		case "release":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			caller, ok := requirePrincipal(w, r)
			if !ok {
				return
			}
			released, err := svc.ReleaseFunds(r.Context(), projectID, caller)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, releaseResponse{ProjectID: projectID, Released: released})

		case "events":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			events, err := svc.ListProjectEvents(r.Context(), projectID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			out := make([]eventResponse, 0, len(events))
			for _, ev := range events {
				out = append(out, newEventResponse(ev))
			}
			writeJSON(w, http.StatusOK, out)

		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func parseProjectPath(path string) (int64, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "projects" {
		return 0, "", false
	}
	projectID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || projectID <= 0 {
		return 0, "", false
	}
	if len(parts) == 2 {
		return projectID, "", true
	}
	if parts[2] == "" {
		return 0, "", false
	}
	return projectID, parts[2], true
}

type setProjectDetailsRequest struct {
	Recipient string `json:"recipient"`
	Threshold int64  `json:"threshold"`
}

type projectResponse struct {
	ID              int64  `json:"id"`
	TotalInvestment int64  `json:"total_investment"`
	PoolThreshold   int64  `json:"pool_threshold"`
	Recipient       string `json:"recipient"`
	FundsReleased   bool   `json:"funds_released"`
	InvestorCount   int64  `json:"investor_count"`
}

func newProjectResponse(project domain.Project) projectResponse {
	return projectResponse{
		ID:              project.ID,
		TotalInvestment: project.TotalInvestment,
		PoolThreshold:   project.PoolThreshold,
		Recipient:       string(project.Recipient),
		FundsReleased:   project.FundsReleased,
		InvestorCount:   project.InvestorCount,
	}
}

type releaseResponse struct {
	ProjectID int64 `json:"project_id"`
	Released  int64 `json:"released"`
}

type eventResponse struct {
	Seq        int64     `json:"seq"`
	Kind       string    `json:"kind"`
	ProjectID  int64     `json:"project_id"`
	OrderID    int64     `json:"order_id,omitempty"`
	Buyer      string    `json:"buyer,omitempty"`
	Seller     string    `json:"seller,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newEventResponse(ev domain.Event) eventResponse {
	return eventResponse{
		Seq:        ev.Seq,
		Kind:       string(ev.Kind),
		ProjectID:  ev.ProjectID,
		OrderID:    ev.OrderID,
		Buyer:      string(ev.Buyer),
		Seller:     string(ev.Seller),
		Amount:     ev.Amount,
		OccurredAt: ev.OccurredAt,
	}
}
