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

// OrderPlacer is the minimal interface needed to place an order.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, in app.PlaceOrderInput) (int64, error)
}

// HandlePlaceOrder returns an HTTP handler for placing orders. The
// caller becomes the buyer; the amount accompanies the request as the
// attached funds.
func HandlePlaceOrder(svc OrderPlacer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		buyer, ok := requirePrincipal(w, r)
		if !ok {
			return
		}

		var req placeOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.ProjectID <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidID, "project_id is required")
			return
		}
		if req.Seller == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "seller is required")
			return
		}

		orderID, err := svc.PlaceOrder(r.Context(), app.PlaceOrderInput{
			ProjectID: req.ProjectID,
			Seller:    domain.Principal(req.Seller),
			Amount:    req.Amount,
			Buyer:     buyer,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(placeOrderResponse{OrderID: orderID})
	}
}

type placeOrderRequest struct {
	ProjectID int64  `json:"project_id"`
	Seller    string `json:"seller"`
	Amount    int64  `json:"amount"`
}

type placeOrderResponse struct {
	OrderID int64 `json:"order_id"`
}

// OrderMutator covers the buyer-driven lifecycle operations and reads
// on a single order.
type OrderMutator interface {
	ConfirmOrder(ctx context.Context, orderID int64, caller domain.Principal) error
	CancelOrder(ctx context.Context, orderID int64, caller domain.Principal) error
	WithdrawInvestment(ctx context.Context, orderID int64, caller domain.Principal) error
	AdjustInvestment(ctx context.Context, in app.AdjustInvestmentInput) error
	GetOrder(ctx context.Context, orderID int64) (domain.Order, error)
}

// HandleOrder routes GET /orders/{id} and POST /orders/{id}/{action}
// where action is confirm, cancel, withdraw or adjust.
func HandleOrder(svc OrderMutator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, action, ok := parseOrderPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		if action == "" {
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			order, err := svc.GetOrder(r.Context(), orderID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, newOrderResponse(order))
			return
		}

		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		caller, ok := requirePrincipal(w, r)
		if !ok {
			return
		}

		var err error
		switch action {
		case "confirm":
			err = svc.ConfirmOrder(r.Context(), orderID, caller)
		case "cancel":
			err = svc.CancelOrder(r.Context(), orderID, caller)
		case "withdraw":
			err = svc.WithdrawInvestment(r.Context(), orderID, caller)
		case "adjust":
			var req adjustRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if decodeErr := dec.Decode(&req); decodeErr != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			err = svc.AdjustInvestment(r.Context(), app.AdjustInvestmentInput{
				OrderID:       orderID,
				NewAmount:     req.NewAmount,
				SuppliedFunds: req.SuppliedFunds,
				Caller:        caller,
			})
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

func parseOrderPath(path string) (int64, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "orders" {
		return 0, "", false
	}
	orderID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || orderID <= 0 {
		return 0, "", false
	}
	if len(parts) == 2 {
		return orderID, "", true
	}
	if parts[2] == "" {
		return 0, "", false
	}
	return orderID, parts[2], true
}

type adjustRequest struct {
	NewAmount     int64 `json:"new_amount"`
	SuppliedFunds int64 `json:"supplied_funds"`
}

type orderResponse struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Buyer     string    `json:"buyer"`
	Seller    string    `json:"seller"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newOrderResponse(order domain.Order) orderResponse {
	return orderResponse{
		ID:        order.ID,
		ProjectID: order.ProjectID,
		Buyer:     string(order.Buyer),
		Seller:    string(order.Seller),
		Amount:    order.Amount,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
