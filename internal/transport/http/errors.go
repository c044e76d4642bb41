package http

import (
	"encoding/json"
	"net/http"

	"github.com/cimillas/funding-pool/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codePrincipalRequired  = "principal_required"
	codeInvalidID          = "invalid_id"
	codeInvalidAmount      = "invalid_amount"
	codeUnauthorized       = "unauthorized"
	codeInvalidState       = "invalid_state"
	codeAmountMismatch     = "amount_mismatch"
	codeInsufficientPool   = "insufficient_pool"
	codeAlreadyReleased    = "already_released"
	codeRecipientUnset     = "recipient_unset"
	codeProjectReleased    = "project_released"
	codeOrderNotFound      = "order_not_found"
	codeProjectNotFound    = "project_not_found"
	codeForbidden          = "forbidden"
	codeRateLimited        = "rate_limited"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps core sentinel errors onto HTTP responses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrInvalidAmount:
		writeError(w, http.StatusBadRequest, codeInvalidAmount, err.Error())
	case domain.ErrAmountMismatch:
		writeError(w, http.StatusBadRequest, codeAmountMismatch, err.Error())
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case domain.ErrUnauthorized:
		writeError(w, http.StatusForbidden, codeUnauthorized, err.Error())
	case domain.ErrOrderNotFound:
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case domain.ErrProjectNotFound:
		writeError(w, http.StatusNotFound, codeProjectNotFound, err.Error())
	case domain.ErrInvalidState:
		writeError(w, http.StatusConflict, codeInvalidState, err.Error())
	case domain.ErrInsufficientPool:
		writeError(w, http.StatusConflict, codeInsufficientPool, err.Error())
	case domain.ErrAlreadyReleased:
		writeError(w, http.StatusConflict, codeAlreadyReleased, err.Error())
	case domain.ErrRecipientUnset:
		writeError(w, http.StatusConflict, codeRecipientUnset, err.Error())
	case domain.ErrProjectReleased:
		writeError(w, http.StatusConflict, codeProjectReleased, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
