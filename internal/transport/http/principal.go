package http

import (
	"net/http"
	"strings"

	"github.com/cimillas/funding-pool/internal/domain"
)

// principalHeader carries the authenticated caller identity, verified
// by the environment in front of this service.
const principalHeader = "X-Principal"

func callerPrincipal(r *http.Request) (domain.Principal, bool) {
	p := strings.TrimSpace(r.Header.Get(principalHeader))
	if p == "" {
		return "", false
	}
	return domain.Principal(p), true
}

func requirePrincipal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := callerPrincipal(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, codePrincipalRequired, "missing "+principalHeader+" header")
	}
	return p, ok
}
