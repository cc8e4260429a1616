package http

import (
	"net/http"

	"github.com/socialfin/authgate/internal/gate/service"
	"github.com/socialfin/authgate/pkg/httpx"
)

// LogoutHandler serves POST /v1/auth/logout. The route is
// authenticated; the principal comes from the verified access token.
type LogoutHandler struct {
	Sessions *service.SessionService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(r.Context(), httpx.PrincipalID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
