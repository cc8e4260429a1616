package http

import (
	"net/http"
	"time"

	"github.com/socialfin/authgate/internal/gate/service"
	"github.com/socialfin/authgate/pkg/httpx"
)

// MeHandler serves GET /v1/auth/me.
type MeHandler struct {
	Sessions *service.SessionService
}

type meResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	Active    bool      `json:"active"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, profile, err := h.Sessions.CurrentUser(r.Context(), httpx.PrincipalID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "Could not load profile. Please try again.")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, meResponse{
		ID:        p.ID,
		Email:     p.Email,
		Verified:  p.Verified,
		Active:    p.Active,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Phone:     profile.Phone,
		CreatedAt: p.CreatedAt,
	})
}
