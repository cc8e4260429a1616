package http

import (
	"net/http"

	"github.com/socialfin/authgate/internal/gate/service"
	"github.com/socialfin/authgate/pkg/httpx"
)

// VerifyEmailHandler serves POST /v1/auth/email/verify.
type VerifyEmailHandler struct {
	Sessions *service.SessionService
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *VerifyEmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Email and code are required.")
		return
	}

	ok, err := h.Sessions.VerifyEmail(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, err, "Email verification failed. Please try again.")
		return
	}
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid verification code.")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Email verified successfully."})
}
