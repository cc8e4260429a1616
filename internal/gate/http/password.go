package http

import (
	"errors"
	"net/http"

	"github.com/socialfin/authgate/internal/gate/service"
	"github.com/socialfin/authgate/pkg/httpx"
)

// ForgotPasswordHandler serves POST /v1/auth/password/forgot. The
// response is identical whether or not the email exists.
type ForgotPasswordHandler struct {
	Sessions *service.SessionService
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Email is required.")
		return
	}

	msg := h.Sessions.RequestPasswordReset(r.Context(), req.Email)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// ResetPasswordHandler serves POST /v1/auth/password/reset.
type ResetPasswordHandler struct {
	Sessions *service.SessionService
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Token and new password are required.")
		return
	}

	if err := h.Sessions.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			httpx.WriteError(w, http.StatusBadRequest, "Invalid or expired reset token.")
			return
		}
		writeServiceError(w, r, err, "Password reset failed. Please try again.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ChangePasswordHandler serves POST /v1/auth/password/change. The
// route is authenticated and re-checks the current password.
type ChangePasswordHandler struct {
	Sessions *service.SessionService
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Current and new passwords are required.")
		return
	}

	err := h.Sessions.ChangePassword(r.Context(), httpx.PrincipalID(r.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, err, "Password change failed. Please try again.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
