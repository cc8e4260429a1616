package authsdk

import "time"

// TokenResponse is the body returned by the register, login, and
// refresh endpoints.
type TokenResponse struct {
	// AccessToken is the JWT used to authenticate API requests.
	AccessToken string `json:"access_token"`

	// RefreshToken is exchanged for a new pair; each exchange rotates it.
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// ErrorResponse is the standard error body {"error": "..."}.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse wraps informational responses such as the password
// reset acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// Profile is the authenticated account view from GET /v1/auth/me.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	Active    bool      `json:"active"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HealthResponse is returned by the /livez and /readyz probes.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// RegisterRequest is the body for POST /v1/auth/register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}
