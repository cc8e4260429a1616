// Package http exposes the authentication API over HTTP. Handlers are
// thin: decode, delegate to the session service, translate errors.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/socialfin/authgate/internal/gate/ratelimit"
	"github.com/socialfin/authgate/internal/gate/service"
	"github.com/socialfin/authgate/pkg/httpx"
	"github.com/socialfin/authgate/pkg/jwtx"
	"github.com/socialfin/authgate/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	Sessions *service.SessionService

	// Limiter covers every API route; LoginLimiter adds the tight
	// credential-submission window on top.
	Limiter      *ratelimit.Limiter
	LoginLimiter *ratelimit.Limiter

	// Ready reports readiness of the backing stores for /readyz. Nil
	// means always ready.
	Ready func() error
}

func NewRouter(codec *jwtx.Codec, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	// Identity runs globally so the rate limiter can key authenticated
	// traffic by principal rather than by address.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.IdentityMiddleware(codec),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	registerHandler := &RegisterHandler{Sessions: r.Sessions}
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			r.Limiter.Middleware,
		),
	)

	// Login carries the extra attempt bucket on top of the shared
	// windows to slow credential stuffing.
	loginHandler := &LoginHandler{Sessions: r.Sessions}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			r.Limiter.Middleware,
			r.LoginLimiter.Middleware,
		),
	)

	refreshHandler := &RefreshHandler{Sessions: r.Sessions}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			r.Limiter.Middleware,
		),
	)

	logoutHandler := &LogoutHandler{Sessions: r.Sessions}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			r.Limiter.Middleware,
			httpx.AuthnMiddleware(r.codec),
		),
	)

	forgotHandler := &ForgotPasswordHandler{Sessions: r.Sessions}
	r.Mux.Handle("POST /v1/auth/password/forgot",
		httpx.Chain(forgotHandler,
			r.Limiter.Middleware,
		),
	)

	resetHandler := &ResetPasswordHandler{Sessions: r.Sessions}
	r.Mux.Handle("POST /v1/auth/password/reset",
		httpx.Chain(resetHandler,
			r.Limiter.Middleware,
		),
	)

	changeHandler := &ChangePasswordHandler{Sessions: r.Sessions}
	r.Mux.Handle("POST /v1/auth/password/change",
		httpx.Chain(changeHandler,
			r.Limiter.Middleware,
			httpx.AuthnMiddleware(r.codec),
		),
	)

	verifyHandler := &VerifyEmailHandler{Sessions: r.Sessions}
	r.Mux.Handle("POST /v1/auth/email/verify",
		httpx.Chain(verifyHandler,
			r.Limiter.Middleware,
		),
	)

	meHandler := &MeHandler{Sessions: r.Sessions}
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(meHandler,
			r.Limiter.Middleware,
			httpx.AuthnMiddleware(r.codec),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.Ready))
}
