package httpx

import "context"

type ctxKey string

const (
	CtxKeyPrincipalID ctxKey = "principal_id"
	CtxKeyEmail       ctxKey = "email"
)

// ContextWithPrincipal records the authenticated principal on the
// request context for downstream handlers and the rate limiter.
func ContextWithPrincipal(ctx context.Context, id, email string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyPrincipalID, id)
	return context.WithValue(ctx, CtxKeyEmail, email)
}

// PrincipalID returns the authenticated principal id, or "" when the
// request carries none.
func PrincipalID(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyPrincipalID).(string); ok {
		return v
	}
	return ""
}

// PrincipalEmail returns the authenticated principal's email, or "".
func PrincipalEmail(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyEmail).(string); ok {
		return v
	}
	return ""
}
