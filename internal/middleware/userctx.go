package middleware

import (
	"context"

	"github.com/baharkarakas/campus-registration/internal/auth"
)

type claimsKey struct{}

// WithClaims attaches verified claims to ctx.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFrom returns the claims the token guard verified for this request.
// ok is false for anonymous requests.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok && c != nil
}
