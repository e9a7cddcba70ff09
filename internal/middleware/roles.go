package middleware

import (
	"net/http"

	"github.com/baharkarakas/campus-registration/internal/api/httpx"
	"github.com/baharkarakas/campus-registration/internal/apperr"
	"github.com/baharkarakas/campus-registration/internal/models"
)

// RequireRole lets the request through only when the token guard attached claims for role.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok || claims.Role != role {
				err := apperr.NotAuthenticatedAs(role.String())
				httpx.WriteError(w, r, apperr.HTTPStatus(err), err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
