package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/baharkarakas/campus-registration/internal/api/httpx"
)

// RateLimit caps the whole server at rps with the given burst. rps <= 0 disables it.
func RateLimit(rps, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = rps
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				httpx.WriteError(w, r, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
