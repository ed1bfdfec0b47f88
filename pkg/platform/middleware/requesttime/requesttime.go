// Package requesttime pins one "now" per HTTP request so every transition and
// session touch inside the request sees the same timestamp.
package requesttime

import (
	"net/http"
	"time"

	"mapview/pkg/requestcontext"
)

// Middleware stores the request start time in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
