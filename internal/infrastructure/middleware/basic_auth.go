package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// BasicAuthMiddleware guards the admin routes with a single username/password pair
func BasicAuthMiddleware(username, password string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !equal(user, username) || !equal(pass, password) {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remoteAddr", r.RemoteAddr).
					Str("requestId", requestID(r)).
					Msg("Admin authentication failed")
				w.Header().Set("WWW-Authenticate", `Basic realm="shopify-ingest"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requestID(r *http.Request) string {
	if id, ok := hlog.IDFromRequest(r); ok {
		return id.String()
	}
	return ""
}
