// Package middleware provides HTTP middleware for the relay API.
package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader carries the shared secret on mutating requests.
const APIKeyHeader = "X-API-Key"

// Auth returns middleware that rejects requests whose API key header does
// not match the configured secret. Rejected requests produce no side
// effects downstream.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error": "unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
