package timer

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// bearerPrefix starts the Authorization header value.
const bearerPrefix = "Bearer "

// requireToken wraps a handler with bearer token authentication.
// Failures are answered with a JSON-RPC error body. An empty secret disables the check.
func requireToken(secret string, next http.Handler) http.Handler {
	if secret == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !validToken(secret, r.Header.Get("Authorization")) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0",
				"error": map[string]any{
					"code":    -32600,
					"message": "Unauthorized",
				},
				"id": nil,
			})

			return
		}

		next.ServeHTTP(w, r)
	})
}

// validToken compares the header token with the secret in constant time.
func validToken(secret, authHeader string) bool {
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return false
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)

	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
