package server

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// controlAuthMiddleware requires a bearer token matching the bcrypt hash.
// An empty hash lets every request through.
func controlAuthMiddleware(tokenHash string) func(http.Handler) http.Handler {
	hash := []byte(tokenHash)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(hash) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || token == "" {
				writeError(w, http.StatusUnauthorized, "bearer token required")
				return
			}
			if err := bcrypt.CompareHashAndPassword(hash, []byte(token)); err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
