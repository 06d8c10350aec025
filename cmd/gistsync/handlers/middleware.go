package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hairizuanbinnoorazman/project-viewer-sync/logger"
)

// AuthMiddleware checks a Bearer secret against a bcrypt hash. An empty hash
// disables the check.
type AuthMiddleware struct {
	tokenHash []byte
	logger    logger.Logger
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(tokenHash string, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokenHash: []byte(tokenHash),
		logger:    log,
	}
}

// Handler wraps an HTTP handler with authentication.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(m.tokenHash) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		rawToken := strings.TrimPrefix(authHeader, "Bearer ")
		if err := bcrypt.CompareHashAndPassword(m.tokenHash, []byte(rawToken)); err != nil {
			m.logger.Warn(r.Context(), "invalid bearer token", map[string]interface{}{
				"path": r.URL.Path,
			})
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
