package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// TokenVerifier turns a raw token into an owner id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Middleware authenticates requests by their Authorization header.
type Middleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewMiddleware creates auth middleware backed by verifier.
func NewMiddleware(verifier TokenVerifier, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{verifier: verifier, logger: logger}
}

// RequireAuth rejects requests without a token (401) or with an invalid one
// (403), and stores the verified owner id in the request context.
// Both "Bearer <token>" and a bare token are accepted.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}

		ownerID, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
			writeAuthError(w, http.StatusForbidden, "forbidden", "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), ownerID)))
	})
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
