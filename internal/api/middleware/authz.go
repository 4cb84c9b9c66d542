package middleware

import (
	"net/http"

	"github.com/wastelink/wastelink/internal/api/response"
	"github.com/wastelink/wastelink/internal/profile"
	"github.com/wastelink/wastelink/internal/session"
)

// StateReader exposes the gate's resolved display state.
type StateReader interface {
	State() session.DisplayState
}

// RequireRole returns middleware that admits requests only while the gate
// has resolved one of roles. An unauthenticated or still-initializing
// session gets 401; a resolved session with another or no role gets 403.
func RequireRole(gate StateReader, roles ...profile.Role) func(http.Handler) http.Handler {
	allowed := make(map[profile.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			state := gate.State()
			switch state.Kind() {
			case session.KindUnauthenticated:
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign in required", requestID)
				return
			case session.KindInitializing:
				response.Err(w, http.StatusUnauthorized, "SESSION_PENDING", "Session is still being resolved", requestID)
				return
			}

			role, ok := state.Role()
			if !ok || !allowed[role] {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
