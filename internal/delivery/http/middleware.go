package http

import (
	"context"
	"net/http"
)

// Identity is the authenticated caller, supplied by the upstream auth layer.
// Token/session validation is not this service's concern; by the time a
// request arrives the gateway has resolved it to a user id and role.
type Identity struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the identity may use privileged endpoints.
func (id Identity) IsAdmin() bool {
	return id.Role == "admin"
}

type contextKey string

const identityKey contextKey = "identity"

// IdentityFrom extracts the caller identity from the request context.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// RequireAuth rejects requests without a resolved identity with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
			return
		}
		identity := Identity{
			UserID: userID,
			Role:   r.Header.Get("X-User-Role"),
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects non-admin identities with 403. Must run after
// RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok || !identity.IsAdmin() {
			writeJSONError(w, http.StatusForbidden, "forbidden", "admin role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EnableCORS is a middleware to allow the SPA frontend to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-ID, X-User-Role")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
