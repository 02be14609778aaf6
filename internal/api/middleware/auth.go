package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/emojiguess-go/internal/api/apierr"
	"github.com/mcoot/emojiguess-go/internal/model"
	"github.com/mcoot/emojiguess-go/internal/services/identity"
)

type contextKey string

const (
	userContextKey contextKey = "user"
	connContextKey contextKey = "connection"
)

// Auth creates authentication middleware. The bearer token is the caller's
// connection id, resolved to its user on every request.
func Auth(identityService *identity.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			connID := model.ConnectionID(token)
			user, err := identityService.ResolveConnection(r.Context(), connID)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, userContextKey, user)
			ctx = context.WithValue(ctx, connContextKey, connID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the connection id from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Fall back to query parameter for EventSource clients, which cannot
	// set headers
	return r.URL.Query().Get("connection_id")
}

// GetUser returns the authenticated user from the request context
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// GetConnectionID returns the caller's connection id from the request context
func GetConnectionID(ctx context.Context) model.ConnectionID {
	connID, _ := ctx.Value(connContextKey).(model.ConnectionID)
	return connID
}

// MustGetConnectionID returns the caller's connection id or panics
func MustGetConnectionID(ctx context.Context) model.ConnectionID {
	connID := GetConnectionID(ctx)
	if connID == "" {
		panic("no connection id in context - auth middleware not applied?")
	}
	return connID
}
