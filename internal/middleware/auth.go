package middleware

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for the caller's member id.
	UserIDKey contextKey = "user_id"
	// UserNameKey is the context key for the caller's display name.
	UserNameKey contextKey = "user_name"
)

// GetUserID extracts the caller's member id from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetUserName extracts the caller's display name from the context.
// Returns empty string if not found.
func GetUserName(ctx context.Context) string {
	name, _ := ctx.Value(UserNameKey).(string)
	return name
}

// WithUser returns a context carrying the caller's identity.
func WithUser(ctx context.Context, userID, name string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UserNameKey, name)
}

// OptionalAuth returns a middleware that resolves the caller from a bearer
// token when one is present, and lets every request through. Requests without
// a valid token simply carry no identity. A nil jwtManager disables token
// resolution.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if jwtManager == nil {
				return next(ctx, req)
			}

			if tokenString, ok := bearerToken(req.Header().Get("Authorization")); ok {
				claims, err := jwtManager.Validate(tokenString)
				if err != nil {
					slog.Debug("Ignoring invalid bearer token",
						"procedure", req.Spec().Procedure,
						"error", err,
					)
				} else {
					ctx = WithUser(ctx, claims.MemberID, claims.Name)
				}
			}

			return next(ctx, req)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
