package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/roadpulse/roadpulse/internal/api/models"
	"github.com/roadpulse/roadpulse/internal/auth"
)

// userIDKey is the context key for the authenticated user ID.
type userIDKey struct{}

// TokenValidator validates an access token and returns the user ID it was
// issued to.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (int64, error)
}

// Auth creates authentication middleware that validates JWT bearer tokens.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := authenticate(validator, r)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrAccessTokenExpired):
					writeUnauthorized(w, r, "access token has expired")
				case errors.Is(err, auth.ErrInvalidAccessToken):
					writeUnauthorized(w, r, "invalid access token")
				default:
					writeUnauthorized(w, r, err.Error())
				}
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth binds the authenticated user to the context when a valid
// bearer token is present but lets unauthenticated requests through. The
// WebSocket endpoint uses it so the push channel can be bound to an
// already-authenticated session instead of trusting a client-supplied id.
func OptionalAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := authenticate(validator, r); err == nil {
				ctx := context.WithValue(r.Context(), userIDKey{}, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(validator TokenValidator, r *http.Request) (int64, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return 0, errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return 0, errors.New("invalid authorization header format")
	}

	tokenString := authHeader[len(bearerPrefix):]
	if tokenString == "" {
		return 0, errors.New("missing bearer token")
	}

	return validator.ValidateAccessToken(tokenString)
}

// writeUnauthorized writes a 401 Unauthorized response.
// This is implemented directly here to avoid import cycle with response package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetUserID retrieves the authenticated user ID from the context.
// Returns 0 if not authenticated.
func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey{}).(int64); ok {
		return id
	}
	return 0
}
