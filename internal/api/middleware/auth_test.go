package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadpulse/roadpulse/internal/api/middleware"
	"github.com/roadpulse/roadpulse/internal/auth"
)

func createTestAuthService() *auth.Service {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-signing-key",
		Issuer:     "https://api.roadpulse.io",
		Audience:   "roadpulse-api",
	})
	return auth.NewService(auth.ServiceConfig{
		JWTService:  jwtService,
		UserRepo:    auth.NewInMemoryUserRepository(),
		RefreshRepo: auth.NewInMemoryRefreshTokenRepository(),
	})
}

func issueToken(t *testing.T, userID int64) string {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-signing-key",
		Issuer:     "https://api.roadpulse.io",
		Audience:   "roadpulse-api",
	})
	token, _, err := jwtService.GenerateAccessToken(&auth.User{ID: userID})
	require.NoError(t, err)
	return token
}

func TestAuth_MissingAuthorizationHeader(t *testing.T) {
	authMiddleware := middleware.Auth(createTestAuthService())

	handler := authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestAuth_InvalidAuthorizationFormat(t *testing.T) {
	authMiddleware := middleware.Auth(createTestAuthService())

	handler := authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "token123"},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"just bearer", "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	authMiddleware := middleware.Auth(createTestAuthService())

	handler := authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer invalid.jwt.token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid access token")
}

func TestAuth_ValidToken(t *testing.T) {
	authMiddleware := middleware.Auth(createTestAuthService())

	var capturedUserID int64
	handler := authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserID = middleware.GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, 42))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), capturedUserID)
}

func TestOptionalAuth_Unauthenticated(t *testing.T) {
	optionalAuth := middleware.OptionalAuth(createTestAuthService())

	var capturedUserID int64
	handler := optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserID = middleware.GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, capturedUserID)
}

func TestOptionalAuth_Authenticated(t *testing.T) {
	optionalAuth := middleware.OptionalAuth(createTestAuthService())

	var capturedUserID int64
	handler := optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserID = middleware.GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, 7))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), capturedUserID)
}

func TestGetUserID_NoAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	assert.Zero(t, middleware.GetUserID(req.Context()))
}
