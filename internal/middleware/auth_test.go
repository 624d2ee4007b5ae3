package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func signToken(t *testing.T, secret, userID, role string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	viper.Set("jwt.secret_key", "test-secret")

	t.Run("passes caller identity to the handler", func(t *testing.T) {
		var gotUser, gotRole string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, _ = r.Context().Value("userID").(string)
			gotRole, _ = r.Context().Value("role").(string)
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/wallets/alice/balance", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "svc-tournaments", "service"))
		w := httptest.NewRecorder()

		AuthMiddleware(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "svc-tournaments", gotUser)
		assert.Equal(t, "service", gotRole)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/wallets/alice/balance", nil)
		w := httptest.NewRecorder()

		AuthMiddleware(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/wallets/alice/balance", nil)
		req.Header.Set("Authorization", "Token abc123")
		w := httptest.NewRecorder()

		AuthMiddleware(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/wallets/alice/balance", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "svc-tournaments", "service"))
		w := httptest.NewRecorder()

		AuthMiddleware(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": "svc-tournaments",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte("test-secret"))
		assert.NoError(t, err)

		req := httptest.NewRequest("GET", "/wallets/alice/balance", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		w := httptest.NewRecorder()

		AuthMiddleware(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	viper.Set("jwt.secret_key", "test-secret")

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("admits admin role", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/admin/adjustments", nil)
		req = req.WithContext(context.WithValue(req.Context(), "role", "admin"))
		w := httptest.NewRecorder()

		RequireAdmin(ok).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects everyone else", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/admin/adjustments", nil)
		req = req.WithContext(context.WithValue(req.Context(), "role", "service"))
		w := httptest.NewRecorder()

		RequireAdmin(ok).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("rejects missing role", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/admin/adjustments", nil)
		w := httptest.NewRecorder()

		RequireAdmin(ok).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("full chain from bearer token to admin gate", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/admin/adjustments", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "ops-1", "admin"))
		w := httptest.NewRecorder()

		AuthMiddleware(RequireAdmin(ok)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
