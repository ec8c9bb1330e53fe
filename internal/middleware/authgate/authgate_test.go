package authgate_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"healthauth/internal/lib/jwt"
	"healthauth/internal/middleware/authgate"
	"healthauth/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGate(t *testing.T) (*jwt.Manager, func(http.Handler) http.Handler) {
	t.Helper()

	manager := jwt.NewManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	gate := authgate.New(slog.New(slog.NewTextHandler(io.Discard, nil)), manager)

	return manager, gate
}

func principalEcho(t *testing.T, captured *authgate.Principal) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := authgate.FromContext(r.Context())
		require.True(t, ok)

		*captured = p

		w.WriteHeader(http.StatusOK)
	})
}

func TestMissingToken(t *testing.T) {
	_, gate := newGate(t)

	var p authgate.Principal
	handler := gate(principalEcho(t, &p))

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no token provided")
}

func TestInvalidToken(t *testing.T) {
	_, gate := newGate(t)

	var p authgate.Principal
	handler := gate(principalEcho(t, &p))

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestRefreshTokenRejected(t *testing.T) {
	manager, gate := newGate(t)

	user := models.User{ID: uuid.New(), Email: "user@example.com"}

	refresh, err := manager.NewRefreshToken(user)
	require.NoError(t, err)

	var p authgate.Principal
	handler := gate(principalEcho(t, &p))

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidToken(t *testing.T) {
	manager, gate := newGate(t)

	user := models.User{ID: uuid.New(), Email: "user@example.com"}

	access, err := manager.NewAccessToken(user)
	require.NoError(t, err)

	var p authgate.Principal
	handler := gate(principalEcho(t, &p))

	req := httptest.NewRequest(http.MethodGet, "/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, p.ID)
	assert.Equal(t, user.Email, p.Email)
}
