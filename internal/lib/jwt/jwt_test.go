package jwt_test

import (
	"testing"
	"time"

	"healthauth/internal/lib/jwt"
	"healthauth/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() models.User {
	return models.User{
		ID:    uuid.New(),
		Email: "user@example.com",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := jwt.NewManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	user := testUser()

	token, err := m.NewAccessToken(user)
	require.NoError(t, err)

	claims, err := m.Parse(token, jwt.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := jwt.NewManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	user := testUser()

	token, err := m.NewRefreshToken(user)
	require.NoError(t, err)

	claims, err := m.Parse(token, jwt.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, user.ID, claims.UserID)
}

func TestParseRejectsWrongKind(t *testing.T) {
	m := jwt.NewManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	user := testUser()

	access, err := m.NewAccessToken(user)
	require.NoError(t, err)

	refresh, err := m.NewRefreshToken(user)
	require.NoError(t, err)

	_, err = m.Parse(access, jwt.RefreshToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)

	_, err = m.Parse(refresh, jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	m := jwt.NewManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	other := jwt.NewManager("other-access", "other-refresh", time.Minute, time.Hour)

	token, err := other.NewAccessToken(testUser())
	require.NoError(t, err)

	_, err = m.Parse(token, jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := jwt.NewManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	_, err := m.Parse("not.a.token", jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)

	_, err = m.Parse("", jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m := jwt.NewManager("access-secret", "refresh-secret", -time.Minute, time.Hour)

	token, err := m.NewAccessToken(testUser())
	require.NoError(t, err)

	_, err = m.Parse(token, jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestIssuedTokensNeverIdentical(t *testing.T) {
	m := jwt.NewManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	user := testUser()

	t1, err := m.NewRefreshToken(user)
	require.NoError(t, err)

	t2, err := m.NewRefreshToken(user)
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
}
