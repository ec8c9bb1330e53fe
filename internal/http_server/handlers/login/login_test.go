package login_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"healthauth/internal/http_server/handlers/handlertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	return rec
}

func TestLogin(t *testing.T) {
	e := handlertest.New()

	_, err := e.Seed("alice@example.com", "alice", "Sup3r$ecret")
	require.NoError(t, err)

	rec := post(t, e.Router, `{"email":"alice@example.com","password":"Sup3r$ecret"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
		User         struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.NotEmpty(t, body.Token)
	assert.NotEmpty(t, body.RefreshToken)
	assert.Equal(t, "alice@example.com", body.User.Email)
	assert.True(t, e.Registry.IsActive(body.RefreshToken))
}

func TestLoginMissingFields(t *testing.T) {
	e := handlertest.New()

	rec := post(t, e.Router, `{"email":"alice@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginUniformUnauthorized(t *testing.T) {
	e := handlertest.New()

	_, err := e.Seed("alice@example.com", "alice", "Sup3r$ecret")
	require.NoError(t, err)

	wrongPass := post(t, e.Router, `{"email":"alice@example.com","password":"Wr0ng$ecret"}`)
	noUser := post(t, e.Router, `{"email":"nobody@example.com","password":"Sup3r$ecret"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, noUser.Code)

	// тело ответа не выдает, какое из полей неверно
	assert.JSONEq(t, wrongPass.Body.String(), noUser.Body.String())
}
