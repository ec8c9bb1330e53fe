package reset_complete_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"healthauth/internal/http_server/handlers/handlertest"
	"healthauth/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/auth/reset-password-complete", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	return rec
}

func seedWithResetToken(t *testing.T, e *handlertest.Env) (models.User, string) {
	t.Helper()

	user, err := e.Seed("alice@example.com", "alice", "Sup3r$ecret")
	require.NoError(t, err)

	err = e.Service.RequestPasswordReset(context.Background(), "alice@example.com")
	require.NoError(t, err)

	msg, ok := e.Publisher.Last()
	require.True(t, ok)

	_, token, found := strings.Cut(msg.Link, "token=")
	require.True(t, found)

	return user, token
}

func TestResetComplete(t *testing.T) {
	e := handlertest.New()
	user, token := seedWithResetToken(t, e)

	rec := post(t, e.Router,
		`{"userId":"`+user.ID.String()+`","token":"`+token+`","password":"N3w$ecretPass"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	// новый пароль действует
	_, _, err := e.Service.Login(context.Background(), "alice@example.com", "N3w$ecretPass")
	assert.NoError(t, err)
}

func TestResetCompleteSingleUse(t *testing.T) {
	e := handlertest.New()
	user, token := seedWithResetToken(t, e)

	body := `{"userId":"` + user.ID.String() + `","token":"` + token + `","password":"N3w$ecretPass"}`

	first := post(t, e.Router, body)
	second := post(t, e.Router, body)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusUnauthorized, second.Code)
}

func TestResetCompleteUnknownToken(t *testing.T) {
	e := handlertest.New()
	user, _ := seedWithResetToken(t, e)

	rec := post(t, e.Router,
		`{"userId":"`+user.ID.String()+`","token":"deadbeef","password":"N3w$ecretPass"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResetCompleteWrongUser(t *testing.T) {
	e := handlertest.New()
	_, token := seedWithResetToken(t, e)

	rec := post(t, e.Router,
		`{"userId":"`+uuid.NewString()+`","token":"`+token+`","password":"N3w$ecretPass"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResetCompleteWeakPassword(t *testing.T) {
	e := handlertest.New()
	user, token := seedWithResetToken(t, e)

	rec := post(t, e.Router,
		`{"userId":"`+user.ID.String()+`","token":"`+token+`","password":"weak"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetCompleteMissingFields(t *testing.T) {
	e := handlertest.New()

	rec := post(t, e.Router, `{"token":"deadbeef"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
