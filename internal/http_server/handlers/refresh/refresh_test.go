package refresh_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"healthauth/internal/http_server/handlers/handlertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	return rec
}

func loggedInRefreshToken(t *testing.T, e *handlertest.Env) string {
	t.Helper()

	_, err := e.Seed("alice@example.com", "alice", "Sup3r$ecret")
	require.NoError(t, err)

	_, pair, err := e.Service.Login(context.Background(), "alice@example.com", "Sup3r$ecret")
	require.NoError(t, err)

	return pair.RefreshToken
}

func TestRefresh(t *testing.T) {
	e := handlertest.New()
	token := loggedInRefreshToken(t, e)

	rec := post(t, e.Router, `{"refreshToken":"`+token+`"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.NotEmpty(t, body.Token)
	assert.NotEmpty(t, body.RefreshToken)
	assert.NotEqual(t, token, body.RefreshToken)

	// предъявленный токен потреблен ротацией
	again := post(t, e.Router, `{"refreshToken":"`+token+`"}`)
	assert.Equal(t, http.StatusUnauthorized, again.Code)
}

func TestRefreshMissingToken(t *testing.T) {
	e := handlertest.New()

	rec := post(t, e.Router, `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshInvalidToken(t *testing.T) {
	e := handlertest.New()

	rec := post(t, e.Router, `{"refreshToken":"garbage"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshConcurrentDuplicate(t *testing.T) {
	e := handlertest.New()
	token := loggedInRefreshToken(t, e)

	var wg sync.WaitGroup
	codes := make(chan int, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := post(t, e.Router, `{"refreshToken":"`+token+`"}`)
			codes <- rec.Code
		}()
	}

	wg.Wait()
	close(codes)

	var got []int
	for code := range codes {
		got = append(got, code)
	}

	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusUnauthorized}, got)
}
