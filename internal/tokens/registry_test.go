package tokens_test

import (
	"sync"
	"testing"

	"healthauth/internal/tokens"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRevoke(t *testing.T) {
	r := tokens.NewRegistry()
	uid := uuid.New()

	assert.False(t, r.IsActive("tok"))

	r.Register("tok", uid)
	assert.True(t, r.IsActive("tok"))

	r.Revoke("tok")
	assert.False(t, r.IsActive("tok"))

	// повторный отзыв не паникует и не ошибка
	r.Revoke("tok")
	assert.False(t, r.IsActive("tok"))
}

func TestReplace(t *testing.T) {
	r := tokens.NewRegistry()
	uid := uuid.New()

	r.Register("old", uid)

	err := r.Replace("old", "new", uid)
	assert.NoError(t, err)
	assert.False(t, r.IsActive("old"))
	assert.True(t, r.IsActive("new"))

	err = r.Replace("old", "newer", uid)
	assert.ErrorIs(t, err, tokens.ErrTokenNotActive)
	assert.False(t, r.IsActive("newer"))
}

func TestReplaceConcurrentSingleWinner(t *testing.T) {
	r := tokens.NewRegistry()
	uid := uuid.New()

	r.Register("shared", uid)

	const attempts = 16

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results <- r.Replace("shared", uuid.NewString(), uid)
		}(i)
	}

	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
		} else {
			losses++
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, losses)
}

func TestRevokeAll(t *testing.T) {
	r := tokens.NewRegistry()
	alice := uuid.New()
	bob := uuid.New()

	r.Register("a1", alice)
	r.Register("a2", alice)
	r.Register("b1", bob)

	r.RevokeAll(alice)

	assert.False(t, r.IsActive("a1"))
	assert.False(t, r.IsActive("a2"))
	assert.True(t, r.IsActive("b1"))
}
