package tokens

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrTokenNotActive = errors.New("refresh token is not active")

// Registry хранит действующие refresh токены процесса. Токен считается
// живым только пока присутствует в реестре: logout и ротация удаляют его
// немедленно, независимо от срока действия подписи.
type Registry struct {
	mu     sync.Mutex
	active map[string]uuid.UUID
}

func NewRegistry() *Registry {
	return &Registry{
		active: make(map[string]uuid.UUID),
	}
}

func (r *Registry) Register(token string, userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active[token] = userID
}

func (r *Registry) IsActive(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.active[token]

	return ok
}

// Revoke идемпотентен: отзыв отсутствующего токена не ошибка.
func (r *Registry) Revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.active, token)
}

// Replace атомарно изымает oldToken и регистрирует newToken. Два
// конкурентных refresh с одним токеном получают ровно один успех.
func (r *Registry) Replace(oldToken, newToken string, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.active[oldToken]; !ok {
		return ErrTokenNotActive
	}

	delete(r.active, oldToken)
	r.active[newToken] = userID

	return nil
}

// RevokeAll отзывает все refresh токены пользователя
func (r *Registry) RevokeAll(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, uid := range r.active {
		if uid == userID {
			delete(r.active, token)
		}
	}
}
