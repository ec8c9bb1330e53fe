package memory

import (
	"context"
	"sync"
	"time"

	"healthauth/internal/models"
	"healthauth/internal/storage"

	"github.com/google/uuid"
)

// Repo — хранилище в памяти процесса. Реализует те же контракты, что и
// postgres/redis репозитории; используется тестами и как посевная
// фикстура в локальной разработке.
type Repo struct {
	mu     sync.Mutex
	users  map[uuid.UUID]models.User
	resets map[string]models.ResetToken
}

func New() *Repo {
	return &Repo{
		users:  make(map[uuid.UUID]models.User),
		resets: make(map[string]models.ResetToken),
	}
}

func (r *Repo) SaveUser(_ context.Context, user models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return models.User{}, storage.ErrUserExists
		}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = user

	return user, nil
}

func (r *Repo) UpdatePassword(_ context.Context, id uuid.UUID, passHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}

	u.PassHash = passHash
	u.UpdatedAt = time.Now()
	r.users[id] = u

	return nil
}

func (r *Repo) UserByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (r *Repo) UserByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (r *Repo) UserByID(_ context.Context, id uuid.UUID) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

func (r *Repo) SaveResetToken(_ context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resets[token] = models.ResetToken{
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}

	return nil
}

// ConsumeResetToken изымает токен при любом исходе: одноразовость
// обеспечивается удалением до каких-либо проверок вызывающей стороны.
func (r *Repo) ConsumeResetToken(_ context.Context, token string) (models.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.resets[token]
	if !ok {
		return models.ResetToken{}, storage.ErrResetTokenNotFound
	}

	delete(r.resets, token)

	return record, nil
}
