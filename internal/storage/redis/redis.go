package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"healthauth/internal/models"
	"healthauth/internal/storage"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, addr, pass string, db int) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

// SaveResetToken сохраняет токен сброса пароля. Redis сам удалит ключ по
// истечении TTL, нечитаемый по истечении токен эквивалентен отсутствующему.
func (r *RedisRepo) SaveResetToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	const op = "storage.redis.SaveResetToken"

	record := models.ResetToken{
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	key := resetKey(token)

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ConsumeResetToken атомарно забирает и удаляет токен (GETDEL): токен
// одноразовый, повторное предъявление вернет ErrResetTokenNotFound.
func (r *RedisRepo) ConsumeResetToken(ctx context.Context, token string) (models.ResetToken, error) {
	const op = "storage.redis.ConsumeResetToken"

	key := resetKey(token)

	data, err := r.client.GetDel(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.ResetToken{}, storage.ErrResetTokenNotFound
		}

		return models.ResetToken{}, fmt.Errorf("%s: %w", op, err)
	}

	var record models.ResetToken
	if err := json.Unmarshal(data, &record); err != nil {
		return models.ResetToken{}, fmt.Errorf("%s: %w", op, err)
	}

	return record, nil
}

// Close закрывает соединение с базой данных.
func (r *RedisRepo) Close() {
	r.client.Close()
}

func resetKey(token string) string {
	return fmt.Sprintf("reset:pending:%s", token)
}
