package reset

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"healthauth/internal/models"
)

const Purpose = "password_reset"

const tokenBytes = 32

type Publisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

// NewToken генерирует непрозрачный одноразовый токен сброса. Это не JWT:
// значение случайно и имеет смысл только как ключ в хранилище токенов.
func NewToken() (string, error) {
	const op = "reset.NewToken"

	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return hex.EncodeToString(buf), nil
}

// SendResetEmail отдает ссылку сброса во внешний канал доставки.
func SendResetEmail(
	ctx context.Context,
	log *slog.Logger,
	pub Publisher,
	token string,
	email string,
	address string,
) error {
	resetLink := fmt.Sprintf("%s/auth/reset-password-complete?token=%s", address, token)

	msg := models.Message{
		Email:   email,
		Link:    resetLink,
		Purpose: Purpose,
	}

	if err := pub.SendMessage(ctx, msg); err != nil {
		log.Error("failed to send reset link", slog.Any("err", err))

		return err
	}

	return nil
}
