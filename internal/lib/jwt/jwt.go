package jwt

import (
	"errors"
	"fmt"
	"time"

	"healthauth/internal/models"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// ErrInvalidToken покрывает все случаи отказа: плохая подпись, битый
// payload, истекший срок, неверный тип токена.
var ErrInvalidToken = errors.New("invalid token")

var signingMethod = jwtlib.SigningMethodHS256

type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	TokenType string    `json:"token_type"`
	jwtlib.RegisteredClaims
}

// Manager выпускает и проверяет access/refresh токены. Ключи подписи
// разные для каждого типа: утечка одного не позволяет подделать другой.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (m *Manager) NewAccessToken(user models.User) (string, error) {
	return m.newToken(user, AccessToken, m.accessTTL, m.accessSecret)
}

func (m *Manager) NewRefreshToken(user models.User) (string, error) {
	return m.newToken(user, RefreshToken, m.refreshTTL, m.refreshSecret)
}

func (m *Manager) newToken(user models.User, kind TokenKind, ttl time.Duration, secret []byte) (string, error) {
	const op = "jwt.newToken"

	now := time.Now()

	token := jwtlib.NewWithClaims(signingMethod, Claims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: string(kind),
		RegisteredClaims: jwtlib.RegisteredClaims{
			// jti делает каждый выпуск уникальным даже при совпадении
			// остальных claims и секунды выпуска
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Parse проверяет подпись, срок действия и тип токена. Любое нарушение
// возвращает ErrInvalidToken, без частичного доверия к claims.
func (m *Manager) Parse(tokenStr string, kind TokenKind) (*Claims, error) {
	const op = "jwt.Parse"

	secret := m.accessSecret
	if kind == RefreshToken {
		secret = m.refreshSecret
	}

	claims := &Claims{}

	parsed, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%s: unexpected signing method", op)
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if !parsed.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.TokenType != string(kind) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims, nil
}
