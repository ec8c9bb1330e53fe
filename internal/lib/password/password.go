package password

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minLength = 8

const specialChars = "!@#$%^&*()-_=+[]{}|;:'\",.<>/?~`"

var (
	ErrTooShort  = fmt.Errorf("password must be at least %d characters long", minLength)
	ErrNoUpper   = errors.New("password must contain at least one uppercase letter")
	ErrNoLower   = errors.New("password must contain at least one lowercase letter")
	ErrNoDigit   = errors.New("password must contain at least one digit")
	ErrNoSpecial = errors.New("password must contain at least one special character")
)

// Hash возвращает bcrypt-хеш пароля. Соль генерируется на каждый вызов,
// поэтому один и тот же пароль дает разные хеши.
func Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
}

// Verify сравнивает пароль с хешем. Любая ошибка bcrypt (несовпадение,
// битый хеш) трактуется как несовпадение.
func Verify(plaintext string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}

func ValidateStrength(plaintext string) error {
	if len(plaintext) < minLength {
		return ErrTooShort
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool

	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return ErrNoUpper
	case !hasLower:
		return ErrNoLower
	case !hasDigit:
		return ErrNoDigit
	case !hasSpecial:
		return ErrNoSpecial
	}

	return nil
}
