package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"healthauth/internal/lib/jwt"
	sl "healthauth/internal/lib/logger"
	"healthauth/internal/lib/password"
	"healthauth/internal/lib/reset"
	"healthauth/internal/models"
	"healthauth/internal/storage"
	"healthauth/internal/tokens"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials намеренно один на все случаи: неизвестный email
	// и неверный пароль для клиента неразличимы
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrUserNotFound       = errors.New("user not found")
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	resetStore  ResetTokenStore
	registry    *tokens.Registry
	jwtManager  *jwt.Manager
	notifier    reset.Publisher
	resetTTL    time.Duration
	address     string
}

type UserSaver interface {
	SaveUser(ctx context.Context, user models.User) (models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passHash []byte) error
}

type UserProvider interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

type ResetTokenStore interface {
	SaveResetToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (models.ResetToken, error)
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	resetStore ResetTokenStore,
	registry *tokens.Registry,
	jwtManager *jwt.Manager,
	notifier reset.Publisher,
	resetTTL time.Duration,
	address string,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		resetStore:  resetStore,
		registry:    registry,
		jwtManager:  jwtManager,
		notifier:    notifier,
		resetTTL:    resetTTL,
		address:     address,
	}
}

// Register создает нового пользователя. Хеш пароля наружу не уходит.
func (a *Auth) Register(
	ctx context.Context,
	email, username, pass, ageGroup string,
) (models.User, error) {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))

	if err := password.ValidateStrength(pass); err != nil {
		log.Info("weak password rejected", sl.Err(err))
		return models.User{}, fmt.Errorf("%w: %w", ErrWeakPassword, err)
	}

	if _, err := a.usrProvider.UserByUsername(ctx, username); err == nil {
		log.Warn("username already taken")
		return models.User{}, ErrUserExists
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		log.Error("failed to check username", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := password.Hash(pass)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Username: username,
		PassHash: passHash,
		AgeGroup: ageGroup,
	}

	created, err := a.usrSaver.SaveUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")
			return models.User{}, ErrUserExists
		}

		log.Error("failed to save user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("uid", created.ID.String()))

	return created, nil
}

// Login проверяет учетные данные и возвращает пару access/refresh токенов.
func (a *Auth) Login(
	ctx context.Context,
	email, pass string,
) (models.User, models.TokenPair, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("login attempt for unknown email")
			return models.User{}, models.TokenPair{}, ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return models.User{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if !password.Verify(pass, user.PassHash) {
		log.Info("invalid credentials")
		return models.User{}, models.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := a.issuePair(user)
	if err != nil {
		log.Error("failed to issue token pair", sl.Err(err))
		return models.User{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	a.registry.Register(pair.RefreshToken, user.ID)

	log.Info("user logged in successfully", slog.String("uid", user.ID.String()))

	return user, pair, nil
}

// Refresh обменивает действующий refresh токен на новую пару. Старый токен
// изымается из реестра атомарно с регистрацией нового: повторная попытка
// с тем же токеном, в том числе конкурентная, получает отказ.
func (a *Auth) Refresh(
	ctx context.Context,
	refreshToken string,
) (models.TokenPair, error) {
	const op = "auth.Refresh"

	log := a.log.With(slog.String("op", op))

	claims, err := a.jwtManager.Parse(refreshToken, jwt.RefreshToken)
	if err != nil {
		log.Info("refresh token rejected", sl.Err(err))
		return models.TokenPair{}, ErrInvalidCredentials
	}

	if !a.registry.IsActive(refreshToken) {
		log.Info("refresh token not in registry")
		return models.TokenPair{}, ErrInvalidCredentials
	}

	user, err := a.usrProvider.UserByID(ctx, claims.UserID)
	if err != nil {
		log.Warn("failed to load user for refresh", sl.Err(err))
		return models.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := a.issuePair(user)
	if err != nil {
		log.Error("failed to issue token pair", sl.Err(err))
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.registry.Replace(refreshToken, pair.RefreshToken, user.ID); err != nil {
		log.Info("refresh token consumed by concurrent request")
		return models.TokenPair{}, ErrInvalidCredentials
	}

	log.Info("refresh successful", slog.String("uid", user.ID.String()))

	return pair, nil
}

// Logout отзывает refresh токен. Отзыв уже неактивного токена — успех.
func (a *Auth) Logout(ctx context.Context, refreshToken string) {
	const op = "auth.Logout"

	a.registry.Revoke(refreshToken)

	a.log.With(slog.String("op", op)).Info("refresh token revoked")
}

// User возвращает пользователя по идентификатору.
func (a *Auth) User(ctx context.Context, id uuid.UUID) (models.User, error) {
	user, err := a.usrProvider.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, ErrUserNotFound
		}

		return models.User{}, err
	}

	return user, nil
}

// RequestPasswordReset выпускает одноразовый токен сброса. Для неизвестного
// email ответ неотличим от успешного: регистрация адреса не раскрывается.
func (a *Auth) RequestPasswordReset(ctx context.Context, email string) error {
	const op = "auth.RequestPasswordReset"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("reset requested for unknown email")
			return nil
		}

		log.Error("failed to get user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	token, err := reset.NewToken()
	if err != nil {
		log.Error("failed to generate reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.resetStore.SaveResetToken(ctx, token, user.ID, a.resetTTL); err != nil {
		log.Error("failed to save reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := reset.SendResetEmail(ctx, log, a.notifier, token, user.Email, a.address); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("reset token issued", slog.String("uid", user.ID.String()))

	return nil
}

// CompletePasswordReset погашает токен сброса и ставит новый пароль.
// Токен одноразовый: он изымается из хранилища при любом исходе проверки.
// Все refresh токены пользователя отзываются.
func (a *Auth) CompletePasswordReset(
	ctx context.Context,
	userID uuid.UUID,
	token, newPassword string,
) error {
	const op = "auth.CompletePasswordReset"

	log := a.log.With(slog.String("op", op))

	if err := password.ValidateStrength(newPassword); err != nil {
		log.Info("weak password rejected", sl.Err(err))
		return fmt.Errorf("%w: %w", ErrWeakPassword, err)
	}

	record, err := a.resetStore.ConsumeResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrResetTokenNotFound) {
			log.Info("unknown reset token")
			return ErrInvalidResetToken
		}

		log.Error("failed to consume reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if record.UserID != userID {
		log.Warn("reset token bound to another user")
		return ErrInvalidResetToken
	}

	if record.IsExpired() {
		log.Info("reset token expired")
		return ErrInvalidResetToken
	}

	user, err := a.usrProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserNotFound
		}

		log.Error("failed to load user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := password.Hash(newPassword)
	if err != nil {
		log.Error("failed to hash new password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.usrSaver.UpdatePassword(ctx, user.ID, passHash); err != nil {
		log.Error("failed to update password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	a.registry.RevokeAll(user.ID)

	log.Info("password reset completed", slog.String("uid", user.ID.String()))

	return nil
}

func (a *Auth) issuePair(user models.User) (models.TokenPair, error) {
	accessToken, err := a.jwtManager.NewAccessToken(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	refreshToken, err := a.jwtManager.NewRefreshToken(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
