package authgate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	resp "healthauth/internal/lib/api/response"
	"healthauth/internal/lib/jwt"
	sl "healthauth/internal/lib/logger"

	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type Principal struct {
	ID    uuid.UUID
	Email string
}

type ctxKey struct{}

type TokenParser interface {
	Parse(tokenStr string, kind jwt.TokenKind) (*jwt.Claims, error)
}

// New проверяет bearer access токен запроса и кладет аутентифицированного
// пользователя в контекст. Реестр refresh токенов здесь не используется:
// access токены stateless, их валидность определяется только подписью и
// сроком действия.
func New(log *slog.Logger, parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authgate.New"

			log := log.With(slog.String("op", op))

			token := bearerToken(r)
			if token == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("no token provided"))

				return
			}

			claims, err := parser.Parse(token, jwt.AccessToken)
			if err != nil {
				log.Info("access token rejected", sl.Err(err))

				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("invalid token"))

				return
			}

			principal := Principal{
				ID:    claims.UserID,
				Email: claims.Email,
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, principal)

			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)

	return p, ok
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")

	if parts := strings.Split(authHeader, "Bearer "); len(parts) == 2 {
		return strings.TrimSpace(parts[1])
	}

	return ""
}
