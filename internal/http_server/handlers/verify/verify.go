package verify

import (
	"log/slog"
	"net/http"

	"healthauth/internal/auth"
	resp "healthauth/internal/lib/api/response"
	sl "healthauth/internal/lib/logger"
	"healthauth/internal/middleware/authgate"
	"healthauth/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Authenticated bool        `json:"authenticated"`
	User          models.User `json:"user"`
}

// New отвечает на проверку access токена. Сам токен уже проверен
// authgate, здесь остается только подгрузить пользователя.
func New(
	log *slog.Logger,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verify.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		principal, ok := authgate.FromContext(r.Context())
		if !ok {
			log.Warn("no principal in context")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("invalid token"))

			return
		}

		user, err := authService.User(r.Context(), principal.ID)
		if err != nil {
			log.Warn("failed to load user", sl.Err(err))

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("invalid token"))

			return
		}

		render.JSON(w, r, Response{
			Response:      resp.OK(),
			Authenticated: true,
			User:          user,
		})
	}
}
