package logout

import (
	"log/slog"
	"net/http"

	"healthauth/internal/auth"
	resp "healthauth/internal/lib/api/response"
	sl "healthauth/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// New завершает сессию: refresh токен отзывается и больше не обменивается
// на новые access токены. Отзыв уже неактивного токена тоже успех —
// повторный logout с того же клиента не должен ломаться. Access токен
// остается формально валидным до конца своего TTL.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		authService.Logout(r.Context(), req.RefreshToken)

		log.Info("user logged out successfully")

		render.JSON(w, r, resp.Message("logged out"))
	}
}
