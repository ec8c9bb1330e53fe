// Package handlertest собирает auth-сервис поверх хранилища в памяти и
// маршрутизатор со всеми эндпоинтами — общая обвязка для тестов хендлеров.
package handlertest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"healthauth/internal/auth"
	"healthauth/internal/http_server/handlers/login"
	"healthauth/internal/http_server/handlers/logout"
	"healthauth/internal/http_server/handlers/refresh"
	"healthauth/internal/http_server/handlers/reset_complete"
	"healthauth/internal/http_server/handlers/reset_request"
	"healthauth/internal/http_server/handlers/signup"
	"healthauth/internal/http_server/handlers/verify"
	"healthauth/internal/lib/jwt"
	"healthauth/internal/middleware/authgate"
	"healthauth/internal/models"
	"healthauth/internal/storage/memory"
	"healthauth/internal/tokens"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

type Publisher struct {
	mu       sync.Mutex
	Messages []models.Message
}

func (p *Publisher) SendMessage(_ context.Context, msg models.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Messages = append(p.Messages, msg)

	return nil
}

func (p *Publisher) Last() (models.Message, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.Messages) == 0 {
		return models.Message{}, false
	}

	return p.Messages[len(p.Messages)-1], true
}

type Env struct {
	Router    http.Handler
	Service   *auth.Auth
	JWT       *jwt.Manager
	Registry  *tokens.Registry
	Repo      *memory.Repo
	Publisher *Publisher
}

func New() *Env {
	repo := memory.New()
	publisher := &Publisher{}
	registry := tokens.NewRegistry()
	manager := jwt.NewManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := auth.New(log, repo, repo, repo, registry, manager, publisher, time.Hour, "http://localhost:8080")

	validate := validator.New()
	gate := authgate.New(log, manager)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", signup.New(log, validate, service))
		r.Post("/login", login.New(log, validate, service))
		r.With(gate).Get("/verify", verify.New(log, service))
		r.Post("/refresh", refresh.New(log, validate, service))
		r.With(gate).Post("/logout", logout.New(log, validate, service))
		r.Post("/reset-password", reset_request.New(log, validate, service))
		r.Post("/reset-password-complete", reset_complete.New(log, validate, service))
	})

	return &Env{
		Router:    r,
		Service:   service,
		JWT:       manager,
		Registry:  registry,
		Repo:      repo,
		Publisher: publisher,
	}
}

// Seed регистрирует пользователя через сервисный слой.
func (e *Env) Seed(email, username, password string) (models.User, error) {
	return e.Service.Register(context.Background(), email, username, password, "")
}
