package app

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/streakly/internal/auth"
	"example.com/streakly/internal/config"
	"example.com/streakly/internal/feedback"
	httphandlers "example.com/streakly/internal/handler/http"
	"example.com/streakly/internal/middleware"
	"example.com/streakly/internal/repository"
	"example.com/streakly/internal/storage/memory"
	sqlstore "example.com/streakly/internal/storage/sql"
	"example.com/streakly/internal/usecase"
)

// Store is the union of both repository contracts; both storage backends
// satisfy it.
type Store interface {
	repository.TaskRepository
	repository.SettingsRepository
}

type App struct {
	Config   config.Config
	Router   http.Handler
	Registry *usecase.Registry
	Store    Store
}

func New(cfg config.Config, log *logrus.Logger) (*App, error) {
	var store Store
	switch cfg.Storage {
	case "sql":
		s, err := sqlstore.New(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		store = memory.New()
	}

	fb := feedback.New(
		rand.New(rand.NewSource(time.Now().UnixNano())),
		feedback.WithEmojis(cfg.Feedback.Emojis),
		feedback.WithPhrases(cfg.Feedback.Phrases),
	)
	registry := usecase.NewRegistry(store, store, fb, log)
	authClient := auth.NewClient(cfg.AuthBaseURL, cfg.AuthAPIKey)

	mux := http.NewServeMux()
	mux.Handle("/metrics", middleware.MetricsHandler())
	mux.Handle("/", httphandlers.New(registry, authClient))

	var router http.Handler = mux
	router = middleware.Metrics(router)
	router = middleware.Logging(log)(router)

	return &App{
		Config:   cfg,
		Router:   router,
		Registry: registry,
		Store:    store,
	}, nil
}
