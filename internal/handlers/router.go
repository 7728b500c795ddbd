package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	mw "smartjournal/internal/middleware"
	"smartjournal/internal/services"
	"smartjournal/internal/store"
)

type RouterDeps struct {
	DB        *sqlx.DB
	Store     store.Store
	Journal   *services.JournalService
	JWTSecret []byte
	TokenTTL  time.Duration
	Logger    *zap.Logger
}

// NewRouter mounts the public auth routes and the authenticated journal API
// under /api.
func NewRouter(d RouterDeps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.ZapRequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := NewAuthHandler(d.Store.Users(), d.JWTSecret, d.TokenTTL, logger)
	journalHandler := NewJournalHandler(d.Journal, logger)
	progressHandler := NewProgressHandler(d.Journal, logger)
	userHandler := NewUserHandler(d.Store.Users(), logger)
	authMW := mw.NewAuthMiddleware(d.JWTSecret)

	if d.DB != nil {
		r.Get("/healthz", NewHealthHandler(d.DB).Healthz)
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Post("/journal", journalHandler.Submit)
			pr.Get("/journal", journalHandler.List)
			pr.Get("/journal/week", journalHandler.Week)
			pr.Get("/journal/{date}", journalHandler.Get)
			pr.Get("/progress", progressHandler.GetProgress)
			pr.Get("/achievements", progressHandler.GetAchievements)
			pr.Get("/quests", progressHandler.GetQuests)
			pr.Get("/me", userHandler.GetMe)
			pr.Put("/me", userHandler.UpdateMe)
		})
	})
	return r
}
