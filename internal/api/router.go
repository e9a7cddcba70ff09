package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/campus-registration/internal/api/handlers"
	"github.com/baharkarakas/campus-registration/internal/api/httpx"
	"github.com/baharkarakas/campus-registration/internal/config"
	"github.com/baharkarakas/campus-registration/internal/metrics"
	"github.com/baharkarakas/campus-registration/internal/middleware"
	"github.com/baharkarakas/campus-registration/internal/models"
)

type RouterDeps struct {
	Cfg    config.Config
	Users  handlers.UserService
	Tokens interface {
		handlers.TokenIssuer
		middleware.TokenParser
	}
	Audit handlers.Auditor
	Log   *slog.Logger
}

// variants maps each role onto its path segment.
var variants = []struct {
	role models.Role
	path string
}{
	{models.RoleStudent, "/students"},
	{models.RoleFaculty, "/faculty"},
}

const apiPrefix = "/api/v1"

// PublicPaths stay reachable without a token even when the guard fails closed.
func PublicPaths() []string {
	paths := []string{"/health", "/metrics"}
	for _, v := range variants {
		paths = append(paths, apiPrefix+v.path, apiPrefix+v.path+"/login")
	}
	return paths
}

func NewRouter(d RouterDeps) http.Handler {
	guard := middleware.NewTokenGuard(d.Tokens, middleware.GuardConfig{
		Header:            d.Cfg.JWT.Header,
		Prefix:            d.Cfg.JWT.Prefix,
		RequireValidToken: d.Cfg.JWT.RequireValid,
		PublicPaths:       PublicPaths(),
	}, d.Log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, middleware.Recover, middleware.HTTPMetrics)
	r.Use(middleware.RateLimit(d.Cfg.RateRPS, d.Cfg.RateBurst))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{d.Cfg.JWT.Header},
	}))
	r.Use(guard.Handler)

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "UP"})
	})
	r.Handle("/metrics", metrics.Handler())

	th := handlers.TokenHeader{Name: d.Cfg.JWT.Header, Prefix: d.Cfg.JWT.Prefix}
	r.Route(apiPrefix, func(r chi.Router) {
		for _, v := range variants {
			h := handlers.NewUsersHandler(v.role, d.Users, d.Tokens, d.Audit, th, d.Log)
			r.Route(v.path, func(r chi.Router) {
				r.Post("/", h.Register)
				r.Post("/login", h.Login)
				r.With(middleware.RequireRole(v.role)).Get("/me", h.Me)
			})
		}
	})

	return r
}
