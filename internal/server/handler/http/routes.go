package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/GophTweeter/internal/middleware"
	"github.com/atinyakov/GophTweeter/internal/session"
)

// NewRouter constructs the HTTP handler serving the GophTweeter pages.
//
// Routes:
//
//	GET  /              → pages.Home
//	GET  /healthz       → pages.Health
//	GET  /register      → auth.RegisterForm
//	POST /register      → auth.Register
//	GET  /login         → auth.LoginForm
//	POST /login         → auth.Login
//	POST /logout        → auth.Logout        (login required)
//	GET  /tweets        → tweets.List        (login required)
//	POST /tweets        → tweets.Create      (login required)
//	POST /tweets/{id}   → tweets.Delete      (login required)
//
// Middleware chain (applied in order):
//  1. RequestID
//  2. Sessions(store)          resolves the session cookie
//  3. WithRequestLogging(log)
//  4. CSRF(allowedOrigins)     rejects cross-origin state changes
//  5. Recoverer
func NewRouter(
	pages *PageHandler,
	auth *AuthHandler,
	tweets *TweetHandler,
	store session.Store,
	allowedOrigins []string,
	log *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.Sessions(store, log))
	r.Use(middleware.WithRequestLogging(log))
	r.Use(middleware.CSRF(allowedOrigins))
	r.Use(chiMiddleware.Recoverer)

	r.Get("/", pages.Home)
	r.Get("/healthz", pages.Health)

	r.Get("/register", auth.RegisterForm)
	r.Post("/register", auth.Register)
	r.Get("/login", auth.LoginForm)
	r.Post("/login", auth.Login)

	r.With(middleware.RequireUser("/login", "Please login first")).Post("/logout", auth.Logout)

	r.Route("/tweets", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser("/", "Please login first!"))
			r.Get("/", tweets.List)
			r.Post("/", tweets.Create)
		})
		r.With(middleware.RequireUser("/login", "Please login first")).
			Post("/{id:[0-9]+}", tweets.Delete)
	})

	return r
}
