package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	authhandlers "github.com/fairway-collective/moneygames/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/fairway-collective/moneygames/app/modules/auth/infrastructure/jwt"
	moneygamehandlers "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/handlers"
	"github.com/fairway-collective/moneygames/config"
)

const shutdownTimeout = 10 * time.Second

// NewHTTPRouter assembles the HTTP surface. Every route requires a bearer
// identity token; rate limiting applies per client IP.
func NewHTTPRouter(
	cfg *config.Config,
	logger *slog.Logger,
	provider authjwt.Provider,
	auth *authhandlers.AuthHandlers,
	games *moneygamehandlers.MoneyGameHandlers,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	limiter := authhandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RatePerSecond), cfg.HTTP.RateBurst)
	r.Use(authhandlers.RateLimitMiddleware(limiter))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		r.Use(authhandlers.RequireIdentity(provider))
		r.Mount("/auth", auth.Routes())
		r.Mount("/games", games.Routes())
	})

	return r
}
