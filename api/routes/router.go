package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/suncrest-energy/solarquote-backend/api/controllers"
	"github.com/suncrest-energy/solarquote-backend/api/middleware"
	"github.com/suncrest-energy/solarquote-backend/internal/quotes"
	"github.com/suncrest-energy/solarquote-backend/internal/rebates"
	"github.com/suncrest-energy/solarquote-backend/pkg/config"
	"github.com/suncrest-energy/solarquote-backend/pkg/db"
	"github.com/suncrest-energy/solarquote-backend/pkg/logger"
	"github.com/suncrest-energy/solarquote-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger db.Pinger,
	redisClient *redis.Client,
	quoteService quotes.Service,
	rebateService rebates.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// a typed nil *redis.Client must not become a non-nil interface value
	var redisPinger redis.Pinger
	var idempotencyStore redis.IdempotencyStore
	var rateLimitStore redis.RateLimitStore
	if redisClient != nil {
		redisPinger = redisClient
		idempotencyStore = redisClient
		rateLimitStore = redisClient
	}

	estimateLimit := middleware.RateLimit(rateLimitStore, logg, middleware.RateLimitPolicy{
		Scope:  "quote_estimate",
		Limit:  30,
		Window: time.Minute,
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, redisPinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/quotes", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Post("/", controllers.QuoteCreate(quoteService, logg))
		r.With(estimateLimit).Post("/estimate", controllers.QuoteEstimate(quoteService, logg))
		r.Get("/", controllers.QuoteList(quoteService, logg))
		r.Get("/{quoteId}", controllers.QuoteGet(quoteService, logg))
		r.Post("/{quoteId}/recalculate", controllers.QuoteRecalculate(quoteService, logg))
		r.Post("/{quoteId}/finalize", controllers.QuoteFinalize(quoteService, logg))
		r.Post("/{quoteId}/accept", controllers.QuoteAccept(quoteService, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.AdminPing())
		r.Route("/v1/rebates", func(r chi.Router) {
			r.Post("/", controllers.AdminRebateCreate(rebateService, logg))
			r.Post("/validate", controllers.AdminRebateValidateFormula(rebateService, logg))
		})
	})

	return r
}
