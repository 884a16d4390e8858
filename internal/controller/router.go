package controller

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	appPayment "github.com/lucashq/payflow/internal/application/payment"
	appProvider "github.com/lucashq/payflow/internal/application/provider"
	"github.com/lucashq/payflow/internal/infrastructure/config"
	"github.com/lucashq/payflow/internal/infrastructure/observability"
	customMW "github.com/lucashq/payflow/internal/middleware"
)

type RouterDeps struct {
	Pool        *pgxpool.Pool
	RedisClient *redis.Client

	CreatePaymentUC *appPayment.CreatePaymentUseCase
	RetryPaymentUC  *appPayment.RetryPaymentUseCase
	ListPaymentsUC  *appPayment.ListPaymentsUseCase
	GetPaymentUC    *appPayment.GetPaymentUseCase
	ProvidersUC     *appProvider.ManageProvidersUseCase

	Metrics    *observability.Metrics
	CORSConfig config.CORSConfig
	JWTSecret  string
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	paymentH := NewPaymentController(deps.CreatePaymentUC, deps.RetryPaymentUC, deps.ListPaymentsUC, deps.GetPaymentUC)
	providerH := NewProviderController(deps.ProvidersUC)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(customMW.RequireAuth(deps.JWTSecret))

		// Payments
		r.Post("/payments", paymentH.CreatePayment)
		r.Get("/payments", paymentH.ListPayments)
		r.Get("/payments/{id}", paymentH.GetPayment)
		r.Post("/payments/{id}/retry", paymentH.RetryPayment)

		// Provider catalog (admin checks live in the use case)
		r.Get("/providers", providerH.ListProviders)
		r.Post("/providers", providerH.CreateProvider)
		r.Put("/providers/{id}", providerH.UpdateProvider)
		r.Delete("/providers/{id}", providerH.DeleteProvider)
	})

	return r
}
