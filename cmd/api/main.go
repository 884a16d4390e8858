package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appPayment "github.com/lucashq/payflow/internal/application/payment"
	appProvider "github.com/lucashq/payflow/internal/application/provider"
	"github.com/lucashq/payflow/internal/bootstrap"
	"github.com/lucashq/payflow/internal/controller"
	infraRedis "github.com/lucashq/payflow/internal/infrastructure/redis"
	"github.com/lucashq/payflow/internal/repository/postgres"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "payflow-api", "payflow")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	providerRepo := postgres.NewProviderRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	queue := infraRedis.NewJobQueue(app.Redis)

	// --- Application services ---
	createPaymentUC := appPayment.NewCreatePaymentUseCase(
		paymentRepo, providerRepo, txManager, queue, app.Config.Payment.MaxAmountCents)
	retryPaymentUC := appPayment.NewRetryPaymentUseCase(paymentRepo, queue, app.Config.Payment.MaxAttempts)
	listPaymentsUC := appPayment.NewListPaymentsUseCase(paymentRepo)
	getPaymentUC := appPayment.NewGetPaymentUseCase(paymentRepo)
	providersUC := appProvider.NewManageProvidersUseCase(providerRepo)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:            app.Pool,
		RedisClient:     app.Redis,
		CreatePaymentUC: createPaymentUC,
		RetryPaymentUC:  retryPaymentUC,
		ListPaymentsUC:  listPaymentsUC,
		GetPaymentUC:    getPaymentUC,
		ProvidersUC:     providersUC,
		Metrics:         app.Metrics,
		CORSConfig:      app.Config.Server.CORS,
		JWTSecret:       app.Config.Auth.JWTSecret,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
