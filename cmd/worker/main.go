package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	appPayment "github.com/lucashq/payflow/internal/application/payment"
	"github.com/lucashq/payflow/internal/bootstrap"
	"github.com/lucashq/payflow/internal/infrastructure/gateway"
	infraRedis "github.com/lucashq/payflow/internal/infrastructure/redis"
	"github.com/lucashq/payflow/internal/repository/postgres"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "payflow-worker", "payflow_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories & infrastructure ---
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	providerRepo := postgres.NewProviderRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	queue := infraRedis.NewJobQueue(app.Redis)
	notifier := infraRedis.NewNotifier(app.Redis)
	providerGateway := gateway.NewHTTPGateway(app.Config.Payment.GatewayTimeout)

	// --- Use cases ---
	processUC := appPayment.NewProcessPaymentUseCase(
		paymentRepo, providerRepo, providerGateway, txManager, notifier,
		app.Config.Payment.MaxAttempts, app.Logger)

	scanner := appPayment.NewScanner(paymentRepo, queue, appPayment.ScannerConfig{
		MaxAttempts:       app.Config.Payment.MaxAttempts,
		BatchSize:         app.Config.Scanner.BatchSize,
		ProcessingTimeout: app.Config.Scanner.ProcessingTimeout,
		PendingGrace:      app.Config.Scanner.PendingGrace,
	}, app.Logger)

	// --- Job consumer ---
	workerCfg := app.Config.Worker
	consumer := infraRedis.NewJobConsumer(
		app.Redis,
		workerCfg.ConsumerGroup,
		app.Config.InstanceID,
		workerCfg.BatchSize,
		workerCfg.BlockDuration,
	)
	if err := consumer.CreateGroup(ctx); err != nil {
		app.Logger.Error().Err(err).Msg("Failed to create consumer group (may already exist)")
	}

	app.Logger.Info().
		Str("stream", infraRedis.JobStream).
		Str("group", workerCfg.ConsumerGroup).
		Str("consumer", app.Config.InstanceID).
		Msg("Worker started, listening for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Payment processor (reads jobs from the stream).
	g.Go(func() error {
		return runProcessor(gCtx, app, consumer, processUC)
	})

	// 2. Failed-payment scanner on a fixed cadence.
	g.Go(func() error {
		return runScanner(gCtx, app.Logger, scanner, app.Config.Scanner.Interval, app)
	})

	// 3. Wait for shutdown signal.
	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down worker...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}

func runProcessor(
	ctx context.Context,
	app *bootstrap.App,
	consumer *infraRedis.JobConsumer,
	processUC *appPayment.ProcessPaymentUseCase,
) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		jobs, err := consumer.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			app.Logger.Error().Err(err).Msg("Failed to read from stream")
			time.Sleep(1 * time.Second)
			continue
		}

		for _, job := range jobs {
			// Best-effort dedup across workers; the row lock inside the
			// processing transaction is what actually serializes attempts.
			lock := infraRedis.NewPaymentLock(app.Redis, job.PaymentID, app.Config.Payment.LockTTL)
			acquired, err := lock.Acquire(ctx)
			if err != nil || !acquired {
				app.Logger.Warn().Str("payment_id", job.PaymentID.String()).Msg("Could not acquire lock, leaving for redelivery")
				continue
			}

			start := time.Now()
			if err := processUC.Execute(ctx, job.PaymentID); err != nil {
				// Infrastructure failure: leave the message pending so the
				// stream redelivers it.
				app.Logger.Error().Err(err).Str("payment_id", job.PaymentID.String()).Msg("Failed to process payment")
				app.Metrics.PaymentsProcessed.WithLabelValues("error").Inc()
				lock.Release(ctx)
				continue
			}
			app.Metrics.PaymentAttempts.Inc()
			app.Metrics.ProcessingDuration.WithLabelValues("processed").Observe(time.Since(start).Seconds())
			app.Metrics.PaymentsProcessed.WithLabelValues("processed").Inc()

			lock.Release(ctx)
			consumer.Ack(ctx, job.MessageID)
		}
	}
}

func runScanner(
	ctx context.Context,
	logger zerolog.Logger,
	scanner *appPayment.Scanner,
	interval time.Duration,
	app *bootstrap.App,
) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		n, err := scanner.Sweep(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Scanner sweep failed")
			app.Metrics.ScannerSweepErrs.Inc()
			continue
		}
		if n > 0 {
			app.Metrics.ScannerRequeued.Add(float64(n))
			logger.Info().Int("enqueued", n).Msg("Scanner re-queued payments")
		}
	}
}
