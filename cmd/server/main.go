package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ricirt/breed-query-worker/internal/api"
	"github.com/ricirt/breed-query-worker/internal/awsclient"
	"github.com/ricirt/breed-query-worker/internal/config"
	"github.com/ricirt/breed-query-worker/internal/db"
	"github.com/ricirt/breed-query-worker/internal/metrics"
	"github.com/ricirt/breed-query-worker/internal/notification"
	"github.com/ricirt/breed-query-worker/internal/provider"
	"github.com/ricirt/breed-query-worker/internal/queue"
	"github.com/ricirt/breed-query-worker/internal/ratelimiter"
	"github.com/ricirt/breed-query-worker/internal/repository"
	"github.com/ricirt/breed-query-worker/internal/service"
	"github.com/ricirt/breed-query-worker/internal/worker"
)

// transport is what main needs from a queue driver.
type transport interface {
	queue.Transport
	queue.DepthReporter
}

func main() {
	bootLogger, _ := zap.NewProduction()

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		bootLogger.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		bootLogger.Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	q, sender, err := buildTransports(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build transports", zap.Error(err))
	}
	sender = provider.NewRateLimitedSender(sender, ratelimiter.New(cfg.Notify.RateLimit))

	composer, err := notification.NewComposer()
	if err != nil {
		logger.Fatal("failed to parse notification templates", zap.Error(err))
	}

	repo := repository.NewPgBreedRepository(pool)
	dispatcher := service.NewQueryDispatcher(repo)
	intake := service.NewIntakeService(q, logger)

	// ---- background loops ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	hooks := m.WorkerHooks()
	runners := []worker.Runner{
		worker.NewDepthSampler(q, cfg.Consumer.DepthInterval, logger.Named("depth"), hooks),
	}
	if cfg.Consumer.Enabled {
		processor := worker.NewProcessor(dispatcher, composer, sender, logger.Named("processor"), hooks)
		runners = append(runners, worker.NewConsumer(q, processor, worker.ConsumerConfig{
			PollInterval:   cfg.Consumer.PollInterval,
			BatchSize:      cfg.Consumer.BatchSize,
			WaitTime:       cfg.Consumer.WaitTime,
			MaxConcurrency: cfg.Consumer.MaxConcurrency,
		}, logger.Named("consumer"), hooks))
	} else {
		logger.Info("consumer disabled; serving intake only")
	}
	loops := worker.NewPool(runners...)
	loops.Start(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(intake, q, pool, reg, m.OnEnqueued, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Interrupt the long poll; no new cycle starts.
	cancelWorkers()

	// 3. Wait for the current cycle's jobs to finish and their messages to
	// be deleted.
	loops.Wait()

	logger.Info("server stopped cleanly")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// buildTransports selects the queue driver and the email sender.
func buildTransports(ctx context.Context, cfg *config.Config, logger *zap.Logger) (transport, provider.Sender, error) {
	needAWS := cfg.Queue.Driver == config.QueueDriverSQS || cfg.Notify.Provider == config.NotifierSES

	var awsCfg aws.Config
	if needAWS {
		c, err := awsclient.Load(ctx, cfg.AWS)
		if err != nil {
			return nil, nil, err
		}
		awsCfg = c
	}

	var q transport
	switch cfg.Queue.Driver {
	case config.QueueDriverSQS:
		q = queue.NewSQSTransport(awsclient.NewSQS(awsCfg), cfg.Queue.URL, cfg.Queue.VisibilityTimeout)
	case config.QueueDriverMemory:
		logger.Warn("using in-memory queue; messages do not survive a restart")
		q = queue.NewMemoryQueue(cfg.Queue.VisibilityTimeout, queue.WithCapacity(cfg.Queue.MemoryCapacity))
	default:
		return nil, nil, fmt.Errorf("unknown queue driver %q", cfg.Queue.Driver)
	}

	var sender provider.Sender
	switch cfg.Notify.Provider {
	case config.NotifierSES:
		sender = provider.NewSESSender(awsclient.NewSES(awsCfg), cfg.Notify.From())
	case config.NotifierMailgun:
		sender = provider.NewMailgunSender(
			cfg.Notify.MailgunDomain,
			cfg.Notify.MailgunAPIKey,
			cfg.Notify.MailgunAPIBase,
			cfg.Notify.From(),
			cfg.Notify.Timeout,
		)
	case config.NotifierLog:
		sender = provider.NewLogSender(logger.Named("email"))
	default:
		return nil, nil, fmt.Errorf("unknown notification provider %q", cfg.Notify.Provider)
	}

	logger.Info("transports ready",
		zap.String("queue_driver", cfg.Queue.Driver),
		zap.String("notify_provider", cfg.Notify.Provider),
		zap.Bool("aws", needAWS),
	)
	return q, sender, nil
}
