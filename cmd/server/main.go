package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/makhzone/internal/adapter/http"
	"github.com/iho/makhzone/internal/adapter/http/handler"
	"github.com/iho/makhzone/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/makhzone/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/makhzone/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/makhzone/internal/adapter/repository/redis"
	"github.com/iho/makhzone/internal/infrastructure/config"
	"github.com/iho/makhzone/internal/infrastructure/logger"
	"github.com/iho/makhzone/internal/infrastructure/metrics"
	"github.com/iho/makhzone/internal/infrastructure/postgres"
	"github.com/iho/makhzone/internal/infrastructure/reconciler"
	"github.com/iho/makhzone/internal/infrastructure/redis"
	"github.com/iho/makhzone/internal/usecase"
)

const rateLimiterIdle = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err = run(ctx, cfg, log.Logger)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}

	log.Info().Msg("server stopped")
}

// repositories is the storage backend the use cases run against.
type repositories struct {
	txManager usecase.TransactionManager
	retrier   usecase.Retrier
	products  usecase.ProductRepository
	traders   usecase.TraderRepository
	sales     usecase.SaleRepository
	purchases usecase.PurchaseRepository
	payments  usecase.PaymentRepository
	entries   usecase.FinancialEntryRepository
	expenses  usecase.ExpenseRepository
	dashboard usecase.DashboardRepository
	checks    map[string]handler.Pinger
	close     func()
}

func newMemoryRepositories() *repositories {
	store := memoryRepo.NewStore()

	return &repositories{
		txManager: memoryRepo.NewTxManager(store),
		products:  memoryRepo.NewProductRepository(store),
		traders:   memoryRepo.NewTraderRepository(store),
		sales:     memoryRepo.NewSaleRepository(store),
		purchases: memoryRepo.NewPurchaseRepository(store),
		payments:  memoryRepo.NewPaymentRepository(store),
		entries:   memoryRepo.NewFinancialEntryRepository(store),
		expenses:  memoryRepo.NewExpenseRepository(store),
		dashboard: memoryRepo.NewDashboardRepository(store),
		checks:    map[string]handler.Pinger{},
		close:     func() {},
	}
}

func newPostgresRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) (*repositories, error) {
	if cfg.MigrationsEnabled {
		if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Msg("connected to postgres")

	retrier := postgresRepo.NewRetrier(
		postgresRepo.WithRetryLogger(logger),
		postgresRepo.WithRetryMetrics(m),
	)

	return &repositories{
		txManager: postgresRepo.NewTxManager(pool),
		retrier:   retrier,
		products:  postgresRepo.NewProductRepository(pool),
		traders:   postgresRepo.NewTraderRepository(pool),
		sales:     postgresRepo.NewSaleRepository(pool),
		purchases: postgresRepo.NewPurchaseRepository(pool),
		payments:  postgresRepo.NewPaymentRepository(pool),
		entries:   postgresRepo.NewFinancialEntryRepository(pool),
		expenses:  postgresRepo.NewExpenseRepository(pool),
		dashboard: postgresRepo.NewDashboardRepository(pool),
		checks:    map[string]handler.Pinger{"postgres": pool},
		close:     pool.Close,
	}, nil
}

// app is the wired service, ready to serve.
type app struct {
	handler     http.Handler
	worker      *reconciler.Worker
	rateLimiter *middleware.RateLimiter
	close       func()
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	m := metrics.NewWithRegisterer(reg)

	var (
		repos *repositories
		err   error
	)

	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		repos = newMemoryRepositories()
		logger.Warn().Msg("using in-memory storage; data is lost on restart")
	default:
		repos, err = newPostgresRepositories(ctx, cfg, logger, m)
		if err != nil {
			return nil, err
		}
	}

	closers := []func(){repos.close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// Left as untyped nil when redis is off so the use cases skip caching.
	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
	)

	if cfg.RedisEnabled {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info().Msg("connected to redis")

		closers = append(closers, func() { _ = client.Close() })
		cache = redisRepo.NewCache(client)
		idempotencyStore = redisRepo.NewIdempotencyStore(client)
		repos.checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	idGen := postgresRepo.NewULIDGenerator()

	saleUC := usecase.NewSaleUseCase(
		repos.txManager, repos.retrier, repos.products, repos.traders,
		repos.sales, repos.payments, repos.entries, idGen, cache, m,
	).WithTransactionTimeout(cfg.TransactionTimeout)

	purchaseUC := usecase.NewPurchaseUseCase(
		repos.txManager, repos.retrier, repos.products, repos.purchases, idGen, m,
	).WithTransactionTimeout(cfg.TransactionTimeout)

	paymentUC := usecase.NewPaymentUseCase(
		repos.txManager, repos.retrier, repos.traders, repos.sales,
		repos.payments, repos.entries, idGen, cache, m,
	).WithTransactionTimeout(cfg.TransactionTimeout)

	traderUC := usecase.NewTraderUseCase(
		repos.txManager, repos.traders, repos.sales, repos.payments,
		repos.entries, idGen, cache, cfg.BalanceCacheTTL, m,
	).WithTransactionTimeout(cfg.TransactionTimeout)

	productUC := usecase.NewProductUseCase(repos.products, idGen)
	expenseUC := usecase.NewExpenseUseCase(repos.expenses, idGen)
	dashboardUC := usecase.NewDashboardUseCase(repos.dashboard)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)
	}

	// HTTP middleware series live on the default registry.
	metricsHandler := promhttp.HandlerFor(
		prometheus.Gatherers{reg, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{},
	)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		SaleHandler:      handler.NewSaleHandler(saleUC),
		PurchaseHandler:  handler.NewPurchaseHandler(purchaseUC),
		PaymentHandler:   handler.NewPaymentHandler(paymentUC),
		TraderHandler:    handler.NewTraderHandler(traderUC),
		ProductHandler:   handler.NewProductHandler(productUC),
		ExpenseHandler:   handler.NewExpenseHandler(expenseUC),
		DashboardHandler: handler.NewDashboardHandler(dashboardUC),
		HealthHandler:    handler.NewHealthHandler(repos.checks),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		MetricsHandler:   metricsHandler,
		Logger:           logger,
	})

	var worker *reconciler.Worker
	if cfg.ReconcileInterval > 0 {
		worker = reconciler.NewWorker(reconciler.Config{
			Reconciler: traderUC,
			Logger:     logger,
			Interval:   cfg.ReconcileInterval,
		})
	}

	return &app{
		handler:     router,
		worker:      worker,
		rateLimiter: rateLimiter,
		close:       closeAll,
	}, nil
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	a, err := newApp(ctx, cfg, logger, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if a.worker != nil {
		g.Go(func() error {
			if err := a.worker.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if a.rateLimiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()

			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					a.rateLimiter.CleanupLimiters(rateLimiterIdle)
				}
			}
		})
	}

	return g.Wait()
}
