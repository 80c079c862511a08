package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/vendorx/marketplace/internal/api/http"
	"github.com/vendorx/marketplace/internal/api/http/handlers"
	"github.com/vendorx/marketplace/internal/auth"
	"github.com/vendorx/marketplace/internal/config"
	"github.com/vendorx/marketplace/internal/events"
	"github.com/vendorx/marketplace/internal/observability"
	"github.com/vendorx/marketplace/internal/persistence"
	"github.com/vendorx/marketplace/internal/repository"
	"github.com/vendorx/marketplace/internal/service"
	"github.com/vendorx/marketplace/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.IsProduction())
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.InsecureSecret {
		logger.Warn("AUTH_JWT_SECRET not set; signing tokens with the insecure development secret")
	}
	if cfg.Auth.DemoLoginEnabled {
		logger.Warn("demo login enabled", zap.String("email", cfg.Auth.DemoEmail))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg := persistence.NewPostgres(cfg.Postgres, logger)
	defer pg.Close()

	if err := migrateSchema(ctx, cfg.Postgres, pg, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisCtx, redisCancel := context.WithTimeout(ctx, 2*time.Second)
	redis := persistence.NewRedis(redisCtx, cfg.Redis, logger)
	redisCancel()
	defer redis.Close()

	var userRepo repository.UserRepository
	switch cfg.Auth.CredentialStore {
	case config.StoreRedis:
		userRepo = repository.NewRedisUserRepository(redis.Client)
	default:
		userRepo = repository.NewUserRepository(pg)
	}
	logger.Info("credential store selected", zap.String("store", cfg.Auth.CredentialStore))

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}
	sessions := auth.NewSessions(tokens, cfg.Auth.CookieSecure)
	guard := auth.NewGuard(sessions, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := worker.NewNotificationWorker(service.NewNotificationService(logger, cfg.Notification), logger, 256)
	notifications.Attach(dispatcher)
	notifications.Start(ctx)

	productRepo := repository.NewProductRepository(pg)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Users:    userRepo,
		Attempts: repository.NewRedisLoginAttemptStore(redis.Client),
		Tokens:   tokens,
		Metrics:  metrics,
		Logger:   logger,
	})
	productService := service.NewProductService(productRepo, userRepo)
	cartService := service.NewCartService(repository.NewCartRepository(pg), productRepo, userRepo)
	buyRequestService := service.NewBuyRequestService(repository.NewBuyRequestRepository(pg), productRepo, userRepo, dispatcher, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:        handlers.NewAuthHandler(authService, sessions),
		Products:    handlers.NewProductsHandler(productService),
		Cart:        handlers.NewCartHandler(cartService),
		BuyRequests: handlers.NewBuyRequestsHandler(buyRequestService),
		Pages:       handlers.NewPagesHandler(productService, cartService, buyRequestService),
		Guard:       guard,
		Gatherer:    registry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	notifications.Stop()
}

// migrateSchema applies pending migrations when a database is configured.
// Without a DSN there is nothing to migrate and postgres routes report 500.
func migrateSchema(ctx context.Context, cfg config.PostgresConfig, pg *persistence.Postgres, logger *zap.Logger) error {
	if !cfg.RunMigrations || cfg.DSN == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return persistence.RunMigrations(ctx, pg, cfg.MigrationsDir, logger)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
