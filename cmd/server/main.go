// @title           Storefront API
// @version         1.0
// @description     Catalog, checkout, account and back-office endpoints of the boutique.
// @BasePath        /
// @securityDefinitions.apikey  SessionCookie
// @in                          header
// @name                        session
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/atelier-boutique/storefront/internal/api"
	"github.com/atelier-boutique/storefront/internal/api/handler"
	"github.com/atelier-boutique/storefront/internal/core/service"
	"github.com/atelier-boutique/storefront/internal/infrastructure/config"
	"github.com/atelier-boutique/storefront/internal/infrastructure/db/mongo"
	"github.com/atelier-boutique/storefront/internal/infrastructure/db/postgres"
	redisstore "github.com/atelier-boutique/storefront/internal/infrastructure/db/redis"
	"github.com/atelier-boutique/storefront/internal/infrastructure/mail"
	"github.com/atelier-boutique/storefront/internal/infrastructure/payment"
	"github.com/atelier-boutique/storefront/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log := logger.FromContext(ctx)
		if log.GetLevel() == zerolog.Disabled {
			// Config failed before the logger was initialised.
			log = zerolog.New(os.Stderr).With().Timestamp().Logger()
		}
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "storefront",
		Env:     cfg.Env,
	})

	pg, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxOpenConns: cfg.Postgres.MaxOpenConns})
	if err != nil {
		return err
	}
	defer pg.Close()
	if cfg.Postgres.RunMigrations {
		if err := postgres.Migrate(pg); err != nil {
			return err
		}
		log.Info().Msg("postgres migrations applied")
	}

	mongoClient, mdb, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	deps, err := buildDependencies(ctx, cfg, log, pg, mdb, rdb)
	if err != nil {
		return err
	}

	e := api.NewRouter(deps)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// buildDependencies wires repositories and adapters into the services the
// HTTP layer consumes.
func buildDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger, pg *sqlx.DB, mdb *mongodriver.Database, rdb *redis.Client) (api.Dependencies, error) {
	users := postgres.NewUserRepository(pg)
	notificationRepo := postgres.NewNotificationRepository(pg)
	products := postgres.NewProductRepository(pg)
	orders := postgres.NewOrderRepository(pg)
	addresses := postgres.NewAddressRepository(pg)

	analyticsRepo := mongo.NewAnalyticsRepository(mdb)
	if err := analyticsRepo.EnsureIndexes(ctx); err != nil {
		return api.Dependencies{}, err
	}

	sessions := redisstore.NewSessionStore(rdb)
	cache := redisstore.NewCatalogCache(rdb, cfg.Catalog.CacheTTL)

	payments := payment.NewStripe(payment.Config{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
	})
	mailer := mail.NewResend(cfg.Mail.ResendAPIKey, cfg.Mail.From)

	tokens := service.NewTokenManager(cfg.Auth.JWTSecret)
	notifications := service.NewNotificationService(notificationRepo, log)
	inventory := service.NewInventoryService(products, cache, notifications, cfg.Catalog.LowStockThreshold, log)
	mailService := service.NewMailService(mailer, cfg.Mail.AdminEmail, log)
	orderService := service.NewOrderService(orders, log)

	return api.Dependencies{
		Log:          log,
		SecureCookie: cfg.Auth.CookieSecure,

		Resolver:      service.NewSessionResolver(tokens, sessions, users, log),
		Auth:          service.NewAuthService(users, sessions, tokens, cfg.Auth.SessionTTL, log),
		Accounts:      service.NewAccountService(users, orders, addresses, log),
		Notifications: notifications,
		Catalog:       service.NewCatalogService(products, cache, log),
		Inventory:     inventory,
		Checkout: service.NewCheckoutService(products, orders, users, payments, inventory, notifications,
			mailService, cfg.Stripe.Currency, log),
		Orders:       orderService,
		Analytics:    service.NewAnalyticsService(analyticsRepo, log),
		Revalidation: service.NewRevalidationService(cache, cfg.Catalog.RevalidateSecret, log),
		Mail:         mailService,
		Dashboard:    service.NewDashboardService(notificationRepo, products, orders, analyticsRepo, cfg.Catalog.LowStockThreshold, log),

		Readiness: handler.NewHealthDependenciesHandler(pg, mdb, rdb),
	}, nil
}
