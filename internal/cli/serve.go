package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clikenova/storefront/internal/api"
	"github.com/clikenova/storefront/internal/api/handler"
	"github.com/clikenova/storefront/internal/api/metrics"
	"github.com/clikenova/storefront/internal/core/ports"
	"github.com/clikenova/storefront/internal/core/service"
	"github.com/clikenova/storefront/internal/core/session"
	"github.com/clikenova/storefront/internal/infrastructure/backend"
	"github.com/clikenova/storefront/internal/infrastructure/coupon"
	mongostore "github.com/clikenova/storefront/internal/infrastructure/db/mongo"
	redisstore "github.com/clikenova/storefront/internal/infrastructure/db/redis"
	"github.com/clikenova/storefront/internal/infrastructure/queue"
	"github.com/clikenova/storefront/internal/pkg/config"
	"github.com/clikenova/storefront/pkg/logger"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	ShutdownTimeout time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the storefront HTTP API.

The server connects to MongoDB and Redis, creates the collection indexes,
follows credential changes published by other replicas and serves until it
receives SIGINT or SIGTERM. Queued commission events are drained before exit.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", 15*time.Second, "grace period for in-flight requests and queued events")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log := initLogger(cfg)

	db, disconnect, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer disconnect()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	identities := mongostore.NewIdentityRepository(db)
	credentialRepo := mongostore.NewCredentialRepository(db)
	notificationRepo := mongostore.NewNotificationRepository(db)
	products := mongostore.NewProductRepository(db)
	courses := mongostore.NewCourseRepository(db)
	purchases := mongostore.NewPurchaseRepository(db)
	couponRepo := mongostore.NewCouponRepository(db)
	affiliates := mongostore.NewAffiliateRepository(db)
	withdrawals := mongostore.NewWithdrawalRepository(db)

	if err := mongostore.EnsureIndexes(ctx,
		identities, credentialRepo, notificationRepo, products, courses, purchases, affiliates, withdrawals,
	); err != nil {
		return err
	}

	authEvents := redisstore.NewAuthEventBus(rdb, logger.Component("auth_events"))
	credentials := backend.NewCredentialProvider(credentialRepo, authEvents, 0, logger.Component("credentials"))

	registry := session.NewRegistry(
		redisstore.NewSessionStore(rdb), identities, authEvents, cfg.SessionTTL, logger.Component("sessions"),
	)
	registry.SetAnonymousLimits(cfg.AnonymousSessionTTL, cfg.AnonymousSessionMax)
	if err := registry.Start(ctx); err != nil {
		return err
	}
	defer registry.Close()

	notifications := service.NewNotificationService(notificationRepo, logger.Component("notifications"))
	affiliateSvc := service.NewAffiliateService(affiliates, products, notifications, service.AffiliateConfig{
		BaseURL:           cfg.Affiliates.ReferralBaseURL,
		CommissionPercent: cfg.Affiliates.CommissionPercent,
	}, logger.Component("affiliates"))

	// Workers outlive the signal so that Shutdown can drain queued commissions.
	dispatcher := queue.NewDispatcher(cfg.Affiliates.DispatchWorkers, affiliateSvc, logger.Component("commissions"))
	dispatcher.Start(context.WithoutCancel(ctx))
	metrics.RegisterCommissionDrops(dispatcher.Dropped)

	producerSvc := service.NewProducerService(products, cfg.Checkout.Currency, logger.Component("producers"))
	svc := api.Services{
		Auth: service.NewAuthService(credentials, identities, registry, cfg.JWTSecret, cfg.TokenTTL,
			logger.Component("auth")),
		Notifications: notifications,
		Catalog:       service.NewCatalogService(products, courses, purchases, logger.Component("catalog")),
		Checkout: service.NewCheckoutService(
			products, purchases, couponValidator(cfg, couponRepo),
			redisstore.NewIdempotencyStore(rdb, cfg.Checkout.IdempotencyTTL),
			dispatcher, notifications,
			service.CheckoutConfig{TaxRate: cfg.Checkout.TaxRate, Currency: cfg.Checkout.Currency},
			logger.Component("checkout"),
		),
		Producer:  producerSvc,
		Affiliate: affiliateSvc,
		Withdrawals: service.NewWithdrawalService(withdrawals, affiliateSvc, producerSvc, notifications,
			redisstore.NewLocker(rdb, 0, logger.Component("locks")),
			service.WithdrawalConfig{FeePercent: cfg.Withdrawals.FeePercent, Currency: cfg.Checkout.Currency},
			logger.Component("withdrawals")),
		Admin: service.NewAdminService(identities, products, purchases, withdrawals, credentials,
			logger.Component("admin")),
	}

	e := api.NewRouter(api.RouterConfig{
		JWTSecret: cfg.JWTSecret,
		Currency:  cfg.Checkout.Currency,
		Sessions:  registry,
		Ready: map[string]handler.PingFunc{
			"mongodb": handler.MongoPing(db),
			"redis":   handler.RedisPing(rdb),
		},
		Log: logger.Component("http"),
	}, svc)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := e.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("commission queue: %w", err))
	}
	log.Info().Msg("server stopped")
	return errors.Join(errs...)
}

// couponValidator selects the coupon source configured by COUPON_SOURCE.
func couponValidator(cfg *config.Config, repo ports.CouponRepository) ports.CouponValidator {
	if cfg.Coupons.Source == "mongo" {
		return coupon.NewStoreValidator(repo)
	}
	return coupon.NewStaticValidator(cfg.Coupons.StaticCode, cfg.Coupons.StaticPercent)
}
