// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"fideliza/internal/config"
	"fideliza/internal/domain/ports/adapter"
	"fideliza/internal/infra/adapters/mail"
	"fideliza/internal/infra/adapters/payment"
	"fideliza/internal/infra/api"
	"fideliza/internal/infra/api/apiv1"
	pg "fideliza/internal/infra/db/postgres"
	"fideliza/internal/infra/i18n"
	"fideliza/internal/infra/logging"
	"fideliza/internal/infra/metrics"
	red "fideliza/internal/infra/redis"
	"fideliza/internal/infra/sched"
	"fideliza/internal/infra/worker"
	"fideliza/internal/usecase"
)

// set with -ldflags at build time
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("config")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Postgres ----
	if cfg.Database.AutoMigrate {
		if err := pg.RunMigrations(cfg.Database.URL, logger); err != nil {
			logger.Fatal().Err(err).Msg("migrations")
		}
	}
	pool, err := pg.NewPgxPool(ctx, pg.PoolConfig{
		URL:             cfg.Database.URL,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	placeRepo := pg.NewPlaceRepo(pool)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPlanRepo(pool), redisClient, cfg.Redis.TTL, logger)
	subRepo := pg.NewSubscriptionRepo(pool)
	codeRepo := pg.NewSubscriptionCodeRepo(pool)
	validationRepo := pg.NewValidationRepo(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	tm := pg.NewTxManager(pool)
	advisory := pg.NewAdvisoryLocker(pool)

	// ---- Adapters ----
	gateway := newGateway(cfg, logger)

	mailPool := worker.NewPool(cfg.Mail.Workers, cfg.Mail.Queue, logger)
	mailPool.Start(ctx)
	defer mailPool.Stop()
	mailer := worker.NewMailDispatcher(mailPool, newMailer(ctx, cfg, logger), logger)

	messages, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Mail.Lang)
	if err != nil {
		logger.Fatal().Err(err).Str("lang", cfg.Mail.Lang).Msg("mail catalog")
	}

	// ---- Use cases ----
	codeUC := usecase.NewCodeUseCase(codeRepo, subRepo, planRepo, placeRepo, userRepo, tm, usecase.CodeOptions{
		Length:          cfg.Codes.Length,
		MaxLength:       cfg.Codes.MaxLength,
		MaxAttempts:     cfg.Codes.MaxAttempts,
		RejectExhausted: cfg.Redemption.RejectExhausted,
	}, logging.Component(logger, "CodeUC"))
	validationUC := usecase.NewValidationUseCase(validationRepo, placeRepo, nil, logging.Component(logger, "ValidationUC"))
	qrUC := usecase.NewQRUseCase(planRepo, subRepo, placeRepo, usecase.QROptions{
		MaxAge:    cfg.QR.MaxAge,
		MaxFuture: cfg.QR.MaxFuture,
	}, logging.Component(logger, "QRUC"))
	publicURL := strings.TrimRight(cfg.HTTP.PublicURL, "/")
	provisioningUC := usecase.NewProvisioningUseCase(planRepo, subRepo, paymentRepo, userRepo, tm, advisory, gateway, mailer,
		usecase.ProvisioningOptions{
			Currency:   cfg.Stripe.Currency,
			SuccessURL: publicURL + cfg.Stripe.SuccessPath,
			CancelURL:  publicURL + cfg.Stripe.CancelPath,
			Messages:   messages,
		}, logging.Component(logger, "ProvisioningUC"))
	subscriptionUC := usecase.NewSubscriptionUseCase(subRepo, tm, nil, logging.Component(logger, "SubscriptionUC"))
	planUC := usecase.NewPlanUseCase(planRepo, placeRepo, logging.Component(logger, "PlanUC"))

	// ---- HTTP ----
	apiServer := apiv1.NewServer(apiv1.Deps{
		Codes:         codeUC,
		Validations:   validationUC,
		QR:            qrUC,
		Provisioning:  provisioningUC,
		Subscriptions: subscriptionUC,
		Plans:         planUC,
		Gateway:       gateway,
		Auth:          apiv1.NewAuthManager(cfg.Auth.Secret, cfg.Auth.CookieName, cfg.Auth.Issuer),
		Limiter:       red.NewRateLimiter(redisClient, cfg.RateLimit.RedeemLimit, cfg.RateLimit.RedeemWindow),
	}, logger)
	router := api.NewRouter(cfg.HTTP, apiServer, map[string]api.HealthCheck{
		"postgres": pool.Ping,
		"redis":    redisClient.Ping,
	}, logger)
	server := api.NewHTTPServer(cfg.HTTP, router)

	go func() {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	// ---- Background jobs ----
	expiry := sched.NewExpiryWorker(cfg.Scheduler.ExpiryInterval, cfg.Scheduler.LockTTL, subscriptionUC, red.NewLocker(redisClient), logger)
	go func() { _ = expiry.Run(ctx) }()
	go reportPoolStats(ctx, pool)

	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}

func newGateway(cfg *config.Config, logger *zerolog.Logger) adapter.PaymentGateway {
	if cfg.Stripe.SecretKey == "" {
		logger.Warn().Msg("stripe not configured; using noop payment gateway")
		return payment.NewNoopPaymentGateway()
	}
	gw, err := payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, cfg.Stripe.BaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("stripe gateway")
	}
	return gw
}

func newMailer(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) adapter.Mailer {
	if !cfg.Mail.Enabled {
		return mail.NewNoopMailer(logger)
	}
	m, err := mail.NewSESMailer(ctx, cfg.Mail.Region, cfg.Mail.From)
	if err != nil {
		logger.Fatal().Err(err).Msg("ses mailer")
	}
	return m
}

func reportPoolStats(ctx context.Context, pool *pgxpool.Pool) {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s := pool.Stat()
			metrics.SetDBPoolStats(s.TotalConns(), s.IdleConns(), s.AcquiredConns())
		}
	}
}
