package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Amanc77/Datamart-app/internal/config"
	"github.com/Amanc77/Datamart-app/internal/infra/razorpay"
	s3infra "github.com/Amanc77/Datamart-app/internal/infra/s3"
	pgrepo "github.com/Amanc77/Datamart-app/internal/repo/postgres"
	redrepo "github.com/Amanc77/Datamart-app/internal/repo/redis"
	authsvc "github.com/Amanc77/Datamart-app/internal/services/auth"
	entsvc "github.com/Amanc77/Datamart-app/internal/services/entitlements"
	exportsvc "github.com/Amanc77/Datamart-app/internal/services/exports"
	paymentsvc "github.com/Amanc77/Datamart-app/internal/services/payments"
	pricingsvc "github.com/Amanc77/Datamart-app/internal/services/pricing"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	var redisClient *goredis.Client
	if c, err := redrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn("redis init failed, continuing in degraded mode", zap.Error(err))
	} else {
		redisClient = c
	}

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	var gateway paymentsvc.Gateway
	if c, err := razorpay.NewClient(razorpay.Config{
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		Timeout:   cfg.Razorpay.Timeout,
	}); err != nil {
		log.Warn("razorpay init failed, paid checkout disabled", zap.Error(err))
	} else {
		gateway = c
	}

	sessionRepo := redrepo.NewSessionRepo(redisClient)
	purchaseRepo := pgrepo.NewPurchaseRepo(pool)
	entitlementRepo := pgrepo.NewEntitlementRepo(pool)
	datasetRepo := pgrepo.NewDatasetRepo(pool)
	userRepo := pgrepo.NewUserRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, cfg.Auth.JWTAccessTTL)

	calculator := pricingsvc.NewCalculator(pricingsvc.Config{
		UnitPriceCents: cfg.Pricing.UnitPriceCents,
		FXRate:         cfg.Pricing.FXRateMinor,
	})
	paymentService := paymentsvc.NewService(paymentsvc.Dependencies{
		Purchases:    purchaseRepo,
		Entitlements: entitlementRepo,
		Users:        userRepo,
		Gateway:      gateway,
		Pricer:       calculator,
	}, paymentsvc.Config{
		Currency:      cfg.Pricing.Currency,
		DisplayName:   cfg.Pricing.DisplayName,
		KeySecret:     cfg.Razorpay.KeySecret,
		WebhookSecret: cfg.Razorpay.WebhookSecret,
		FXRate:        cfg.Pricing.FXRateMinor,
	})
	entitlementService := entsvc.NewService(purchaseRepo)
	exportService := exportsvc.NewService(exportsvc.Dependencies{
		Purchases:    purchaseRepo,
		Entitlements: entitlementRepo,
		Datasets:     datasetRepo,
		Archive:      exportsvc.NewS3Archive(s3Client, cfg.S3.Bucket),
		Logger:       log,
	})

	RegisterRoutes(r, Dependencies{
		AuthService:        authService,
		PaymentService:     paymentService,
		EntitlementService: entitlementService,
		ExportService:      exportService,
		Logger:             log,
		Config:             cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
