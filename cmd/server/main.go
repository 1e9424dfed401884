package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"hunarscan/internal/auth"
	"hunarscan/internal/config"
	handlers "hunarscan/internal/handlers/shared"
	"hunarscan/internal/repositories/firestore"
	"hunarscan/internal/repositories/interfaces"
	"hunarscan/internal/repositories/memory"
	"hunarscan/internal/repositories/mongodb"
	"hunarscan/internal/services"
	"hunarscan/pkg/cache"
	"hunarscan/pkg/database"
	"hunarscan/pkg/firebase"
	"hunarscan/pkg/logger"
	"hunarscan/pkg/sms"
	"hunarscan/routes"
)

const shutdownTimeout = 15 * time.Second

// repositorySet is implemented by every store backend.
type repositorySet interface {
	Reviews() interfaces.ReviewRepository
	Workers() interfaces.WorkerRepository
	Clients() interfaces.ClientRepository
}

type backend struct {
	repos repositorySet
	ping  handlers.HealthCheck
	close func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  cfg.App.LogOutput,
		Caller:  cfg.App.Debug,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.WithError(err).Fatal("Server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) error {
	var fbApp *firebase.App
	if cfg.Store.Provider == config.StoreFirestore || cfg.Security.AuthProvider == config.AuthFirebase {
		app, err := firebase.NewApp(ctx, &firebase.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.CredentialsFile,
		})
		if err != nil {
			return err
		}
		fbApp = app
	}

	store, err := openStore(ctx, cfg, fbApp, appLogger)
	if err != nil {
		return err
	}
	defer store.close()

	verifier, err := newVerifier(ctx, cfg, fbApp)
	if err != nil {
		return err
	}

	checks := map[string]handlers.HealthCheck{"store": store.ping}

	var (
		cacheService services.CacheService
		limiter      services.RateLimiter
	)
	if redisCache := openCache(cfg, appLogger); redisCache != nil {
		defer redisCache.Close()
		cacheService = redisCache
		limiter = services.NewReviewRateLimiter(redisCache, cfg.Security.ReviewRateLimitPerMinute)
		checks["cache"] = redisCache.Ping
	}

	var notifier services.NotificationService
	provider, err := newSMSProvider(ctx, cfg)
	if err != nil {
		appLogger.WithError(err).Warn("SMS provider unavailable, review notifications disabled")
	} else if provider != nil {
		notifier = services.NewNotificationService(provider, cfg.SMS.DefaultCountryCode, cfg.SMS.SendTimeout, appLogger)
	}

	reviewService := services.NewReviewService(services.ReviewServiceDeps{
		Reviews:  store.repos.Reviews(),
		Workers:  store.repos.Workers(),
		Clients:  store.repos.Clients(),
		Identity: verifier,
		Cache:    cacheService,
		Limiter:  limiter,
		Notifier: notifier,
		Log:      appLogger,
	})
	workerService := services.NewWorkerService(store.repos.Workers(), cacheService, cfg.Store.WorkerCacheTTL, cfg.App.BaseURL, appLogger)
	clientService := services.NewClientService(store.repos.Clients(), appLogger)

	switch {
	case config.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	case config.IsTest():
		gin.SetMode(gin.TestMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	routes.SetupRoutes(router, routes.Handlers{
		Review: handlers.NewReviewHandler(reviewService),
		Worker: handlers.NewWorkerHandler(workerService),
		Client: handlers.NewClientHandler(clientService),
		Health: handlers.NewHealthHandler(cfg.App.Version, checks),
	}, routes.Options{
		Verifier:       verifier,
		Logger:         appLogger,
		AllowedOrigins: cfg.Security.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.WithFields(map[string]interface{}{
			"port":  cfg.App.Port,
			"store": cfg.Store.Provider,
			"auth":  cfg.Security.AuthProvider,
		}).Info("Starting server")
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

	appLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	appLogger.Info("Server shut down gracefully")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, fbApp *firebase.App, appLogger *logger.Logger) (*backend, error) {
	switch cfg.Store.Provider {
	case config.StoreMongoDB:
		db, err := database.NewMongoDB(ctx, &database.DatabaseConfig{
			URI:            cfg.Database.URI,
			Database:       cfg.Database.Database,
			MaxPoolSize:    cfg.Database.MaxPoolSize,
			MinPoolSize:    cfg.Database.MinPoolSize,
			ConnectTimeout: cfg.Database.ConnectTimeout,
			SocketTimeout:  cfg.Database.SocketTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		if err := database.NewMigrator(db.Database, appLogger).Up(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &backend{
			repos: mongodb.NewStore(db, cfg.Store.TxMaxAttempts),
			ping:  db.Ping,
			close: func() {
				if err := db.Close(); err != nil {
					appLogger.WithError(err).Error("Failed to close mongodb")
				}
			},
		}, nil

	case config.StoreFirestore:
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		store := firestore.NewStore(client, cfg.Store.TxMaxAttempts)
		return &backend{
			repos: store,
			ping:  store.Ping,
			close: func() {
				if err := client.Close(); err != nil {
					appLogger.WithError(err).Error("Failed to close firestore")
				}
			},
		}, nil

	default:
		appLogger.Warn("Using in-memory store; data is lost on restart")
		return &backend{
			repos: memory.NewStore(cfg.Store.TxMaxAttempts),
			ping:  func(ctx context.Context) error { return nil },
			close: func() {},
		}, nil
	}
}

func newVerifier(ctx context.Context, cfg *config.Config, fbApp *firebase.App) (auth.Verifier, error) {
	if cfg.Security.AuthProvider == config.AuthJWT {
		return auth.NewJWTVerifier(cfg.Security.JWTSecret, cfg.App.Name, cfg.Security.JWTAccessTokenTTL), nil
	}
	client, err := fbApp.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return auth.NewFirebaseVerifier(client), nil
}

// openCache returns nil when Redis is disabled or unreachable; the service
// then runs without caching and rate limiting.
func openCache(cfg *config.Config, appLogger *logger.Logger) *cache.RedisCache {
	if !cfg.Redis.Enabled {
		return nil
	}
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Warn("Redis unavailable, running without cache and rate limiting")
		return nil
	}
	return redisCache
}

func newSMSProvider(ctx context.Context, cfg *config.Config) (sms.SMSProvider, error) {
	switch cfg.SMS.Provider {
	case config.SMSTwilio:
		t := cfg.SMS.Twilio
		if t.AccountSID == "" || t.AuthToken == "" || t.FromNumber == "" {
			return nil, errors.New("twilio credentials are incomplete")
		}
		return sms.NewTwilioProvider(t.AccountSID, t.AuthToken, t.FromNumber), nil
	case config.SMSAWS:
		provider, err := sms.NewAWSSNSProvider(ctx, cfg.SMS.AWS.Region)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, nil
	}
}
