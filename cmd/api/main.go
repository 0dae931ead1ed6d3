package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/truthlens/truthlens-api/internal/detector"
	"github.com/truthlens/truthlens-api/internal/listing"
	"github.com/truthlens/truthlens-api/pkg/common"
	"github.com/truthlens/truthlens-api/pkg/config"
	"github.com/truthlens/truthlens-api/pkg/health"
	"github.com/truthlens/truthlens-api/pkg/logger"
	"github.com/truthlens/truthlens-api/pkg/middleware"
	"github.com/truthlens/truthlens-api/pkg/resilience"
	"github.com/truthlens/truthlens-api/pkg/secrets"
	"github.com/truthlens/truthlens-api/pkg/tracing"
	"go.uber.org/zap"
)

const (
	serviceName     = "truthlens-api"
	shutdownTimeout = 15 * time.Second
	healthProbeTTL  = 30 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Server.Environment,
			Release:          serviceName + "@" + cfg.Server.Version,
			EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			logger.Fatal("Failed to initialize Sentry", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
		logger.Info("Sentry error reporting enabled")
	}

	shutdownTracing, err := tracing.Init(ctx, serviceName, cfg.Server.Version, cfg.Server.Environment, cfg.Tracing)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	apiKey, err := resolveDetectorKey(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to resolve detector API key", zap.Error(err))
	}
	if apiKey == "" {
		logger.Warn("No detector API key configured; AI detection requests will be unauthenticated")
	}

	var breaker *resilience.CircuitBreaker
	if cfg.Breaker.Enabled {
		settings := resilience.SettingsFromConfig("ai-detector", cfg.Breaker)
		settings.IsSuccessful = detector.IsSuccessful
		breaker = resilience.NewCircuitBreaker(settings, resilience.GracefulDegradation("ai-detector"))
	}

	detectorClient := detector.NewClient(detector.Config{
		URL:        cfg.Detector.URL,
		APIKey:     apiKey,
		AuthScheme: cfg.Detector.AuthScheme,
		Timeout:    cfg.Detector.Timeout,
	}, breaker)

	handler := listing.NewHandler(listing.NewService(detectorClient))
	router := setupRouter(cfg, handler, breaker)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("TruthLens API starting",
			zap.String("port", cfg.Server.Port),
			zap.String("environment", cfg.Server.Environment),
			zap.String("detector_url", cfg.Detector.URL),
			zap.Bool("breaker_enabled", breaker != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

// resolveDetectorKey returns DETECTOR_API_KEY, or resolves DETECTOR_API_KEY_REF
// through the configured secrets provider.
func resolveDetectorKey(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.Detector.APIKey != "" || cfg.Detector.APIKeyRef == "" {
		return cfg.Detector.APIKey, nil
	}

	var manager secrets.Manager
	if cfg.Secrets.Provider != "" {
		m, err := secrets.NewManager(ctx, secrets.ConfigFromEnv(cfg.Secrets))
		if err != nil {
			return "", err
		}
		defer m.Close()
		manager = m
	}

	return secrets.ResolveAPIKey(ctx, manager, cfg.Detector.APIKey, cfg.Detector.APIKeyRef)
}

// setupRouter builds the gin engine with the middleware chain and all routes.
// breaker may be nil.
func setupRouter(cfg *config.Config, handler *listing.Handler, breaker *resilience.CircuitBreaker) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	if cfg.Sentry.DSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.SecurityHeaders(cfg.Server.Environment == "production"))
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins())))
	router.Use(middleware.MaxBodySize(cfg.Server.MaxBodyBytes))

	checks := map[string]func() error{}
	if detectorCheck := detectorReadiness(cfg.Detector, breaker); detectorCheck != nil {
		checks["detector"] = detectorCheck
	}

	router.GET("/healthz", common.HealthCheck(serviceName, cfg.Server.Version))
	router.GET("/health/ready", common.ReadinessCheck(serviceName, cfg.Server.Version, checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(router)

	return router
}

// detectorReadiness combines the breaker state with an optional probe of
// DETECTOR_HEALTH_URL. It returns nil when there is nothing to check.
func detectorReadiness(cfg config.DetectorConfig, breaker *resilience.CircuitBreaker) health.Checker {
	checkers := map[string]health.Checker{}
	if breaker != nil {
		checkers["breaker"] = health.BreakerChecker(breaker)
	}
	if cfg.HealthURL != "" {
		probe := health.NewCachedChecker(health.HTTPEndpointChecker(cfg.HealthURL), healthProbeTTL)
		checkers["endpoint"] = probe.Check
	}
	if len(checkers) == 0 {
		return nil
	}

	checkerCfg := health.DefaultCheckerConfig()
	return health.AsyncChecker(health.CompositeChecker("detector", checkers), checkerCfg.Timeout+time.Second)
}

// corsConfig allows the listed origins. The browser extension calls from a
// chrome-extension:// origin.
func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.CorrelationIDHeader}
	config.ExposeHeaders = []string{middleware.CorrelationIDHeader}
	config.AllowBrowserExtensions = true

	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return config
}
