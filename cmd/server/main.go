package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	cartapp "github.com/storefront/backend/internal/application/cart"
	identityapp "github.com/storefront/backend/internal/application/identity"
	quoteapp "github.com/storefront/backend/internal/application/quote"
	searchapp "github.com/storefront/backend/internal/application/search"
	"github.com/storefront/backend/internal/application/searchlog"
	searchdom "github.com/storefront/backend/internal/domain/search"
	"github.com/storefront/backend/internal/infrastructure/availability"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/search"
	"github.com/storefront/backend/internal/infrastructure/session"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Redis (sessions + advisory cache)
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}()
	log.Info("Redis connected")

	// Search engine
	engine, err := search.NewClient(&cfg.Search, log)
	if err != nil {
		log.Fatal("Failed to create search client", zap.Error(err))
	}

	// Repositories and stores
	userRepo := persistence.NewGormUserRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	quoteRepo := persistence.NewGormQuoteRepository(db.DB)
	searchLogRepo := persistence.NewGormSearchLogRepository(db.DB)
	rateLimitStore := persistence.NewGormRateLimitStore(db.DB)

	sessionStore := session.NewRedisStore(redisClient, cfg.Session.TTL)
	tokenCodec := session.NewTokenCodec(cfg.Session.Secret, cfg.App.Name, cfg.Session.TTL)

	// Dynamic data: prices, stock and delivery estimates per city
	dynamicProvider := availability.NewProvider(db.DB, &cfg.Availability, log)

	// Advisory search cache; disabled means searches always hit the engine
	var searchCache searchapp.ResultCache
	if cfg.Cache.Enabled {
		searchCache = cache.NewSearchCache(redisClient, cfg.Cache.SearchTTL, log)
	}

	// Async search logging
	var logSink searchapp.LogSink
	var recorder *searchlog.Recorder
	if cfg.SearchLog.Enabled {
		recorder = searchlog.NewRecorder(searchLogRepo, cfg.SearchLog.QueueSize, log)
		recorder.Start(context.Background())
		defer func() {
			if err := recorder.Stop(context.Background()); err != nil {
				log.Error("Error stopping search log recorder", zap.Error(err))
			}
		}()
		logSink = recorder
		log.Info("Search log recorder started", zap.Int("queue_size", cfg.SearchLog.QueueSize))
	}

	// Application services
	builder := searchdom.NewRequestBuilder()
	merger := searchapp.NewMerger(dynamicProvider, log)
	searchService := searchapp.NewService(engine, &builder, merger, searchCache, logSink, log)
	cartService := cartapp.NewService(cartRepo, sessionStore, log)
	authService := identityapp.NewAuthService(userRepo, sessionStore, cartService, log)
	quoteService := quoteapp.NewService(quoteRepo, cartRepo, engine, dynamicProvider, log)

	// HTTP surface
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	ginEngine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(logger.GinMiddleware(log))

	secConfig := middleware.DefaultSecurityConfig()
	secConfig.HSTSEnabled = cfg.App.Env == "production"
	ginEngine.Use(middleware.SecureWithConfig(secConfig))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	ginEngine.Use(middleware.CORSWithConfig(corsConfig))
	ginEngine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	ginEngine.Use(middleware.Session(sessionStore, tokenCodec, cfg.Session))

	// Per-scope rate limiting backed by the database, shared across instances
	var searchLimit, authLimit gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		searchLimit = middleware.RateLimit(rateLimitStore, "search",
			cfg.HTTP.SearchRateLimitRequests, cfg.HTTP.SearchRateLimitWindow)
		authLimit = middleware.RateLimit(rateLimitStore, "auth",
			cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		log.Info("Rate limiting enabled",
			zap.Int("search_requests", cfg.HTTP.SearchRateLimitRequests),
			zap.Int("auth_requests", cfg.HTTP.AuthRateLimitRequests),
		)
	}

	systemHandler := handler.NewSystemHandler(map[string]handler.Pinger{
		"database": pingFunc(func(ctx context.Context) error { return db.Ping() }),
		"redis":    pingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
		"search":   engine,
	})

	r := router.NewRouter(ginEngine)
	r.Register(systemHandler)
	r.Register(handler.NewSearchHandler(searchService), optional(searchLimit)...)
	r.Register(handler.NewAvailabilityHandler(dynamicProvider), optional(searchLimit)...)
	r.Register(handler.NewCartHandler(cartService, engine))
	r.Register(handler.NewAuthHandler(authService, tokenCodec, cfg.Session), optional(authLimit)...)
	r.Register(handler.NewQuoteHandler(quoteService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// pingFunc adapts a function to the handler.Pinger interface.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// optional turns a nil-able middleware into a handler slice for Register.
func optional(mw gin.HandlerFunc) []gin.HandlerFunc {
	if mw == nil {
		return nil
	}
	return []gin.HandlerFunc{mw}
}
