// Package app wires configuration, logging, the model invoker and the
// HTTP surface into a runnable application.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	authhttp "github.com/imagestudio/server/internal/adapter/inbound/http/auth"
	"github.com/imagestudio/server/internal/adapter/inbound/http/pages"
	studiohttp "github.com/imagestudio/server/internal/adapter/inbound/http/studio"
	"github.com/imagestudio/server/internal/adapter/outbound/bedrock"
	redisadapter "github.com/imagestudio/server/internal/adapter/outbound/redis"
	"github.com/imagestudio/server/internal/adapter/outbound/token"
	"github.com/imagestudio/server/internal/domain/studio"
	"github.com/imagestudio/server/internal/infra/events"
	"github.com/imagestudio/server/internal/shared/cache"
	"github.com/imagestudio/server/internal/shared/config"
	"github.com/imagestudio/server/internal/shared/logger"
	"github.com/imagestudio/server/internal/shared/metrics"
	"github.com/imagestudio/server/internal/shared/middleware"
)

// App represents the application.
type App struct {
	config    *config.Config
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	metrics   *metrics.Metrics
	redis     goredis.UniversalClient

	eventBus *events.Bus
	invoker  studio.Invoker
	tokens   *token.Manager
}

// New creates an application backed by the real model endpoint.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	m := metrics.New("imagestudio")

	invoker, err := bedrock.New(ctx, &bedrock.Config{
		ModelID:          cfg.Bedrock.ModelID,
		Region:           cfg.Bedrock.Region,
		Timeout:          cfg.Bedrock.RequestTimeout,
		FailureThreshold: cfg.Bedrock.FailureThreshold,
		BreakerTimeout:   cfg.Bedrock.BreakerTimeout,
	}, log, m)
	if err != nil {
		return nil, fmt.Errorf("init model invoker: %w", err)
	}

	return NewWithInvoker(cfg, invoker, log, m)
}

// NewWithInvoker creates an application over an existing invoker. Tests
// use this with a stub.
func NewWithInvoker(cfg *config.Config, invoker studio.Invoker, log *logger.Logger, m *metrics.Metrics) (*App, error) {
	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init zap logger: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    log,
		zapLogger: zapLog,
		metrics:   m,
		invoker:   invoker,
	}

	// Redis is optional. Without it the studio runs unthrottled.
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("redis connection failed, rate limiting disabled", logger.Err(err))
		} else {
			app.redis = redisClient
		}
	}

	if cfg.Auth.Required {
		app.tokens = token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	}

	app.eventBus = events.NewBus(zapLog)
	app.eventBus.Register(events.NewAuditHandler(zapLog))

	app.router = app.setupRouter()
	return app, nil
}

// Router returns the HTTP handler for the application.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases the application's external connections.
func (a *App) Stop() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", logger.Err(err))
		}
	}
	_ = a.zapLogger.Sync()
}

// setupRouter creates and configures the gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = a.config.Server.MaxUploadBytes

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Metrics(a.metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"model":  a.config.Bedrock.ModelName,
		})
	})
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	// Pages
	r.SetHTMLTemplate(pages.Templates())
	var pageAuth gin.HandlerFunc
	if a.config.Auth.Required {
		pageAuth = middleware.PageAuth(a.tokens)
	}
	pages.NewHandler(a.config.Auth.Required).RegisterRoutes(r, pageAuth)

	// API
	api := r.Group("/api/v1")

	var apiGuards []gin.HandlerFunc
	if a.config.Auth.Required {
		authhttp.NewHandler(a.config.Auth.Users, a.tokens, a.logger).RegisterRoutes(api)
		apiGuards = append(apiGuards, middleware.Auth(a.tokens))
	}

	var limiter middleware.RateLimiter
	if a.redis != nil {
		limiter = redisadapter.NewRateLimiter(a.redis)
	}
	apiGuards = append(apiGuards, middleware.RateLimit(
		limiter,
		a.config.RateLimit.Requests,
		a.config.RateLimit.Window,
		a.logger,
	))

	studiohttp.NewHandler(a.invoker, a.eventBus, a.logger).RegisterRoutes(api, apiGuards...)

	return r
}
