package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"example.com/subscription-reaper/backend/internal/ai"
	"example.com/subscription-reaper/backend/internal/auth"
	"example.com/subscription-reaper/backend/internal/billing"
	"example.com/subscription-reaper/backend/internal/catalog"
	"example.com/subscription-reaper/backend/internal/config"
	"example.com/subscription-reaper/backend/internal/currency"
	"example.com/subscription-reaper/backend/internal/handlers"
	"example.com/subscription-reaper/backend/internal/notifications"
	"example.com/subscription-reaper/backend/internal/repository"
)

// App is the assembled service: the Echo router plus the workers that run beside it.
type App struct {
	Echo *echo.Echo

	cfg       config.Config
	logger    *slog.Logger
	converter *currency.Converter
	scheduler *notifications.Scheduler
	planner   *notifications.Planner
	analyses  *ai.ResultCache
	subs      *repository.SubscriptionRepository
	tokens    *repository.RefreshTokenRepository
}

// New wires repositories, engines and handlers into an Echo server.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	providers, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	aiRepo := repository.NewAIRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	notificationHub := notifications.NewHub()

	converter := currency.NewConverter(currency.NewFrankfurterClient(cfg.Rates.BaseURL, cfg.Rates.Timeout), logger)
	converter.OnRefresh(func(snapshot currency.Snapshot) {
		notificationHub.Broadcast(notifications.Event{
			Type: notifications.EventRatesUpdated,
			Data: map[string]interface{}{
				"base":       snapshot.Base,
				"currencies": len(snapshot.Rates),
				"updated_at": snapshot.UpdatedAt,
			},
		})
	})

	factory, err := ai.NewFactory(cfg.AI.Provider, ai.Endpoint{
		BaseURL:   cfg.AI.BaseURL,
		Model:     cfg.AI.Model,
		Timeout:   cfg.AI.Timeout,
		MaxTokens: cfg.AI.MaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}

	localClient := ai.NewLocalClient(converter)
	aiService := ai.NewService(logger,
		ai.NewPrimaryStrategy(ai.EngineFor(cfg.AI.Provider), cfg.AI.APIKey, factory),
		ai.NewFallbackStrategy(ai.EngineOnDevice, localClient),
	)

	analyses, err := ai.NewResultCache(int64(cfg.AI.CacheMaxUsers), cfg.AI.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("create analysis cache: %w", err)
	}

	var textClient ai.Client = localClient
	if cfg.AI.APIKey != "" {
		textClient = factory(cfg.AI.APIKey)
	}
	scheduler := notifications.NewScheduler(notificationHub, reminderRepo, logger)
	planner := notifications.NewPlanner(ai.NewNotificationGenerator(textClient, logger), scheduler, logger)

	registerRoutes(e,
		routeHandlers{
			health:        handlers.NewHealthHandler(db, converter),
			auth:          handlers.NewAuthHandler(userRepo, tokenRepo, tokenManager),
			subscriptions: handlers.NewSubscriptionHandler(subRepo, providers, planner, notificationHub, analyses),
			billing:       handlers.NewBillingHandler(subRepo),
			providers:     handlers.NewProviderHandler(providers, cfg.Catalog.LookupDebounce, cfg.Catalog.LookupLatency),
			analysis:      handlers.NewAIHandler(aiService, subRepo, settingsRepo, aiRepo, analyses, notificationHub, cfg.AI.Provider, cfg.AI.Model),
			rates:         handlers.NewRatesHandler(converter),
			stats:         handlers.NewStatsHandler(statsRepo, subRepo, settingsRepo, converter),
			settings:      handlers.NewSettingsHandler(settingsRepo, analyses),
			notifications: handlers.NewNotificationHandler(notificationHub, scheduler),
			admin:         handlers.NewAdminHandler(adminRepo),
		},
		routeMiddleware{
			auth:          auth.JWTMiddleware(tokenManager),
			admin:         handlers.AdminMiddleware(cfg.Admin.Emails),
			authLimiter:   rateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst),
			aiLimiter:     rateLimiter(cfg.AI.RateLimitPerMinute, cfg.AI.RateLimitBurst),
			lookupLimiter: rateLimiter(cfg.Catalog.RateLimitPerMinute, cfg.Catalog.RateLimitBurst),
		},
	)

	return &App{
		Echo:      e,
		cfg:       cfg,
		logger:    logger,
		converter: converter,
		scheduler: scheduler,
		planner:   planner,
		analyses:  analyses,
		subs:      subRepo,
		tokens:    tokenRepo,
	}, nil
}

// Run restores pending reminders and keeps rates, billing dates and refresh tokens current until ctx is done.
func (a *App) Run(ctx context.Context) error {
	restored, err := a.scheduler.Restore(ctx)
	if err != nil {
		return fmt.Errorf("restore reminders: %w", err)
	}
	a.logger.Info("renewal reminders restored", slog.Int("count", restored))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.converter.Run(ctx, a.cfg.Rates.RefreshInterval)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(a.cfg.Reminders.RolloverInterval)
		defer ticker.Stop()

		for {
			a.rollover(ctx)
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	return g.Wait()
}

// Close stops armed reminder timers and releases the analysis cache.
func (a *App) Close() {
	a.scheduler.Stop()
	a.analyses.Close()
}

// rollover advances billing dates that have passed and re-arms their reminders.
func (a *App) rollover(ctx context.Context) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	changed, err := a.subs.AdvancePastDue(ctx, today, billing.Rollover)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Warn("billing rollover failed", slog.String("error", err.Error()))
		}
		return
	}

	if len(changed) > 0 {
		armed := a.planner.PlanAll(ctx, changed)
		for _, sub := range changed {
			a.analyses.Invalidate(sub.UserID)
		}
		a.logger.Info("billing dates advanced", slog.Int("subscriptions", len(changed)), slog.Int("reminders", armed))
	}

	purged, err := a.tokens.PurgeExpired(ctx, now)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Warn("refresh token purge failed", slog.String("error", err.Error()))
		}
		return
	}
	if purged > 0 {
		a.logger.Info("expired refresh tokens purged", slog.Int64("count", purged))
	}
}

// NewHTTPServer creates a net/http server with the configured timeouts.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.ExtensionFile == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadExtension(cfg.ExtensionFile)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

// rateLimiter limits requests per client IP.
func rateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60.0),
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
