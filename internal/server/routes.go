package server

import (
	"github.com/labstack/echo/v4"

	"example.com/subscription-reaper/backend/internal/handlers"
)

type routeHandlers struct {
	health        *handlers.HealthHandler
	auth          *handlers.AuthHandler
	subscriptions *handlers.SubscriptionHandler
	billing       *handlers.BillingHandler
	providers     *handlers.ProviderHandler
	analysis      *handlers.AIHandler
	rates         *handlers.RatesHandler
	stats         *handlers.StatsHandler
	settings      *handlers.SettingsHandler
	notifications *handlers.NotificationHandler
	admin         *handlers.AdminHandler
}

type routeMiddleware struct {
	auth          echo.MiddlewareFunc
	admin         echo.MiddlewareFunc
	authLimiter   echo.MiddlewareFunc
	aiLimiter     echo.MiddlewareFunc
	lookupLimiter echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, h routeHandlers, mw routeMiddleware) {
	e.GET("/health", h.health.Health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", mw.authLimiter)

	authGroup.POST("/register", h.auth.Register)
	authGroup.POST("/login", h.auth.Login)
	authGroup.POST("/refresh", h.auth.Refresh)
	authGroup.POST("/logout", h.auth.Logout)
	authGroup.GET("/me", h.auth.Me, mw.auth)

	subscriptions := api.Group("/subscriptions", mw.auth)
	subscriptions.GET("", h.subscriptions.List)
	subscriptions.POST("", h.subscriptions.Create)
	subscriptions.GET("/export/json", h.subscriptions.ExportJSON)
	subscriptions.GET("/export/csv", h.subscriptions.ExportCSV)
	subscriptions.GET("/:id", h.subscriptions.Get)
	subscriptions.PUT("/:id", h.subscriptions.Update)
	subscriptions.DELETE("/:id", h.subscriptions.Delete)

	billing := api.Group("/billing", mw.auth)
	billing.POST("/preview", h.billing.Preview)

	providers := api.Group("/providers", mw.auth, mw.lookupLimiter)
	providers.GET("", h.providers.Lookup)
	providers.GET("/live", h.providers.Live)
	providers.GET("/:id", h.providers.Get)

	analysis := api.Group("/analysis", mw.auth)
	analysis.POST("", h.analysis.Analyze, mw.aiLimiter)
	analysis.GET("", h.analysis.Latest)

	rates := api.Group("/rates", mw.auth)
	rates.GET("", h.rates.Get)
	rates.POST("/refresh", h.rates.Refresh)
	rates.GET("/convert", h.rates.Convert)

	stats := api.Group("/stats", mw.auth)
	stats.GET("/overview", h.stats.Overview)
	stats.GET("/spending-by-category", h.stats.SpendingByCategory)
	stats.GET("/budget", h.stats.Budget)

	settings := api.Group("/settings", mw.auth)
	settings.GET("", h.settings.Get)
	settings.PUT("", h.settings.Update)

	notifications := api.Group("/notifications", mw.auth)
	notifications.GET("/stream", h.notifications.Stream)
	notifications.GET("/reminders", h.notifications.Pending)

	admin := api.Group("/admin", mw.auth, mw.admin)
	admin.GET("/users", h.admin.ListUsers)
	admin.GET("/ai-requests", h.admin.ListAIRequests)
	admin.GET("/usage", h.admin.Usage)
}
