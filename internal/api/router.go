package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/clikenova/storefront/docs"
	"github.com/clikenova/storefront/internal/api/handler"
	"github.com/clikenova/storefront/internal/api/middleware"
	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

// Services are the use cases the HTTP layer exposes.
type Services struct {
	Auth          ports.AuthService
	Notifications ports.NotificationService
	Catalog       ports.CatalogService
	Checkout      ports.CheckoutService
	Producer      ports.ProducerService
	Affiliate     ports.AffiliateService
	Withdrawals   ports.WithdrawalService
	Admin         ports.AdminService
}

// RouterConfig carries the transport settings.
type RouterConfig struct {
	JWTSecret string
	Currency  string
	Sessions  middleware.SessionResolver
	// Ready lists the dependencies checked by /health/ready.
	Ready map[string]handler.PingFunc
	Log   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig, svc Services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLog(cfg.Log))
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.SessionHeader, handler.IdempotencyHeader},
		ExposeHeaders: []string{middleware.SessionHeader},
	}))

	// --- Health checks, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(cfg.Ready)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth, svc.Notifications)
	notificationHandler := handler.NewNotificationHandler(svc.Notifications)
	catalogHandler := handler.NewCatalogHandler(svc.Catalog)
	checkoutHandler := handler.NewCheckoutHandler(svc.Checkout)
	producerHandler := handler.NewProducerHandler(svc.Producer, cfg.Currency)
	affiliateHandler := handler.NewAffiliateHandler(svc.Affiliate)
	withdrawalHandler := handler.NewWithdrawalHandler(svc.Withdrawals)
	adminHandler := handler.NewAdminHandler(svc.Admin)

	// Every /v1 route runs with a resolved session, anonymous or not.
	v1 := e.Group("/v1", middleware.Auth(cfg.JWTSecret, cfg.Sessions))
	authenticated := middleware.Guard()

	// --- Auth & session ---
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/logout", authHandler.Logout, authenticated)
	v1.GET("/session", authHandler.Session)
	v1.GET("/navigation", authHandler.Navigation)

	// --- Notifications (anonymous sessions keep a local list) ---
	n := v1.Group("/notifications")
	n.GET("", notificationHandler.List)
	n.POST("", notificationHandler.Create)
	n.DELETE("", notificationHandler.Clear)
	n.GET("/unread-count", notificationHandler.UnreadCount)
	n.POST("/:id/read", notificationHandler.MarkRead)

	// --- Catalog & checkout ---
	v1.GET("/products", catalogHandler.List)
	v1.GET("/products/:id", catalogHandler.Get)
	v1.GET("/products/:id/outline", catalogHandler.Outline)
	v1.POST("/checkout/coupon", checkoutHandler.ApplyCoupon)
	v1.POST("/checkout/quote", checkoutHandler.Quote)
	v1.POST("/checkout/orders", checkoutHandler.PlaceOrder, authenticated)

	// --- Role areas ---
	student := v1.Group("/student", middleware.Guard(domain.RoleStudent))
	student.GET("/purchases", checkoutHandler.Purchases)

	producer := v1.Group("/producer", middleware.Guard(domain.RoleProducer))
	producer.GET("/products", producerHandler.Products)
	producer.POST("/products", producerHandler.Create)
	producer.PATCH("/products/:id", producerHandler.SetActive)
	producer.GET("/stats", producerHandler.Stats)

	affiliate := v1.Group("/affiliate", middleware.Guard(domain.RoleAffiliate))
	affiliate.GET("/profile", affiliateHandler.Profile)
	affiliate.GET("/stats", affiliateHandler.Stats)
	affiliate.GET("/sales", affiliateHandler.Sales)
	affiliate.GET("/links/:product_id", affiliateHandler.Link)

	withdrawals := v1.Group("/withdrawals", middleware.Guard(domain.RoleProducer, domain.RoleAffiliate))
	withdrawals.POST("", withdrawalHandler.Request)
	withdrawals.GET("", withdrawalHandler.List)
	withdrawals.GET("/balance", withdrawalHandler.Balance)

	admin := v1.Group("/admin", middleware.Guard(domain.RoleAdmin))
	admin.GET("/overview", adminHandler.Overview)
	admin.GET("/identities", adminHandler.Identities)
	admin.PATCH("/identities/:id", adminHandler.SetActive)
	admin.GET("/withdrawals", withdrawalHandler.Queue)
	admin.POST("/withdrawals/:id/status", withdrawalHandler.Transition)

	e.RouteNotFound("/v1/*", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "route not found")
	})

	return e
}
