package handler

import (
	"order-settlement/internal/adapter/http/middleware"
	redisStore "order-settlement/internal/adapter/storage/redis"
	"order-settlement/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	SettlementSvc  ports.SettlementService
	HistorySvc     ports.HistoryService
	TokenVerifier  ports.TokenVerifier
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Gateway webhook (unauthenticated; HMAC over the body is the auth) ---
	webhookHandler := NewWebhookHandler(deps.SettlementSvc)
	v1.POST("/webhooks/gateway", webhookHandler.Receive)

	// --- JWT-authenticated customer routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenVerifier, deps.Logger)
	paymentHandler := NewPaymentHandler(deps.SettlementSvc, deps.HistorySvc)
	orderHandler := NewOrderHandler(deps.SettlementSvc)

	payments := v1.Group("/payments", jwtAuth)
	{
		payments.POST("", rl("payments_initiate"), paymentHandler.Initiate)
		payments.GET("", rl("history"), paymentHandler.List)
		payments.GET("/:id", rl("history"), paymentHandler.Get)
		payments.POST("/:id/verify", rl("payments_verify"), paymentHandler.Verify)
		payments.POST("/:id/refund", rl("payments_refund"), paymentHandler.Refund)
	}

	orders := v1.Group("/orders", jwtAuth)
	{
		orders.POST("/:id/cancel", rl("orders_cancel"), orderHandler.Cancel)
	}

	return r
}
