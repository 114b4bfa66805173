package router

import (
	"fmt"
	"strings"

	"github.com/findesk/findesk-api/internal/cache"
	"github.com/findesk/findesk-api/internal/config"
	"github.com/findesk/findesk-api/internal/constants"
	publichandlers "github.com/findesk/findesk-api/internal/http/handlers/public"
	"github.com/findesk/findesk-api/internal/logger"
	"github.com/findesk/findesk-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	createOrderRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:create_order", redisPrefix),
		WindowSeconds: cfg.Security.CreateOrderRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CreateOrderRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.CreateOrderRateLimit.BlockSeconds,
		Message:       "Too many order requests",
	}
	webhookRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:webhook", redisPrefix),
		WindowSeconds: cfg.Security.WebhookRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.WebhookRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.WebhookRateLimit.BlockSeconds,
		Message:       "Too many webhook requests",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		payments := apiV1.Group("/payments")
		{
			payments.POST("/create-order", RateLimitMiddleware(redisClient, createOrderRule, KeyByIP), publicHandler.CreateOrder)
			payments.POST("/webhook", RateLimitMiddleware(redisClient, webhookRule, KeyByIP), publicHandler.Webhook)
			payments.GET("", publicHandler.ListPayments)
			payments.POST("/:order_id/void", publicHandler.VoidPayment)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
