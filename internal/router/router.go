package router

import (
	"fmt"
	"strings"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/cache"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/config"
	stockhandlers "github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/http/handlers/stock"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/logger"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	stockHandler := stockhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "scl"
	}
	redisClient := cache.Client()
	writeRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:stock_write", redisPrefix),
		WindowSeconds: cfg.Security.WriteRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.WriteRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		stock := apiV1.Group("/stock")
		{
			// 写接口（订单侧与管理侧调用）
			write := stock.Group("")
			write.Use(RateLimitMiddleware(redisClient, writeRule, KeyByIP))
			{
				write.POST("/reservations", stockHandler.Reserve)
				write.POST("/reservations/batch", stockHandler.ReserveBatch)
				write.POST("/deductions", stockHandler.Deduct)
				write.POST("/deductions/batch", stockHandler.DeductBatch)
				write.POST("/releases", stockHandler.Release)
				write.POST("/releases/batch", stockHandler.ReleaseBatch)
				write.POST("/adjustments", stockHandler.Adjust)
			}

			// 查询接口
			stock.GET("/variants/:id/availability", stockHandler.GetAvailability)
			stock.GET("/movements", stockHandler.ListMovements)

			// 低库存预警
			stock.GET("/alerts", stockHandler.ListAlerts)
			stock.POST("/alerts/:variant_id/acknowledge", stockHandler.AcknowledgeAlert)
			stock.POST("/alerts/scan", stockHandler.TriggerAlertScan)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
