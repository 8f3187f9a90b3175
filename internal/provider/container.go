package provider

import (
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/cache"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/config"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/logger"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/models"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/queue"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/repository"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	VariantStockRepo  repository.VariantStockRepository
	StockMovementRepo repository.StockMovementRepository
	LowStockAlertRepo repository.LowStockAlertRepository

	// Services
	StockLedgerService   *service.StockLedgerService
	LowStockAlertService *service.LowStockAlertService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.VariantStockRepo = repository.NewVariantStockRepository(db)
	c.StockMovementRepo = repository.NewStockMovementRepository(db)
	c.LowStockAlertRepo = repository.NewLowStockAlertRepository(db)
}

func (c *Container) initServices() {
	c.LowStockAlertService = service.NewLowStockAlertService(c.VariantStockRepo, c.LowStockAlertRepo)
	c.StockLedgerService = service.NewStockLedgerService(
		c.VariantStockRepo,
		c.StockMovementRepo,
		c.LowStockAlertService,
		c.QueueClient,
		c.Config.Stock.MaxRetries,
		c.Config.Stock.RetryBackoffMS,
		c.Config.Stock.AvailabilityCacheTTLSeconds,
	)
}
