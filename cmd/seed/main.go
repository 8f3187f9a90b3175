package main

import (
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/config"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/logger"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加示例商品
	products := []models.Product{
		{Name: "无线蓝牙耳机", Slug: "wireless-earphones", IsActive: true},
		{Name: "智能手表", Slug: "smart-watch", IsActive: true},
		{Name: "便携充电宝", Slug: "power-bank", IsActive: true},
	}

	productIDs := map[string]uint{}
	for _, p := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", p.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&p).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", p.Slug, err)
				continue
			}
			stdLog.Printf("Created product: %s", p.Slug)
			productIDs[p.Slug] = p.ID
		} else {
			stdLog.Printf("Product already exists: %s", p.Slug)
			productIDs[p.Slug] = existing.ID
		}
	}

	// 添加变体库存
	variants := []models.VariantStock{
		{
			ProductID:         productIDs["wireless-earphones"],
			SKUCode:           "EARPHONE-BLACK",
			PriceAmount:       models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			Stock:             120,
			LowStockThreshold: 10,
		},
		{
			ProductID:         productIDs["wireless-earphones"],
			SKUCode:           "EARPHONE-WHITE",
			PriceAmount:       models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			Stock:             0,
			AllowPreorder:     true,
			PreorderStock:     50,
			LowStockThreshold: 5,
		},
		{
			ProductID:         productIDs["smart-watch"],
			SKUCode:           "WATCH-44MM",
			PriceAmount:       models.NewMoneyFromDecimal(decimal.NewFromFloat(299.00)),
			Stock:             30,
			AllowBackorder:    true,
			BackorderLimit:    20,
			LowStockThreshold: 8,
		},
		{
			ProductID:   productIDs["power-bank"],
			SKUCode:     "POWERBANK-10000",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(39.50)),
			Stock:       500,
		},
	}

	for _, v := range variants {
		if v.ProductID == 0 {
			continue
		}
		var existing models.VariantStock
		if err := models.DB.Where("sku_code = ?", v.SKUCode).First(&existing).Error; err != nil {
			if err := models.DB.Create(&v).Error; err != nil {
				stdLog.Printf("Failed to create variant %s: %v", v.SKUCode, err)
			} else {
				stdLog.Printf("Created variant: %s", v.SKUCode)
			}
		} else {
			stdLog.Printf("Variant already exists: %s", v.SKUCode)
		}
	}

	stdLog.Printf("Seed finished")
}
