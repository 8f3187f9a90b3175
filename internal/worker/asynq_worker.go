package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/logger"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/provider"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/queue"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskLowStockCheck, c.handleLowStockCheck)
	mux.HandleFunc(queue.TaskLowStockScan, c.handleLowStockScan)
}

func (c *Consumer) handleLowStockCheck(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_low_stock_check_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.LowStockCheckPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_low_stock_check_unmarshal_failed", "error", err)
		return err
	}
	if payload.VariantID == 0 {
		logger.Debugw("worker_low_stock_check_skip_invalid_payload", "variant_id", payload.VariantID)
		return nil
	}
	if c.LowStockAlertService == nil {
		logger.Warnw("worker_low_stock_check_skip_service_nil", "variant_id", payload.VariantID)
		return nil
	}
	if err := c.LowStockAlertService.CheckAndAlert(payload.VariantID); err != nil {
		if errors.Is(err, service.ErrVariantNotFound) {
			// 变体在任务入队后被删除，跳过即可
			logger.Debugw("worker_low_stock_check_skip_variant_not_found", "variant_id", payload.VariantID)
			return nil
		}
		logger.Warnw("worker_low_stock_check_failed", "variant_id", payload.VariantID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleLowStockScan(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_low_stock_scan_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	if c.LowStockAlertService == nil {
		logger.Warnw("worker_low_stock_scan_skip_service_nil")
		return nil
	}
	checked, err := c.LowStockAlertService.Scan()
	if err != nil {
		logger.Warnw("worker_low_stock_scan_failed", "error", err)
		return err
	}
	logger.Debugw("worker_low_stock_scan_done", "checked", checked)
	return nil
}
