package queue

import (
	"encoding/json"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskLowStockCheck 单变体低库存检查任务
	TaskLowStockCheck = constants.TaskLowStockCheck
	// TaskLowStockScan 全量低库存巡检任务
	TaskLowStockScan = constants.TaskLowStockScan
)

// LowStockCheckPayload 低库存检查任务载荷
type LowStockCheckPayload struct {
	VariantID uint `json:"variant_id"`
}

// NewLowStockCheckTask 创建低库存检查任务
func NewLowStockCheckTask(payload LowStockCheckPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockCheck, body), nil
}

// NewLowStockScanTask 创建全量巡检任务
func NewLowStockScanTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskLowStockScan, nil), nil
}
