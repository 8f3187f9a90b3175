package service

import (
	"context"
	"fmt"
	"time"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/cache"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/constants"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/logger"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/models"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/queue"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/repository"
)

// StockLedgerService 库存预占/扣减/释放账本服务。
// 不依赖多行事务原语：单变体写入以版本号条件更新保证原子性，
// 多变体批量操作采用 saga 式补偿（见 ReserveMultiple/DeductMultiple）。
// 同一预占最终必须恰好被一次扣减或一次释放解决，该 1:1 约束由
// 订单生命周期一侧保证，本服务只保证各原语自身的原子性。
type StockLedgerService struct {
	variantRepo     repository.VariantStockRepository
	movementRepo    repository.StockMovementRepository
	alertService    *LowStockAlertService
	queueClient     *queue.Client
	maxRetries      int
	retryBackoff    time.Duration
	availabilityTTL time.Duration
}

// NewStockLedgerService 创建库存账本服务
func NewStockLedgerService(variantRepo repository.VariantStockRepository, movementRepo repository.StockMovementRepository, alertService *LowStockAlertService, queueClient *queue.Client, maxRetries int, retryBackoffMS int, availabilityTTLSeconds int) *StockLedgerService {
	if maxRetries <= 0 {
		maxRetries = constants.StockMaxRetries
	}
	if retryBackoffMS <= 0 {
		retryBackoffMS = constants.StockRetryBackoffMS
	}
	return &StockLedgerService{
		variantRepo:     variantRepo,
		movementRepo:    movementRepo,
		alertService:    alertService,
		queueClient:     queueClient,
		maxRetries:      maxRetries,
		retryBackoff:    time.Duration(retryBackoffMS) * time.Millisecond,
		availabilityTTL: time.Duration(availabilityTTLSeconds) * time.Second,
	}
}

// ReserveStock 为订单在指定库存池预占数量。
// 乐观锁重试：每次尝试都重新读取并重新做准入检查，竞争者可能已消耗余量；
// 版本号条件更新 0 行受影响视为竞争失败，退避后重试，耗尽后返回冲突错误。
func (s *StockLedgerService) ReserveStock(variantID uint, quantity int, orderNo, pool string) (*StockOperationResult, error) {
	if variantID == 0 || quantity <= 0 {
		return nil, ErrInvalidStockEntry
	}
	normalized, err := normalizePool(pool)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(s.backoffFor(attempt))
		}
		variant, err := s.variantRepo.GetByID(variantID)
		if err != nil {
			return nil, err
		}
		if variant == nil {
			return nil, ErrVariantNotFound
		}
		deltas, movementType, err := buildReserveChange(variant, quantity, normalized)
		if err != nil {
			return nil, err
		}
		affected, err := s.variantRepo.ConditionalApply(variantID, variant.Version, deltas)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			// 竞争失败：另一写入者已抢先递增版本号，重读后再试
			continue
		}
		result := buildOperationResult(variant, normalized, quantity, deltas)
		s.recordMovement(movementType, variantID, orderNo, quantity, result.PreviousStock, result.NewStock, "", "")
		s.afterAvailabilityChange(variantID)
		return result, nil
	}
	return nil, ErrConcurrencyConflict
}

// ReserveMultiple 按序预占多条目；首个失败即对已成功条目逐项补偿释放，
// 整体呈现全有或全无的效果。补偿本身不在事务内：若进程在部分成功与补偿
// 完成之间崩溃，库存可能遗留超占（不会超卖），需由带外对账回收。
func (s *StockLedgerService) ReserveMultiple(entries []StockEntry, orderNo string) ([]BatchItemResult, error) {
	if len(entries) == 0 {
		return nil, ErrInvalidStockEntry
	}
	results := make([]BatchItemResult, 0, len(entries))
	for i, entry := range entries {
		res, err := s.ReserveStock(entry.VariantID, entry.Quantity, orderNo, entry.Pool)
		if err != nil {
			results = append(results, BatchItemResult{Entry: entry, Error: err.Error()})
			s.compensateReservations(results[:i], orderNo)
			return results, fmt.Errorf("reserve batch item %d: %w", i, err)
		}
		results = append(results, BatchItemResult{Entry: entry, Result: res})
	}
	return results, nil
}

// compensateReservations 逆序释放已成功的预占
func (s *StockLedgerService) compensateReservations(succeeded []BatchItemResult, orderNo string) {
	for i := len(succeeded) - 1; i >= 0; i-- {
		item := succeeded[i]
		if item.Result == nil {
			continue
		}
		if _, err := s.ReleaseReservation(item.Entry.VariantID, item.Entry.Quantity, orderNo, item.Entry.Pool); err != nil {
			logger.Errorw("stock_reserve_compensation_failed",
				"variant_id", item.Entry.VariantID,
				"quantity", item.Entry.Quantity,
				"order_no", orderNo,
				"error", err,
			)
		}
	}
}

// AdjustStock 人工调整在库数量（补货/盘点修正），delta 可正可负。
// 负向调整不允许使在库数量变为负数。
func (s *StockLedgerService) AdjustStock(variantID uint, delta int, note, actor string) (*StockOperationResult, error) {
	if variantID == 0 || delta == 0 {
		return nil, ErrInvalidStockEntry
	}
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(s.backoffFor(attempt))
		}
		variant, err := s.variantRepo.GetByID(variantID)
		if err != nil {
			return nil, err
		}
		if variant == nil {
			return nil, ErrVariantNotFound
		}
		if delta < 0 && variant.Stock+delta < 0 {
			return nil, &InsufficientStockError{Pool: constants.StockPoolRegular, Requested: -delta, Available: variant.Stock}
		}
		deltas := repository.StockDeltas{Stock: delta}
		affected, err := s.variantRepo.ConditionalApply(variantID, variant.Version, deltas)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			continue
		}
		result := buildOperationResult(variant, constants.StockPoolRegular, delta, deltas)
		s.recordMovement(constants.MovementTypeAdjusted, variantID, "", delta, result.PreviousStock, result.NewStock, note, actor)
		s.afterAvailabilityChange(variantID)
		return result, nil
	}
	return nil, ErrConcurrencyConflict
}

// AvailabilitySnapshot 变体可售情况快照
type AvailabilitySnapshot struct {
	VariantID         uint   `json:"variant_id"`
	Stock             int    `json:"stock"`
	ReservedStock     int    `json:"reserved_stock"`
	Available         int    `json:"available"`
	PreorderStock     int    `json:"preorder_stock"`
	AllowPreorder     bool   `json:"allow_preorder"`
	AllowBackorder    bool   `json:"allow_backorder"`
	BackorderHeadroom int    `json:"backorder_headroom"`
	Version           uint64 `json:"version"`
}

// GetAvailability 查询变体可售情况，优先命中缓存快照
func (s *StockLedgerService) GetAvailability(ctx context.Context, variantID uint) (*AvailabilitySnapshot, error) {
	if variantID == 0 {
		return nil, ErrInvalidStockEntry
	}
	var snapshot AvailabilitySnapshot
	if hit, err := cache.GetAvailability(ctx, variantID, &snapshot); err == nil && hit {
		return &snapshot, nil
	}
	variant, err := s.variantRepo.GetByID(variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, ErrVariantNotFound
	}
	snapshot = AvailabilitySnapshot{
		VariantID:         variant.ID,
		Stock:             variant.Stock,
		ReservedStock:     variant.ReservedStock,
		Available:         variant.Available(),
		PreorderStock:     variant.PreorderStock,
		AllowPreorder:     variant.AllowPreorder,
		AllowBackorder:    variant.AllowBackorder,
		BackorderHeadroom: variant.BackorderHeadroom(),
		Version:           variant.Version,
	}
	if err := cache.SetAvailability(ctx, variantID, snapshot, s.availabilityTTL); err != nil {
		logger.Warnw("stock_availability_cache_set_failed", "variant_id", variantID, "error", err)
	}
	return &snapshot, nil
}

// backoffFor 返回第 attempt 次重试前的退避时长（首次 50ms，逐次翻倍）
func (s *StockLedgerService) backoffFor(attempt int) time.Duration {
	backoff := s.retryBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	return backoff
}

// afterAvailabilityChange 库存变更后的后置动作：失效缓存快照并触发低库存检查。
// 缓存与预警均为尽力而为，失败只记录日志。
func (s *StockLedgerService) afterAvailabilityChange(variantID uint) {
	if err := cache.DelAvailability(context.Background(), variantID); err != nil {
		logger.Warnw("stock_availability_cache_invalidate_failed", "variant_id", variantID, "error", err)
	}
	if s.queueClient != nil && s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueLowStockCheck(queue.LowStockCheckPayload{VariantID: variantID}); err != nil {
			logger.Warnw("stock_low_stock_check_enqueue_failed", "variant_id", variantID, "error", err)
		}
		return
	}
	if s.alertService != nil {
		if err := s.alertService.CheckAndAlert(variantID); err != nil {
			logger.Warnw("stock_low_stock_check_failed", "variant_id", variantID, "error", err)
		}
	}
}

// buildReserveChange 按库存池做准入检查并生成字段增量
func buildReserveChange(variant *models.VariantStock, quantity int, pool string) (repository.StockDeltas, string, error) {
	switch pool {
	case constants.StockPoolRegular:
		available := variant.Stock - variant.ReservedStock
		if available < quantity {
			return repository.StockDeltas{}, "", &InsufficientStockError{Pool: pool, Requested: quantity, Available: available}
		}
		return repository.StockDeltas{ReservedStock: quantity}, constants.MovementTypeReserved, nil
	case constants.StockPoolPreorder:
		if !variant.AllowPreorder {
			return repository.StockDeltas{}, "", ErrPreorderNotAllowed
		}
		if variant.PreorderStock < quantity {
			return repository.StockDeltas{}, "", &InsufficientStockError{Pool: pool, Requested: quantity, Available: variant.PreorderStock}
		}
		return repository.StockDeltas{ReservedStock: quantity, PreorderStock: -quantity}, constants.MovementTypePreorderReserved, nil
	case constants.StockPoolBackorder:
		if !variant.AllowBackorder {
			return repository.StockDeltas{}, "", ErrBackorderNotAllowed
		}
		if variant.BackorderLimit > 0 && variant.ReservedStock+quantity > variant.BackorderLimit {
			return repository.StockDeltas{}, "", &BackorderLimitError{Limit: variant.BackorderLimit, Reserved: variant.ReservedStock, Requested: quantity}
		}
		return repository.StockDeltas{ReservedStock: quantity}, constants.MovementTypeReserved, nil
	}
	return repository.StockDeltas{}, "", ErrInvalidStockPool
}

// buildOperationResult 基于写入前读取的快照与增量构造结果
func buildOperationResult(variant *models.VariantStock, pool string, quantity int, deltas repository.StockDeltas) *StockOperationResult {
	return &StockOperationResult{
		VariantID:        variant.ID,
		Pool:             pool,
		Quantity:         quantity,
		PreviousStock:    variant.Stock,
		NewStock:         variant.Stock + deltas.Stock,
		PreviousReserved: variant.ReservedStock,
		NewReserved:      variant.ReservedStock + deltas.ReservedStock,
		Version:          variant.Version + 1,
	}
}
