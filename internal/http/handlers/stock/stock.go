package stock

import (
	"strconv"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/http/response"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/service"

	"github.com/gin-gonic/gin"
)

type stockEntryRequest struct {
	VariantID uint   `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Pool      string `json:"pool"`
}

type stockOperationRequest struct {
	VariantID uint   `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Pool      string `json:"pool"`
	OrderNo   string `json:"order_no"`
}

type batchStockRequest struct {
	OrderNo string              `json:"order_no"`
	Items   []stockEntryRequest `json:"items" binding:"required,min=1"`
}

type adjustStockRequest struct {
	VariantID uint   `json:"variant_id" binding:"required"`
	Delta     int    `json:"delta" binding:"required"`
	Note      string `json:"note"`
	Actor     string `json:"actor"`
}

func (r batchStockRequest) toEntries() []service.StockEntry {
	entries := make([]service.StockEntry, 0, len(r.Items))
	for _, item := range r.Items {
		entries = append(entries, service.StockEntry{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Pool:      item.Pool,
		})
	}
	return entries
}

// Reserve 预占单个变体库存
func (h *Handler) Reserve(c *gin.Context) {
	var req stockOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}
	result, err := h.StockLedgerService.ReserveStock(req.VariantID, req.Quantity, req.OrderNo, req.Pool)
	if err != nil {
		respondStockWriteError(c, err)
		return
	}
	response.Success(c, result)
}

// ReserveBatch 批量预占库存（全部成功或全部回滚）
func (h *Handler) ReserveBatch(c *gin.Context) {
	var req batchStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}
	results, err := h.StockLedgerService.ReserveMultiple(req.toEntries(), req.OrderNo)
	if err != nil {
		respondBatchError(c, err, results)
		return
	}
	response.Success(c, results)
}

// Deduct 实扣单个变体库存
func (h *Handler) Deduct(c *gin.Context) {
	var req stockOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}
	result, err := h.StockLedgerService.DeductStock(req.VariantID, req.Quantity, req.OrderNo, req.Pool)
	if err != nil {
		respondStockWriteError(c, err)
		return
	}
	response.Success(c, result)
}

// DeductBatch 批量实扣库存（全部成功或全部回滚）
func (h *Handler) DeductBatch(c *gin.Context) {
	var req batchStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}
	results, err := h.StockLedgerService.DeductMultiple(req.toEntries(), req.OrderNo)
	if err != nil {
		respondBatchError(c, err, results)
		return
	}
	response.Success(c, results)
}

// Release 释放单个变体的预占
func (h *Handler) Release(c *gin.Context) {
	var req stockOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}
	result, err := h.StockLedgerService.ReleaseReservation(req.VariantID, req.Quantity, req.OrderNo, req.Pool)
	if err != nil {
		respondStockWriteError(c, err)
		return
	}
	response.Success(c, result)
}

// ReleaseBatch 批量释放预占（逐项尽力而为，不回滚）
func (h *Handler) ReleaseBatch(c *gin.Context) {
	var req batchStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}
	results, err := h.StockLedgerService.ReleaseMultiple(req.toEntries(), req.OrderNo)
	if err != nil {
		respondBatchError(c, err, results)
		return
	}
	response.Success(c, results)
}

// Adjust 手工调整现货库存
func (h *Handler) Adjust(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}
	result, err := h.StockLedgerService.AdjustStock(req.VariantID, req.Delta, req.Note, req.Actor)
	if err != nil {
		respondStockWriteError(c, err)
		return
	}
	response.Success(c, result)
}

// GetAvailability 查询变体可售情况
func (h *Handler) GetAvailability(c *gin.Context) {
	variantID := parseUintParam(c, "id")
	if variantID == 0 {
		response.BadRequest(c, "变体 ID 无效")
		return
	}
	snapshot, err := h.StockLedgerService.GetAvailability(c.Request.Context(), variantID)
	if err != nil {
		respondStockWriteError(c, err)
		return
	}
	response.Success(c, snapshot)
}

func respondBatchError(c *gin.Context, err error, results []service.BatchItemResult) {
	for _, rule := range stockWriteErrorRules {
		if matchesRule(err, rule) {
			response.ErrorWithData(c, rule.code, err.Error(), gin.H{"items": results})
			return
		}
	}
	response.ErrorWithData(c, response.CodeInternal, "库存操作失败", gin.H{"items": results})
}

func parseUintParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}
