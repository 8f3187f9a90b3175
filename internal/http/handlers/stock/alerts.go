package stock

import (
	"strconv"
	"strings"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/http/response"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAlerts 查询低库存预警列表
func (h *Handler) ListAlerts(c *gin.Context) {
	filter := repository.LowStockAlertListFilter{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
		Status:   strings.TrimSpace(c.Query("status")),
	}
	if productID := parseQueryInt(c, "product_id", 0); productID > 0 {
		filter.ProductID = uint(productID)
	}
	alerts, total, err := h.LowStockAlertService.ListAlerts(filter)
	if err != nil {
		respondAlertError(c, err)
		return
	}
	response.SuccessWithPage(c, alerts, buildPagination(filter.Page, filter.PageSize, total))
}

// AcknowledgeAlert 确认低库存预警
func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	variantID := parseUintParam(c, "variant_id")
	if variantID == 0 {
		response.BadRequest(c, "变体 ID 无效")
		return
	}
	alert, err := h.LowStockAlertService.Acknowledge(variantID)
	if err != nil {
		respondAlertError(c, err)
		return
	}
	response.Success(c, alert)
}

// TriggerAlertScan 触发一次全量低库存巡检
func (h *Handler) TriggerAlertScan(c *gin.Context) {
	if h.QueueClient != nil && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueLowStockScan(); err != nil {
			response.Error(c, response.CodeInternal, "巡检任务入队失败")
			return
		}
		response.SuccessWithMsg(c, "scan enqueued", nil)
		return
	}
	checked, err := h.LowStockAlertService.Scan()
	if err != nil {
		respondAlertError(c, err)
		return
	}
	response.Success(c, gin.H{"checked": checked})
}

func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	totalPage := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPage++
	}
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}
