package stock

import (
	"strings"
	"time"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/http/response"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListMovements 查询库存流水列表
func (h *Handler) ListMovements(c *gin.Context) {
	filter := repository.StockMovementListFilter{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
		Type:     strings.TrimSpace(c.Query("type")),
	}
	if variantID := parseQueryInt(c, "variant_id", 0); variantID > 0 {
		filter.VariantID = uint(variantID)
	}
	if from := parseQueryTime(c, "created_from"); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseQueryTime(c, "created_to"); to != nil {
		filter.CreatedTo = to
	}

	movements, total, err := h.StockLedgerService.ListMovements(filter)
	if err != nil {
		response.Error(c, response.CodeInternal, "库存流水查询失败")
		return
	}
	response.SuccessWithPage(c, movements, buildPagination(filter.Page, filter.PageSize, total))
}

func parseQueryTime(c *gin.Context, name string) *time.Time {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &value
}
