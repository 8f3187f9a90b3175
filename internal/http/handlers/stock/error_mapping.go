package stock

import (
	"errors"

	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/http/response"
	"github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
}

var stockWriteErrorRules = []mappedHandlerError{
	{target: service.ErrVariantNotFound, code: response.CodeNotFound},
	{target: service.ErrInvalidStockEntry, code: response.CodeBadRequest},
	{target: service.ErrInvalidStockPool, code: response.CodeBadRequest},
	{target: service.ErrInsufficientStock, code: response.CodeUnprocessable},
	{target: service.ErrInsufficientPreorderStock, code: response.CodeUnprocessable},
	{target: service.ErrPreorderNotAllowed, code: response.CodeUnprocessable},
	{target: service.ErrBackorderNotAllowed, code: response.CodeUnprocessable},
	{target: service.ErrBackorderLimitExceeded, code: response.CodeUnprocessable},
	{target: service.ErrConcurrencyConflict, code: response.CodeConflict},
}

var alertErrorRules = []mappedHandlerError{
	{target: service.ErrVariantNotFound, code: response.CodeNotFound},
	{target: service.ErrAlertNotFound, code: response.CodeNotFound},
	{target: service.ErrInvalidStockEntry, code: response.CodeBadRequest},
}

func matchesRule(err error, rule mappedHandlerError) bool {
	return errors.Is(err, rule.target)
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			response.Error(c, rule.code, err.Error())
			return
		}
	}
	response.Error(c, fallbackCode, fallbackMsg)
}

func respondStockWriteError(c *gin.Context, err error) {
	respondWithMappedError(c, err, stockWriteErrorRules, response.CodeInternal, "库存操作失败")
}

func respondAlertError(c *gin.Context, err error) {
	respondWithMappedError(c, err, alertErrorRules, response.CodeInternal, "预警操作失败")
}
