package stock

import "github.com/scaliuslabs/scalius-commerce-lite-sub006/internal/provider"

// Handler 库存台账接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建库存处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
