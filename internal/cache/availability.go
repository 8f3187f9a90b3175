package cache

import (
	"context"
	"fmt"
	"time"
)

// availabilityKey 变体可售快照缓存键
func availabilityKey(variantID uint) string {
	return fmt.Sprintf("stock:availability:%d", variantID)
}

// GetAvailability 读取变体可售快照缓存
func GetAvailability(ctx context.Context, variantID uint, dest interface{}) (bool, error) {
	return GetJSON(ctx, availabilityKey(variantID), dest)
}

// SetAvailability 写入变体可售快照缓存
func SetAvailability(ctx context.Context, variantID uint, value interface{}, ttl time.Duration) error {
	return SetJSON(ctx, availabilityKey(variantID), value, ttl)
}

// DelAvailability 失效变体可售快照缓存
func DelAvailability(ctx context.Context, variantID uint) error {
	return Del(ctx, availabilityKey(variantID))
}
