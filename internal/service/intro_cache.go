package service

import (
	"context"
	"errors"
	"fmt"
	"lingua_tutor_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const introCacheTTL = 24 * time.Hour

// IntroCache 导师自我介绍缓存；Redis 未启用时所有操作为空
type IntroCache struct {
	Redis *redis.Client
}

func NewIntroCache(rdb *redis.Client) *IntroCache {
	return &IntroCache{Redis: rdb}
}

func introKey(userID uint) string {
	return fmt.Sprintf("tutor:intro:%d", userID)
}

func (c *IntroCache) Get(ctx context.Context, userID uint) (string, bool) {
	if c == nil || c.Redis == nil {
		return "", false
	}
	val, err := c.Redis.Get(ctx, introKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("Failed to read tutor intro cache", zap.Uint("userID", userID), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

func (c *IntroCache) Set(ctx context.Context, userID uint, intro string) {
	if c == nil || c.Redis == nil {
		return
	}
	if err := c.Redis.Set(ctx, introKey(userID), intro, introCacheTTL).Err(); err != nil {
		logger.Log.Warn("Failed to write tutor intro cache", zap.Uint("userID", userID), zap.Error(err))
	}
}

func (c *IntroCache) Invalidate(ctx context.Context, userID uint) {
	if c == nil || c.Redis == nil {
		return
	}
	if err := c.Redis.Del(ctx, introKey(userID)).Err(); err != nil {
		logger.Log.Warn("Failed to invalidate tutor intro cache", zap.Uint("userID", userID), zap.Error(err))
	}
}
