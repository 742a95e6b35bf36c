package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	boardCacheKey = "kanban:board"
	boardCacheTTL = 30 * time.Second
)

// BoardCache redis-кэш канбан-доски. Любая запись, меняющая состав или
// порядок досок (статус заказа, этап операции), сбрасывает его. Промахи и
// ошибки redis не фатальны — доска просто строится из БД.
type BoardCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewBoardCache(rdb *redis.Client, logger *zap.Logger) *BoardCache {
	return &BoardCache{rdb: rdb, logger: logger}
}

// Get returns the cached board or false.
func (c *BoardCache) Get(ctx context.Context, dest interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, boardCacheKey).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("corrupt kanban board cache entry", zap.Error(err))
		return false
	}
	return true
}

func (c *BoardCache) Set(ctx context.Context, board interface{}) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(board)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, boardCacheKey, data, boardCacheTTL).Err(); err != nil {
		c.logger.Warn("failed to cache kanban board", zap.Error(err))
	}
}

func (c *BoardCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, boardCacheKey).Err(); err != nil {
		c.logger.Warn("failed to invalidate kanban board cache", zap.Error(err))
	}
}
