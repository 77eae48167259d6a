package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-cinema-booking/internal/model"

	"github.com/redis/go-redis/v9"
)

// SeatMapCache 座位圖快照快取。座位圖是讀多寫少的熱點：
// 開賣時同一場次會被大量輪詢，所以用短 TTL 的 Redis 快照擋住資料庫。
// 任何座位變更（hold、confirm、release、sweep）都要呼叫 Invalidate。
type SeatMapCache interface {
	Get(ctx context.Context, showtimeID int) (*model.SeatMapResponse, error)
	Set(ctx context.Context, showtimeID int, seatMap *model.SeatMapResponse) error
	Invalidate(ctx context.Context, showtimeID int) error
}

type SeatMapCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSeatMapCache(client *redis.Client, ttl time.Duration) SeatMapCache {
	return &SeatMapCacheImpl{
		client: client,
		ttl:    ttl,
	}
}

func (c *SeatMapCacheImpl) key(showtimeID int) string {
	return fmt.Sprintf("showtime:%d:seatmap", showtimeID)
}

// Get 快取未命中回傳 (nil, nil)，讓呼叫端回源資料庫
func (c *SeatMapCacheImpl) Get(ctx context.Context, showtimeID int) (*model.SeatMapResponse, error) {
	data, err := c.client.Get(ctx, c.key(showtimeID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var seatMap model.SeatMapResponse
	if err := json.Unmarshal(data, &seatMap); err != nil {
		// 壞掉的快照當未命中處理，順手清掉
		_ = c.client.Del(ctx, c.key(showtimeID)).Err()
		return nil, nil
	}

	return &seatMap, nil
}

func (c *SeatMapCacheImpl) Set(ctx context.Context, showtimeID int, seatMap *model.SeatMapResponse) error {
	data, err := json.Marshal(seatMap)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.key(showtimeID), data, c.ttl).Err()
}

func (c *SeatMapCacheImpl) Invalidate(ctx context.Context, showtimeID int) error {
	return c.client.Del(ctx, c.key(showtimeID)).Err()
}
