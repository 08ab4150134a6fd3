package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bx-pool/internal/event"
)

// Cache keeps the last published share prices in Redis.
type Cache struct {
	rdb *redis.Client
	log *zap.Logger
}

func New(addr string, log *zap.Logger) *Cache {
	return &Cache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		log: log.Named("cache"),
	}
}

func priceKey(asset, side string) string {
	return fmt.Sprintf("pool:price:%s:%s", asset, side)
}

func (c *Cache) SetPrice(ctx context.Context, asset, side, price string) error {
	return c.rdb.Set(ctx, priceKey(asset, side), price, 0).Err()
}

func (c *Cache) Price(ctx context.Context, asset, side string) (string, error) {
	return c.rdb.Get(ctx, priceKey(asset, side)).Result()
}

// Subscribe stores every buy and sell price change published on bus.
func (c *Cache) Subscribe(bus *event.Bus) {
	store := func(side string) event.Handler {
		return func(payload interface{}) {
			p, ok := payload.(*event.Payload)
			if !ok {
				return
			}
			if err := c.SetPrice(context.Background(), p.Asset, side, p.Price); err != nil {
				c.log.Warn("price snapshot failed", zap.String("asset", p.Asset), zap.Error(err))
			}
		}
	}
	bus.Subscribe(event.EventBuyPriceChanged, store("buy"))
	bus.Subscribe(event.EventSellPriceChanged, store("sell"))
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}
