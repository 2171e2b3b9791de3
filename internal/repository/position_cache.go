package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PositionCache stores legal-placement lists in Redis, keyed by position.
type PositionCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func NewPositionCache(client *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *PositionCache {
	return &PositionCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// GetLegal returns the cached list for key; ok is false on a miss.
func (c *PositionCache) GetLegal(ctx context.Context, key string) (cells []string, ok bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	v, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err = json.Unmarshal(v, &cells); err != nil {
		return nil, false, fmt.Errorf("decode cached cells %s: %w", key, err)
	}
	return cells, true, nil
}

func (c *PositionCache) PutLegal(ctx context.Context, key string, cells []string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if cells == nil {
		cells = []string{}
	}
	v, err := json.Marshal(cells)
	if err != nil {
		return err
	}
	if err = c.client.Set(ctx, key, v, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	c.log.Debugf("cached %d legal cells under %s", len(cells), key)
	return nil
}
