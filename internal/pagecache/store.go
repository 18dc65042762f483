package pagecache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"yatube/internal/logging"
)

// Store keeps rendered pages for a limited time. Clear drops every page at
// once; single pages are never invalidated.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// Open returns a Redis backed store when addr is set and the server answers,
// and an in-process store otherwise, so the site keeps working while Redis
// is down.
func Open(ctx context.Context, addr, password string, db int) Store {
	if addr == "" {
		return NewMemoryStore(DefaultMemoryEntries)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logging.Logger.WithFields(logrus.Fields{
			"addr":  addr,
			"error": err.Error(),
		}).Warn("Redis unavailable, falling back to in-process page cache")
		_ = client.Close()
		return NewMemoryStore(DefaultMemoryEntries)
	}
	logging.Logger.WithField("addr", addr).Info("Redis page cache connected")
	return NewRedisStore(client, DefaultPrefix)
}
