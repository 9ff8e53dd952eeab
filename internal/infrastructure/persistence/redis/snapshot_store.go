package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yuzvak/storefront-cart/internal/infrastructure/monitoring"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

// SnapshotStore keeps cart snapshots as plain string values. A non-zero TTL
// expires carts nobody touched for that long; reads slide the expiry.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewSnapshotStore(conn *Connection, ttl time.Duration, log *logger.Logger) *SnapshotStore {
	return &SnapshotStore{
		client: monitoring.InstrumentRedisClient(conn.GetClient()),
		ttl:    ttl,
		logger: log,
	}
}

func (s *SnapshotStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var cmd *redis.StringCmd
	if s.ttl > 0 {
		cmd = s.client.GetEx(ctx, key, s.ttl)
	} else {
		cmd = s.client.Get(ctx, key)
	}

	data, err := cmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		s.logger.Error("Failed to read cart snapshot", "key", key, "error", err)
		return nil, false, err
	}

	return data, true, nil
}

func (s *SnapshotStore) Set(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to write cart snapshot", "key", key, "error", err)
		return err
	}
	return nil
}

func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
