package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ecsetu/portal/internal/core/domain"
)

// SnapshotStore keeps the session snapshot under one Redis key with no TTL.
type SnapshotStore struct {
	client *redis.Client
	key    string
}

// NewSnapshotStore wraps client. An empty key selects domain.DefaultSnapshotKey.
func NewSnapshotStore(client *redis.Client, key string) *SnapshotStore {
	if key == "" {
		key = domain.DefaultSnapshotKey
	}
	return &SnapshotStore{client: client, key: key}
}

func (s *SnapshotStore) Load(ctx context.Context) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return b, nil
}

func (s *SnapshotStore) Save(ctx context.Context, raw []byte) error {
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *SnapshotStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}
