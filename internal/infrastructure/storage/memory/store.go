// Package memory keeps the session snapshot in process memory.
package memory

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ecsetu/portal/internal/core/domain"
)

// Store is a ports.SnapshotStore backed by go-cache. Entries never expire.
type Store struct {
	key string
	c   *gocache.Cache
}

// New returns an empty store holding its snapshot under key.
func New(key string) *Store {
	if key == "" {
		key = domain.DefaultSnapshotKey
	}
	return &Store{key: key, c: gocache.New(gocache.NoExpiration, 0)}
}

func (s *Store) Load(_ context.Context) ([]byte, error) {
	v, ok := s.c.Get(s.key)
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	b, _ := v.([]byte)
	return append([]byte(nil), b...), nil
}

func (s *Store) Save(_ context.Context, raw []byte) error {
	s.c.Set(s.key, append([]byte(nil), raw...), gocache.NoExpiration)
	return nil
}

func (s *Store) Delete(_ context.Context) error {
	s.c.Delete(s.key)
	return nil
}
