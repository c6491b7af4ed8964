package redis

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/ecsetu/portal/internal/core/domain"
)

// fakeRedis answers GET/SET/DEL from a map inside a process hook, so no
// connection is ever dialed.
type fakeRedis struct {
	data map[string]string
	fail error
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("dial not expected")
	}
}

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (f *fakeRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if f.fail != nil {
			return f.fail
		}
		args := cmd.Args()
		key, _ := args[1].(string)
		switch c := cmd.(type) {
		case *redis.StringCmd:
			v, ok := f.data[key]
			if !ok {
				return redis.Nil
			}
			c.SetVal(v)
		case *redis.StatusCmd:
			switch v := args[2].(type) {
			case []byte:
				f.data[key] = string(v)
			case string:
				f.data[key] = v
			}
			c.SetVal("OK")
		case *redis.IntCmd:
			var n int64
			if _, ok := f.data[key]; ok {
				delete(f.data, key)
				n = 1
			}
			c.SetVal(n)
		}
		return nil
	}
}

func newFakeStore(t *testing.T) (*SnapshotStore, *fakeRedis) {
	t.Helper()
	fake := &fakeRedis{data: make(map[string]string)}
	client := redis.NewClient(&redis.Options{Addr: "fake:6379"})
	client.AddHook(fake)
	t.Cleanup(func() { _ = client.Close() })
	return NewSnapshotStore(client, ""), fake
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	store, fake := newFakeStore(t)
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}

	raw := []byte(`{"isAuthenticated":true}`)
	if err := store.Save(ctx, raw); err != nil {
		t.Fatalf("save: %v", err)
	}
	if fake.data[domain.DefaultSnapshotKey] != string(raw) {
		t.Fatalf("expected value under default key, got %v", fake.data)
	}

	got, err := store.Load(ctx)
	if err != nil || string(got) != string(raw) {
		t.Fatalf("unexpected load %q, %v", got, err)
	}

	if err := store.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound after delete, got %v", err)
	}
}

func TestSnapshotStore_ErrorsAreWrapped(t *testing.T) {
	store, fake := newFakeStore(t)
	boom := errors.New("connection reset")
	fake.fail = boom

	if _, err := store.Load(context.Background()); !errors.Is(err, boom) || errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if err := store.Save(context.Background(), []byte("{}")); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error from save, got %v", err)
	}
}
