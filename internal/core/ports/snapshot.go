package ports

import (
	"context"

	"github.com/ecsetu/portal/internal/core/domain"
)

// SnapshotStore holds the raw snapshot under a single fixed key.
type SnapshotStore interface {
	// Load returns domain.ErrSnapshotNotFound when nothing is stored.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, raw []byte) error
	// Delete succeeds when nothing is stored.
	Delete(ctx context.Context) error
}

// SnapshotPersister serializes all snapshot access. Writes are
// fire-and-forget; Load and Flush wait for every earlier operation.
type SnapshotPersister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(snapshot domain.Snapshot)
	PatchRole(role domain.Role)
	Delete()
	Flush(ctx context.Context) error
}
