package ports

import (
	"context"

	"github.com/ecsetu/portal/internal/core/domain"
)

// ProfileClient is the session container's view of the profile backend.
type ProfileClient interface {
	// Fetch returns the stored fields for id. Any non-success answer is
	// reported as domain.ErrProfileUnavailable.
	Fetch(ctx context.Context, id string) (domain.UserPatch, error)
	// Update pushes patch for id. A rejected update matches
	// domain.ErrProfileRejected and carries the backend's message.
	Update(ctx context.Context, id string, patch domain.UserPatch) error
}
