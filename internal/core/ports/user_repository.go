package ports

import (
	"context"

	"github.com/ecsetu/portal/internal/core/domain"
)

// UserRepository persists backend accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// Update applies patch to the account and returns the stored result.
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.Account, error)
}
