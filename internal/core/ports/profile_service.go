package ports

import (
	"context"

	"github.com/ecsetu/portal/internal/core/domain"
)

// CreateUserInput carries the fields an administrator supplies for a new user.
type CreateUserInput struct {
	Name        string
	Email       string
	Role        domain.Role
	Location    string
	Phone       string
	Description string
}

// CreateUserResult is returned after an account is created.
type CreateUserResult struct {
	User domain.User
	// WelcomeEmailSent is false when the mailer is disabled or delivery failed.
	WelcomeEmailSent bool
}

// ProfileService defines the backend use cases behind /api/profile.
type ProfileService interface {
	GetProfile(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*CreateUserResult, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}
