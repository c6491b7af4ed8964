package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecsetu/portal/internal/core/domain"
	"github.com/ecsetu/portal/internal/core/ports"
)

const (
	tempPasswordLength   = 12
	tempPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
)

// ProfileService implements ports.ProfileService on top of a user repository
// and a mailer.
type ProfileService struct {
	repo   ports.UserRepository
	mailer ports.Mailer
	logger zerolog.Logger
}

func NewProfileService(repo ports.UserRepository, mailer ports.Mailer, logger zerolog.Logger) *ProfileService {
	return &ProfileService{repo: repo, mailer: mailer, logger: logger}
}

func (s *ProfileService) GetProfile(ctx context.Context, id string) (*domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &account.User, nil
}

// UpdateProfile applies the supplied fields of patch. The identifier inside
// the patch is ignored; id selects the record.
func (s *ProfileService) UpdateProfile(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	patch = patch.WithoutID()
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, *patch.Role)
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email must not be empty", domain.ErrInvalidInput)
		}
		patch.Email = &email
	}

	var (
		account *domain.Account
		err     error
	)
	if patch.IsEmpty() {
		account, err = s.repo.FindByID(ctx, id)
	} else {
		account, err = s.repo.Update(ctx, id, patch)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", id).Msg("profile updated")
	return &account.User, nil
}

// CreateUser stores a new account with a generated temporary password and
// mails that password to the user. A failed email does not undo the account.
func (s *ProfileService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*ports.CreateUserResult, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrInvalidInput)
	}
	role := domain.DefaultRole
	if input.Role != "" {
		if !input.Role.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, input.Role)
		}
		role = input.Role
	}

	password, err := generateTemporaryPassword()
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Account{
		User: domain.User{
			Name:        name,
			Email:       email,
			Role:        role,
			Location:    input.Location,
			Phone:       input.Phone,
			Description: input.Description,
		},
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	sent := s.mailer.SendWelcomeEmail(ctx, created.Email, created.Name, password)
	log := s.logger.With().Str("user_id", created.ID).Str("role", created.Role.String()).Logger()
	if sent {
		log.Info().Msg("user created, welcome email sent")
	} else {
		log.Warn().Msg("user created, welcome email not sent")
	}

	return &ports.CreateUserResult{User: created.User, WelcomeEmailSent: sent}, nil
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// both yield domain.ErrInvalidCredentials.
func (s *ProfileService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &account.User, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateTemporaryPassword() (string, error) {
	limit := big.NewInt(int64(len(tempPasswordAlphabet)))
	b := make([]byte, tempPasswordLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(b), nil
}
