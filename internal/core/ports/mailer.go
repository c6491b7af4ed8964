package ports

import (
	"context"

	"github.com/ecsetu/portal/internal/core/domain"
)

// Mailer delivers transactional email. Both methods report delivery as a
// boolean and never return an error.
type Mailer interface {
	Send(ctx context.Context, msg domain.EmailMessage) bool
	SendWelcomeEmail(ctx context.Context, email, name, temporaryPassword string) bool
	// Enabled reports whether SMTP credentials were configured.
	Enabled() bool
}
