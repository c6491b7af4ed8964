package mail

import (
	"bytes"
	"context"
	"html/template"

	"github.com/ecsetu/portal/internal/core/domain"
)

const welcomeSubject = "Welcome to Our Company!"

var welcomeTemplate = template.Must(template.New("welcome_html").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Welcome to Our Company!</h2>
  <p>Hello <strong>{{.Name}}</strong>,</p>
  <p>We're excited to have you join our team! Your account has been created successfully.</p>
  <div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <h3 style="margin-top: 0;">Your Account Credentials:</h3>
    <p><strong>Email:</strong> {{.Email}}</p>
    <p><strong>Password:</strong> {{.Password}}</p>
  </div>
  <p>Please log in to our system using the credentials above and change your password for security reasons.</p>
  <p>If you have any questions or need assistance, please reach out to our IT department.</p>
  <br>
  <p>Best regards,<br>The Admin Team</p>
</div>
`))

type welcomeVars struct {
	Name     string
	Email    string
	Password string
}

// WelcomeMessage renders the welcome email for a newly created account.
func WelcomeMessage(email, name, temporaryPassword string) (domain.EmailMessage, error) {
	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, welcomeVars{Name: name, Email: email, Password: temporaryPassword}); err != nil {
		return domain.EmailMessage{}, err
	}
	return domain.EmailMessage{To: email, Subject: welcomeSubject, HTML: buf.String()}, nil
}

// SendWelcomeEmail sends the account credentials to a new user.
//
// The body carries the temporary password in plain text; recipients are told
// to change it on first login.
func (m *Mailer) SendWelcomeEmail(ctx context.Context, email, name, temporaryPassword string) bool {
	msg, err := WelcomeMessage(email, name, temporaryPassword)
	if err != nil {
		m.log.Error().Err(err).Str("to", email).Msg("failed to render welcome email")
		return false
	}
	return m.Send(ctx, msg)
}
