package domain

// EmailMessage is a single outgoing mail. Text is optional.
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
}
