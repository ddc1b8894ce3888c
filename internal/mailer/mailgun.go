package mailer

import (
	"context"
	"fmt"
	"net/url"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Sender delivers activation emails. It is satisfied by Mailgun and by
// test doubles.
type Sender interface {
	Send(ctx context.Context, to, subject, text string) error
}

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain string
	APIKey string
	From   string
}

func NewMailgun(domain, apiKey, from string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, From: from}
}

// Send delivers a plain-text email via Mailgun with a bounded timeout.
func (m *Mailgun) Send(ctx context.Context, to, subject, text string) error {
	client := mg.NewMailgun(m.Domain, m.APIKey)
	msg := client.NewMessage(m.From, subject, text, to)
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := client.Send(c, msg)
	return err
}

// ActivationEmail renders the subject and body for a signup activation
// message. The link points at the public activation endpoint with the
// user's email as query parameter.
func ActivationEmail(baseURL, email, username string) (subject, text string) {
	link := fmt.Sprintf("%s/v1/users/activate?email=%s", baseURL, url.QueryEscape(email))
	subject = "Activate your movie watchlist account"
	text = fmt.Sprintf(
		"Hi %s,\n\nthanks for signing up. Visit the link below to activate your account:\n\n%s\n\nIf you did not sign up, ignore this message.\n",
		username, link)
	return subject, text
}
