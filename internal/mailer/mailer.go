package mailer

import (
	"github.com/rs/zerolog/log"
	mail "github.com/wneessen/go-mail"
)

// Mailer dispatches outbound email. Delivery is best effort; callers never
// learn about failures.
type Mailer interface {
	SendAsync(to, subject, htmlBody string)
}

// SMTPMailer implements Mailer over an SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer creates a new SMTPMailer.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password, from: from}
}

// SendAsync dispatches the message in a goroutine. Failures are logged and
// dropped: reset-issuance success means "we attempted", not "we delivered".
func (m *SMTPMailer) SendAsync(to, subject, htmlBody string) {
	go func() {
		if err := m.send(to, subject, htmlBody); err != nil {
			log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("Failed to send email")
			return
		}
		log.Info().Str("to", to).Str("subject", subject).Msg("Email dispatched")
	}()
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	opts := []mail.Option{
		mail.WithPort(m.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSend(msg)
}
