package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

type Mailer interface {
	Send(ctx context.Context, message *Message) error
}

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromEmail  string
	FromName   string
	SSL        bool
	TLS        bool
	AuthMethod string
	Timeout    time.Duration
}

type SMTPMailer struct {
	client *mail.Client
	config *SMTPConfig
}

func NewSMTPMailer(config *SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(config.Port),
	}

	if config.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(config.Timeout))
	}

	if config.SSL {
		opts = append(opts, mail.WithSSL())
	} else if config.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if config.Username != "" {
		auth := mail.SMTPAuthPlain
		if config.AuthMethod == "login" {
			auth = mail.SMTPAuthLogin
		}
		opts = append(opts,
			mail.WithSMTPAuth(auth),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize smtp client: %w", err)
	}

	return &SMTPMailer{client: client, config: config}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, message *Message) error {
	msg, err := m.build(message)
	if err != nil {
		return err
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", message.To, err)
	}
	return nil
}

func (m *SMTPMailer) build(message *Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.config.FromName, m.config.FromEmail); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	if message.ReplyTo != "" {
		if err := msg.ReplyTo(message.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
	}

	msg.Subject(message.Subject)

	switch {
	case message.HTMLBody != "" && message.TextBody != "":
		msg.SetBodyString(mail.TypeTextPlain, message.TextBody)
		msg.AddAlternativeString(mail.TypeTextHTML, message.HTMLBody)
	case message.HTMLBody != "":
		msg.SetBodyString(mail.TypeTextHTML, message.HTMLBody)
	default:
		msg.SetBodyString(mail.TypeTextPlain, message.TextBody)
	}

	return msg, nil
}

var _ Mailer = (*SMTPMailer)(nil)
