package mailer

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sesTypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type sesSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends through Amazon SES using the default credential chain.
type SESMailer struct {
	client sesSender
	from   string
}

func NewSESMailer(ctx context.Context, region, fromName, fromEmail string) (*SESMailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SESMailer{client: ses.NewFromConfig(cfg), from: formatAddress(fromName, fromEmail)}, nil
}

func (m *SESMailer) Send(ctx context.Context, message *Message) error {
	if _, err := m.client.SendEmail(ctx, m.input(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", message.To, err)
	}
	return nil
}

func (m *SESMailer) input(message *Message) *ses.SendEmailInput {
	body := &sesTypes.Body{}
	if message.HTMLBody != "" {
		body.Html = &sesTypes.Content{Data: aws.String(message.HTMLBody), Charset: aws.String("UTF-8")}
	}
	if message.TextBody != "" {
		body.Text = &sesTypes.Content{Data: aws.String(message.TextBody), Charset: aws.String("UTF-8")}
	}

	input := &ses.SendEmailInput{
		Source:      aws.String(m.from),
		Destination: &sesTypes.Destination{ToAddresses: []string{message.To}},
		Message: &sesTypes.Message{
			Subject: &sesTypes.Content{Data: aws.String(message.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	}
	if message.ReplyTo != "" {
		input.ReplyToAddresses = []string{message.ReplyTo}
	}
	return input
}

func formatAddress(name, email string) string {
	if name == "" {
		return email
	}
	return (&mail.Address{Name: name, Address: email}).String()
}

var _ Mailer = (*SESMailer)(nil)
