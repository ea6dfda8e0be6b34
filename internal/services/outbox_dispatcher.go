package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/pkg/logger"
	"gbtravel/pkg/mailer"
	"gbtravel/pkg/sms"
)

const (
	outboxBaseDelay  = 30 * time.Second
	outboxMaxDelay   = time.Hour
	outboxStaleAfter = 5 * time.Minute
)

var errNoSMSProvider = errors.New("sms provider not configured")

type DispatcherConfig struct {
	BatchSize   int
	MaxAttempts int
}

// OutboxDispatcher delivers pending outbox messages.
type OutboxDispatcher struct {
	outboxRepo  interfaces.OutboxRepository
	mailer      mailer.Mailer
	smsProvider sms.SMSProvider
	renderer    *Renderer
	config      DispatcherConfig
	logger      *logger.Logger
	now         func() time.Time
}

func NewOutboxDispatcher(
	outboxRepo interfaces.OutboxRepository,
	mail mailer.Mailer,
	smsProvider sms.SMSProvider,
	renderer *Renderer,
	config DispatcherConfig,
	log *logger.Logger,
) *OutboxDispatcher {
	if config.BatchSize <= 0 {
		config.BatchSize = 25
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 8
	}
	return &OutboxDispatcher{
		outboxRepo:  outboxRepo,
		mailer:      mail,
		smsProvider: smsProvider,
		renderer:    renderer,
		config:      config,
		logger:      log,
		now:         time.Now,
	}
}

// RetryDelay is the wait before the given attempt number is retried.
func RetryDelay(attempts int) time.Duration {
	delay := outboxBaseDelay
	for i := 0; i < attempts; i++ {
		delay *= 2
		if delay >= outboxMaxDelay {
			return outboxMaxDelay
		}
	}
	return delay
}

// Dispatch sends up to one batch of due messages and returns how many were sent.
func (d *OutboxDispatcher) Dispatch(ctx context.Context) (int, error) {
	now := d.now()

	released, err := d.outboxRepo.ReleaseStale(ctx, now.Add(-outboxStaleAfter))
	if err != nil {
		return 0, err
	}
	if released > 0 {
		d.logger.WithField("count", released).Warn("Released stale outbox claims")
	}

	sent := 0
	for i := 0; i < d.config.BatchSize; i++ {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		message, err := d.outboxRepo.ClaimNext(ctx, d.now())
		if err != nil {
			return sent, err
		}
		if message == nil {
			break
		}

		if err := d.deliver(ctx, message); err != nil {
			d.fail(ctx, message, err)
			continue
		}

		if err := d.outboxRepo.MarkSent(ctx, message.ID, d.now()); err != nil {
			return sent, err
		}
		sent++
	}

	return sent, nil
}

func (d *OutboxDispatcher) deliver(ctx context.Context, message *models.OutboxMessage) error {
	data := stringData(message.Data)

	switch message.Channel {
	case models.ChannelEmail:
		subject, body, err := d.renderer.RenderEmail(message.Template, data)
		if err != nil {
			return err
		}
		return d.mailer.Send(ctx, &mailer.Message{
			To:       message.Recipient,
			Subject:  subject,
			HTMLBody: body,
		})
	case models.ChannelSMS:
		if d.smsProvider == nil {
			return errNoSMSProvider
		}
		text, err := d.renderer.RenderSMS(message.Template, data)
		if err != nil {
			return err
		}
		_, err = d.smsProvider.SendSMS(ctx, &sms.SMSRequest{
			To:      message.Recipient,
			Message: text,
			Type:    "transactional",
		})
		return err
	default:
		return fmt.Errorf("unknown outbox channel %q", message.Channel)
	}
}

func (d *OutboxDispatcher) fail(ctx context.Context, message *models.OutboxMessage, cause error) {
	attempts := message.Attempts + 1
	log := d.logger.WithError(cause).WithFields(map[string]interface{}{
		"outbox_id": message.ID.Hex(),
		"template":  message.Template,
		"attempts":  attempts,
	})

	if attempts >= d.config.MaxAttempts {
		if err := d.outboxRepo.MarkFailed(ctx, message.ID, attempts, cause.Error()); err != nil {
			log.WithField("mark_error", err.Error()).Error("Failed to mark outbox message failed")
			return
		}
		log.Error("Outbox message gave up")
		return
	}

	next := d.now().Add(RetryDelay(message.Attempts))
	if err := d.outboxRepo.MarkRetry(ctx, message.ID, attempts, next, cause.Error()); err != nil {
		log.WithField("mark_error", err.Error()).Error("Failed to reschedule outbox message")
		return
	}
	log.Warn("Outbox delivery failed, will retry")
}

func stringData(data map[string]interface{}) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		if v == nil {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
