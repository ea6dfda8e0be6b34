package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/pkg/logger"
)

// NotificationService records notification intents in the outbox. Delivery
// happens later in OutboxDispatcher, so a slow or failing SMTP server never
// holds up a request.
type NotificationService interface {
	Email(ctx context.Context, to, template string, data map[string]string) error
	SMS(ctx context.Context, to, template string, data map[string]string) error
}

type notificationService struct {
	outboxRepo interfaces.OutboxRepository
	smsEnabled bool
	logger     *logger.Logger
}

func NewNotificationService(outboxRepo interfaces.OutboxRepository, smsEnabled bool, log *logger.Logger) NotificationService {
	return &notificationService{
		outboxRepo: outboxRepo,
		smsEnabled: smsEnabled,
		logger:     log,
	}
}

func (s *notificationService) Email(ctx context.Context, to, template string, data map[string]string) error {
	return s.enqueue(ctx, models.ChannelEmail, to, template, data)
}

// SMS is a no-op when no SMS provider is configured or to is empty.
func (s *notificationService) SMS(ctx context.Context, to, template string, data map[string]string) error {
	if !s.smsEnabled || to == "" {
		return nil
	}
	return s.enqueue(ctx, models.ChannelSMS, to, template, data)
}

func (s *notificationService) enqueue(ctx context.Context, channel models.OutboxChannel, to, template string, data map[string]string) error {
	payload := make(map[string]interface{}, len(data))
	for k, v := range data {
		payload[k] = v
	}

	message := &models.OutboxMessage{
		Channel:       channel,
		Template:      template,
		Recipient:     to,
		Data:          payload,
		Status:        models.OutboxPending,
		NextAttemptAt: time.Now(),
	}
	if err := s.outboxRepo.Insert(ctx, message); err != nil {
		return fmt.Errorf("failed to enqueue %s %s: %w", channel, template, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"channel":  channel,
		"template": template,
	}).Debug("Notification enqueued")
	return nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format("Monday, January 2, 2006")
}

func formatMoney(amount float64, currency string) string {
	return fmt.Sprintf("%.2f %s", amount, currency)
}

func formatInt(n int) string {
	return strconv.Itoa(n)
}
