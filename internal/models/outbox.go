package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OutboxChannel string
type OutboxStatus string

const (
	ChannelEmail OutboxChannel = "email"
	ChannelSMS   OutboxChannel = "sms"

	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxSent       OutboxStatus = "sent"
	OutboxFailed     OutboxStatus = "failed"
)

// Template names understood by the notification renderer.
const (
	TemplateWelcome             = "welcome"
	TemplateEmailVerification   = "email_verification"
	TemplateLoginNotification   = "login_notification"
	TemplateBookingConfirmation = "booking_confirmation"
	TemplatePaymentReceipt      = "payment_receipt"
	TemplateBookingCancellation = "booking_cancellation"
	TemplatePasswordReset       = "password_reset"
	TemplateTripReminder        = "trip_reminder"
	TemplateInquiryReceived     = "inquiry_received"
)

// OutboxMessage is a notification intent written alongside the state change
// that caused it and delivered later by the dispatcher.
type OutboxMessage struct {
	ID            primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	Channel       OutboxChannel          `json:"channel" bson:"channel"`
	Template      string                 `json:"template" bson:"template"`
	Recipient     string                 `json:"recipient" bson:"recipient"`
	Data          map[string]interface{} `json:"data" bson:"data"`
	Status        OutboxStatus           `json:"status" bson:"status"`
	Attempts      int                    `json:"attempts" bson:"attempts"`
	NextAttemptAt time.Time              `json:"nextAttemptAt" bson:"next_attempt_at"`
	LockedAt      *time.Time             `json:"lockedAt,omitempty" bson:"locked_at,omitempty"`
	LastError     string                 `json:"lastError,omitempty" bson:"last_error,omitempty"`
	SentAt        *time.Time             `json:"sentAt,omitempty" bson:"sent_at,omitempty"`
	CreatedAt     time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time              `json:"updatedAt" bson:"updated_at"`
}
