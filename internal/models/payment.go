package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentRecordStatus string
type PaymentType string
type PaymentMethod string

const (
	PaymentRecordPending           PaymentRecordStatus = "pending"
	PaymentRecordProcessing        PaymentRecordStatus = "processing"
	PaymentRecordSucceeded         PaymentRecordStatus = "succeeded"
	PaymentRecordFailed            PaymentRecordStatus = "failed"
	PaymentRecordCancelled         PaymentRecordStatus = "cancelled"
	PaymentRecordRefunded          PaymentRecordStatus = "refunded"
	PaymentRecordPartiallyRefunded PaymentRecordStatus = "partially_refunded"

	PaymentTypePayment       PaymentType = "payment"
	PaymentTypeRefund        PaymentType = "refund"
	PaymentTypePartialRefund PaymentType = "partial_refund"

	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodOther        PaymentMethod = "other"
)

type CardDetails struct {
	Brand    string `json:"brand,omitempty" bson:"brand,omitempty"`
	Last4    string `json:"last4,omitempty" bson:"last4,omitempty"`
	ExpMonth int    `json:"expMonth,omitempty" bson:"exp_month,omitempty"`
	ExpYear  int    `json:"expYear,omitempty" bson:"exp_year,omitempty"`
}

type RefundDetails struct {
	OriginalPaymentID primitive.ObjectID `json:"originalPaymentId,omitempty" bson:"original_payment_id,omitempty"`
	RefundAmount      float64            `json:"refundAmount" bson:"refund_amount"`
	RefundReason      string             `json:"refundReason,omitempty" bson:"refund_reason,omitempty"`
	RefundedAt        time.Time          `json:"refundedAt" bson:"refunded_at"`
	StripeRefundID    string             `json:"stripeRefundId,omitempty" bson:"stripe_refund_id,omitempty"`
}

type Payment struct {
	ID                    primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	User                  primitive.ObjectID  `json:"user" bson:"user"`
	Booking               primitive.ObjectID  `json:"booking" bson:"booking"`
	Amount                float64             `json:"amount" bson:"amount"`
	Currency              string              `json:"currency" bson:"currency"`
	PaymentMethod         PaymentMethod       `json:"paymentMethod" bson:"payment_method"`
	CardDetails           *CardDetails        `json:"cardDetails,omitempty" bson:"card_details,omitempty"`
	StripePaymentIntentID string              `json:"stripePaymentIntentId,omitempty" bson:"stripe_payment_intent_id,omitempty"`
	StripeChargeID        string              `json:"stripeChargeId,omitempty" bson:"stripe_charge_id,omitempty"`
	StripeSessionID       string              `json:"stripeSessionId,omitempty" bson:"stripe_session_id,omitempty"`
	StripeEventID         string              `json:"stripeEventId,omitempty" bson:"stripe_event_id,omitempty"`
	Status                PaymentRecordStatus `json:"status" bson:"status"`
	Type                  PaymentType         `json:"type" bson:"type"`
	RefundDetails         *RefundDetails      `json:"refundDetails,omitempty" bson:"refund_details,omitempty"`
	Description           string              `json:"description,omitempty" bson:"description,omitempty"`
	Metadata              map[string]string   `json:"metadata,omitempty" bson:"metadata,omitempty"`
	ReceiptURL            string              `json:"receiptUrl,omitempty" bson:"receipt_url,omitempty"`
	FailureReason         string              `json:"failureReason,omitempty" bson:"failure_reason,omitempty"`
	FailureCode           string              `json:"failureCode,omitempty" bson:"failure_code,omitempty"`
	ProcessedAt           *time.Time          `json:"processedAt,omitempty" bson:"processed_at,omitempty"`
	CreatedAt             time.Time           `json:"createdAt" bson:"created_at"`
	UpdatedAt             time.Time           `json:"updatedAt" bson:"updated_at"`
}

type MonthlyRevenue struct {
	Year    int     `json:"year" bson:"year"`
	Month   int     `json:"month" bson:"month"`
	Revenue float64 `json:"revenue" bson:"revenue"`
	Count   int64   `json:"count" bson:"count"`
}

type PaymentStats struct {
	TotalRevenue   float64          `json:"totalRevenue"`
	MonthlyRevenue float64          `json:"monthlyRevenue"`
	YearlyRevenue  float64          `json:"yearlyRevenue"`
	RevenueByMonth []MonthlyRevenue `json:"revenueByMonth"`
}

// ProcessedEvent marks a provider webhook event as handled.
type ProcessedEvent struct {
	ID          string    `json:"id" bson:"_id"`
	Type        string    `json:"type" bson:"type"`
	ProcessedAt time.Time `json:"processedAt" bson:"processed_at"`
}
