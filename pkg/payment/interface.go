package payment

import (
	"context"
	"errors"

	"github.com/tidwall/gjson"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// Gateway is the subset of the card processor used by bookings: hosted
// checkout, refunds, and signed webhook delivery.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, request *CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	RefundPayment(ctx context.Context, request *RefundRequest) (*RefundResponse, error)
	ValidateWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

type CheckoutRequest struct {
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	ProductName   string            `json:"product_name"`
	Description   string            `json:"description"`
	CustomerEmail string            `json:"customer_email"`
	ReferenceID   string            `json:"reference_id"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	Metadata      map[string]string `json:"metadata"`
}

type CheckoutSession struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	PaymentStatus   string            `json:"payment_status"`
	PaymentIntentID string            `json:"payment_intent_id"`
	AmountTotal     float64           `json:"amount_total"`
	Currency        string            `json:"currency"`
	Metadata        map[string]string `json:"metadata"`
	ExpiresAt       int64             `json:"expires_at"`
}

func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == "paid"
}

type RefundRequest struct {
	PaymentIntentID string            `json:"payment_intent_id"`
	Amount          float64           `json:"amount"`
	Reason          string            `json:"reason"`
	Metadata        map[string]string `json:"metadata"`
}

type RefundResponse struct {
	RefundID  string  `json:"refund_id"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	CreatedAt int64   `json:"created_at"`
}

// WebhookEvent is a verified event. Object holds the raw data.object JSON.
type WebhookEvent struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	CreatedAt int64  `json:"created_at"`
	Object    []byte `json:"-"`
}

// Get reads a gjson path out of the event object, e.g. "payment_intent" or
// "last_payment_error.message".
func (e *WebhookEvent) Get(path string) gjson.Result {
	return gjson.GetBytes(e.Object, path)
}

func ToMinorUnits(amount float64) int64 {
	if amount >= 0 {
		return int64(amount*100 + 0.5)
	}
	return int64(amount*100 - 0.5)
}

func FromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}
