package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type StripeGateway struct {
	client         *client.API
	webhookSecret  string
	checkoutExpiry time.Duration
	now            func() time.Time
}

func NewStripeGateway(secretKey, webhookSecret string, checkoutExpiry time.Duration) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	if checkoutExpiry < 30*time.Minute {
		checkoutExpiry = 30 * time.Minute
	}

	return &StripeGateway{
		client:         sc,
		webhookSecret:  webhookSecret,
		checkoutExpiry: checkoutExpiry,
		now:            time.Now,
	}
}

func (s *StripeGateway) CreateCheckoutSession(ctx context.Context, request *CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(request.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(request.ProductName),
						Description: stripe.String(request.Description),
					},
					UnitAmount: stripe.Int64(ToMinorUnits(request.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(request.SuccessURL),
		CancelURL:  stripe.String(request.CancelURL),
		ExpiresAt:  stripe.Int64(s.now().Add(s.checkoutExpiry).Unix()),
	}
	params.Context = ctx

	if request.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(request.CustomerEmail)
	}
	if request.ReferenceID != "" {
		params.ClientReferenceID = stripe.String(request.ReferenceID)
	}
	for key, value := range request.Metadata {
		params.AddMetadata(key, value)
	}

	cs, err := s.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return convertStripeSession(cs), nil
}

func (s *StripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	cs, err := s.client.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}

	return convertStripeSession(cs), nil
}

func (s *StripeGateway) RefundPayment(ctx context.Context, request *RefundRequest) (*RefundResponse, error) {
	reason := request.Reason
	if reason == "" {
		reason = string(stripe.RefundReasonRequestedByCustomer)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(request.PaymentIntentID),
		Reason:        stripe.String(reason),
	}
	params.Context = ctx

	if request.Amount > 0 {
		params.Amount = stripe.Int64(ToMinorUnits(request.Amount))
	}
	for key, value := range request.Metadata {
		params.AddMetadata(key, value)
	}

	refund, err := s.client.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create refund: %w", err)
	}

	return &RefundResponse{
		RefundID:  refund.ID,
		Status:    string(refund.Status),
		Amount:    FromMinorUnits(refund.Amount),
		Currency:  string(refund.Currency),
		CreatedAt: refund.Created,
	}, nil
}

func (s *StripeGateway) ValidateWebhook(_ context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	if s.webhookSecret == "" {
		return nil, errors.New("webhook secret is not configured")
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var object []byte
	if event.Data != nil {
		object = event.Data.Raw
	}

	return &WebhookEvent{
		EventID:   event.ID,
		EventType: string(event.Type),
		CreatedAt: event.Created,
		Object:    object,
	}, nil
}

func convertStripeSession(cs *stripe.CheckoutSession) *CheckoutSession {
	session := &CheckoutSession{
		ID:            cs.ID,
		URL:           cs.URL,
		PaymentStatus: string(cs.PaymentStatus),
		AmountTotal:   FromMinorUnits(cs.AmountTotal),
		Currency:      string(cs.Currency),
		Metadata:      cs.Metadata,
		ExpiresAt:     cs.ExpiresAt,
	}
	if cs.PaymentIntent != nil {
		session.PaymentIntentID = cs.PaymentIntent.ID
	}
	return session
}

var _ Gateway = (*StripeGateway)(nil)
